package domain

import "time"

// ChannelSample is one raw voltage reading for one channel at one
// instant. Samples are never mutated after creation; each polling cycle
// produces a fresh set.
type ChannelSample struct {
	Channel Channel
	Raw     float64
	At      time.Time
}

// RawSample is a single acquisition result as delivered by the sampling
// hardware. Unavailable marks a failed channel read (sensor fault); the
// voltage value is meaningless in that case.
type RawSample struct {
	Volts       float64
	Unavailable bool
}

// RawSamples is one full acquisition pass over all channels. Channels
// missing from the map are treated the same as Unavailable.
type RawSamples map[Channel]RawSample

// Reading is a calibrated, classified view of one channel for one cycle.
type Reading struct {
	Sample     ChannelSample
	Volts      float64
	State      SignalState
	OutOfRange bool
	// Unavailable means the sensor read failed; Volts and State carry no
	// information and the channel is excluded from multi-channel rules.
	Unavailable bool
}

// Snapshot is an immutable per-cycle view over all channels. It is
// published to consumers as a whole; partial updates are never visible.
type Snapshot struct {
	At       time.Time
	Readings map[Channel]Reading
}

// Available reports whether the channel was read successfully this cycle.
func (s Snapshot) Available(ch Channel) bool {
	r, ok := s.Readings[ch]
	return ok && !r.Unavailable
}

// AvailableCount returns how many channels were read successfully.
func (s Snapshot) AvailableCount() int {
	n := 0
	for _, ch := range Channels {
		if s.Available(ch) {
			n++
		}
	}
	return n
}
