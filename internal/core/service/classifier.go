package service

import (
	"sevenway/internal/core/domain"
)

// Thresholds are the classification band edges above the noise floor.
// `< noiseFloor` is OFF, `[noiseFloor, OKMin)` is WEAK, `[OKMin, HighMin)`
// is OK and `>= HighMin` is HIGH.
type Thresholds struct {
	OKMinVolts   float64
	HighMinVolts float64
}

// Classifier maps calibrated voltages to signal states with light
// hysteresis: a channel's state only flips after two consecutive samples
// agree, so a value hovering on a band edge cannot flicker.
type Classifier struct {
	defaults   Thresholds
	perChannel map[domain.Channel]Thresholds

	stable  map[domain.Channel]domain.SignalState
	pending map[domain.Channel]domain.SignalState
	hasStat map[domain.Channel]bool
	hasPend map[domain.Channel]bool
}

func NewClassifier(defaults Thresholds) *Classifier {
	return &Classifier{
		defaults:   defaults,
		perChannel: map[domain.Channel]Thresholds{},
		stable:     map[domain.Channel]domain.SignalState{},
		pending:    map[domain.Channel]domain.SignalState{},
		hasStat:    map[domain.Channel]bool{},
		hasPend:    map[domain.Channel]bool{},
	}
}

// Override sets channel-specific band edges. Brake circuits carrying
// proportional/PWM-derived voltages use a lower OK edge.
func (c *Classifier) Override(ch domain.Channel, th Thresholds) {
	c.perChannel[ch] = th
}

func (c *Classifier) thresholds(ch domain.Channel) Thresholds {
	if th, ok := c.perChannel[ch]; ok {
		return th
	}
	return c.defaults
}

// Band returns the stateless band classification, a pure function of
// (voltage, noise floor, channel thresholds).
func (c *Classifier) Band(ch domain.Channel, volts, noiseFloor float64) domain.SignalState {
	th := c.thresholds(ch)
	switch {
	case volts < noiseFloor:
		return domain.SignalOff
	case volts < th.OKMinVolts:
		return domain.SignalWeak
	case volts < th.HighMinVolts:
		return domain.SignalOK
	default:
		return domain.SignalHigh
	}
}

// Classify returns the hysteretic state for this sample. The first
// sample for a channel is adopted directly; afterwards a new band must
// be seen twice in a row before the reported state flips.
func (c *Classifier) Classify(ch domain.Channel, volts, noiseFloor float64) domain.SignalState {
	candidate := c.Band(ch, volts, noiseFloor)

	if !c.hasStat[ch] {
		c.stable[ch] = candidate
		c.hasStat[ch] = true
		return candidate
	}

	if candidate == c.stable[ch] {
		c.hasPend[ch] = false
		return c.stable[ch]
	}

	if c.hasPend[ch] && c.pending[ch] == candidate {
		// second consecutive sample in the new band: flip
		c.stable[ch] = candidate
		c.hasPend[ch] = false
		return candidate
	}

	c.pending[ch] = candidate
	c.hasPend[ch] = true
	return c.stable[ch]
}

// Reset drops all hysteresis state, e.g. on a mode transition.
func (c *Classifier) Reset() {
	c.stable = map[domain.Channel]domain.SignalState{}
	c.pending = map[domain.Channel]domain.SignalState{}
	c.hasStat = map[domain.Channel]bool{}
	c.hasPend = map[domain.Channel]bool{}
}
