package service

import (
	"sevenway/internal/core/domain"
)

// Trend is the voltage tendency of a channel over the recent history.
type Trend int

const (
	TrendUnknown Trend = iota
	TrendStable
	TrendImproving
	TrendDegrading
)

func (t Trend) String() string {
	switch t {
	case TrendStable:
		return "stable"
	case TrendImproving:
		return "improving"
	case TrendDegrading:
		return "degrading"
	}
	return "unknown"
}

// trendBandVolts is the half/half mean difference below which a channel
// counts as stable.
const trendBandVolts = 0.5

type channelHistory struct {
	volts  []float64
	states []domain.SignalState
}

// History is a bounded per-channel ring of recent samples plus a ring of
// per-pass fault sets. It backs trend analysis, weak-signal persistence,
// ground-fault baselines and intermittent-fault detection. Oldest entries
// are evicted on insert; nothing is persisted.
type History struct {
	capacity int
	channels map[domain.Channel]*channelHistory

	// faultPasses holds the fault kinds seen on each recent diagnostic
	// pass, newest last.
	faultPasses [][]domain.FaultKind
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		capacity: capacity,
		channels: map[domain.Channel]*channelHistory{},
	}
}

// Record appends the snapshot's available readings. Unavailable channels
// leave no trace, so gaps never pollute baselines.
func (h *History) Record(snap domain.Snapshot) {
	for _, ch := range domain.Channels {
		r, ok := snap.Readings[ch]
		if !ok || r.Unavailable {
			continue
		}
		c := h.channels[ch]
		if c == nil {
			c = &channelHistory{}
			h.channels[ch] = c
		}
		c.volts = append(c.volts, r.Volts)
		c.states = append(c.states, r.State)
		if len(c.volts) > h.capacity {
			c.volts = c.volts[1:]
			c.states = c.states[1:]
		}
	}
}

// RecordFaults appends the fault kinds of one diagnostic pass.
func (h *History) RecordFaults(faults []domain.FaultHypothesis) {
	kinds := make([]domain.FaultKind, 0, len(faults))
	for _, f := range faults {
		kinds = append(kinds, f.Kind)
	}
	h.faultPasses = append(h.faultPasses, kinds)
	if len(h.faultPasses) > h.capacity {
		h.faultPasses = h.faultPasses[1:]
	}
}

func (h *History) Len(ch domain.Channel) int {
	if c := h.channels[ch]; c != nil {
		return len(c.volts)
	}
	return 0
}

// LastStates returns up to k most recent states, oldest first.
func (h *History) LastStates(ch domain.Channel, k int) []domain.SignalState {
	c := h.channels[ch]
	if c == nil {
		return nil
	}
	if len(c.states) < k {
		k = len(c.states)
	}
	return c.states[len(c.states)-k:]
}

// BaselineMean is the mean voltage over the most recent `window`
// samples. Returns false until the window is filled, so a baseline is
// never computed from thin data.
func (h *History) BaselineMean(ch domain.Channel, window int) (float64, bool) {
	c := h.channels[ch]
	if c == nil || len(c.volts) < window || window <= 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range c.volts[len(c.volts)-window:] {
		sum += v
	}
	return sum / float64(window), true
}

// MeanLastK is the mean of up to k most recent samples.
func (h *History) MeanLastK(ch domain.Channel, k int) (float64, bool) {
	c := h.channels[ch]
	if c == nil || len(c.volts) == 0 || k <= 0 {
		return 0, false
	}
	if len(c.volts) < k {
		k = len(c.volts)
	}
	sum := 0.0
	for _, v := range c.volts[len(c.volts)-k:] {
		sum += v
	}
	return sum / float64(k), true
}

// Trend compares the first and second half of the recorded window.
func (h *History) Trend(ch domain.Channel) Trend {
	c := h.channels[ch]
	if c == nil || len(c.volts) < 5 {
		return TrendUnknown
	}
	half := len(c.volts) / 2
	firstSum, secondSum := 0.0, 0.0
	for _, v := range c.volts[:half] {
		firstSum += v
	}
	for _, v := range c.volts[half:] {
		secondSum += v
	}
	first := firstSum / float64(half)
	second := secondSum / float64(len(c.volts)-half)

	diff := second - first
	switch {
	case diff > trendBandVolts:
		return TrendImproving
	case diff < -trendBandVolts:
		return TrendDegrading
	default:
		return TrendStable
	}
}

// IsIntermittent reports whether a fault kind appears in some but not
// all recent passes (10-90%), the signature of a loose connection.
// Requires at least 10 recorded passes.
func (h *History) IsIntermittent(kind domain.FaultKind) bool {
	if len(h.faultPasses) < 10 {
		return false
	}
	hits := 0
	for _, pass := range h.faultPasses {
		for _, k := range pass {
			if k == kind {
				hits++
				break
			}
		}
	}
	rate := float64(hits) / float64(len(h.faultPasses))
	return rate > 0.1 && rate < 0.9
}

// Reset drops all recorded samples and fault passes.
func (h *History) Reset() {
	h.channels = map[domain.Channel]*channelHistory{}
	h.faultPasses = nil
}
