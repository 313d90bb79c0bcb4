package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"sevenway/internal/config"
	"sevenway/internal/core/domain"
)

// RuleInput is everything one diagnostic pass may look at: the current
// snapshot, the recent history, and in trailer mode the channels the
// sequencer is actively driving.
type RuleInput struct {
	Snapshot domain.Snapshot
	History  *History
	// DrivenChannels are the outputs currently asserted by a test
	// sequence. Empty outside trailer-mode sequence runs.
	DrivenChannels []domain.Channel
	Mode           domain.OperatingMode
}

// Engine is the rule-based fault diagnosis engine. Each call to Diagnose
// evaluates every rule independently and returns fresh hypotheses sorted
// by descending confidence; prior hypotheses are never consulted. The
// only carried state is the cross-wiring streak counter, which implements
// the simultaneity debounce window.
type Engine struct {
	cfg config.DiagnosticsConfig

	// crossWireStreak counts consecutive passes with both turn channels
	// reading OK at once.
	crossWireStreak int
}

func NewEngine(cfg config.DiagnosticsConfig) *Engine {
	return &Engine{cfg: cfg}
}

// confidence scales a deviation into [0,1]: 0 at `threshold`, 1 at `max`.
func confidence(deviation, threshold, max float64) float64 {
	if max <= threshold {
		return 0
	}
	c := (deviation - threshold) / (max - threshold)
	return math.Max(0, math.Min(1, c))
}

// Diagnose runs one full inference pass. Unavailable channels are
// excluded from every rule, never treated as 0V.
func (e *Engine) Diagnose(in RuleInput) []domain.FaultHypothesis {
	var faults []domain.FaultHypothesis

	if f, ok := e.groundFault(in); ok {
		faults = append(faults, f)
	} else {
		// per-channel voltage rules are masked by a ground fault, which
		// would otherwise flag every circuit individually
		for _, ch := range domain.Channels {
			r, avail := reading(in.Snapshot, ch)
			if !avail {
				continue
			}
			if f, ok := e.voltageDrop(in, ch, r); ok {
				faults = append(faults, f)
			} else if f, ok := e.weakSignal(in, ch, r); ok {
				faults = append(faults, f)
			}
		}
	}

	if f, ok := e.crossWiring(in); ok {
		faults = append(faults, f)
	}

	if in.Mode == domain.ModeTrailerTester {
		for _, ch := range in.DrivenChannels {
			if f, ok := e.openCircuit(in, ch); ok {
				faults = append(faults, f)
			}
		}
	}

	sort.SliceStable(faults, func(i, j int) bool {
		if faults[i].Confidence != faults[j].Confidence {
			return faults[i].Confidence > faults[j].Confidence
		}
		return faults[i].Kind < faults[j].Kind
	})
	return faults
}

// Reset clears the cross-wiring streak, e.g. on a mode transition.
func (e *Engine) Reset() {
	e.crossWireStreak = 0
}

func reading(snap domain.Snapshot, ch domain.Channel) (domain.Reading, bool) {
	r, ok := snap.Readings[ch]
	if !ok || r.Unavailable {
		return domain.Reading{}, false
	}
	return r, true
}

// voltageDrop fires when a channel classifies OK yet sits below the
// normal floor while every other active channel is normal, the signature
// of resistive loss on that one circuit.
func (e *Engine) voltageDrop(in RuleInput, ch domain.Channel, r domain.Reading) (domain.FaultHypothesis, bool) {
	if r.State != domain.SignalOK || r.Volts >= e.cfg.NormalMinVolts {
		return domain.FaultHypothesis{}, false
	}
	for _, other := range domain.Channels {
		if other == ch {
			continue
		}
		or, avail := reading(in.Snapshot, other)
		if !avail || or.State == domain.SignalOff {
			continue
		}
		if or.Volts < e.cfg.NormalMinVolts {
			return domain.FaultHypothesis{}, false
		}
	}

	info := ch.Info()
	conf := confidence(e.cfg.NominalVolts-r.Volts,
		e.cfg.NominalVolts-e.cfg.NormalMinVolts,
		e.cfg.NominalVolts-e.cfg.WeakMinVolts)
	return domain.FaultHypothesis{
		Kind:        domain.FaultVoltageDrop,
		Channels:    []domain.Channel{ch},
		Confidence:  conf,
		Description: fmt.Sprintf("%s (%s) shows %.1fV - significant voltage drop", info.Name, info.WireColor, r.Volts),
		Fixes: []string{
			"Clean connector pins with electrical contact cleaner",
			fmt.Sprintf("Check for loose connections at pin %d", info.Pin),
			"Inspect wire for damage or corrosion",
			"Verify adequate wire gauge (16-18 AWG minimum)",
			fmt.Sprintf("Check ground connection (pin %d, white wire)", domain.GroundPin),
			"Apply dielectric grease to prevent corrosion",
		},
	}, true
}

// weakSignal fires when a channel has classified WEAK on every one of
// the last WeakPersistSamples history samples, ruling out transient
// noise.
func (e *Engine) weakSignal(in RuleInput, ch domain.Channel, r domain.Reading) (domain.FaultHypothesis, bool) {
	if r.State != domain.SignalWeak || in.History == nil {
		return domain.FaultHypothesis{}, false
	}
	k := e.cfg.WeakPersistSamples
	states := in.History.LastStates(ch, k)
	if len(states) < k {
		return domain.FaultHypothesis{}, false
	}
	for _, s := range states {
		if s != domain.SignalWeak {
			return domain.FaultHypothesis{}, false
		}
	}

	mean, ok := in.History.MeanLastK(ch, k)
	if !ok {
		mean = r.Volts
	}
	info := ch.Info()
	conf := confidence(e.cfg.NominalVolts-mean,
		e.cfg.NominalVolts-e.cfg.WeakMinVolts,
		e.cfg.NominalVolts)
	return domain.FaultHypothesis{
		Kind:        domain.FaultWeakSignal,
		Channels:    []domain.Channel{ch},
		Confidence:  conf,
		Description: fmt.Sprintf("%s (%s) reads %.1fV - persistently below normal (%.0f-%.0fV expected)", info.Name, info.WireColor, mean, e.cfg.NormalMinVolts, e.cfg.NominalVolts),
		Fixes: []string{
			"Check battery voltage (should be 12.6V resting)",
			"Clean connector contacts",
			"Verify ground connection quality",
			"Check for high-resistance connections",
			"Inspect wire run for excessive length",
		},
	}, true
}

// crossWiring fires when both turn channels classify OK simultaneously
// for at least the configured number of consecutive passes. Similarity of
// the two voltages drives the confidence: identical voltages are the
// strongest indication of a swap or short rather than hazard lights.
func (e *Engine) crossWiring(in RuleInput) (domain.FaultHypothesis, bool) {
	left, lok := reading(in.Snapshot, domain.ChannelLeftTurn)
	right, rok := reading(in.Snapshot, domain.ChannelRightTurn)

	if !lok || !rok || left.State != domain.SignalOK || right.State != domain.SignalOK {
		e.crossWireStreak = 0
		return domain.FaultHypothesis{}, false
	}

	e.crossWireStreak++
	if e.crossWireStreak < e.cfg.CrossWireWindow {
		return domain.FaultHypothesis{}, false
	}

	similarity := e.cfg.CrossWireSimilarityVolts - math.Abs(left.Volts-right.Volts)
	conf := confidence(similarity, 0, e.cfg.CrossWireSimilarityVolts)
	return domain.FaultHypothesis{
		Kind:       domain.FaultCrossWiring,
		Channels:   []domain.Channel{domain.ChannelLeftTurn, domain.ChannelRightTurn},
		Confidence: conf,
		Description: fmt.Sprintf("Left and Right turn both active (%.1fV / %.1fV) - possible cross-wiring or hazards",
			left.Volts, right.Volts),
		Fixes: []string{
			"Verify this is not hazard lights mode",
			"Check wire colors: left=red (pin 4), right=brown (pin 5)",
			"Inspect connector for crossed pins",
			"Verify trailer wiring matches RV 7-way standard",
			"Check for short circuit between left/right wires",
		},
	}, true
}

// groundFault fires when every channel with an established baseline has
// simultaneously dropped by more than GroundFaultDropVolts. One circuit
// sagging points at that circuit; all of them sagging at once implicates
// the shared ground reference, so the hypothesis names all six channels.
func (e *Engine) groundFault(in RuleInput) (domain.FaultHypothesis, bool) {
	if in.History == nil {
		return domain.FaultHypothesis{}, false
	}

	baselined := 0
	dropSum := 0.0
	for _, ch := range domain.Channels {
		r, avail := reading(in.Snapshot, ch)
		if !avail {
			continue
		}
		baseline, ok := in.History.BaselineMean(ch, e.cfg.BaselineWindow)
		if !ok || baseline < e.cfg.WeakMinVolts {
			// channels that were already off or weak at baseline say
			// nothing about the shared ground
			continue
		}
		baselined++
		drop := baseline - r.Volts
		if drop <= e.cfg.GroundFaultDropVolts {
			return domain.FaultHypothesis{}, false
		}
		dropSum += drop
	}
	if baselined < 3 {
		return domain.FaultHypothesis{}, false
	}

	avgDrop := dropSum / float64(baselined)
	conf := confidence(avgDrop, e.cfg.GroundFaultDropVolts, e.cfg.GroundFaultMaxDropVolts)
	return domain.FaultHypothesis{
		Kind:        domain.FaultGroundFault,
		Channels:    append([]domain.Channel{}, domain.Channels...),
		Confidence:  conf,
		Description: fmt.Sprintf("All channels dropped %.1fV below baseline - likely ground issue", avgDrop),
		Fixes: []string{
			fmt.Sprintf("Inspect ground wire (pin %d, white) connection", domain.GroundPin),
			"Clean ground connection at trailer frame",
			"Verify ground wire is securely attached",
			"Check for rust/corrosion at ground point",
			"Install additional ground strap if needed",
			"Verify ground wire gauge is adequate",
		},
	}, true
}

// openCircuit fires when a channel the sequencer is actively driving
// reads OFF: the asserted test voltage never appeared at the connector.
func (e *Engine) openCircuit(in RuleInput, ch domain.Channel) (domain.FaultHypothesis, bool) {
	r, avail := reading(in.Snapshot, ch)
	if !avail || r.State != domain.SignalOff {
		return domain.FaultHypothesis{}, false
	}

	info := ch.Info()
	conf := confidence(e.cfg.NominalVolts-r.Volts,
		e.cfg.NominalVolts-e.cfg.NormalMinVolts,
		e.cfg.NominalVolts)
	return domain.FaultHypothesis{
		Kind:        domain.FaultOpenCircuit,
		Channels:    []domain.Channel{ch},
		Confidence:  conf,
		Description: fmt.Sprintf("No signal on %s (%s) - reads %.1fV while driven (expected %.0fV)", info.Name, info.WireColor, r.Volts, e.cfg.NominalVolts),
		Fixes: []string{
			"Check fuse in vehicle fuse panel",
			fmt.Sprintf("Inspect connector pin %d (%s) for corrosion", info.Pin, info.WireColor),
			fmt.Sprintf("Verify %s circuit bulbs/lights are functional", ch),
			"Test wire continuity with multimeter",
			"Check for broken wire in harness",
		},
	}, true
}

// FormatReport renders hypotheses as a human-readable repair report.
func FormatReport(faults []domain.FaultHypothesis) string {
	if len(faults) == 0 {
		return "No faults detected - all signals normal"
	}

	var b strings.Builder
	b.WriteString("FAULT DIAGNOSIS REPORT\n")
	b.WriteString(strings.Repeat("=", 40))
	b.WriteString("\n\n")

	for i, f := range faults {
		fmt.Fprintf(&b, "%d. %s (%.0f%% confidence)\n", i+1, f.Kind, f.Confidence*100)
		fmt.Fprintf(&b, "   %s\n\n", f.Description)
		b.WriteString("   Suggested fixes:\n")
		for j, fix := range f.Fixes {
			fmt.Fprintf(&b, "   %d. %s\n", j+1, fix)
		}
		b.WriteString("\n")
	}
	return b.String()
}
