package domain

// FaultKind names a diagnosable wiring fault. Declaration order is the
// deterministic tie-break for hypotheses with equal confidence.
type FaultKind int

const (
	FaultVoltageDrop FaultKind = iota
	FaultWeakSignal
	FaultCrossWiring
	FaultGroundFault
	FaultOpenCircuit
)

func (k FaultKind) String() string {
	switch k {
	case FaultVoltageDrop:
		return "VOLTAGE_DROP"
	case FaultWeakSignal:
		return "WEAK_SIGNAL"
	case FaultCrossWiring:
		return "CROSS_WIRING"
	case FaultGroundFault:
		return "GROUND_FAULT"
	case FaultOpenCircuit:
		return "OPEN_CIRCUIT"
	}
	return "UNKNOWN"
}

// FaultHypothesis is a scored diagnostic conclusion about one or more
// channels. Hypotheses are created fresh each diagnostic pass and never
// mutated; the whole set is replaced on the next pass.
type FaultHypothesis struct {
	Kind        FaultKind
	Channels    []Channel
	Confidence  float64
	Description string
	// Fixes is the suggested repair checklist, rendered with the
	// affected channel's pin and wire color substituted in.
	Fixes []string
}

// Affects reports whether the hypothesis implicates the given channel.
func (h FaultHypothesis) Affects(ch Channel) bool {
	for _, c := range h.Channels {
		if c == ch {
			return true
		}
	}
	return false
}
