package domain

import "time"

// SignalState is the discrete classification of a channel's calibrated
// voltage. It is a pure function of (voltage, calibration, thresholds)
// and is recomputed every cycle, never persisted.
type SignalState int

const (
	SignalOff SignalState = iota
	SignalWeak
	SignalOK
	SignalHigh
)

func (s SignalState) String() string {
	switch s {
	case SignalOff:
		return "OFF"
	case SignalWeak:
		return "WEAK"
	case SignalOK:
		return "OK"
	case SignalHigh:
		return "HIGH"
	}
	return "UNKNOWN"
}

// ChannelCondition annotates a channel status beyond the plain signal
// state: sensor faults, out-of-envelope readings and signal-integrity
// findings from pass-through monitoring.
type ChannelCondition int

const (
	ConditionNormal ChannelCondition = iota
	ConditionOutOfRange
	ConditionUnavailable
	ConditionDegraded
	ConditionIntermittent
)

func (c ChannelCondition) String() string {
	switch c {
	case ConditionNormal:
		return "normal"
	case ConditionOutOfRange:
		return "out_of_range"
	case ConditionUnavailable:
		return "unavailable"
	case ConditionDegraded:
		return "degraded"
	case ConditionIntermittent:
		return "intermittent"
	}
	return "unknown"
}

// OperatingMode is the device's top-level behavior. Exactly one mode is
// active at any time; it is owned by the mode controller and changed
// only by the mode-cycle transition.
type OperatingMode int

const (
	ModeVehicleTester OperatingMode = iota
	ModeTrailerTester
	ModePassThrough
)

func (m OperatingMode) String() string {
	switch m {
	case ModeVehicleTester:
		return "VEHICLE_TESTER"
	case ModeTrailerTester:
		return "TRAILER_TESTER"
	case ModePassThrough:
		return "PASS_THROUGH"
	}
	return "UNKNOWN"
}

// Next returns the mode that follows in the fixed cyclic order.
func (m OperatingMode) Next() OperatingMode {
	switch m {
	case ModeVehicleTester:
		return ModeTrailerTester
	case ModeTrailerTester:
		return ModePassThrough
	default:
		return ModeVehicleTester
	}
}

// ChannelStatus is the per-channel record consumed by display/LED sinks.
type ChannelStatus struct {
	Channel   Channel
	State     SignalState
	Volts     float64
	Condition ChannelCondition
	// Fault is an optional short annotation from the diagnostic engine,
	// empty when the channel looks healthy.
	Fault string
}

// OutputCommand asks the output driver to assert or deassert one
// test-signal relay.
type OutputCommand struct {
	Channel Channel
	On      bool
}

// AllOffCommands returns the command set that deasserts every output.
func AllOffCommands() []OutputCommand {
	cmds := make([]OutputCommand, 0, ChannelCount)
	for _, ch := range Channels {
		cmds = append(cmds, OutputCommand{Channel: ch, On: false})
	}
	return cmds
}

// CalibrationParameters converts raw sensed voltages into estimates of
// the real circuit voltage. ScaleFactor reverses the input voltage
// divider; NoiseFloor is the lowest voltage treated as a real signal.
// Invariants: ScaleFactor > 0, 0 <= NoiseFloor < lowest OK threshold.
type CalibrationParameters struct {
	ScaleFactor float64
	NoiseFloor  float64
}

// ButtonEventKind is a clean, debounced button edge.
type ButtonEventKind int

const (
	ButtonPress ButtonEventKind = iota
	ButtonRelease
	ButtonLongPress
)

func (k ButtonEventKind) String() string {
	switch k {
	case ButtonPress:
		return "press"
	case ButtonRelease:
		return "release"
	case ButtonLongPress:
		return "long_press"
	}
	return "unknown"
}

// ButtonEvent is emitted by the input debouncer at most once per
// physical press/release regardless of polling jitter.
type ButtonEvent struct {
	Kind ButtonEventKind
	At   time.Time
	// Held is the press duration, set on release and long-press events.
	Held time.Duration
}
