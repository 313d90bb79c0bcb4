// Package gpio implements the button and relay ports on the Linux GPIO
// character device. The real implementations are Linux-only; fakes back
// the simulator and tests on any platform.
package gpio

// Default pin assignments (BCM numbering).
const (
	// Front-panel buttons, wired active-low with internal pull-ups.
	DefaultModePin = 24
	DefaultTestPin = 25
)

// DefaultRelayPins drive the six test-signal relays, active-high, in
// channel order (brake, tail, left, right, aux, reverse).
var DefaultRelayPins = []int{6, 9, 10, 11, 12, 13}
