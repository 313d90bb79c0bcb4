package domain

import "errors"

var (
	// ErrInvalidCalibration rejects a non-positive scale factor or a
	// noise floor outside its invariant. The prior value is retained.
	ErrInvalidCalibration = errors.New("invalid calibration")

	// ErrSensorUnavailable marks a failed channel read. It never stops
	// the control loop; the channel is excluded from multi-channel rules
	// and flagged individually.
	ErrSensorUnavailable = errors.New("sensor unavailable")

	// ErrOutOfRangeVoltage marks a reading outside the supported sensing
	// envelope. Reported as a distinct condition, never silently clamped.
	ErrOutOfRangeVoltage = errors.New("voltage out of sensing range")

	// ErrSequenceAborted is the expected result of preempting a running
	// test sequence (mode change or explicit abort). Not a failure.
	ErrSequenceAborted = errors.New("test sequence aborted")
)
