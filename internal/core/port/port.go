package port

import (
	"sevenway/internal/core/domain"
)

// VoltageSampler yields one calibratable raw voltage per channel per
// call. A channel read may fail individually; the sampler reports it as
// Unavailable instead of failing the whole pass.
type VoltageSampler interface {
	Open() error
	Close() error
	ReadAll() (domain.RawSamples, error)
}

// OutputDriver actuates the six test-signal outputs. Implementations
// must leave every output deasserted on Close.
type OutputDriver interface {
	Open() error
	Close() error
	Set(ch domain.Channel, on bool) error
	AllOff() error
}

// ButtonReader returns the current raw (undebounced) level of the two
// control buttons. True means pressed.
type ButtonReader interface {
	Open() error
	Close() error
	Read() (mode bool, test bool, err error)
}

// StatusSink renders per-channel status records plus the current
// operating mode on some indicator surface (OLED text, LED strip, TUI).
type StatusSink interface {
	ShowSplash(name, version string)
	ShowMode(mode domain.OperatingMode)
	ShowChannel(status domain.ChannelStatus, mode domain.OperatingMode)
	ShowFaults(report string, faults []domain.FaultHypothesis)
	ShowDiagnosticsUnavailable()
	Clear()
}
