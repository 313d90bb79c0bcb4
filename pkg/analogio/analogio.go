// Package analogio provides single-ended analog voltage acquisition over
// multi-board frontends. Two backends exist: ADS1115 16-bit converters on
// I2C (the handheld frontend) and a serial Modbus RTU analog input module
// (bench use). Readers report the voltage at the converter input; callers
// apply any divider scaling themselves.
package analogio

// Input addresses one single-ended channel on one converter board.
type Input struct {
	Board   int
	Channel int
}

// Reader acquires one voltage per call from an addressed input.
type Reader interface {
	Open() error
	Close() error
	ReadVolts(in Input) (float64, error)
}

// ChannelsPerBoard is fixed by the ADS1115 (4 single-ended inputs) and
// mirrored by the Modbus register layout.
const ChannelsPerBoard = 4
