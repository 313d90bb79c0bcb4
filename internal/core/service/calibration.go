package service

import (
	"fmt"

	"sevenway/internal/core/domain"
)

// Supported sensing envelope after calibration. Readings outside it are
// reported as out-of-range, never silently clamped, so a caller can tell
// a real 0V circuit from a sensor fault.
const (
	SenseMinVolts = 0.0
	SenseMaxVolts = 18.0
)

// Calibrator converts raw sensed voltages into estimates of the real
// circuit voltage. Parameters are per-channel with a device-global
// default, matching the two-ADC-board input stage.
type Calibrator struct {
	global     domain.CalibrationParameters
	perChannel map[domain.Channel]domain.CalibrationParameters
	// okMinVolts is the lowest OK threshold; the noise floor must stay
	// strictly below it.
	okMinVolts float64
}

func NewCalibrator(global domain.CalibrationParameters, okMinVolts float64) (*Calibrator, error) {
	c := &Calibrator{
		perChannel: map[domain.Channel]domain.CalibrationParameters{},
		okMinVolts: okMinVolts,
	}
	if err := c.validate(global); err != nil {
		return nil, err
	}
	c.global = global
	return c, nil
}

func (c *Calibrator) validate(p domain.CalibrationParameters) error {
	if p.ScaleFactor <= 0 {
		return fmt.Errorf("%w: scale factor %f must be > 0", domain.ErrInvalidCalibration, p.ScaleFactor)
	}
	if p.NoiseFloor < 0 || p.NoiseFloor >= c.okMinVolts {
		return fmt.Errorf("%w: noise floor %f must be in [0, %f)", domain.ErrInvalidCalibration, p.NoiseFloor, c.okMinVolts)
	}
	return nil
}

// Calibrate scales a raw reading into circuit volts. The scaled value is
// returned even when out of range so callers can log it.
func (c *Calibrator) Calibrate(ch domain.Channel, raw float64) (float64, error) {
	volts := raw * c.Get(&ch).ScaleFactor
	if volts < SenseMinVolts || volts > SenseMaxVolts {
		return volts, fmt.Errorf("%w: %s reads %.2fV", domain.ErrOutOfRangeVoltage, ch, volts)
	}
	return volts, nil
}

// Set updates calibration for one channel, or the device-global default
// when ch is nil. Invalid parameters are rejected and the prior value is
// retained.
func (c *Calibrator) Set(ch *domain.Channel, p domain.CalibrationParameters) error {
	if err := c.validate(p); err != nil {
		return err
	}
	if ch == nil {
		c.global = p
	} else {
		c.perChannel[*ch] = p
	}
	return nil
}

// Get returns the effective parameters for a channel, or the global
// default when ch is nil or has no override.
func (c *Calibrator) Get(ch *domain.Channel) domain.CalibrationParameters {
	if ch != nil {
		if p, ok := c.perChannel[*ch]; ok {
			return p
		}
	}
	return c.global
}

func (c *Calibrator) NoiseFloor(ch domain.Channel) float64 {
	return c.Get(&ch).NoiseFloor
}
