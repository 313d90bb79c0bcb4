package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sevenway/internal/core/domain"
)

func TestCalibrateAppliesScaleFactor(t *testing.T) {

	require := require.New(t)

	c, err := NewCalibrator(domain.CalibrationParameters{ScaleFactor: 4.7, NoiseFloor: 0.3}, 9.0)
	require.NoError(err)

	v, err := c.Calibrate(domain.ChannelTail, 2.553)
	require.NoError(err)
	assert.InDelta(t, 12.0, v, 0.01)
}

func TestCalibrateReportsOutOfRange(t *testing.T) {

	require := require.New(t)

	c, err := NewCalibrator(domain.CalibrationParameters{ScaleFactor: 4.7, NoiseFloor: 0.3}, 9.0)
	require.NoError(err)

	// scaled value is still returned so callers can log it
	v, err := c.Calibrate(domain.ChannelTail, 5.0)
	require.ErrorIs(err, domain.ErrOutOfRangeVoltage)
	assert.InDelta(t, 23.5, v, 0.01)

	v, err = c.Calibrate(domain.ChannelTail, 0.0)
	require.NoError(err)
	assert.Equal(t, 0.0, v)
}

func TestRejectsInvalidCalibration(t *testing.T) {

	require := require.New(t)

	_, err := NewCalibrator(domain.CalibrationParameters{ScaleFactor: 0}, 9.0)
	require.ErrorIs(err, domain.ErrInvalidCalibration)

	_, err = NewCalibrator(domain.CalibrationParameters{ScaleFactor: 4.7, NoiseFloor: 9.0}, 9.0)
	require.ErrorIs(err, domain.ErrInvalidCalibration)

	c, err := NewCalibrator(domain.CalibrationParameters{ScaleFactor: 4.7, NoiseFloor: 0.3}, 9.0)
	require.NoError(err)

	// rejected update retains the prior value
	err = c.Set(nil, domain.CalibrationParameters{ScaleFactor: -1})
	require.ErrorIs(err, domain.ErrInvalidCalibration)
	assert.Equal(t, 4.7, c.Get(nil).ScaleFactor)
}

func TestPerChannelCalibrationOverride(t *testing.T) {

	require := require.New(t)

	c, err := NewCalibrator(domain.CalibrationParameters{ScaleFactor: 4.7, NoiseFloor: 0.3}, 9.0)
	require.NoError(err)

	ch := domain.ChannelBrake
	require.NoError(c.Set(&ch, domain.CalibrationParameters{ScaleFactor: 5.0, NoiseFloor: 0.5}))

	assert.Equal(t, 5.0, c.Get(&ch).ScaleFactor)
	assert.Equal(t, 0.5, c.NoiseFloor(ch))

	// other channels keep the global default
	other := domain.ChannelTail
	assert.Equal(t, 4.7, c.Get(&other).ScaleFactor)
}
