package analog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sevenway/internal/core/domain"
	"sevenway/pkg/analogio"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openSampler(t *testing.T) (*Sampler, *analogio.TestReader) {
	t.Helper()
	reader := analogio.NewTestReader()
	s := NewSampler(reader)
	require.NoError(t, s.Open())
	return s, reader
}

func TestReadAllMapsChannels(t *testing.T) {
	require := require.New(t)
	s, reader := openSampler(t)

	reader.SetVolts(analogio.Input{Board: 0, Channel: 0}, 2.50)
	reader.SetVolts(analogio.Input{Board: 0, Channel: 1}, 2.55)
	reader.SetVolts(analogio.Input{Board: 1, Channel: 1}, 1.20)

	samples, err := s.ReadAll()
	require.NoError(err)
	require.Len(samples, domain.ChannelCount)

	require.Equal(2.50, samples[domain.ChannelBrake].Volts)
	require.Equal(2.55, samples[domain.ChannelTail].Volts)
	require.Equal(1.20, samples[domain.ChannelReverse].Volts)
	require.Equal(0.0, samples[domain.ChannelAux].Volts)
	for _, ch := range domain.Channels {
		require.False(samples[ch].Unavailable)
	}
}

func TestSingleChannelFailureIsUnavailable(t *testing.T) {
	require := require.New(t)
	s, reader := openSampler(t)

	reader.SetError(analogio.Input{Board: 1, Channel: 0}, errors.New("channel dead"))
	reader.SetVolts(analogio.Input{Board: 0, Channel: 2}, 2.0)

	samples, err := s.ReadAll()
	require.NoError(err)

	require.True(samples[domain.ChannelAux].Unavailable)
	require.False(samples[domain.ChannelLeftTurn].Unavailable)
	require.Equal(2.0, samples[domain.ChannelLeftTurn].Volts)
}

func TestAllChannelsFailedAllUnavailable(t *testing.T) {
	require := require.New(t)
	s, reader := openSampler(t)

	reader.FailAll(errors.New("bus stuck"))

	samples, err := s.ReadAll()
	require.NoError(err)
	require.Len(samples, domain.ChannelCount)
	for _, ch := range domain.Channels {
		require.True(samples[ch].Unavailable)
	}
}
