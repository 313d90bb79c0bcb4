package sink

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"sevenway/internal/core/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestConsoleSinkChannelLine(t *testing.T) {
	require := require.New(t)

	var buf strings.Builder
	s := NewConsoleSink(&buf)

	s.ShowChannel(domain.ChannelStatus{
		Channel:   domain.ChannelTail,
		State:     domain.SignalOK,
		Volts:     12.4,
		Condition: domain.ConditionNormal,
	}, domain.ModeVehicleTester)

	line := buf.String()
	require.Contains(line, "TAIL")
	require.Contains(line, "12.4V")
	require.Contains(line, "OK")
	require.NotContains(line, "[")
}

func TestConsoleSinkUnavailableChannel(t *testing.T) {
	require := require.New(t)

	var buf strings.Builder
	s := NewConsoleSink(&buf)

	s.ShowChannel(domain.ChannelStatus{
		Channel:   domain.ChannelAux,
		Condition: domain.ConditionUnavailable,
	}, domain.ModePassThrough)

	require.Contains(buf.String(), "SENSOR FAULT")
	require.NotContains(buf.String(), "0.0V")
}

func TestConsoleSinkFaultAnnotation(t *testing.T) {
	require := require.New(t)

	var buf strings.Builder
	s := NewConsoleSink(&buf)

	s.ShowChannel(domain.ChannelStatus{
		Channel:   domain.ChannelLeftTurn,
		State:     domain.SignalWeak,
		Volts:     6.2,
		Condition: domain.ConditionDegraded,
		Fault:     "WEAK_SIGNAL",
	}, domain.ModePassThrough)

	out := buf.String()
	require.Contains(out, "[degraded]")
	require.Contains(out, "fault: WEAK_SIGNAL")
}

func TestConsoleSinkModeAndSplash(t *testing.T) {
	require := require.New(t)

	var buf strings.Builder
	s := NewConsoleSink(&buf)

	s.ShowSplash("sevenway", "1.0.0")
	s.ShowMode(domain.ModeTrailerTester)

	out := buf.String()
	require.Contains(out, "sevenway 1.0.0")
	require.Contains(out, "MODE: TRAILER_TESTER")
}
