package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sevenway/internal/core/domain"
)

func snapshotAllAt(volts float64, state domain.SignalState) domain.Snapshot {
	snap := domain.Snapshot{At: time.Unix(0, 0), Readings: map[domain.Channel]domain.Reading{}}
	for _, ch := range domain.Channels {
		snap.Readings[ch] = domain.Reading{Volts: volts, State: state}
	}
	return snap
}

func TestHistoryEvictsOldest(t *testing.T) {

	h := NewHistory(3)
	ch := domain.ChannelTail

	for i := 0; i < 5; i++ {
		h.Record(snapshotAllAt(float64(i), domain.SignalOK))
	}

	assert.Equal(t, 3, h.Len(ch))
	mean, ok := h.MeanLastK(ch, 3)
	require.True(t, ok)
	assert.InDelta(t, 3.0, mean, 0.001) // samples 2, 3, 4
}

func TestHistorySkipsUnavailableChannels(t *testing.T) {

	h := NewHistory(8)
	snap := snapshotAllAt(12.0, domain.SignalOK)
	snap.Readings[domain.ChannelAux] = domain.Reading{Unavailable: true}

	h.Record(snap)

	assert.Equal(t, 1, h.Len(domain.ChannelTail))
	assert.Equal(t, 0, h.Len(domain.ChannelAux))
}

func TestBaselineMeanRequiresFullWindow(t *testing.T) {

	h := NewHistory(8)
	ch := domain.ChannelTail

	for i := 0; i < 3; i++ {
		h.Record(snapshotAllAt(12.0, domain.SignalOK))
	}

	_, ok := h.BaselineMean(ch, 4)
	assert.False(t, ok)

	h.Record(snapshotAllAt(12.0, domain.SignalOK))
	mean, ok := h.BaselineMean(ch, 4)
	require.True(t, ok)
	assert.InDelta(t, 12.0, mean, 0.001)
}

func TestTrendDetection(t *testing.T) {

	degrading := NewHistory(16)
	for i := 0; i < 10; i++ {
		degrading.Record(snapshotAllAt(12.0-float64(i)*0.3, domain.SignalOK))
	}
	assert.Equal(t, TrendDegrading, degrading.Trend(domain.ChannelTail))

	stable := NewHistory(16)
	for i := 0; i < 10; i++ {
		stable.Record(snapshotAllAt(12.0, domain.SignalOK))
	}
	assert.Equal(t, TrendStable, stable.Trend(domain.ChannelTail))

	short := NewHistory(16)
	short.Record(snapshotAllAt(12.0, domain.SignalOK))
	assert.Equal(t, TrendUnknown, short.Trend(domain.ChannelTail))
}

func TestIntermittentFaultDetection(t *testing.T) {

	h := NewHistory(32)

	weak := []domain.FaultHypothesis{{Kind: domain.FaultWeakSignal}}

	// fault on every third pass of twelve: intermittent
	for i := 0; i < 12; i++ {
		if i%3 == 0 {
			h.RecordFaults(weak)
		} else {
			h.RecordFaults(nil)
		}
	}
	assert.True(t, h.IsIntermittent(domain.FaultWeakSignal))

	// a fault on every pass is persistent, not intermittent
	h.Reset()
	for i := 0; i < 12; i++ {
		h.RecordFaults(weak)
	}
	assert.False(t, h.IsIntermittent(domain.FaultWeakSignal))

	// too few passes say nothing
	h.Reset()
	for i := 0; i < 5; i++ {
		h.RecordFaults(weak)
	}
	assert.False(t, h.IsIntermittent(domain.FaultWeakSignal))
}
