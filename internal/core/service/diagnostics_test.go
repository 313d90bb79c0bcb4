package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sevenway/internal/config"
	"sevenway/internal/core/domain"
)

func testDiagConfig() config.DiagnosticsConfig {
	return config.DiagnosticsConfig{
		NominalVolts:             12.0,
		NormalMinVolts:           11.0,
		WeakMinVolts:             9.0,
		GroundFaultDropVolts:     2.0,
		GroundFaultMaxDropVolts:  9.0,
		CrossWireSimilarityVolts: 1.0,
		WeakPersistSamples:       4,
		CrossWireWindow:          2,
		BaselineWindow:           4,
		HistoryCapacity:          16,
	}
}

// snapOf builds a snapshot from per-channel voltages, deriving states
// from the standard bands. Channels absent from the map read 0V (OFF).
func snapOf(volts map[domain.Channel]float64) domain.Snapshot {
	snap := domain.Snapshot{At: time.Unix(0, 0), Readings: map[domain.Channel]domain.Reading{}}
	for _, ch := range domain.Channels {
		v := volts[ch]
		var state domain.SignalState
		switch {
		case v < 0.3:
			state = domain.SignalOff
		case v < 9.0:
			state = domain.SignalWeak
		case v < 14.5:
			state = domain.SignalOK
		default:
			state = domain.SignalHigh
		}
		snap.Readings[ch] = domain.Reading{Volts: v, State: state}
	}
	return snap
}

func allChannelsAt(v float64) map[domain.Channel]float64 {
	m := map[domain.Channel]float64{}
	for _, ch := range domain.Channels {
		m[ch] = v
	}
	return m
}

func kinds(faults []domain.FaultHypothesis) []domain.FaultKind {
	ks := make([]domain.FaultKind, 0, len(faults))
	for _, f := range faults {
		ks = append(ks, f.Kind)
	}
	return ks
}

func TestCleanSnapshotYieldsNoFaults(t *testing.T) {

	e := NewEngine(testDiagConfig())

	faults := e.Diagnose(RuleInput{Snapshot: snapOf(allChannelsAt(12.0))})
	assert.Empty(t, faults)

	// mixed active/inactive channels, all healthy
	faults = e.Diagnose(RuleInput{Snapshot: snapOf(map[domain.Channel]float64{
		domain.ChannelBrake:   12.0,
		domain.ChannelTail:    12.0,
		domain.ChannelAux:     13.0,
		domain.ChannelReverse: 0.0,
	})})
	assert.Empty(t, faults)
}

func TestVoltageDropOnSingleChannel(t *testing.T) {

	require := require.New(t)

	e := NewEngine(testDiagConfig())

	volts := allChannelsAt(12.0)
	volts[domain.ChannelTail] = 10.0

	faults := e.Diagnose(RuleInput{Snapshot: snapOf(volts)})
	require.Len(faults, 1)
	assert.Equal(t, domain.FaultVoltageDrop, faults[0].Kind)
	assert.Equal(t, []domain.Channel{domain.ChannelTail}, faults[0].Channels)
	assert.InDelta(t, 0.5, faults[0].Confidence, 0.001)
	assert.NotEmpty(t, faults[0].Fixes)
}

func TestVoltageDropNeverFiresNearNominal(t *testing.T) {

	e := NewEngine(testDiagConfig())

	// every channel within 0.5V of 12.0
	volts := map[domain.Channel]float64{}
	for i, ch := range domain.Channels {
		volts[ch] = 11.6 + float64(i)*0.15
	}
	faults := e.Diagnose(RuleInput{Snapshot: snapOf(volts)})
	assert.NotContains(t, kinds(faults), domain.FaultVoltageDrop)
}

func TestVoltageDropSuppressedWhenOthersAlsoLow(t *testing.T) {

	e := NewEngine(testDiagConfig())

	// two channels sagging is not the single-circuit signature
	volts := allChannelsAt(12.0)
	volts[domain.ChannelTail] = 10.0
	volts[domain.ChannelBrake] = 10.0

	faults := e.Diagnose(RuleInput{Snapshot: snapOf(volts)})
	assert.NotContains(t, kinds(faults), domain.FaultVoltageDrop)
}

func TestWeakSignalRequiresPersistence(t *testing.T) {

	require := require.New(t)

	cfg := testDiagConfig()
	e := NewEngine(cfg)
	h := NewHistory(cfg.HistoryCapacity)

	volts := allChannelsAt(0.0)
	volts[domain.ChannelLeftTurn] = 7.0
	snap := snapOf(volts)

	// not enough history yet
	faults := e.Diagnose(RuleInput{Snapshot: snap, History: h})
	assert.NotContains(t, kinds(faults), domain.FaultWeakSignal)

	for i := 0; i < cfg.WeakPersistSamples; i++ {
		h.Record(snap)
	}

	faults = e.Diagnose(RuleInput{Snapshot: snap, History: h})
	require.Contains(kinds(faults), domain.FaultWeakSignal)
	for _, f := range faults {
		if f.Kind == domain.FaultWeakSignal {
			assert.Equal(t, []domain.Channel{domain.ChannelLeftTurn}, f.Channels)
			assert.Greater(t, f.Confidence, 0.0)
		}
	}
}

func TestCrossWiringNeedsSimultaneityWindow(t *testing.T) {

	require := require.New(t)

	e := NewEngine(testDiagConfig())

	volts := map[domain.Channel]float64{
		domain.ChannelLeftTurn:  12.1,
		domain.ChannelRightTurn: 12.0,
	}
	snap := snapOf(volts)

	// first simultaneous pass is below the window
	faults := e.Diagnose(RuleInput{Snapshot: snap})
	assert.NotContains(t, kinds(faults), domain.FaultCrossWiring)

	// second consecutive pass fires
	faults = e.Diagnose(RuleInput{Snapshot: snap})
	require.Contains(kinds(faults), domain.FaultCrossWiring)
	for _, f := range faults {
		if f.Kind == domain.FaultCrossWiring {
			assert.ElementsMatch(t, []domain.Channel{domain.ChannelLeftTurn, domain.ChannelRightTurn}, f.Channels)
			assert.Greater(t, f.Confidence, 0.8)
		}
	}

	// one pass with a turn channel off resets the streak
	faults = e.Diagnose(RuleInput{Snapshot: snapOf(map[domain.Channel]float64{domain.ChannelLeftTurn: 12.0})})
	assert.NotContains(t, kinds(faults), domain.FaultCrossWiring)
	faults = e.Diagnose(RuleInput{Snapshot: snap})
	assert.NotContains(t, kinds(faults), domain.FaultCrossWiring)
}

func TestGroundFaultFromBaselineDrop(t *testing.T) {

	require := require.New(t)

	cfg := testDiagConfig()
	e := NewEngine(cfg)
	h := NewHistory(cfg.HistoryCapacity)

	// establish a healthy 12V baseline on all channels
	for i := 0; i < cfg.BaselineWindow; i++ {
		h.Record(snapOf(allChannelsAt(12.0)))
	}

	faults := e.Diagnose(RuleInput{Snapshot: snapOf(allChannelsAt(4.0)), History: h})
	require.NotEmpty(faults)
	assert.Equal(t, domain.FaultGroundFault, faults[0].Kind)
	assert.Greater(t, faults[0].Confidence, 0.5)
	assert.ElementsMatch(t, domain.Channels, faults[0].Channels)

	// the ground fault masks per-channel voltage rules
	assert.Len(t, faults, 1)
}

func TestGroundFaultNeedsEveryChannelSagging(t *testing.T) {

	cfg := testDiagConfig()
	e := NewEngine(cfg)
	h := NewHistory(cfg.HistoryCapacity)

	for i := 0; i < cfg.BaselineWindow; i++ {
		h.Record(snapOf(allChannelsAt(12.0)))
	}

	// one channel still healthy rules out the shared ground
	volts := allChannelsAt(4.0)
	volts[domain.ChannelAux] = 12.0
	faults := e.Diagnose(RuleInput{Snapshot: snapOf(volts), History: h})
	assert.NotContains(t, kinds(faults), domain.FaultGroundFault)
}

func TestOpenCircuitOnDrivenChannel(t *testing.T) {

	require := require.New(t)

	e := NewEngine(testDiagConfig())

	volts := map[domain.Channel]float64{domain.ChannelBrake: 0.0}
	in := RuleInput{
		Snapshot:       snapOf(volts),
		DrivenChannels: []domain.Channel{domain.ChannelBrake},
		Mode:           domain.ModeTrailerTester,
	}

	faults := e.Diagnose(in)
	require.Contains(kinds(faults), domain.FaultOpenCircuit)

	// the same reading outside trailer mode is just an idle channel
	in.Mode = domain.ModeVehicleTester
	faults = e.Diagnose(in)
	assert.NotContains(t, kinds(faults), domain.FaultOpenCircuit)
}

func TestUnavailableChannelsAreExcluded(t *testing.T) {

	e := NewEngine(testDiagConfig())

	snap := snapOf(allChannelsAt(12.0))
	snap.Readings[domain.ChannelLeftTurn] = domain.Reading{Unavailable: true}
	snap.Readings[domain.ChannelRightTurn] = domain.Reading{Unavailable: true}

	faults := e.Diagnose(RuleInput{Snapshot: snap})
	assert.Empty(t, faults)
	faults = e.Diagnose(RuleInput{Snapshot: snap})
	assert.Empty(t, faults)
}

func TestHypothesesOrderedByConfidence(t *testing.T) {

	require := require.New(t)

	e := NewEngine(testDiagConfig())

	// a voltage drop on tail plus both turn channels active together
	volts := allChannelsAt(12.0)
	volts[domain.ChannelTail] = 10.5
	volts[domain.ChannelLeftTurn] = 12.1
	snap := snapOf(volts)

	e.Diagnose(RuleInput{Snapshot: snap})
	faults := e.Diagnose(RuleInput{Snapshot: snap})

	require.GreaterOrEqual(len(faults), 2)
	assert.Equal(t, domain.FaultCrossWiring, faults[0].Kind)
	for i := 1; i < len(faults); i++ {
		assert.GreaterOrEqual(t, faults[i-1].Confidence, faults[i].Confidence)
	}
}

func TestFormatReport(t *testing.T) {

	e := NewEngine(testDiagConfig())

	assert.Equal(t, "No faults detected - all signals normal", FormatReport(nil))

	volts := allChannelsAt(12.0)
	volts[domain.ChannelTail] = 10.0
	faults := e.Diagnose(RuleInput{Snapshot: snapOf(volts)})

	report := FormatReport(faults)
	assert.Contains(t, report, "FAULT DIAGNOSIS REPORT")
	assert.Contains(t, report, "VOLTAGE_DROP")
	assert.Contains(t, report, "Suggested fixes:")
	assert.Contains(t, report, "% confidence")
}
