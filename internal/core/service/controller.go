package service

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sevenway/internal/config"
	"sevenway/internal/core/domain"
)

// PollInput is everything one control-loop tick hands to the controller.
// Button levels arrive every tick; Samples is nil on non-sensing ticks.
type PollInput struct {
	Now time.Time

	ModePressed bool
	TestPressed bool

	Samples domain.RawSamples
}

// SequenceStatus describes the test-sequence run for consumers. RunID
// groups everything belonging to one sequencer run.
type SequenceStatus struct {
	RunID     uuid.UUID
	Active    bool
	Completed bool
	Aborted   bool
	Name      string
	Step      int
	StepCount int
	Channels  []domain.Channel
}

// PollResult is the controller's full output for one tick. Commands must
// be applied to the output driver before anything else is acted on;
// everything else is display/telemetry material.
type PollResult struct {
	Commands []domain.OutputCommand

	Mode        domain.OperatingMode
	ModeChanged bool

	Statuses        []domain.ChannelStatus
	StatusesUpdated bool

	Faults        []domain.FaultHypothesis
	Report        string
	FaultsUpdated bool

	Sequence SequenceStatus

	DiagnosticsAvailable bool
	DiagnosticsChanged   bool
}

// ModeController is the top-level state machine. It owns the operating
// mode, debounces both buttons, runs calibration/classification/
// diagnosis on sensing ticks and drives the sequencer in trailer mode.
// It has no goroutines and no clocks of its own; every PollCycle is a
// pure state advance against the supplied timestamp, so behavior is
// fully deterministic under test.
type ModeController struct {
	cfg    *config.Config
	logger *zap.SugaredLogger

	calibrator *Calibrator
	classifier *Classifier
	engine     *Engine
	history    *History
	sequencer  *Sequencer
	sequences  map[string]Sequence

	modeButton *Debouncer
	testButton *Debouncer

	mode         domain.OperatingMode
	lastSnapshot domain.Snapshot
	lastFaults   []domain.FaultHypothesis
	diagAvail    bool
	diagPrimed   bool
}

// NewModeController builds the controller from config. A nil sequences
// map selects the built-in test patterns.
func NewModeController(cfg *config.Config, sequences map[string]Sequence, logger *zap.Logger) (*ModeController, error) {
	okMin := cfg.Classifier.OKMinVolts
	if cfg.Classifier.BrakeOKMinVolts > 0 && cfg.Classifier.BrakeOKMinVolts < okMin {
		okMin = cfg.Classifier.BrakeOKMinVolts
	}
	calibrator, err := NewCalibrator(domain.CalibrationParameters{
		ScaleFactor: cfg.Calibration.ScaleFactor,
		NoiseFloor:  cfg.Calibration.NoiseFloor,
	}, okMin)
	if err != nil {
		return nil, err
	}

	classifier := NewClassifier(Thresholds{
		OKMinVolts:   cfg.Classifier.OKMinVolts,
		HighMinVolts: cfg.Classifier.HighMinVolts,
	})
	if cfg.Classifier.BrakeOKMinVolts > 0 {
		classifier.Override(domain.ChannelBrake, Thresholds{
			OKMinVolts:   cfg.Classifier.BrakeOKMinVolts,
			HighMinVolts: cfg.Classifier.HighMinVolts,
		})
	}

	if sequences == nil {
		sequences = BuiltinSequences()
	}

	debounce := time.Duration(cfg.Buttons.DebounceMillis) * time.Millisecond
	longPress := time.Duration(cfg.Buttons.LongPressMillis) * time.Millisecond

	return &ModeController{
		cfg:        cfg,
		logger:     logger.Sugar(),
		calibrator: calibrator,
		classifier: classifier,
		engine:     NewEngine(cfg.Diagnostics),
		history:    NewHistory(cfg.Diagnostics.HistoryCapacity),
		sequencer:  NewSequencer(time.Duration(cfg.Sequencer.GapMillis) * time.Millisecond),
		sequences:  sequences,
		modeButton: NewDebouncer(debounce, longPress),
		testButton: NewDebouncer(debounce, longPress),
		mode:       domain.ModeVehicleTester,
	}, nil
}

// Mode returns the current operating mode.
func (m *ModeController) Mode() domain.OperatingMode {
	return m.mode
}

// PollCycle advances the controller by one tick. It is the single
// integration point: buttons first, then mode transitions, then the
// sequencer, then sensing. Output commands accumulate in order, so the
// all-off of a mode change always precedes any later assertion.
func (m *ModeController) PollCycle(in PollInput) PollResult {
	res := PollResult{Mode: m.mode, DiagnosticsAvailable: m.diagAvail}

	modeEvents := m.modeButton.Sample(in.ModePressed, in.Now)
	testEvents := m.testButton.Sample(in.TestPressed, in.Now)

	for _, ev := range modeEvents {
		if isShortPress(ev, m.longPress()) {
			m.cycleMode(&res)
		}
	}

	for _, ev := range testEvents {
		switch {
		case ev.Kind == domain.ButtonLongPress:
			m.handleLongPress(in.Now, &res)
		case isShortPress(ev, m.longPress()):
			m.handleShortPress(in.Now, &res)
		}
	}

	if m.mode == domain.ModeTrailerTester && m.sequencer.Active() {
		tick := m.sequencer.Tick(in.Now)
		res.Commands = append(res.Commands, tick.Commands...)
		if tick.Completed {
			res.Sequence.Completed = true
			m.logger.Infow("test sequence complete", "sequence", m.sequencer.SequenceName())
		}
	}

	if in.Samples != nil {
		m.sense(in, &res)
	}

	m.fillSequenceStatus(&res)
	res.Mode = m.mode
	return res
}

func (m *ModeController) longPress() time.Duration {
	return time.Duration(m.cfg.Buttons.LongPressMillis) * time.Millisecond
}

// isShortPress treats a release held for less than the long-press
// threshold as a short press; a long press already fired its own event.
func isShortPress(ev domain.ButtonEvent, longPress time.Duration) bool {
	return ev.Kind == domain.ButtonRelease && ev.Held < longPress
}

// cycleMode advances to the next mode and performs the transition
// contract: outputs off, sequence aborted, per-channel status reset.
func (m *ModeController) cycleMode(res *PollResult) {
	cmds, aborted := m.sequencer.Abort()
	res.Commands = append(res.Commands, cmds...)
	if aborted != nil {
		m.logger.Infow("test sequence preempted", "reason", aborted)
	}
	m.classifier.Reset()
	m.engine.Reset()
	m.lastSnapshot = domain.Snapshot{}
	m.lastFaults = nil

	m.mode = m.mode.Next()
	res.ModeChanged = true
	res.Sequence.Aborted = true
	res.Statuses = idleStatuses()
	res.StatusesUpdated = true
	m.logger.Infow("mode change", "mode", m.mode)
}

func (m *ModeController) handleShortPress(now time.Time, res *PollResult) {
	switch m.mode {
	case domain.ModeTrailerTester:
		name := m.cfg.Sequencer.ShortPressSequence
		seq, ok := m.sequences[name]
		if !ok {
			m.logger.Warnw("unknown test sequence, using full", "sequence", name)
			seq = FullSequence()
		}
		m.startSequence(seq, 1, now, res)
	default:
		// vehicle and pass-through: one-shot detailed diagnostic read
		faults, report := m.ForceDiagnosticPass()
		res.Faults = faults
		res.Report = report
		res.FaultsUpdated = true
	}
}

// handleLongPress starts the full repeated test run, but only in trailer
// mode: the other modes guarantee outputs stay off.
func (m *ModeController) handleLongPress(now time.Time, res *PollResult) {
	if m.mode != domain.ModeTrailerTester {
		m.logger.Warnw("full test refused, outputs are disabled in this mode", "mode", m.mode)
		return
	}
	m.startSequence(FullSequence(), m.cfg.Sequencer.FullPasses, now, res)
}

func (m *ModeController) startSequence(seq Sequence, passes int, now time.Time, res *PollResult) {
	_, cmds := m.sequencer.Start(seq, passes, now)
	res.Commands = append(res.Commands, cmds...)
	m.logger.Infow("test sequence started", "sequence", seq.Name, "passes", passes)
}

// sense runs one acquisition pass: calibrate, classify, diagnose, then
// record. Diagnosis runs before the snapshot enters the history, so
// ground-fault baselines never include the reading under test.
func (m *ModeController) sense(in PollInput, res *PollResult) {
	snap := domain.Snapshot{At: in.Now, Readings: map[domain.Channel]domain.Reading{}}

	for _, ch := range domain.Channels {
		raw, ok := in.Samples[ch]
		if !ok || raw.Unavailable {
			snap.Readings[ch] = domain.Reading{
				Sample:      domain.ChannelSample{Channel: ch, At: in.Now},
				Unavailable: true,
			}
			continue
		}

		volts, err := m.calibrator.Calibrate(ch, raw.Volts)
		outOfRange := err != nil
		if outOfRange {
			m.logger.Debugw("out of range reading", "channel", ch, "volts", volts)
		}
		noiseFloor := m.calibrator.NoiseFloor(ch)
		snap.Readings[ch] = domain.Reading{
			Sample:     domain.ChannelSample{Channel: ch, Raw: raw.Volts, At: in.Now},
			Volts:      volts,
			State:      m.classifier.Classify(ch, volts, noiseFloor),
			OutOfRange: outOfRange,
		}
	}

	faults := m.engine.Diagnose(RuleInput{
		Snapshot:       snap,
		History:        m.history,
		DrivenChannels: m.sequencer.ActiveChannels(),
		Mode:           m.mode,
	})
	// statuses are built before the snapshot enters the history, so the
	// degraded check compares against a baseline of prior samples only
	res.Statuses = m.buildStatuses(snap, faults)
	res.StatusesUpdated = true

	m.history.RecordFaults(faults)
	m.history.Record(snap)

	m.lastSnapshot = snap
	m.lastFaults = faults
	res.Faults = faults
	res.Report = FormatReport(faults)
	res.FaultsUpdated = true

	avail := snap.AvailableCount() > 0
	if avail != m.diagAvail || !m.diagPrimed {
		res.DiagnosticsChanged = true
		m.diagPrimed = true
		if !avail {
			m.logger.Errorw("all channels unavailable, diagnostics suspended")
		}
	}
	m.diagAvail = avail
	res.DiagnosticsAvailable = avail
}

// buildStatuses derives the per-channel display records. Conditions are
// checked in severity order: sensor faults beat signal findings.
func (m *ModeController) buildStatuses(snap domain.Snapshot, faults []domain.FaultHypothesis) []domain.ChannelStatus {
	statuses := make([]domain.ChannelStatus, 0, domain.ChannelCount)
	for _, ch := range domain.Channels {
		r := snap.Readings[ch]
		st := domain.ChannelStatus{Channel: ch, State: r.State, Volts: r.Volts}

		switch {
		case r.Unavailable:
			st.Condition = domain.ConditionUnavailable
		case r.OutOfRange:
			st.Condition = domain.ConditionOutOfRange
		case m.isDegraded(ch, r):
			st.Condition = domain.ConditionDegraded
		case m.isIntermittent(ch, faults):
			st.Condition = domain.ConditionIntermittent
		}

		// annotate with the strongest hypothesis naming this channel
		for _, f := range faults {
			if f.Affects(ch) {
				st.Fault = f.Kind.String()
				break
			}
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// isDegraded implements the pass-through integrity check: a channel
// classifying WEAK while its recent baseline says it should be OK.
func (m *ModeController) isDegraded(ch domain.Channel, r domain.Reading) bool {
	if m.mode != domain.ModePassThrough || r.State != domain.SignalWeak {
		return false
	}
	baseline, ok := m.history.BaselineMean(ch, m.cfg.Diagnostics.BaselineWindow)
	return ok && baseline >= m.cfg.Diagnostics.NormalMinVolts
}

func (m *ModeController) isIntermittent(ch domain.Channel, faults []domain.FaultHypothesis) bool {
	for _, f := range faults {
		if f.Affects(ch) && m.history.IsIntermittent(f.Kind) {
			return true
		}
	}
	return false
}

func idleStatuses() []domain.ChannelStatus {
	statuses := make([]domain.ChannelStatus, 0, domain.ChannelCount)
	for _, ch := range domain.Channels {
		statuses = append(statuses, domain.ChannelStatus{Channel: ch, State: domain.SignalOff})
	}
	return statuses
}

func (m *ModeController) fillSequenceStatus(res *PollResult) {
	res.Sequence.RunID = m.sequencer.RunID()
	res.Sequence.Active = m.sequencer.Active()
	res.Sequence.Name = m.sequencer.SequenceName()
	res.Sequence.Step, res.Sequence.StepCount = m.sequencer.StepIndex()
	res.Sequence.Channels = m.sequencer.ActiveChannels()
}

// ForceDiagnosticPass returns the hypotheses of the most recent
// diagnostic pass for an on-demand detailed read. It does not rerun the
// rules, so history and the cross-wiring streak are unaffected.
func (m *ModeController) ForceDiagnosticPass() ([]domain.FaultHypothesis, string) {
	if m.lastSnapshot.Readings == nil {
		return nil, FormatReport(nil)
	}
	faults := m.lastFaults
	return faults, FormatReport(faults)
}

// SetCalibration updates parameters for one channel, or the global
// default when ch is nil. Invalid parameters leave the prior value.
func (m *ModeController) SetCalibration(ch *domain.Channel, p domain.CalibrationParameters) error {
	if err := m.calibrator.Set(ch, p); err != nil {
		m.logger.Warnw("calibration rejected", "error", err)
		return err
	}
	m.logger.Infow("calibration updated", "scale_factor", p.ScaleFactor, "noise_floor", p.NoiseFloor)
	return nil
}

// GetCalibration returns the effective parameters for a channel, or the
// global default when ch is nil.
func (m *ModeController) GetCalibration(ch *domain.Channel) domain.CalibrationParameters {
	return m.calibrator.Get(ch)
}
