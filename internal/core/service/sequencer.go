package service

import (
	"time"

	"github.com/google/uuid"

	"sevenway/internal/core/domain"
)

// SequenceStep asserts a set of channels for a dwell time. An empty
// channel set is an explicit all-off step, used by blink patterns.
type SequenceStep struct {
	Channels []domain.Channel
	Dwell    time.Duration
}

// Sequence is a named ordered test pattern.
type Sequence struct {
	Name  string
	Steps []SequenceStep
}

func one(ch domain.Channel, dwell time.Duration) SequenceStep {
	return SequenceStep{Channels: []domain.Channel{ch}, Dwell: dwell}
}

func off(dwell time.Duration) SequenceStep {
	return SequenceStep{Dwell: dwell}
}

// FullSequence exercises every circuit once, running lights first.
func FullSequence() Sequence {
	return Sequence{Name: "full", Steps: []SequenceStep{
		one(domain.ChannelTail, 2*time.Second),
		one(domain.ChannelLeftTurn, 1500*time.Millisecond),
		one(domain.ChannelRightTurn, 1500*time.Millisecond),
		one(domain.ChannelBrake, 2*time.Second),
		one(domain.ChannelReverse, 1500*time.Millisecond),
		one(domain.ChannelAux, time.Second),
	}}
}

// QuickSequence is a fast verification cycle over all circuits.
func QuickSequence() Sequence {
	steps := make([]SequenceStep, 0, domain.ChannelCount)
	for _, ch := range []domain.Channel{
		domain.ChannelTail, domain.ChannelLeftTurn, domain.ChannelRightTurn,
		domain.ChannelBrake, domain.ChannelReverse, domain.ChannelAux,
	} {
		steps = append(steps, one(ch, 500*time.Millisecond))
	}
	return Sequence{Name: "quick", Steps: steps}
}

// TurnSignalSequence blinks left three times, then right three times.
func TurnSignalSequence() Sequence {
	blink := 500 * time.Millisecond
	return Sequence{Name: "turn", Steps: []SequenceStep{
		one(domain.ChannelLeftTurn, blink), off(blink),
		one(domain.ChannelLeftTurn, blink), off(blink),
		one(domain.ChannelLeftTurn, blink), off(blink),
		one(domain.ChannelRightTurn, blink), off(blink),
		one(domain.ChannelRightTurn, blink), off(blink),
		one(domain.ChannelRightTurn, blink),
	}}
}

// HazardSequence blinks both turn channels together three times.
func HazardSequence() Sequence {
	blink := 500 * time.Millisecond
	both := SequenceStep{
		Channels: []domain.Channel{domain.ChannelLeftTurn, domain.ChannelRightTurn},
		Dwell:    blink,
	}
	return Sequence{Name: "hazard", Steps: []SequenceStep{
		both, off(blink),
		both, off(blink),
		both,
	}}
}

// BuiltinSequences returns the four standard patterns keyed by name.
func BuiltinSequences() map[string]Sequence {
	return map[string]Sequence{
		"full":   FullSequence(),
		"quick":  QuickSequence(),
		"turn":   TurnSignalSequence(),
		"hazard": HazardSequence(),
	}
}

type sequencerState int

const (
	sequencerIdle sequencerState = iota
	sequencerActive
	sequencerComplete
)

// phase within the active state: dwelling on a step, or in the all-off
// gap before the next one.
type sequencerPhase int

const (
	phaseOn sequencerPhase = iota
	phaseGap
)

// SequencerTick is the outcome of advancing the sequencer by one tick.
// Commands are only populated on transitions so an idle sequencer never
// re-asserts outputs.
type SequencerTick struct {
	Commands []domain.OutputCommand
	// StepChanged marks a step boundary, Completed marks the end of the
	// final pass. Both may be set on the same tick.
	StepChanged bool
	Completed   bool
}

// Sequencer drives test patterns as an incremental state machine. Each
// Tick compares elapsed time against the current phase and emits only
// the output transitions, never a blocking sleep. The safety contract:
// after Abort or completion, no later Tick produces an ON command.
type Sequencer struct {
	gap time.Duration

	state        sequencerState
	seq          Sequence
	passes       int
	passIdx      int
	stepIdx      int
	phase        sequencerPhase
	phaseStarted time.Time
	runID        uuid.UUID
}

func NewSequencer(gap time.Duration) *Sequencer {
	return &Sequencer{gap: gap}
}

// Start arms the sequencer to run the pattern `passes` times. An already
// active run is replaced; the first step asserts on the next Tick. The
// returned commands deassert everything so a replaced run leaves no
// output stuck on.
func (s *Sequencer) Start(seq Sequence, passes int, now time.Time) (uuid.UUID, []domain.OutputCommand) {
	if passes < 1 {
		passes = 1
	}
	s.state = sequencerActive
	s.seq = seq
	s.passes = passes
	s.passIdx = 0
	s.stepIdx = -1
	s.phase = phaseGap
	// backdate the gap so the next Tick advances to the first step
	s.phaseStarted = now.Add(-s.gap)
	s.runID = uuid.New()
	return s.runID, domain.AllOffCommands()
}

// Tick advances the state machine. Idle and completed sequencers return
// an empty result.
func (s *Sequencer) Tick(now time.Time) SequencerTick {
	if s.state != sequencerActive {
		return SequencerTick{}
	}

	elapsed := now.Sub(s.phaseStarted)

	switch s.phase {
	case phaseOn:
		step := s.seq.Steps[s.stepIdx]
		if elapsed < step.Dwell {
			return SequencerTick{}
		}
		// dwell over: drop the step's outputs and enter the gap
		s.phase = phaseGap
		s.phaseStarted = now
		cmds := make([]domain.OutputCommand, 0, len(step.Channels))
		for _, ch := range step.Channels {
			cmds = append(cmds, domain.OutputCommand{Channel: ch, On: false})
		}
		return SequencerTick{Commands: cmds}

	default: // phaseGap
		if elapsed < s.gap {
			return SequencerTick{}
		}
		return s.advance(now)
	}
}

func (s *Sequencer) advance(now time.Time) SequencerTick {
	s.stepIdx++
	if s.stepIdx >= len(s.seq.Steps) {
		s.passIdx++
		if s.passIdx >= s.passes {
			s.state = sequencerComplete
			return SequencerTick{
				Commands:  domain.AllOffCommands(),
				Completed: true,
			}
		}
		s.stepIdx = 0
	}

	step := s.seq.Steps[s.stepIdx]
	s.phase = phaseOn
	s.phaseStarted = now
	cmds := make([]domain.OutputCommand, 0, len(step.Channels))
	for _, ch := range step.Channels {
		cmds = append(cmds, domain.OutputCommand{Channel: ch, On: true})
	}
	return SequencerTick{Commands: cmds, StepChanged: true}
}

// Abort cancels the run immediately and returns the commands that put
// every output in the safe OFF state. Safe to call in any state: the
// error is ErrSequenceAborted when a run was actually cancelled, nil
// when the sequencer was already idle or complete.
func (s *Sequencer) Abort() ([]domain.OutputCommand, error) {
	wasActive := s.state == sequencerActive
	s.state = sequencerIdle
	if !wasActive {
		return domain.AllOffCommands(), nil
	}
	return domain.AllOffCommands(), domain.ErrSequenceAborted
}

// Active reports whether a run is in progress.
func (s *Sequencer) Active() bool {
	return s.state == sequencerActive
}

// RunID identifies the current or most recent run.
func (s *Sequencer) RunID() uuid.UUID {
	return s.runID
}

// SequenceName is the name of the current or most recent pattern.
func (s *Sequencer) SequenceName() string {
	return s.seq.Name
}

// StepIndex returns the current step position and total step count.
func (s *Sequencer) StepIndex() (int, int) {
	return s.stepIdx, len(s.seq.Steps)
}

// ActiveChannels lists the channels currently asserted by the run.
// Empty when idle, completed, or in a gap.
func (s *Sequencer) ActiveChannels() []domain.Channel {
	if s.state != sequencerActive || s.phase != phaseOn || s.stepIdx < 0 {
		return nil
	}
	return s.seq.Steps[s.stepIdx].Channels
}
