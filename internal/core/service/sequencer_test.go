package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sevenway/internal/core/domain"
)

const testGap = 300 * time.Millisecond

// driveTicks advances the sequencer at a 50ms tick rate, applying every
// command to a relay shadow map, until the run completes or maxTicks is
// reached. Returns the final time.
func driveTicks(t *testing.T, s *Sequencer, relays map[domain.Channel]bool, now time.Time, maxTicks int) time.Time {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		now = now.Add(50 * time.Millisecond)
		tick := s.Tick(now)
		for _, cmd := range tick.Commands {
			relays[cmd.Channel] = cmd.On
		}
		if tick.Completed {
			return now
		}
	}
	return now
}

func applyCommands(relays map[domain.Channel]bool, cmds []domain.OutputCommand) {
	for _, cmd := range cmds {
		relays[cmd.Channel] = cmd.On
	}
}

func allOff(relays map[domain.Channel]bool) bool {
	for _, on := range relays {
		if on {
			return false
		}
	}
	return true
}

func TestQuickSequenceSinglePass(t *testing.T) {

	require := require.New(t)

	s := NewSequencer(testGap)
	relays := map[domain.Channel]bool{}
	now := time.Unix(0, 0)

	_, cmds := s.Start(QuickSequence(), 1, now)
	applyCommands(relays, cmds)
	require.True(s.Active())

	// first tick asserts the first step immediately
	tick := s.Tick(now.Add(50 * time.Millisecond))
	require.Len(tick.Commands, 1)
	assert.Equal(t, domain.ChannelTail, tick.Commands[0].Channel)
	assert.True(t, tick.Commands[0].On)
	applyCommands(relays, tick.Commands)

	// quick test: 6 steps x (500ms dwell + 300ms gap) is under 5s
	driveTicks(t, s, relays, now.Add(50*time.Millisecond), 120)

	require.False(s.Active())
	assert.True(t, allOff(relays))
}

func TestFullRunRepeatsPasses(t *testing.T) {

	require := require.New(t)

	s := NewSequencer(testGap)
	relays := map[domain.Channel]bool{}
	now := time.Unix(0, 0)

	_, cmds := s.Start(QuickSequence(), 3, now)
	applyCommands(relays, cmds)

	steps := 0
	for i := 0; i < 2000 && s.Active(); i++ {
		now = now.Add(50 * time.Millisecond)
		tick := s.Tick(now)
		applyCommands(relays, tick.Commands)
		if tick.StepChanged {
			steps++
		}
	}

	require.False(s.Active())
	assert.Equal(t, 18, steps)
	assert.True(t, allOff(relays))
}

func TestAbortNeverReasserts(t *testing.T) {

	require := require.New(t)

	s := NewSequencer(testGap)
	relays := map[domain.Channel]bool{}
	now := time.Unix(0, 0)

	_, cmds := s.Start(FullSequence(), 1, now)
	applyCommands(relays, cmds)

	// run into the middle of the first dwell
	now = driveTicks(t, s, relays, now, 5)
	require.True(s.Active())
	require.False(allOff(relays))

	cmds, err := s.Abort()
	applyCommands(relays, cmds)
	require.ErrorIs(err, domain.ErrSequenceAborted)
	require.False(s.Active())
	require.True(allOff(relays))

	// no later tick may produce an ON command
	for i := 0; i < 100; i++ {
		now = now.Add(50 * time.Millisecond)
		tick := s.Tick(now)
		for _, cmd := range tick.Commands {
			assert.False(t, cmd.On)
		}
	}
	assert.True(t, allOff(relays))
}

func TestAbortWhenIdleIsNotAnAbort(t *testing.T) {

	s := NewSequencer(testGap)

	cmds, err := s.Abort()
	assert.NoError(t, err)
	// the safe state is forced regardless
	assert.Len(t, cmds, domain.ChannelCount)
	for _, cmd := range cmds {
		assert.False(t, cmd.On)
	}
}

func TestActiveChannelsTracksDwell(t *testing.T) {

	s := NewSequencer(testGap)
	now := time.Unix(0, 0)

	assert.Empty(t, s.ActiveChannels())

	s.Start(FullSequence(), 1, now)
	s.Tick(now.Add(50 * time.Millisecond))

	assert.Equal(t, []domain.Channel{domain.ChannelTail}, s.ActiveChannels())

	// past the 2s dwell the step drops into the gap
	s.Tick(now.Add(2100 * time.Millisecond))
	assert.Empty(t, s.ActiveChannels())
}

func TestHazardStepsAssertBothTurnChannels(t *testing.T) {

	require := require.New(t)

	s := NewSequencer(testGap)
	now := time.Unix(0, 0)

	s.Start(HazardSequence(), 1, now)
	tick := s.Tick(now.Add(50 * time.Millisecond))

	require.Len(tick.Commands, 2)
	chans := s.ActiveChannels()
	assert.Contains(t, chans, domain.ChannelLeftTurn)
	assert.Contains(t, chans, domain.ChannelRightTurn)
}

func TestStartReplacesActiveRun(t *testing.T) {

	require := require.New(t)

	s := NewSequencer(testGap)
	relays := map[domain.Channel]bool{}
	now := time.Unix(0, 0)

	_, cmds := s.Start(FullSequence(), 1, now)
	applyCommands(relays, cmds)
	now = driveTicks(t, s, relays, now, 5)

	id1 := s.RunID()
	id2, cmds := s.Start(QuickSequence(), 1, now)
	applyCommands(relays, cmds)

	require.NotEqual(id1, id2)
	// the replacing start deasserts everything before the new run begins
	assert.True(t, allOff(relays))
	assert.Equal(t, "quick", s.SequenceName())
}
