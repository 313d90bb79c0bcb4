package actor

import (
	"sync"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"sevenway/internal/core/domain"
	"sevenway/internal/core/port"
	"sevenway/internal/util/actorutil"
)

// recordingSink captures everything shown on it.
type recordingSink struct {
	mu       sync.Mutex
	modes    []domain.OperatingMode
	statuses []domain.ChannelStatus
	reports  []string
	diagLost int
	splashes []string
}

func (s *recordingSink) ShowSplash(name, version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.splashes = append(s.splashes, name+" "+version)
}

func (s *recordingSink) ShowMode(mode domain.OperatingMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modes = append(s.modes, mode)
}

func (s *recordingSink) ShowChannel(status domain.ChannelStatus, mode domain.OperatingMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, status)
}

func (s *recordingSink) ShowFaults(report string, faults []domain.FaultHypothesis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
}

func (s *recordingSink) ShowDiagnosticsUnavailable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagLost++
}

func (s *recordingSink) Clear() {}

func (s *recordingSink) snapshot() (int, int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.modes), len(s.statuses), len(s.reports), s.diagLost
}

func TestDisplayActorRendersEventStream(t *testing.T) {

	assert := assert.New(t)

	sink := &recordingSink{}
	es := &eventstream.EventStream{}
	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewDisplayActor(es, []port.StatusSink{sink}, logger)
	})
	pid := context.Spawn(props)

	time.Sleep(500 * time.Millisecond)

	es.Publish(domain.ModeUpdateEvent{Mode: domain.ModeTrailerTester})
	es.Publish(domain.ChannelStatusUpdateEvent{
		Status: domain.ChannelStatus{Channel: domain.ChannelTail, State: domain.SignalOK, Volts: 12.1},
		Mode:   domain.ModeTrailerTester,
	})
	es.Publish(domain.FaultsUpdateEvent{Report: "No faults detected - all signals normal"})
	es.Publish(domain.DiagnosticsAvailabilityEvent{Available: false})
	// availability restored must not render the unavailable banner again
	es.Publish(domain.DiagnosticsAvailabilityEvent{Available: true})

	time.Sleep(500 * time.Millisecond)

	modes, statuses, reports, diagLost := sink.snapshot()
	assert.Equal(1, modes, "one mode update")
	assert.Equal(1, statuses, "one channel update")
	assert.Equal(1, reports, "one fault report")
	assert.Equal(1, diagLost, "unavailable banner shown once")

	context.Stop(pid)

	as.Shutdown()
}
