package actor

import (
	"errors"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"sevenway/internal/adapter/analog"
	"sevenway/internal/core/domain"
	"sevenway/internal/util/actorutil"
	"sevenway/pkg/analogio"
)

func TestSamplerActorSnapshot(t *testing.T) {

	assert := assert.New(t)

	reader := analogio.NewTestReader()
	reader.SetVolts(analog.InputFor(domain.ChannelTail), 2.553)
	reader.SetVolts(analog.InputFor(domain.ChannelBrake), 2.50)

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewSamplerActor(analog.NewSampler(reader), logger)
	})
	pid := context.Spawn(props)

	time.Sleep(500 * time.Millisecond)

	result, err := context.RequestFuture(pid, domain.GetSnapshotRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetSnapshotResponse)

	assert.False(resp.HasResponseError(), "snapshot succeeds")
	assert.Len(resp.Samples, domain.ChannelCount, "one sample per channel")
	assert.InDelta(2.553, resp.Samples[domain.ChannelTail].Volts, 1e-9, "tail volts")
	assert.InDelta(2.50, resp.Samples[domain.ChannelBrake].Volts, 1e-9, "brake volts")
	assert.False(resp.Samples[domain.ChannelTail].Unavailable, "tail available")
	assert.False(resp.At.IsZero(), "timestamp set")

	context.Stop(pid)

	as.Shutdown()
}

func TestSamplerActorChannelFaultIsUnavailable(t *testing.T) {

	assert := assert.New(t)

	reader := analogio.NewTestReader()
	reader.SetError(analog.InputFor(domain.ChannelAux), errors.New("channel dead"))

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewSamplerActor(analog.NewSampler(reader), logger)
	})
	pid := context.Spawn(props)

	time.Sleep(500 * time.Millisecond)

	result, err := context.RequestFuture(pid, domain.GetSnapshotRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetSnapshotResponse)

	assert.False(resp.HasResponseError(), "pass survives single channel fault")
	assert.True(resp.Samples[domain.ChannelAux].Unavailable, "aux unavailable")
	assert.False(resp.Samples[domain.ChannelTail].Unavailable, "tail still read")

	context.Stop(pid)

	as.Shutdown()
}

// stuckSampler models a wedged acquisition bus: reads never return
// within the background task timeout.
type stuckSampler struct{}

func (stuckSampler) Open() error  { return nil }
func (stuckSampler) Close() error { return nil }
func (stuckSampler) ReadAll() (domain.RawSamples, error) {
	time.Sleep(5 * time.Second)
	return domain.RawSamples{}, nil
}

func TestSamplerActorStuckBusReportsSensorUnavailable(t *testing.T) {

	assert := assert.New(t)

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewSamplerActor(stuckSampler{}, logger)
	})
	pid := context.Spawn(props)

	time.Sleep(500 * time.Millisecond)

	result, err := context.RequestFuture(pid, domain.GetSnapshotRequest{}, 10*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetSnapshotResponse)

	assert.True(resp.HasResponseError(), "wedged bus reported as an error")
	assert.ErrorIs(resp.GetResponseError(), domain.ErrSensorUnavailable)

	context.Stop(pid)

	as.Shutdown()
}

func TestSamplerActorBusFailure(t *testing.T) {

	assert := assert.New(t)

	reader := analogio.NewTestReader()
	reader.FailAll(errors.New("bus stuck"))

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewSamplerActor(analog.NewSampler(reader), logger)
	})
	pid := context.Spawn(props)

	time.Sleep(500 * time.Millisecond)

	result, err := context.RequestFuture(pid, domain.GetSnapshotRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.GetSnapshotResponse)

	// a dead bus still yields a snapshot: every channel unavailable
	assert.False(resp.HasResponseError(), "pass delivered")
	for _, ch := range domain.Channels {
		assert.True(resp.Samples[ch].Unavailable, "channel %s unavailable", ch)
	}

	context.Stop(pid)

	as.Shutdown()
}
