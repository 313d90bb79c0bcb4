package actor

import (
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"sevenway/internal/adapter/gpio"
	"sevenway/internal/core/domain"
	"sevenway/internal/util/actorutil"
)

func TestOutputActorSetAndAllOff(t *testing.T) {

	assert := assert.New(t)

	relays := gpio.NewFakeRelays()
	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewOutputActor(relays, logger)
	})
	pid := context.Spawn(props)

	time.Sleep(500 * time.Millisecond)

	result, err := context.RequestFuture(pid, domain.SetOutputsRequest{
		Commands: []domain.OutputCommand{
			{Channel: domain.ChannelLeftTurn, On: true},
			{Channel: domain.ChannelTail, On: true},
		},
	}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	resp := result.(domain.SetOutputsResponse)

	assert.False(resp.HasResponseError(), "set succeeds")
	assert.True(relays.State(domain.ChannelLeftTurn), "left asserted")
	assert.True(relays.State(domain.ChannelTail), "tail asserted")
	assert.False(relays.State(domain.ChannelBrake), "brake untouched")

	result, err = context.RequestFuture(pid, domain.AllOutputsOffRequest{}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}
	offResp := result.(domain.AllOutputsOffResponse)

	assert.False(offResp.HasResponseError(), "all-off succeeds")
	assert.False(relays.AnyOn(), "everything deasserted")

	context.Stop(pid)

	as.Shutdown()
}

func TestOutputActorDeassertsOnStop(t *testing.T) {

	assert := assert.New(t)

	relays := gpio.NewFakeRelays()
	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	props := actor.PropsFromProducer(func() actor.Actor {
		return NewOutputActor(relays, logger)
	})
	pid := context.Spawn(props)

	time.Sleep(500 * time.Millisecond)

	_, err := context.RequestFuture(pid, domain.SetOutputsRequest{
		Commands: []domain.OutputCommand{{Channel: domain.ChannelBrake, On: true}},
	}, 5*time.Second).Result()
	if err != nil {
		t.Error(err)
		return
	}

	context.StopFuture(pid).Wait()

	assert.False(relays.AnyOn(), "stop forces all-off")
	assert.True(relays.Closed(), "driver closed")

	as.Shutdown()
}
