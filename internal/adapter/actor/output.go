package actor

import (
	"fmt"

	"sevenway/internal/core/domain"
	"sevenway/internal/core/port"
	"sevenway/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// OutputActor owns the relay bank. Relay writes are fast pin toggles, so
// requests are handled inline; the safety-critical part is the
// lifecycle: every start, restart and stop path forces all outputs off
// before anything else happens.
type OutputActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	driver   port.OutputDriver
	logger   *zap.Logger
}

func NewOutputActor(driver port.OutputDriver, logger *zap.Logger) *OutputActor {
	act := &OutputActor{
		driver:   driver,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_OUTPUT, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *OutputActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *OutputActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("output@starting started")
		if err := state.driver.Open(); err != nil {
			panic(err)
		}
		if err := state.driver.AllOff(); err != nil {
			panic(err)
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.safeShutdown()
	default:
		state.logger.Debug("output@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *OutputActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("output@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_OUTPUT,
			Healthy: true,
			State:   "idle",
		})
	case domain.SetOutputsRequest:
		state.logger.Debug("output@default: SetOutputsRequest", zap.Int("commands", len(msg.Commands)))
		resp := domain.SetOutputsResponse{}
		for _, cmd := range msg.Commands {
			if err := state.driver.Set(cmd.Channel, cmd.On); err != nil {
				state.logger.Error("relay write failed", zap.String("channel", cmd.Channel.String()), zap.Error(err))
				resp.ResponseError = err
			}
		}
		actorutil.ForRequest(msg).Respond(ctx, resp)
	case domain.AllOutputsOffRequest:
		state.logger.Debug("output@default: AllOutputsOffRequest")
		resp := domain.AllOutputsOffResponse{}
		if err := state.driver.AllOff(); err != nil {
			state.logger.Error("all-off failed", zap.Error(err))
			resp.ResponseError = err
		}
		actorutil.ForRequest(msg).Respond(ctx, resp)
	case *actor.Stopping:
		state.safeShutdown()
	default:
		state.logger.Debug("output@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// safeShutdown deasserts everything before the pins are released.
// Outputs must never remain asserted past the actor's lifetime.
func (state *OutputActor) safeShutdown() {
	if err := state.driver.AllOff(); err != nil {
		state.logger.Error("all-off on shutdown failed", zap.Error(err))
	}
	state.driver.Close()
}
