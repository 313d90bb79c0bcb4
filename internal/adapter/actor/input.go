package actor

import (
	"fmt"
	"time"

	"sevenway/internal/core/domain"
	"sevenway/internal/core/port"
	"sevenway/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// InputActor owns the two front-panel buttons. GPIO level reads are
// immediate, so requests are answered inline every tick.
type InputActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	reader   port.ButtonReader
	logger   *zap.Logger
}

func NewInputActor(reader port.ButtonReader, logger *zap.Logger) *InputActor {
	act := &InputActor{
		reader:   reader,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_INPUT, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *InputActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *InputActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("input@starting started")
		if err := state.reader.Open(); err != nil {
			panic(err)
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.reader.Close()
	default:
		state.logger.Debug("input@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *InputActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("input@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_INPUT,
			Healthy: true,
			State:   "idle",
		})
	case domain.ReadButtonsRequest:
		mode, test, err := state.reader.Read()
		resp := domain.ReadButtonsResponse{
			ModePressed: mode,
			TestPressed: test,
			At:          time.Now(),
		}
		if err != nil {
			state.logger.Error("button read failed", zap.Error(err))
			resp.ResponseError = err
		}
		actorutil.ForRequest(msg).Respond(ctx, resp)
	case *actor.Stopping:
		state.reader.Close()
	default:
		state.logger.Debug("input@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}
