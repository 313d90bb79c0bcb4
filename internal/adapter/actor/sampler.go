package actor

import (
	"fmt"
	"time"

	"sevenway/internal/core/domain"
	"sevenway/internal/core/port"
	"sevenway/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/logger"
	"go.uber.org/zap"
)

// SamplerActor owns the voltage acquisition hardware. Reads run as
// background tasks so a slow or wedged bus never blocks the mailbox; the
// actor stashes everything else until the read returns.
type SamplerActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	sampler  port.VoltageSampler
	logger   *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewSamplerActor(sampler port.VoltageSampler, logger *zap.Logger) *SamplerActor {
	act := &SamplerActor{
		sampler:  sampler,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_SAMPLER, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *SamplerActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *SamplerActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("sampler@starting started")
		if err := state.sampler.Open(); err != nil {
			panic(err)
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.sampler.Close()
	default:
		state.logger.Debug("sampler@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *SamplerActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("sampler@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_SAMPLER,
			Healthy: true,
			State:   "idle",
		})
	case domain.GetSnapshotRequest:
		state.logger.Debug("sampler@default: GetSnapshotRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)

		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.readAll),
			mapTaskResult[domain.GetSnapshotResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetSnapshotResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: fmt.Errorf("%w: %v", domain.ErrSensorUnavailable, err),
					},
				},
				replyTo: sender,
			}
		}).WithTimeout(2 * time.Second).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingHardware)
	case *actor.Stopping:
		state.sampler.Close()
	default:
		state.logger.Debug("sampler@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *SamplerActor) WaitingHardware(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("sampler@waitingHardware backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		ctx.Send(msg.replyTo, msg.message)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case *actor.Stopping:
		state.sampler.Close()
	default:
		state.logger.Debug("sampler@waitingHardware stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (a *SamplerActor) readAll() (*domain.GetSnapshotResponse, error) {
	samples, err := a.sampler.ReadAll()
	if err != nil {
		logger.Error(err)
		return nil, err
	}
	return &domain.GetSnapshotResponse{
		Samples: samples,
		At:      time.Now(),
	}, nil
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
