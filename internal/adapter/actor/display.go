package actor

import (
	"fmt"

	"sevenway/internal/core/domain"
	"sevenway/internal/core/port"
	"sevenway/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

// DisplayActor bridges the event stream to the status sinks (OLED text,
// LED bank, console). Sink writes happen on the actor's mailbox, so a
// slow display never blocks the control loop.
type DisplayActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash

	eventStream    *eventstream.EventStream
	eventStreamSub *eventstream.Subscription
	sinks          []port.StatusSink

	logger *zap.Logger
}

type OnEventStreamMessage struct {
	message any
}

func NewDisplayActor(eventStream *eventstream.EventStream, sinks []port.StatusSink, logger *zap.Logger) *DisplayActor {
	act := &DisplayActor{
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		eventStream: eventStream,
		sinks:       sinks,
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_DISPLAY, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *DisplayActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *DisplayActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("display@starting started")

		// subscribe to eventStream
		state.eventStreamSub = state.eventStream.Subscribe(func(value any) {
			ctx.Send(ctx.Self(), OnEventStreamMessage{
				message: value,
			})
		})

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.unsubscribe()
	default:
		state.logger.Debug("display@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *DisplayActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("display@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_DISPLAY,
			Healthy: true,
			State:   "idle",
		})
	case OnEventStreamMessage:
		state.logger.Debug("display@default OnEventStreamMessage", zap.String("type", fmt.Sprintf("%T", msg.message)))
		state.render(msg.message)
	case *actor.Restarting:
		state.unsubscribe()
	case *actor.Stopping:
		state.unsubscribe()
	default:
		state.logger.Debug("display@default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *DisplayActor) render(event any) {
	switch ev := event.(type) {
	case domain.ModeUpdateEvent:
		for _, sink := range state.sinks {
			sink.ShowMode(ev.Mode)
		}
	case domain.ChannelStatusUpdateEvent:
		for _, sink := range state.sinks {
			sink.ShowChannel(ev.Status, ev.Mode)
		}
	case domain.FaultsUpdateEvent:
		for _, sink := range state.sinks {
			sink.ShowFaults(ev.Report, ev.Faults)
		}
	case domain.DiagnosticsAvailabilityEvent:
		if !ev.Available {
			for _, sink := range state.sinks {
				sink.ShowDiagnosticsUnavailable()
			}
		}
	case domain.DeviceInfoUpdateEvent:
		for _, sink := range state.sinks {
			sink.ShowSplash(ev.Name, ev.Version)
		}
	}
}

func (state *DisplayActor) unsubscribe() {
	if state.eventStreamSub != nil {
		state.eventStream.Unsubscribe(state.eventStreamSub)
		state.eventStreamSub = nil
	}
}
