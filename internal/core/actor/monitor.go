package actor

import (
	"fmt"
	"time"

	"sevenway/internal/config"
	"sevenway/internal/core/domain"
	"sevenway/internal/core/events"
	"sevenway/internal/core/service"
	. "sevenway/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// MonitorActor runs the control loop. Every tick it polls the buttons;
// every Nth tick it also requests a voltage snapshot. Both requests are
// piped back to self, collected in a stacked state, and fed into the
// mode controller as one PollCycle. Output commands go to the output
// actor before the tick's status events are published.
type MonitorActor struct {
	behavior  actor.Behavior
	stash     *Stash
	scheduler *scheduler.TimerScheduler

	samplerActor *actor.PID
	inputActor   *actor.PID
	outputActor  *actor.PID
	config       *config.Config
	eventStream  *eventstream.EventStream
	controller   *service.ModeController

	currentTickCount uint32
	senseEveryTicks  uint32

	pendingButtons *domain.ReadButtonsResponse
	pendingSamples *domain.GetSnapshotResponse
	expectSamples  bool

	logger *zap.Logger
}

type monitorTick struct {
}

func NewMonitorActor(config *config.Config, controller *service.ModeController, samplerActor, inputActor, outputActor *actor.PID, eventStream *eventstream.EventStream, logger *zap.Logger) *MonitorActor {
	act := &MonitorActor{
		config:           config,
		controller:       controller,
		samplerActor:     samplerActor,
		inputActor:       inputActor,
		outputActor:      outputActor,
		behavior:         actor.NewBehavior(),
		stash:            &Stash{},
		logger:           ActorLogger(domain.ACTOR_ID_MONITOR, logger),
		eventStream:      eventStream,
		senseEveryTicks:  config.Monitor.SenseEveryTicks,
		currentTickCount: config.Monitor.SenseEveryTicks,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MonitorActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MonitorActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("monitor@starting started")

		if state.config.Monitor.TickIntervalMillis > 0 {
			state.scheduler = scheduler.NewTimerScheduler(ctx)
			state.scheduler.RequestOnce(state.tickInterval(), ctx.Self(), monitorTick{})
		}

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		// a restarted loop must never leave relays asserted
		ctx.Send(state.outputActor, domain.AllOutputsOffRequest{})
	default:
		state.logger.Debug("monitor@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MonitorActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("monitor@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MONITOR,
			Healthy: true,
			State:   state.controller.Mode().String(),
		})
	case monitorTick:
		state.pendingButtons = nil
		state.pendingSamples = nil

		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.inputActor, domain.ReadButtonsRequest{}, state.tickInterval()), func(err error) any {
			return domain.ReadButtonsResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})

		// sensing is interleaved: buttons every tick, voltages every Nth
		if state.currentTickCount == state.senseEveryTicks {
			state.currentTickCount = 0
			state.expectSamples = true
			PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.samplerActor, domain.GetSnapshotRequest{}, state.tickInterval()), func(err error) any {
				// a missed snapshot degrades this cycle to buttons only
				return domain.GetSnapshotResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: fmt.Errorf("%w: %v", domain.ErrSensorUnavailable, err),
					},
				}
			})
		} else {
			state.currentTickCount++
			state.expectSamples = false
		}

		// schedule next tick
		state.scheduler.RequestOnce(state.tickInterval(), ctx.Self(), monitorTick{})
		ctx.SetReceiveTimeout(2 * state.tickInterval())
		state.behavior.BecomeStacked(state.CollectingReceive)
	case domain.ForceDiagnosticRequest:
		state.logger.Debug("monitor@default: ForceDiagnosticRequest")
		faults, report := state.controller.ForceDiagnosticPass()
		ForRequest(msg).Respond(ctx, domain.ForceDiagnosticResponse{
			Faults: faults,
			Report: report,
		})
	case domain.SetCalibrationRequest:
		state.logger.Debug("monitor@default: SetCalibrationRequest")
		err := state.controller.SetCalibration(msg.Channel, msg.Params)
		ForRequest(msg).Respond(ctx, domain.SetCalibrationResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{
				ResponseError: err,
			},
		})
	case domain.GetCalibrationRequest:
		state.logger.Debug("monitor@default: GetCalibrationRequest")
		ForRequest(msg).Respond(ctx, domain.GetCalibrationResponse{
			Params: state.controller.GetCalibration(msg.Channel),
		})
	case *actor.Stopping:
		ctx.Send(state.outputActor, domain.AllOutputsOffRequest{})
	default:
		state.logger.Debug("monitor@default: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

// CollectingReceive gathers the tick's responses. The cycle runs as soon
// as everything expected has arrived; a timeout runs it with whatever is
// on hand so a stuck peripheral degrades the loop instead of stalling it.
func (state *MonitorActor) CollectingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ReadButtonsResponse:
		if msg.HasResponseError() {
			state.logger.Error("monitor@collecting button read error", zap.Error(msg.GetResponseError()))
		}
		state.pendingButtons = &msg
		state.maybeRunCycle(ctx)
	case domain.GetSnapshotResponse:
		if msg.HasResponseError() {
			state.logger.Error("monitor@collecting snapshot error", zap.Error(msg.GetResponseError()))
		}
		state.pendingSamples = &msg
		state.maybeRunCycle(ctx)
	case *actor.ReceiveTimeout:
		state.logger.Warn("monitor@collecting timeout, running cycle with partial data")
		state.runCycle(ctx)
	case *actor.Stopping:
		ctx.Send(state.outputActor, domain.AllOutputsOffRequest{})
	default:
		state.logger.Debug("monitor@collecting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MonitorActor) maybeRunCycle(ctx actor.Context) {
	if state.pendingButtons == nil {
		return
	}
	if state.expectSamples && state.pendingSamples == nil {
		return
	}
	state.runCycle(ctx)
}

func (state *MonitorActor) runCycle(ctx actor.Context) {
	ctx.CancelReceiveTimeout()

	in := service.PollInput{Now: time.Now()}
	if state.pendingButtons != nil && !state.pendingButtons.HasResponseError() {
		in.ModePressed = state.pendingButtons.ModePressed
		in.TestPressed = state.pendingButtons.TestPressed
	}
	if state.pendingSamples != nil && !state.pendingSamples.HasResponseError() {
		in.Samples = state.pendingSamples.Samples
	}

	res := state.controller.PollCycle(in)

	// outputs first: the all-off of a mode change or abort must land
	// before any consumer sees the new state
	if len(res.Commands) > 0 {
		ctx.Send(state.outputActor, domain.SetOutputsRequest{Commands: res.Commands})
	}

	for _, ev := range events.PollResultToUpdateEvents(res) {
		state.eventStream.Publish(ev)
	}

	state.behavior.UnbecomeStacked()
	state.stash.UnstashAll(ctx)
}

func (state *MonitorActor) tickInterval() time.Duration {
	return time.Duration(state.config.Monitor.TickIntervalMillis) * time.Millisecond
}
