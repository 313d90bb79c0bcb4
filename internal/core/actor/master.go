package actor

import (
	"fmt"
	"log"
	"time"

	adactor "sevenway/internal/adapter/actor"
	"sevenway/internal/config"
	"sevenway/internal/core/domain"
	"sevenway/internal/core/service"
	. "sevenway/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

type SamplerActorProvider func() *adactor.SamplerActor

type InputActorProvider func() *adactor.InputActor

type OutputActorProvider func() *adactor.OutputActor

type DisplayActorProvider func(*eventstream.EventStream) *adactor.DisplayActor

// MasterActor supervises the whole tree. Hardware adapters (sampler,
// input, output) restart with exponential backoff: a flaky bus gets
// retried without tearing the loop down. The monitor restarts with its
// siblings (AllForOne with the output actor would be ideal, but the
// output actor forces all-off on its own lifecycle transitions, so the
// monitor restarting alone is safe).
type MasterActor struct {
	config   *config.Config
	behavior actor.Behavior
	stash    *Stash

	currentHealthCheck healthCheckResult
	eventStream        *eventstream.EventStream
	controller         *service.ModeController

	samplerActor *actor.PID
	inputActor   *actor.PID
	outputActor  *actor.PID
	monitorActor *actor.PID
	displayActor *actor.PID

	samplerActorProvider SamplerActorProvider
	inputActorProvider   InputActorProvider
	outputActorProvider  OutputActorProvider
	displayActorProvider DisplayActorProvider

	logger *zap.Logger
}

type healthCheckResult struct {
	samplerActorHealthy bool
	inputActorHealthy   bool
	outputActorHealthy  bool
	monitorActorHealthy bool
	checksReceived      int
	respondTo           *actor.PID
}

func NewMasterActor(config *config.Config, controller *service.ModeController,
	samplerActorProvider SamplerActorProvider, inputActorProvider InputActorProvider,
	outputActorProvider OutputActorProvider, displayActorProvider DisplayActorProvider,
	logger *zap.Logger) *MasterActor {
	act := &MasterActor{
		config:               config,
		controller:           controller,
		behavior:             actor.NewBehavior(),
		stash:                &Stash{},
		logger:               ActorLogger(domain.ACTOR_ID_MASTER, logger),
		eventStream:          &eventstream.EventStream{},
		samplerActorProvider: samplerActorProvider,
		inputActorProvider:   inputActorProvider,
		outputActorProvider:  outputActorProvider,
		displayActorProvider: displayActorProvider,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

// EventStream exposes the status event bus, e.g. for extra sinks.
func (state *MasterActor) EventStream() *eventstream.EventStream {
	return state.eventStream
}

func (state *MasterActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MasterActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		state.currentHealthCheck = healthCheckResult{}
		state.currentHealthCheck.reset()

		// hardware adapters first: the monitor needs their PIDs
		samplerPID, err := state.startHardwareActor(ctx, domain.ACTOR_ID_SAMPLER, func() actor.Actor {
			return state.samplerActorProvider()
		})
		if err != nil {
			panic(err)
		}
		state.samplerActor = samplerPID

		inputPID, err := state.startHardwareActor(ctx, domain.ACTOR_ID_INPUT, func() actor.Actor {
			return state.inputActorProvider()
		})
		if err != nil {
			panic(err)
		}
		state.inputActor = inputPID

		outputPID, err := state.startHardwareActor(ctx, domain.ACTOR_ID_OUTPUT, func() actor.Actor {
			return state.outputActorProvider()
		})
		if err != nil {
			panic(err)
		}
		state.outputActor = outputPID

		monitorPID, err := state.startMonitorActor(ctx)
		if err != nil {
			panic(err)
		}
		state.monitorActor = monitorPID

		displayPID, err := state.startDisplayActor(ctx)
		if err != nil {
			panic(err)
		}
		state.displayActor = displayPID

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset()
		state.currentHealthCheck.respondTo = ctx.Sender()
		for _, pid := range []*actor.PID{state.samplerActor, state.inputActor, state.outputActor, state.monitorActor} {
			target := pid
			PipeToSelfWithRecover(ctx, ctx.RequestFuture(target, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
				return domain.ActorHealthResponse{
					Id:      target.GetId(),
					Healthy: false,
				}
			})
		}

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case domain.ForceDiagnosticRequest, domain.SetCalibrationRequest, domain.GetCalibrationRequest:
		// operator requests route to the monitor, replies go straight back
		ctx.RequestWithCustomSender(state.monitorActor, msg, ctx.Sender())
	case *actor.Terminated:
		// a child that fails past its supervisor's limits takes the
		// device down rather than running half-blind
		state.logger.Error("master@default child terminated", zap.String("who", msg.Who.GetId()))
		panic(fmt.Errorf("actor %s terminated", msg.Who.GetId()))
	default:
		state.logger.Debug("master@default stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_SAMPLER:
				state.currentHealthCheck.samplerActorHealthy = true
			case domain.ACTOR_ID_INPUT:
				state.currentHealthCheck.inputActorHealthy = true
			case domain.ACTOR_ID_OUTPUT:
				state.currentHealthCheck.outputActorHealthy = true
			case domain.ACTOR_ID_MONITOR:
				state.currentHealthCheck.monitorActorHealthy = true
			}
		}
		if state.currentHealthCheck.allReceived() {

			state.currentHealthCheck.respond(ctx)

			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		} else {
			ctx.SetReceiveTimeout(1 * time.Second)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

// startHardwareActor spawns a hardware adapter under exponential
// backoff: transient bus errors retry, persistent ones back off.
func (state *MasterActor) startHardwareActor(ctx actor.Context, id string, producer func() actor.Actor) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	props := actor.PropsFromProducer(producer, actor.WithSupervisor(supervisor))
	pid, err := ctx.SpawnNamed(props, id)
	if err != nil {
		return nil, err
	}

	return pid, nil
}

func (state *MasterActor) startMonitorActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	monitorProps := actor.PropsFromProducer(func() actor.Actor {
		return NewMonitorActor(state.config, state.controller, state.samplerActor, state.inputActor, state.outputActor, state.eventStream, state.logger)
	}, actor.WithSupervisor(supervisor))
	monitorPID, err := ctx.SpawnNamed(monitorProps, domain.ACTOR_ID_MONITOR)
	if err != nil {
		return nil, err
	}

	return monitorPID, nil
}

func (state *MasterActor) startDisplayActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	displayProps := actor.PropsFromProducer(func() actor.Actor {
		return state.displayActorProvider(state.eventStream)
	}, actor.WithSupervisor(supervisor))
	displayPID, err := ctx.SpawnNamed(displayProps, domain.ACTOR_ID_DISPLAY)
	if err != nil {
		return nil, err
	}

	return displayPID, nil
}

func (state *healthCheckResult) reset() {
	state.samplerActorHealthy = false
	state.inputActorHealthy = false
	state.outputActorHealthy = false
	state.monitorActorHealthy = false
	state.checksReceived = 0
}

func (state *healthCheckResult) allReceived() bool {
	return state.checksReceived == 4
}

func (state *healthCheckResult) allHealthy() bool {
	return state.samplerActorHealthy && state.inputActorHealthy && state.outputActorHealthy && state.monitorActorHealthy
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
