package main

import (
	"fmt"
	"os"

	adactor "sevenway/internal/adapter/actor"
	"sevenway/internal/config"
	"sevenway/internal/core/actor"
	"sevenway/internal/core/events"
	"sevenway/internal/core/port"
	"sevenway/internal/core/service"
	"sevenway/internal/sim"
	"sevenway/internal/util/actorutil"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/carlmjohnson/versioninfo"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// The simulator runs the complete actor tree against fake hardware and
// puts a terminal UI on the vehicle/trailer side of the connector.
func main() {

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config errors: %v\n", err)
		os.Exit(1)
	}

	// the UI owns the terminal, logs go nowhere unless requested
	logger := zap.NewNop()
	if os.Getenv("SIM_LOG_FILE") != "" {
		fileCfg := zap.NewDevelopmentConfig()
		fileCfg.OutputPaths = []string{os.Getenv("SIM_LOG_FILE")}
		fileCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
		logger = zap.Must(fileCfg.Build())
	}
	defer logger.Sync()

	harness := sim.NewHarness(cfg.Calibration.ScaleFactor)
	teaSink := sim.NewTeaSink()

	controller, err := service.NewModeController(cfg, nil, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "controller: %v\n", err)
		os.Exit(1)
	}

	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	var master *actor.MasterActor
	props := pactor.PropsFromProducer(func() pactor.Actor {
		master = actor.NewMasterActor(cfg, controller, func() *adactor.SamplerActor {
			return adactor.NewSamplerActor(harness.Sampler(), logger)
		}, func() *adactor.InputActor {
			return adactor.NewInputActor(harness.Buttons, logger)
		}, func() *adactor.OutputActor {
			return adactor.NewOutputActor(harness.Relays, logger)
		}, func(es *eventstream.EventStream) *adactor.DisplayActor {
			return adactor.NewDisplayActor(es, []port.StatusSink{teaSink}, logger)
		}, logger)
		return master
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		fmt.Fprintf(os.Stderr, "spawn master: %v\n", err)
		os.Exit(1)
	}

	for _, ev := range events.DeviceInfoUpdateEvents(cfg.Device.Name, versioninfo.Short()) {
		master.EventStream().Publish(ev)
	}

	program := tea.NewProgram(sim.NewModel(harness, teaSink), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ui error: %v\n", err)
	}

	ctx.StopFuture(pid).Wait()
	as.Shutdown()
}
