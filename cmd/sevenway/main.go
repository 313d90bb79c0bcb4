package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "sevenway/internal/adapter/actor"
	"sevenway/internal/adapter/analog"
	"sevenway/internal/adapter/gpio"
	"sevenway/internal/adapter/sink"
	"sevenway/internal/config"
	"sevenway/internal/core/actor"
	"sevenway/internal/core/events"
	"sevenway/internal/core/port"
	"sevenway/internal/core/service"
	"sevenway/internal/util/actorutil"
	"sevenway/pkg/analogio"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

func main() {

	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Println(versioninfo.Short())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config errors", "error", err)
		os.Exit(1)
	}
	slog.Info("Using", "config", *cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())
	defer logger.Sync()

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	reader, err := buildReader(cfg)
	if err != nil {
		logger.Fatal("sampler backend", zap.Error(err))
	}

	sequences, err := loadSequences(cfg)
	if err != nil {
		logger.Fatal("sequences", zap.Error(err))
	}

	controller, err := service.NewModeController(cfg, sequences, logger)
	if err != nil {
		logger.Fatal("controller", zap.Error(err))
	}

	var master *actor.MasterActor
	props := pactor.PropsFromProducer(func() pactor.Actor {
		master = actor.NewMasterActor(cfg, controller, func() *adactor.SamplerActor {
			return adactor.NewSamplerActor(analog.NewSampler(reader), logger)
		}, func() *adactor.InputActor {
			return adactor.NewInputActor(gpio.NewRealButtons(cfg.Buttons.Chip, cfg.Buttons.ModePin, cfg.Buttons.TestPin), logger)
		}, func() *adactor.OutputActor {
			return adactor.NewOutputActor(gpio.NewRealRelays(cfg.Outputs.Chip, cfg.Outputs.RelayPins), logger)
		}, func(es *eventstream.EventStream) *adactor.DisplayActor {
			return adactor.NewDisplayActor(es, []port.StatusSink{sink.NewConsoleSink(os.Stdout)}, logger)
		}, logger)
		return master
	})
	pid, err := ctx.SpawnNamed(props, "master")
	if err != nil {
		logger.Fatal("spawn master", zap.Error(err))
	}

	// splash
	for _, ev := range events.DeviceInfoUpdateEvents(cfg.Device.Name, versioninfo.Short()) {
		master.EventStream().Publish(ev)
	}

	// wait for the interrupt signal
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	log.Println("shutting down gracefully")

	// stopping the tree forces all outputs off before the pins release
	ctx.StopFuture(pid).Wait()
	as.Shutdown()

	log.Println("Graceful shutdown complete.")
}

func buildReader(cfg *config.Config) (analogio.Reader, error) {
	switch cfg.Sampler.Backend {
	case "ads1115":
		return analogio.NewADS1115Reader(cfg.Sampler.I2CBus, cfg.Sampler.I2CAddresses), nil
	case "modbusdaq":
		return analogio.NewModbusDAQReader(cfg.Sampler.ModbusURL, uint8(cfg.Sampler.ModbusUnitId),
			cfg.Sampler.ModbusBaseRegister, 1*time.Second), nil
	default:
		return nil, fmt.Errorf("unknown sampler backend %q", cfg.Sampler.Backend)
	}
}

func loadSequences(cfg *config.Config) (map[string]service.Sequence, error) {
	if cfg.Sequencer.SequencesFile == "" {
		return nil, nil
	}
	return service.LoadSequences(cfg.Sequencer.SequencesFile)
}
