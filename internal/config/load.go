package config

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Load reads configuration from SEVENWAY_* environment variables and,
// when CONFIG_FILE points at a yaml file, from that file. Defaults cover
// every key so a bare environment boots a sensible device.
func Load() (*Config, error) {

	setDefaults()

	viper.SetEnvPrefix("sevenway")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks bounds that would make the control loop unsafe or
// meaningless. Called by Load and directly by tests.
func Validate(cfg *Config) error {
	if cfg.Monitor.TickIntervalMillis < 10 {
		return errors.New("config param monitor.tick_interval_millis should be >= 10")
	}
	if cfg.Monitor.SenseEveryTicks < 1 {
		return errors.New("config param monitor.sense_every_ticks should be >= 1")
	}
	if cfg.Buttons.DebounceMillis < 10 {
		return errors.New("config param buttons.debounce_millis should be >= 10")
	}
	if cfg.Buttons.LongPressMillis <= cfg.Buttons.DebounceMillis {
		return errors.New("config param buttons.long_press_millis must be > buttons.debounce_millis")
	}
	if cfg.Calibration.ScaleFactor <= 0 {
		return errors.New("config param calibration.scale_factor must be > 0")
	}
	if cfg.Calibration.NoiseFloor < 0 || cfg.Calibration.NoiseFloor >= cfg.Classifier.OKMinVolts {
		return errors.New("config param calibration.noise_floor must be in [0, classifier.ok_min_volts)")
	}
	if cfg.Classifier.OKMinVolts >= cfg.Classifier.HighMinVolts {
		return errors.New("config param classifier.ok_min_volts must be < classifier.high_min_volts")
	}
	if cfg.Diagnostics.WeakMinVolts >= cfg.Diagnostics.NormalMinVolts {
		return errors.New("config param diagnostics.weak_min_volts must be < diagnostics.normal_min_volts")
	}
	if cfg.Diagnostics.NormalMinVolts >= cfg.Diagnostics.NominalVolts {
		return errors.New("config param diagnostics.normal_min_volts must be < diagnostics.nominal_volts")
	}
	if cfg.Diagnostics.HistoryCapacity < cfg.Diagnostics.BaselineWindow {
		return errors.New("config param diagnostics.history_capacity must be >= diagnostics.baseline_window")
	}
	if cfg.Diagnostics.WeakPersistSamples < 1 || cfg.Diagnostics.CrossWireWindow < 1 {
		return errors.New("config params diagnostics.weak_persist_samples and diagnostics.cross_wire_window must be >= 1")
	}
	if cfg.Sequencer.FullPasses < 1 {
		return errors.New("config param sequencer.full_passes must be >= 1")
	}
	if len(cfg.Outputs.RelayPins) != 0 && len(cfg.Outputs.RelayPins) != 6 {
		return errors.New("config param outputs.relay_pins must list exactly 6 pins")
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("device.name", "sevenway")
	viper.SetDefault("sampler.backend", "ads1115")
	viper.SetDefault("sampler.i2c_bus", "")
	viper.SetDefault("sampler.i2c_addresses", []uint16{0x48, 0x49})
	viper.SetDefault("sampler.modbus_url", "rtu:///dev/ttyUSB0")
	viper.SetDefault("sampler.modbus_unit_id", 1)
	viper.SetDefault("sampler.modbus_base_register", 0)
	viper.SetDefault("buttons.chip", "gpiochip0")
	viper.SetDefault("buttons.mode_pin", 24)
	viper.SetDefault("buttons.test_pin", 25)
	viper.SetDefault("buttons.debounce_millis", 50)
	viper.SetDefault("buttons.long_press_millis", 2000)
	viper.SetDefault("outputs.chip", "gpiochip0")
	viper.SetDefault("outputs.relay_pins", []int{6, 9, 10, 11, 12, 13})
	viper.SetDefault("monitor.tick_interval_millis", 50)
	viper.SetDefault("monitor.sense_every_ticks", 5)
	viper.SetDefault("calibration.scale_factor", 4.7)
	viper.SetDefault("calibration.noise_floor", 0.3)
	viper.SetDefault("classifier.ok_min_volts", 9.0)
	viper.SetDefault("classifier.high_min_volts", 14.5)
	viper.SetDefault("classifier.brake_ok_min_volts", 6.0)
	viper.SetDefault("diagnostics.nominal_volts", 12.0)
	viper.SetDefault("diagnostics.normal_min_volts", 11.0)
	viper.SetDefault("diagnostics.weak_min_volts", 9.0)
	viper.SetDefault("diagnostics.ground_fault_drop_volts", 2.0)
	viper.SetDefault("diagnostics.ground_fault_max_drop_volts", 9.0)
	viper.SetDefault("diagnostics.cross_wire_similarity_volts", 1.0)
	viper.SetDefault("diagnostics.weak_persist_samples", 4)
	viper.SetDefault("diagnostics.cross_wire_window", 2)
	viper.SetDefault("diagnostics.baseline_window", 8)
	viper.SetDefault("diagnostics.history_capacity", 16)
	viper.SetDefault("sequencer.gap_millis", 300)
	viper.SetDefault("sequencer.full_passes", 3)
	viper.SetDefault("sequencer.short_press_sequence", "full")
	viper.SetDefault("sequencer.sequences_file", "")
}
