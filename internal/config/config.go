package config

import (
	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level

	Device      DeviceConfig      `mapstructure:"device"`
	Sampler     SamplerConfig     `mapstructure:"sampler"`
	Buttons     ButtonsConfig     `mapstructure:"buttons"`
	Outputs     OutputsConfig     `mapstructure:"outputs"`
	Monitor     MonitorConfig     `mapstructure:"monitor"`
	Calibration CalibrationConfig `mapstructure:"calibration"`
	Classifier  ClassifierConfig  `mapstructure:"classifier"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
	Sequencer   SequencerConfig   `mapstructure:"sequencer"`
}

type DeviceConfig struct {
	Name string `mapstructure:"name"`
}

// SamplerConfig selects the acquisition backend. "ads1115" is the
// handheld's two-board I2C frontend; "modbusdaq" is a serial RTU analog
// input module used on the bench.
type SamplerConfig struct {
	Backend string `mapstructure:"backend"`

	I2CBus       string   `mapstructure:"i2c_bus"`
	I2CAddresses []uint16 `mapstructure:"i2c_addresses"`

	ModbusURL          string `mapstructure:"modbus_url"`
	ModbusUnitId       uint   `mapstructure:"modbus_unit_id"`
	ModbusBaseRegister uint16 `mapstructure:"modbus_base_register"`
}

type ButtonsConfig struct {
	Chip            string `mapstructure:"chip"`
	ModePin         int    `mapstructure:"mode_pin"`
	TestPin         int    `mapstructure:"test_pin"`
	DebounceMillis  uint32 `mapstructure:"debounce_millis"`
	LongPressMillis uint32 `mapstructure:"long_press_millis"`
}

type OutputsConfig struct {
	Chip      string `mapstructure:"chip"`
	RelayPins []int  `mapstructure:"relay_pins"`
}

// MonitorConfig times the control loop. Buttons are sampled every tick;
// channel sensing runs every SenseEveryTicks ticks.
type MonitorConfig struct {
	TickIntervalMillis uint32 `mapstructure:"tick_interval_millis"`
	SenseEveryTicks    uint32 `mapstructure:"sense_every_ticks"`
}

type CalibrationConfig struct {
	// ScaleFactor reverses the input voltage divider
	// (10K/2.7K -> (10K+2.7K)/2.7K = 4.7).
	ScaleFactor float64 `mapstructure:"scale_factor"`
	NoiseFloor  float64 `mapstructure:"noise_floor"`
}

type ClassifierConfig struct {
	OKMinVolts   float64 `mapstructure:"ok_min_volts"`
	HighMinVolts float64 `mapstructure:"high_min_volts"`
	// BrakeOKMinVolts lowers the OK edge for the brake circuit, which
	// can carry proportional/PWM-derived voltages.
	BrakeOKMinVolts float64 `mapstructure:"brake_ok_min_volts"`
}

// DiagnosticsConfig carries the rule thresholds. These are design
// defaults derived from nominal 12V signal behavior, not measured truth;
// all of them are overridable.
type DiagnosticsConfig struct {
	NominalVolts             float64 `mapstructure:"nominal_volts"`
	NormalMinVolts           float64 `mapstructure:"normal_min_volts"`
	WeakMinVolts             float64 `mapstructure:"weak_min_volts"`
	GroundFaultDropVolts     float64 `mapstructure:"ground_fault_drop_volts"`
	GroundFaultMaxDropVolts  float64 `mapstructure:"ground_fault_max_drop_volts"`
	CrossWireSimilarityVolts float64 `mapstructure:"cross_wire_similarity_volts"`
	WeakPersistSamples       int     `mapstructure:"weak_persist_samples"`
	CrossWireWindow          int     `mapstructure:"cross_wire_window"`
	BaselineWindow           int     `mapstructure:"baseline_window"`
	HistoryCapacity          int     `mapstructure:"history_capacity"`
}

type SequencerConfig struct {
	GapMillis uint32 `mapstructure:"gap_millis"`
	// FullPasses is how many passes a full=true run repeats.
	FullPasses int `mapstructure:"full_passes"`
	// ShortPressSequence names the pattern a trailer-mode short press
	// runs once: full, quick, turn or hazard.
	ShortPressSequence string `mapstructure:"short_press_sequence"`
	// SequencesFile optionally overrides the built-in patterns (yaml).
	SequencesFile string `mapstructure:"sequences_file"`
}
