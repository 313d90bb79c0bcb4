package util

import (
	"sevenway/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Device: config.DeviceConfig{
			Name: "sevenway-test",
		},
		Sampler: config.SamplerConfig{
			Backend:      "ads1115",
			I2CBus:       "",
			I2CAddresses: []uint16{0x48, 0x49},
		},
		Buttons: config.ButtonsConfig{
			Chip:            "gpiochip0",
			ModePin:         24,
			TestPin:         25,
			DebounceMillis:  50,
			LongPressMillis: 2000,
		},
		Outputs: config.OutputsConfig{
			Chip:      "gpiochip0",
			RelayPins: []int{6, 9, 10, 11, 12, 13},
		},
		Monitor: config.MonitorConfig{
			TickIntervalMillis: 50,
			SenseEveryTicks:    5,
		},
		Calibration: config.CalibrationConfig{
			ScaleFactor: 4.7,
			NoiseFloor:  0.3,
		},
		Classifier: config.ClassifierConfig{
			OKMinVolts:      9.0,
			HighMinVolts:    14.5,
			BrakeOKMinVolts: 6.0,
		},
		Diagnostics: config.DiagnosticsConfig{
			NominalVolts:             12.0,
			NormalMinVolts:           11.0,
			WeakMinVolts:             9.0,
			GroundFaultDropVolts:     2.0,
			GroundFaultMaxDropVolts:  9.0,
			CrossWireSimilarityVolts: 1.0,
			WeakPersistSamples:       4,
			CrossWireWindow:          2,
			BaselineWindow:           8,
			HistoryCapacity:          16,
		},
		Sequencer: config.SequencerConfig{
			GapMillis:          300,
			FullPasses:         3,
			ShortPressSequence: "quick",
		},
	}
}
