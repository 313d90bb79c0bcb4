// Package sim is an interactive bench: the full actor tree runs against
// fake hardware while a terminal UI plays the vehicle/trailer side.
package sim

import (
	"sevenway/internal/adapter/analog"
	"sevenway/internal/adapter/gpio"
	"sevenway/internal/core/domain"
	"sevenway/pkg/analogio"
)

// Harness bundles the fake hardware the simulated device runs on. The UI
// mutates signals and buttons; the actor tree polls them like the real
// peripherals.
type Harness struct {
	Buttons *gpio.FakeButtons
	Relays  *gpio.FakeRelays
	Reader  *analogio.TestReader

	// scaleFactor models the input voltage divider: the UI works in
	// circuit volts, the reader reports divider-output volts.
	scaleFactor float64
}

func NewHarness(scaleFactor float64) *Harness {
	return &Harness{
		Buttons:     gpio.NewFakeButtons(),
		Relays:      gpio.NewFakeRelays(),
		Reader:      analogio.NewTestReader(),
		scaleFactor: scaleFactor,
	}
}

// SetSignal injects a circuit voltage on one channel, as if the vehicle
// (or trailer) were driving that pin.
func (h *Harness) SetSignal(ch domain.Channel, volts float64) {
	h.Reader.SetVolts(analog.InputFor(ch), volts/h.scaleFactor)
}

// Sampler returns a VoltageSampler over the fake frontend.
func (h *Harness) Sampler() *analog.Sampler {
	return analog.NewSampler(h.Reader)
}
