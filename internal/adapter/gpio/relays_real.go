//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"sevenway/internal/core/domain"
)

// RealRelays drives the six test-signal relays, active-high, one GPIO
// line per channel in canonical channel order.
type RealRelays struct {
	chipName string
	pins     []int

	chip  *gpiocdev.Chip
	lines map[domain.Channel]*gpiocdev.Line
}

func NewRealRelays(chipName string, pins []int) *RealRelays {
	return &RealRelays{
		chipName: chipName,
		pins:     pins,
	}
}

func (r *RealRelays) Open() error {
	if len(r.pins) != domain.ChannelCount {
		return fmt.Errorf("need %d relay pins, got %d", domain.ChannelCount, len(r.pins))
	}

	chip, err := gpiocdev.NewChip(r.chipName)
	if err != nil {
		return fmt.Errorf("open gpio chip: %w", err)
	}

	lines := map[domain.Channel]*gpiocdev.Line{}
	for i, ch := range domain.Channels {
		// request as output driven low so no relay clicks on at boot
		line, err := chip.RequestLine(r.pins[i], gpiocdev.AsOutput(0))
		if err != nil {
			for _, l := range lines {
				l.Close()
			}
			chip.Close()
			return fmt.Errorf("request relay pin %d (%s): %w", r.pins[i], ch, err)
		}
		lines[ch] = line
	}

	r.chip = chip
	r.lines = lines
	return nil
}

func (r *RealRelays) Set(ch domain.Channel, on bool) error {
	line, ok := r.lines[ch]
	if !ok {
		return fmt.Errorf("no relay line for channel %s", ch)
	}
	value := 0
	if on {
		value = 1
	}
	if err := line.SetValue(value); err != nil {
		return fmt.Errorf("set relay %s: %w", ch, err)
	}
	return nil
}

func (r *RealRelays) AllOff() error {
	var errs []error
	for _, ch := range domain.Channels {
		if err := r.Set(ch, false); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("all-off errors: %v", errs)
	}
	return nil
}

// Close deasserts every relay before releasing the lines. Outputs must
// never remain asserted past the driver's lifetime.
func (r *RealRelays) Close() error {
	var errs []error

	if r.lines != nil {
		if err := r.AllOff(); err != nil {
			errs = append(errs, err)
		}
		for ch, line := range r.lines {
			if err := line.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close relay %s: %w", ch, err))
			}
		}
		r.lines = nil
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		r.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
