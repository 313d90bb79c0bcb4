//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealButtons reads the two front-panel buttons from actual hardware.
type RealButtons struct {
	chipName string
	modePin  int
	testPin  int

	chip     *gpiocdev.Chip
	modeLine *gpiocdev.Line
	testLine *gpiocdev.Line
}

func NewRealButtons(chipName string, modePin, testPin int) *RealButtons {
	return &RealButtons{
		chipName: chipName,
		modePin:  modePin,
		testPin:  testPin,
	}
}

func (b *RealButtons) Open() error {
	chip, err := gpiocdev.NewChip(b.chipName)
	if err != nil {
		return fmt.Errorf("open gpio chip: %w", err)
	}

	// buttons short the pin to ground, so request with pull-up
	modeLine, err := chip.RequestLine(b.modePin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return fmt.Errorf("request mode pin %d: %w", b.modePin, err)
	}

	testLine, err := chip.RequestLine(b.testPin, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		modeLine.Close()
		chip.Close()
		return fmt.Errorf("request test pin %d: %w", b.testPin, err)
	}

	b.chip = chip
	b.modeLine = modeLine
	b.testLine = testLine
	return nil
}

// Read returns the logical pressed state of both buttons. The raw levels
// are inverted: active-low wiring means raw 0 = pressed.
func (b *RealButtons) Read() (bool, bool, error) {
	modeRaw, err := b.modeLine.Value()
	if err != nil {
		return false, false, fmt.Errorf("read mode pin: %w", err)
	}

	testRaw, err := b.testLine.Value()
	if err != nil {
		return false, false, fmt.Errorf("read test pin: %w", err)
	}

	return modeRaw == 0, testRaw == 0, nil
}

func (b *RealButtons) Close() error {
	var errs []error

	if b.modeLine != nil {
		if err := b.modeLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close mode pin: %w", err))
		}
		b.modeLine = nil
	}
	if b.testLine != nil {
		if err := b.testLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close test pin: %w", err))
		}
		b.testLine = nil
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		b.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
