//go:build !linux

package gpio

import "errors"

// RealButtons is not available on non-Linux platforms.
type RealButtons struct{}

func NewRealButtons(chipName string, modePin, testPin int) *RealButtons {
	return &RealButtons{}
}

func (b *RealButtons) Open() error {
	return errors.New("gpio: not supported on this platform (requires Linux)")
}

func (b *RealButtons) Read() (bool, bool, error) {
	return false, false, errors.New("gpio: not supported")
}

func (b *RealButtons) Close() error {
	return nil
}
