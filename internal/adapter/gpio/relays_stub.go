//go:build !linux

package gpio

import (
	"errors"

	"sevenway/internal/core/domain"
)

// RealRelays is not available on non-Linux platforms.
type RealRelays struct{}

func NewRealRelays(chipName string, pins []int) *RealRelays {
	return &RealRelays{}
}

func (r *RealRelays) Open() error {
	return errors.New("gpio: not supported on this platform (requires Linux)")
}

func (r *RealRelays) Set(ch domain.Channel, on bool) error {
	return errors.New("gpio: not supported")
}

func (r *RealRelays) AllOff() error {
	return errors.New("gpio: not supported")
}

func (r *RealRelays) Close() error {
	return nil
}
