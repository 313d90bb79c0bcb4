package gpio

import (
	"errors"
	"sync"

	"sevenway/internal/core/domain"
)

// FakeButtons is a ButtonReader with settable levels. The simulator UI
// writes levels from its own goroutine while the input actor polls, so
// access is mutex-protected.
type FakeButtons struct {
	mu   sync.Mutex
	mode bool
	test bool

	opened bool
	closed bool

	// ReadError, if set, is returned by every Read.
	ReadError error
}

func NewFakeButtons() *FakeButtons {
	return &FakeButtons{}
}

func (b *FakeButtons) Open() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened = true
	b.closed = false
	return nil
}

func (b *FakeButtons) Read() (bool, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ReadError != nil {
		return false, false, b.ReadError
	}
	if !b.opened || b.closed {
		return false, false, errors.New("fake buttons not open")
	}
	return b.mode, b.test, nil
}

func (b *FakeButtons) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// SetMode sets the mode button level. True means pressed.
func (b *FakeButtons) SetMode(pressed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mode = pressed
}

// SetTest sets the test button level. True means pressed.
func (b *FakeButtons) SetTest(pressed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.test = pressed
}

// FakeRelays records output states instead of driving hardware.
type FakeRelays struct {
	mu     sync.Mutex
	states map[domain.Channel]bool

	opened bool
	closed bool

	// SetError, if set, is returned by every Set.
	SetError error
}

func NewFakeRelays() *FakeRelays {
	return &FakeRelays{
		states: map[domain.Channel]bool{},
	}
}

func (r *FakeRelays) Open() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = true
	r.closed = false
	for _, ch := range domain.Channels {
		r.states[ch] = false
	}
	return nil
}

func (r *FakeRelays) Set(ch domain.Channel, on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SetError != nil {
		return r.SetError
	}
	if !r.opened || r.closed {
		return errors.New("fake relays not open")
	}
	r.states[ch] = on
	return nil
}

func (r *FakeRelays) AllOff() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range domain.Channels {
		r.states[ch] = false
	}
	return nil
}

func (r *FakeRelays) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range domain.Channels {
		r.states[ch] = false
	}
	r.closed = true
	return nil
}

// State returns the recorded level of one output.
func (r *FakeRelays) State(ch domain.Channel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[ch]
}

// States returns a copy of all recorded output levels.
func (r *FakeRelays) States() map[domain.Channel]bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[domain.Channel]bool, len(r.states))
	for ch, on := range r.states {
		out[ch] = on
	}
	return out
}

// AnyOn reports whether at least one output is asserted.
func (r *FakeRelays) AnyOn() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, on := range r.states {
		if on {
			return true
		}
	}
	return false
}

// Closed reports whether Close has been called.
func (r *FakeRelays) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
