package analogio

import (
	"fmt"
	"sync"
)

// TestReader is a settable Reader for tests and the simulator. Voltages
// can be changed from another goroutine while acquisition runs.
type TestReader struct {
	mu     sync.Mutex
	volts  map[Input]float64
	errs   map[Input]error
	opened bool

	// OpenError, if set, is returned by Open.
	OpenError error
}

func NewTestReader() *TestReader {
	return &TestReader{
		volts: map[Input]float64{},
		errs:  map[Input]error{},
	}
}

func (r *TestReader) Open() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.OpenError != nil {
		return r.OpenError
	}
	r.opened = true
	return nil
}

func (r *TestReader) ReadVolts(in Input) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.opened {
		return 0, fmt.Errorf("test reader not open")
	}
	if err, ok := r.errs[in]; ok && err != nil {
		return 0, err
	}
	return r.volts[in], nil
}

func (r *TestReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = false
	return nil
}

// SetVolts sets the voltage returned for one input.
func (r *TestReader) SetVolts(in Input, volts float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.volts[in] = volts
}

// SetError makes reads of one input fail. Pass nil to clear.
func (r *TestReader) SetError(in Input, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[in] = err
}

// FailAll makes every input read fail. Pass nil to clear.
func (r *TestReader) FailAll(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for board := 0; board < 2; board++ {
		for channel := 0; channel < ChannelsPerBoard; channel++ {
			r.errs[Input{Board: board, Channel: channel}] = err
		}
	}
}
