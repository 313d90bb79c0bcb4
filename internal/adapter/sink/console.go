// Package sink provides StatusSink implementations for the handheld's
// indicator surfaces.
package sink

import (
	"fmt"
	"io"
	"sync"

	"sevenway/internal/core/domain"
)

// channelLabels are the short names used on the 128x64 readout, where a
// full channel name does not fit next to the voltage.
var channelLabels = map[domain.Channel]string{
	domain.ChannelBrake:     "BRK",
	domain.ChannelTail:      "TAIL",
	domain.ChannelLeftTurn:  "LEFT",
	domain.ChannelRightTurn: "RGHT",
	domain.ChannelAux:       "AUX",
	domain.ChannelReverse:   "REV",
}

// ConsoleSink renders status lines to a writer. It is the default sink
// when the device runs headless and the reference implementation for the
// other surfaces.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleSink(out io.Writer) *ConsoleSink {
	return &ConsoleSink{out: out}
}

func (s *ConsoleSink) ShowSplash(name, version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "%s %s\n", name, version)
}

func (s *ConsoleSink) ShowMode(mode domain.OperatingMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "MODE: %s\n", mode)
}

func (s *ConsoleSink) ShowChannel(status domain.ChannelStatus, mode domain.OperatingMode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	label := channelLabels[status.Channel]
	switch status.Condition {
	case domain.ConditionUnavailable:
		fmt.Fprintf(s.out, "%-4s  ---   SENSOR FAULT\n", label)
	case domain.ConditionNormal:
		fmt.Fprintf(s.out, "%-4s %5.1fV %s\n", label, status.Volts, status.State)
	default:
		fmt.Fprintf(s.out, "%-4s %5.1fV %s [%s]\n", label, status.Volts, status.State, status.Condition)
	}
	if status.Fault != "" {
		fmt.Fprintf(s.out, "      fault: %s\n", status.Fault)
	}
}

func (s *ConsoleSink) ShowFaults(report string, faults []domain.FaultHypothesis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, report)
}

func (s *ConsoleSink) ShowDiagnosticsUnavailable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, "DIAGNOSTICS UNAVAILABLE: no working sensor channels")
}

func (s *ConsoleSink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out)
}
