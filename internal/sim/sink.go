package sim

import (
	tea "github.com/charmbracelet/bubbletea"

	"sevenway/internal/core/domain"
)

// Messages delivered from the display actor into the UI loop.

type splashMsg struct {
	name    string
	version string
}

type modeMsg struct {
	mode domain.OperatingMode
}

type channelMsg struct {
	status domain.ChannelStatus
	mode   domain.OperatingMode
}

type faultsMsg struct {
	report string
	faults []domain.FaultHypothesis
}

type diagnosticsUnavailableMsg struct{}

// TeaSink implements the StatusSink port by forwarding every update into
// a channel the UI drains. The channel is buffered and drops on overflow
// so a stalled UI never blocks the display actor.
type TeaSink struct {
	events chan tea.Msg
}

func NewTeaSink() *TeaSink {
	return &TeaSink{events: make(chan tea.Msg, 256)}
}

// Events is drained by the UI's listen command.
func (s *TeaSink) Events() <-chan tea.Msg {
	return s.events
}

func (s *TeaSink) send(msg tea.Msg) {
	select {
	case s.events <- msg:
	default:
	}
}

func (s *TeaSink) ShowSplash(name, version string) {
	s.send(splashMsg{name: name, version: version})
}

func (s *TeaSink) ShowMode(mode domain.OperatingMode) {
	s.send(modeMsg{mode: mode})
}

func (s *TeaSink) ShowChannel(status domain.ChannelStatus, mode domain.OperatingMode) {
	s.send(channelMsg{status: status, mode: mode})
}

func (s *TeaSink) ShowFaults(report string, faults []domain.FaultHypothesis) {
	s.send(faultsMsg{report: report, faults: faults})
}

func (s *TeaSink) ShowDiagnosticsUnavailable() {
	s.send(diagnosticsUnavailableMsg{})
}

func (s *TeaSink) Clear() {}
