package sim

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sevenway/internal/core/domain"
)

const (
	voltageStep = 0.5
	voltageMax  = 15.0

	tapHold       = 150 * time.Millisecond
	longPressHold = 2300 * time.Millisecond
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("57")).Padding(0, 1)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	relayOnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	badStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	reportStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

type refreshMsg struct{}

type buttonReleasedMsg struct{}

// Model is the simulator UI: six voltage sliders playing the wiring under
// test, plus a live view of what the device senses and drives.
type Model struct {
	harness *Harness
	sink    *TeaSink

	selected int
	voltages [domain.ChannelCount]float64

	mode            domain.OperatingMode
	statuses        map[domain.Channel]domain.ChannelStatus
	report          string
	diagUnavailable bool
	splash          string

	quitting bool
}

func NewModel(harness *Harness, sink *TeaSink) Model {
	return Model{
		harness:  harness,
		sink:     sink,
		statuses: map[domain.Channel]domain.ChannelStatus{},
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listen(), refreshTick())
}

// listen drains one sink event per invocation; Update re-arms it.
func (m Model) listen() tea.Cmd {
	events := m.sink.Events()
	return func() tea.Msg {
		return <-events
	}
}

func refreshTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

// tapButton holds a fake button for a fixed duration on the command
// goroutine. The hold must outlast the debounce window plus one poll
// tick, or the device never sees the press.
func tapButton(set func(bool), hold time.Duration) tea.Cmd {
	return func() tea.Msg {
		set(true)
		time.Sleep(hold)
		set(false)
		return buttonReleasedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case refreshMsg:
		return m, refreshTick()
	case splashMsg:
		m.splash = fmt.Sprintf("%s %s", msg.name, msg.version)
		return m, m.listen()
	case modeMsg:
		m.mode = msg.mode
		return m, m.listen()
	case channelMsg:
		m.statuses[msg.status.Channel] = msg.status
		m.mode = msg.mode
		return m, m.listen()
	case faultsMsg:
		m.report = msg.report
		return m, m.listen()
	case diagnosticsUnavailableMsg:
		m.diagUnavailable = true
		return m, m.listen()
	case buttonReleasedMsg:
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < domain.ChannelCount-1 {
			m.selected++
		}
	case "left", "h":
		m.adjustVoltage(-voltageStep)
	case "right", "l":
		m.adjustVoltage(voltageStep)
	case "0":
		m.setVoltage(0)
	case "1":
		m.setVoltage(12.0)
	case "m":
		return m, tapButton(m.harness.Buttons.SetMode, tapHold)
	case "t":
		return m, tapButton(m.harness.Buttons.SetTest, tapHold)
	case "T":
		return m, tapButton(m.harness.Buttons.SetTest, longPressHold)
	}
	return m, nil
}

func (m *Model) adjustVoltage(delta float64) {
	m.setVoltage(m.voltages[m.selected] + delta)
}

func (m *Model) setVoltage(volts float64) {
	if volts < 0 {
		volts = 0
	}
	if volts > voltageMax {
		volts = voltageMax
	}
	m.voltages[m.selected] = volts
	m.harness.SetSignal(domain.Channels[m.selected], volts)
	if m.diagUnavailable {
		m.diagUnavailable = false
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "sevenway simulator"
	if m.splash != "" {
		title = m.splash
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("  ")
	b.WriteString(fmt.Sprintf("MODE: %s", m.mode))
	b.WriteString("\n\n")

	for idx, ch := range domain.Channels {
		cursor := "  "
		if idx == m.selected {
			cursor = selectedStyle.Render("> ")
		}

		relay := dimStyle.Render("off")
		if m.harness.Relays.State(ch) {
			relay = relayOnStyle.Render("ON ")
		}

		line := fmt.Sprintf("%s%-8s %s %5.1fV  relay %s  %s",
			cursor, ch, voltageBar(m.voltages[idx]), m.voltages[idx], relay, m.statusText(ch))
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.diagUnavailable {
		b.WriteString("\n")
		b.WriteString(badStyle.Render("DIAGNOSTICS UNAVAILABLE: no working sensor channels"))
		b.WriteString("\n")
	}

	if m.report != "" {
		b.WriteString("\n")
		b.WriteString(reportStyle.Render(m.report))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("j/k select  h/l adjust  0 zero  1 12V  m mode  t test  T hold test  q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) statusText(ch domain.Channel) string {
	status, ok := m.statuses[ch]
	if !ok {
		return dimStyle.Render("-")
	}

	var style lipgloss.Style
	switch {
	case status.Condition == domain.ConditionUnavailable:
		return badStyle.Render("SENSOR FAULT")
	case status.Condition != domain.ConditionNormal:
		style = warnStyle
	case status.State == domain.SignalOK:
		style = okStyle
	case status.State == domain.SignalOff:
		style = dimStyle
	default:
		style = warnStyle
	}

	text := fmt.Sprintf("%s %.1fV", status.State, status.Volts)
	if status.Condition != domain.ConditionNormal {
		text += fmt.Sprintf(" [%s]", status.Condition)
	}
	if status.Fault != "" {
		text += " " + status.Fault
	}
	return style.Render(text)
}

// voltageBar renders a 15-cell slider, one cell per volt.
func voltageBar(volts float64) string {
	filled := int(volts + 0.5)
	if filled > 15 {
		filled = 15
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", 15-filled) + "]"
}
