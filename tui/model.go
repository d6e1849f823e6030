// Package tui is the full-screen terminal for a LoRa module.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"i4.energy/across/loraterm/at"
	"i4.energy/across/loraterm/modem"
)

const (
	maxScrollback = 500
	submitTimeout = time.Second
)

// Submitter takes operator input. *modem.Engine implements it.
type Submitter interface {
	Submit(ctx context.Context, ev modem.Event) error
}

// Model is the bubbletea model. Key presses go to the engine; everything
// shown arrives back through the Renderer.
type Model struct {
	engine Submitter
	title  string

	status   modem.Snapshot
	activity modem.Activity
	lines    []string
	text     string
	cursor   int

	width  int
	height int
}

func NewModel(engine Submitter, title string) Model {
	return Model{engine: engine, title: title}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case responseMsg:
		m.pushResponse(msg.response)
	case noticeMsg:
		m.pushLine(noticeStyle.Render(msg.text))
	case statusMsg:
		m.status = msg.snapshot
	case transmittedMsg:
		m.pushLine(sentStyle.Render(fmt.Sprintf("%5d < %s", msg.send.Addr, msg.send.Payload)))
	case activityMsg:
		m.activity = msg.activity
	case editorMsg:
		m.text, m.cursor = msg.text, msg.cursor
	case submitErrMsg:
		m.pushLine(noticeStyle.Render("input: " + msg.err.Error()))
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var events []modem.KeyEvent
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		events = append(events, modem.KeyEvent{Key: modem.KeyEnter})
	case tea.KeyBackspace:
		events = append(events, modem.KeyEvent{Key: modem.KeyBackspace})
	case tea.KeyDelete:
		events = append(events, modem.KeyEvent{Key: modem.KeyDelete})
	case tea.KeyLeft:
		events = append(events, modem.KeyEvent{Key: modem.KeyLeft})
	case tea.KeyRight:
		events = append(events, modem.KeyEvent{Key: modem.KeyRight})
	case tea.KeyEsc:
		events = append(events, modem.KeyEvent{Key: modem.KeyEscape})
	case tea.KeySpace:
		events = append(events, modem.KeyEvent{Key: modem.KeyRune, Char: ' '})
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r < 0x20 || r > 0x7e {
				continue
			}
			events = append(events, modem.KeyEvent{Key: modem.KeyRune, Char: byte(r)})
		}
	default:
		return m, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()
	for _, ev := range events {
		if err := m.engine.Submit(ctx, ev); err != nil {
			return m, func() tea.Msg { return submitErrMsg{err} }
		}
	}
	return m, nil
}

func (m *Model) pushResponse(r at.Response) {
	if v, ok := r.(at.Received); ok {
		msg := v.Message
		m.pushLine(receivedStyle.Render(fmt.Sprintf("%5d > %s", msg.Sender, msg.Payload)) +
			replyStyle.Render(fmt.Sprintf("  [%d dBm, %d dB]", msg.RSSI, msg.SNR)))
		return
	}
	line := "+" + r.Tag().String()
	if v := modem.Describe(r); v != "" {
		line += "=" + v
	}
	m.pushLine(replyStyle.Render(line))
}

func (m *Model) pushLine(s string) {
	m.lines = append(m.lines, s)
	if over := len(m.lines) - maxScrollback; over > 0 {
		m.lines = m.lines[over:]
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString(" ")
	b.WriteString(m.activityView())
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.statusLine()))
	b.WriteString("\n\n")

	lines := m.lines
	if room := m.height - 6; m.height > 0 && len(lines) > room {
		lines = lines[len(lines)-max(room, 0):]
	}
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.editorView())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: send  /CMD? /CMD=v: module command  esc: clear  ctrl+c: quit"))
	return b.String()
}

func (m Model) activityView() string {
	mark := " "
	switch m.activity {
	case modem.ActivityReceiving:
		mark = "R"
	case modem.ActivityTransmitting:
		mark = "T"
	}
	return activityStyles[mark].Render(mark)
}

func (m Model) statusLine() string {
	s := m.status
	var parts []string
	if s.Has(modem.FieldAddress) {
		parts = append(parts, fmt.Sprintf("addr %d", s.Address))
	}
	if s.Has(modem.FieldNetworkID) {
		parts = append(parts, fmt.Sprintf("net %d", s.NetworkID))
	}
	if s.Has(modem.FieldBand) {
		parts = append(parts, fmt.Sprintf("%.3f MHz", float64(s.Band)/1e6))
	}
	if s.Has(modem.FieldPower) {
		parts = append(parts, fmt.Sprintf("%d dBm", s.Power))
	}
	if s.Has(modem.FieldParameter) {
		parts = append(parts, "param "+s.Parameter.String())
	}
	if s.Has(modem.FieldMode) {
		parts = append(parts, "mode "+s.Mode)
	}
	if s.Has(modem.FieldUID) {
		parts = append(parts, "uid "+s.UID)
	}
	if s.Has(modem.FieldVersion) {
		parts = append(parts, s.Version)
	}
	if s.Has(modem.FieldLastReceive) {
		parts = append(parts, fmt.Sprintf("last %d (%d dBm, %d dB)", s.LastSender, s.LastRSSI, s.LastSNR))
	}
	if len(parts) == 0 {
		return "waiting for module"
	}
	return strings.Join(parts, " | ")
}

func (m Model) editorView() string {
	cursor := min(m.cursor, len(m.text))
	var under string
	rest := ""
	if cursor < len(m.text) {
		under = m.text[cursor : cursor+1]
		rest = m.text[cursor+1:]
	} else {
		under = " "
	}
	return fmt.Sprintf("> %s%s%s  %d/%d",
		m.text[:cursor], cursorStyle.Render(under), rest, len(m.text), modem.MaxTransmitLength)
}
