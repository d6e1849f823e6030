package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"i4.energy/across/loraterm/at"
	"i4.energy/across/loraterm/modem"
)

// Renderer forwards engine output to a bubbletea program. It implements
// modem.Renderer. Messages are queued so the engine loop never waits on a
// redraw; anything sent before Attach is held until then.
type Renderer struct {
	msgs chan tea.Msg
	done chan struct{}
	once sync.Once
}

func NewRenderer() *Renderer {
	return &Renderer{
		msgs: make(chan tea.Msg, 1024),
		done: make(chan struct{}),
	}
}

// Attach starts delivering queued messages to p. Call it once.
func (r *Renderer) Attach(p *tea.Program) {
	go func() {
		for {
			select {
			case msg := <-r.msgs:
				p.Send(msg)
			case <-r.done:
				return
			}
		}
	}()
}

// Stop ends delivery and makes further calls no-ops.
func (r *Renderer) Stop() {
	r.once.Do(func() { close(r.done) })
}

func (r *Renderer) push(msg tea.Msg) {
	select {
	case r.msgs <- msg:
	case <-r.done:
	}
}

func (r *Renderer) Response(resp at.Response) { r.push(responseMsg{resp}) }
func (r *Renderer) Notice(text string)        { r.push(noticeMsg{text}) }
func (r *Renderer) Status(s modem.Snapshot)   { r.push(statusMsg{s}) }
func (r *Renderer) Transmitted(s modem.Send)  { r.push(transmittedMsg{s}) }
func (r *Renderer) Activity(a modem.Activity) { r.push(activityMsg{a}) }

func (r *Renderer) Editor(text string, cursor int) {
	r.push(editorMsg{text: text, cursor: cursor})
}
