package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// StatusKind indicates severity for status messages/spinners.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

type statusLine struct {
	text string
	kind StatusKind
	id   int
}

type clearStatusMsg struct {
	id int
}

// setStatus shows text in the status bar. A positive ttl clears it again
// unless a newer status replaced it first.
func (a *App) setStatus(text string, kind StatusKind, ttl time.Duration) tea.Cmd {
	a.statusSeq++
	a.status = statusLine{text: text, kind: kind, id: a.statusSeq}
	if ttl <= 0 {
		return nil
	}
	id := a.statusSeq
	return tea.Tick(ttl, func(time.Time) tea.Msg { return clearStatusMsg{id: id} })
}

func (a *App) clearStatus(id int) {
	if a.status.id == id {
		a.status = statusLine{}
	}
}

func (s statusLine) render() string {
	switch s.kind {
	case StatusSuccess:
		return StatusSuccessStyle.Render("✓ " + s.text)
	case StatusWarn:
		return StatusWarnStyle.Render(s.text)
	case StatusError:
		return StatusErrorStyle.Render("✗ " + s.text)
	default:
		return StatusInfoStyle.Render(s.text)
	}
}
