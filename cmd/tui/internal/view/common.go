package view

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const flashTTL = 3 * time.Second

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// Flash is a one-line status message that clears itself after flashTTL.
type Flash struct {
	text  string
	isErr bool
	seq   int
}

type clearFlashMsg struct {
	seq int
}

func (f Flash) Show(text string, isErr bool) (Flash, tea.Cmd) {
	f.seq++
	f.text = text
	f.isErr = isErr

	seq := f.seq

	return f, tea.Tick(flashTTL, func(time.Time) tea.Msg {
		return clearFlashMsg{seq: seq}
	})
}

// Update clears the message when its own timer fires; older timers are ignored.
func (f Flash) Update(msg tea.Msg) Flash {
	if m, ok := msg.(clearFlashMsg); ok && m.seq == f.seq {
		f.text = ""
	}

	return f
}

func (f Flash) View() string {
	if f.text == "" {
		return ""
	}

	if f.isErr {
		return errorStyle.Render(f.text)
	}

	return okStyle.Render(f.text)
}

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	panelStyle  = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))
)
