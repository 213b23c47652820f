package view

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/collector"
)

const importTimeout = 2 * time.Minute

// ImportPicker chooses a spreadsheet export and loads it into the collector.
type ImportPicker struct {
	collector *collector.Service

	filePicker filepicker.Model
	importing  string
	done       bool
}

type importResultMsg struct {
	count int
	err   error
}

func NewImportPicker(svc *collector.Service) ImportPicker {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt", ".tsv"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportPicker{collector: svc, filePicker: fp}
}

func (m ImportPicker) Init() tea.Cmd {
	return m.filePicker.Init()
}

// Done reports that the user left the picker or an import finished.
func (m ImportPicker) Done() bool { return m.done }

func (m ImportPicker) Update(msg tea.Msg) (ImportPicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.importing == "" {
		m.done = true
		return m, nil
	}

	if _, ok := msg.(importResultMsg); ok {
		m.importing = ""
		m.done = true

		return m, nil
	}

	if m.importing != "" {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.importing = path
		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportPicker) View() string {
	if m.importing != "" {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Importing from %s...", m.importing))
	}

	return lipgloss.NewStyle().Padding(1).Render(
		fmt.Sprintf("Select file to import (csv with ean, nome, valor):\n\n%s", m.filePicker.View()),
	)
}

func (m ImportPicker) importCmd(path string) tea.Cmd {
	svc := m.collector

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		n, err := svc.Import(ctx, f)

		return importResultMsg{count: n, err: err}
	}
}
