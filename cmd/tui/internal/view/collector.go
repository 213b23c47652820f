package view

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/collector"
	"github.com/MrJamesThe3rd/tally/internal/draft"
	"github.com/MrJamesThe3rd/tally/internal/money"
)

type collectorState int

const (
	collectorStateList collectorState = iota
	collectorStateForm
	collectorStateConfirm
	collectorStateImport
	collectorStateUploading
)

// recordItem wraps a record to implement list.Item.
type recordItem struct {
	rec collector.Record
}

func (i recordItem) Title() string {
	price := faintStyle.Render("no price")
	if i.rec.Price != nil {
		price = FormatMoney(*i.rec.Price)
	}

	return fmt.Sprintf("%s  %s  %s", i.rec.Barcode, i.rec.Name, price)
}

func (i recordItem) Description() string { return "" }
func (i recordItem) FilterValue() string { return i.rec.Barcode + " " + i.rec.Name }

type recordDelegate struct{}

func (d recordDelegate) Height() int                             { return 1 }
func (d recordDelegate) Spacing() int                            { return 0 }
func (d recordDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d recordDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(recordItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = accentStyle.Render("> ")
	}

	fmt.Fprintf(w, "%s%s", cursor, item.Title())
}

// CollectorModel manages the records a manager gathers before uploading
// them to the shared collection.
type CollectorModel struct {
	CommonModel
	app *app.App

	state   collectorState
	list    list.Model
	flash   Flash
	spinner spinner.Model

	itemForm ItemForm
	editing  uuid.UUID
	picker   ImportPicker

	form  *huh.Form
	onYes tea.Cmd
}

type collectorSaveMsg struct {
	note string
	err  error
}

type uploadResultMsg struct {
	report collector.Report
	err    error
}

func NewCollectorModel(a *app.App) CollectorModel {
	l := list.New([]list.Item{}, recordDelegate{}, 0, 0)
	l.Title = "Collected products"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	m := CollectorModel{app: a, list: l, spinner: s}
	m.refreshList()

	return m
}

func (m CollectorModel) Title() string { return "Product Collector" }

func (m CollectorModel) ShortHelp() string {
	switch m.state {
	case collectorStateForm:
		return "Enter: next/save | ctrl+s: scan | Esc: cancel"
	case collectorStateConfirm:
		return "Enter: confirm | Esc: cancel"
	case collectorStateImport:
		return "Esc: back | Enter: select"
	case collectorStateUploading:
		return "Uploading..."
	}

	return "Esc: back | a: add | e: edit | d: delete | i: import | u: upload | c: clear | /: filter"
}

func (m CollectorModel) Init() tea.Cmd {
	return nil
}

func (m CollectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case collectorSaveMsg:
		m.refreshList()

		if msg.err != nil {
			return m.show(fmt.Sprintf("Error: %v", msg.err), true)
		}

		return m.show(msg.note, false)

	case importResultMsg:
		m.picker, _ = m.picker.Update(msg)
		m.state = collectorStateList
		m.refreshList()

		if msg.err != nil {
			return m.show(fmt.Sprintf("Import failed: %v", msg.err), true)
		}

		return m.show(fmt.Sprintf("Imported %d records", msg.count), false)

	case uploadResultMsg:
		m.state = collectorStateList
		m.refreshList()

		summary := fmt.Sprintf("Sent %d, already known %d", len(msg.report.Sent), len(msg.report.Skipped))
		if msg.err != nil {
			return m.show(fmt.Sprintf("%s. Upload stopped: %v (%d pending)", summary, msg.err, msg.report.Pending), true)
		}

		return m.show(summary, false)

	case spinner.TickMsg:
		if m.state == collectorStateUploading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)

			return m, cmd
		}

	case clearFlashMsg:
		m.flash = m.flash.Update(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)

		return m, nil
	}

	switch m.state {
	case collectorStateForm:
		return m.updateForm(msg)
	case collectorStateConfirm:
		return m.updateConfirm(msg)
	case collectorStateImport:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)

		if m.picker.Done() {
			m.state = collectorStateList
		}

		return m, cmd
	case collectorStateUploading:
		return m, nil
	}

	return m.updateList(msg)
}

func (m CollectorModel) show(text string, isErr bool) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.flash, cmd = m.flash.Show(text, isErr)

	return m, cmd
}

func (m CollectorModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			if m.list.FilterState() == list.FilterApplied {
				break // let the list handle it (reset filter)
			}

			return m, Back
		case "a":
			m.editing = uuid.Nil
			m.itemForm = NewItemForm(m.app, "New record", draft.Fields{}, false)
			m.state = collectorStateForm

			return m, m.itemForm.Init()
		case "e", "enter":
			rec, ok := m.selected()
			if !ok {
				return m, nil
			}

			fields := draft.Fields{Barcode: rec.Barcode, Name: rec.Name}
			if rec.Price != nil {
				fields.Price = rec.Price.StringFixed(2)
			}

			m.editing = rec.ID
			m.itemForm = NewItemForm(m.app, "Edit record", fields, false)
			m.state = collectorStateForm

			return m, m.itemForm.Init()
		case "d":
			rec, ok := m.selected()
			if !ok {
				return m, nil
			}

			return m.askConfirm(fmt.Sprintf("Delete %s?", rec.Name), m.removeCmd(rec.ID))
		case "c":
			return m.askConfirm("Delete every collected record?", m.clearCmd())
		case "i":
			m.picker = NewImportPicker(m.app.Collector)
			m.state = collectorStateImport

			return m, m.picker.Init()
		case "u":
			if len(m.app.Collector.List()) == 0 {
				return m.show("Nothing to upload", true)
			}

			m.state = collectorStateUploading

			return m, tea.Batch(m.uploadCmd(), m.spinner.Tick)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m CollectorModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.itemForm, cmd = m.itemForm.Update(msg)

	switch {
	case m.itemForm.Cancelled():
		m.state = collectorStateList
		return m, nil
	case m.itemForm.Submitted():
		params, err := recordParams(m.itemForm.Draft().Fields())
		if err != nil {
			m.itemForm = m.itemForm.reopen(err)
			return m, nil
		}

		m.itemForm.Close()
		m.state = collectorStateList

		return m, m.saveCmd(m.editing, params)
	}

	return m, cmd
}

func (m CollectorModel) askConfirm(question string, onYes tea.Cmd) (tea.Model, tea.Cmd) {
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("ok").
				Title(question).
				Affirmative("Yes").
				Negative("No"),
		),
	).WithWidth(45).WithShowHelp(false)

	m.onYes = onYes
	m.state = collectorStateConfirm

	return m, m.form.Init()
}

func (m CollectorModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = collectorStateList
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.state = collectorStateList
		return m, nil
	case huh.StateCompleted:
		m.state = collectorStateList

		if m.form.GetBool("ok") {
			return m, m.onYes
		}

		return m, nil
	}

	return m, cmd
}

func (m CollectorModel) selected() (collector.Record, bool) {
	item, ok := m.list.SelectedItem().(recordItem)
	if !ok {
		return collector.Record{}, false
	}

	return item.rec, true
}

func (m *CollectorModel) refreshList() {
	records := m.app.Collector.List()

	items := make([]list.Item, len(records))
	for i, rec := range records {
		items[i] = recordItem{rec: rec}
	}

	m.list.SetItems(items)
}

func (m CollectorModel) View() string {
	var content string

	switch m.state {
	case collectorStateImport:
		return m.picker.View()
	case collectorStateUploading:
		content = fmt.Sprintf("%s Uploading %d records...", m.spinner.View(), len(m.app.Collector.List()))
	default:
		content = m.list.View()
		if len(m.list.Items()) == 0 {
			content = faintStyle.Render("No records yet. Press a to add or i to import.")
		}
	}

	switch m.state {
	case collectorStateForm:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.itemForm.View())
	case collectorStateConfirm:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(48).Render(m.form.View()))
	}

	if flash := m.flash.View(); flash != "" {
		content = flash + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// recordParams converts form fields; an empty price is allowed.
func recordParams(f draft.Fields) (collector.Params, error) {
	p := collector.Params{Barcode: f.Barcode, Name: f.Name}

	if strings.TrimSpace(f.Price) == "" {
		return p, nil
	}

	price, err := money.Parse(f.Price)
	if err != nil {
		return p, fmt.Errorf("invalid price %q", f.Price)
	}

	p.Price = &price

	return p, nil
}

// Messages

func (m CollectorModel) saveCmd(id uuid.UUID, p collector.Params) tea.Cmd {
	svc := m.app.Collector

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if id == uuid.Nil {
			rec, err := svc.Add(ctx, p)
			if err != nil {
				return collectorSaveMsg{err: err}
			}

			return collectorSaveMsg{note: fmt.Sprintf("Added %s", rec.Name)}
		}

		rec, err := svc.Update(ctx, id, p)
		if err != nil {
			return collectorSaveMsg{err: err}
		}

		return collectorSaveMsg{note: fmt.Sprintf("Updated %s", rec.Name)}
	}
}

func (m CollectorModel) removeCmd(id uuid.UUID) tea.Cmd {
	svc := m.app.Collector

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if err := svc.Remove(ctx, id); err != nil {
			return collectorSaveMsg{err: err}
		}

		return collectorSaveMsg{note: "Record removed"}
	}
}

func (m CollectorModel) clearCmd() tea.Cmd {
	svc := m.app.Collector

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if err := svc.ClearAll(ctx); err != nil {
			return collectorSaveMsg{err: err}
		}

		return collectorSaveMsg{note: "Records cleared"}
	}
}

func (m CollectorModel) uploadCmd() tea.Cmd {
	svc := m.app.Collector

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()

		report, err := svc.Upload(ctx)

		return uploadResultMsg{report: report, err: err}
	}
}
