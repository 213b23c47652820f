package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/catalog"
	"github.com/MrJamesThe3rd/tally/internal/draft"
)

const (
	fieldBarcode = iota
	fieldName
	fieldPrice
	fieldQuantity
)

var errScanStopped = errors.New("scan stopped")

// ItemForm edits barcode, name, price and, for the shopping list, quantity.
// Enter on the barcode field looks it up; ctrl+s scans one with the camera.
type ItemForm struct {
	app   *app.App
	title string
	draft *draft.Form

	inputs  []textinput.Model
	focus   int
	spinner spinner.Model
	busy    string
	note    string
	err     error

	// stopScan cancels the scan this form started; nil when none runs.
	stopScan context.CancelFunc

	submitted bool
	cancelled bool
}

type lookupResultMsg struct {
	ticket draft.Ticket
	res    catalog.Result
	err    error
}

type scanResultMsg struct {
	ticket  draft.Ticket
	barcode string
	err     error
}

func NewItemForm(a *app.App, title string, initial draft.Fields, withQuantity bool) ItemForm {
	labels := []string{"Barcode", "Name", "Price"}
	if withQuantity {
		labels = append(labels, "Quantity")
	}

	f := draft.New(initial)
	fields := f.Fields()
	values := []string{fields.Barcode, fields.Name, fields.Price, fields.Quantity}

	inputs := make([]textinput.Model, len(labels))
	for i, label := range labels {
		in := textinput.New()
		in.Prompt = fmt.Sprintf("%-9s ", label+":")
		in.CharLimit = 120
		in.Width = 32
		in.SetValue(values[i])
		inputs[i] = in
	}

	inputs[fieldBarcode].Placeholder = "enter to look up"
	inputs[fieldPrice].Placeholder = "0,00"
	inputs[fieldBarcode].Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	return ItemForm{
		app:     a,
		title:   title,
		draft:   f,
		inputs:  inputs,
		spinner: s,
	}
}

func (m ItemForm) Init() tea.Cmd {
	return textinput.Blink
}

func (m ItemForm) Submitted() bool { return m.submitted }
func (m ItemForm) Cancelled() bool { return m.cancelled }

// Draft returns the form state. Callers Close the form once they accept it.
func (m ItemForm) Draft() *draft.Form { return m.draft }

// Close stops any scan and drops outstanding lookups.
func (m ItemForm) Close() {
	m.draft.Close()
	m.cancelScan()
}

// cancelScan releases the camera if this form ever started a scan. The
// context stops a scan that has not reached Session.Start yet; Stop ends one
// that has.
func (m ItemForm) cancelScan() {
	if m.stopScan == nil {
		return
	}

	m.stopScan()
	m.app.Scanner.Stop()
}

// reopen returns a submitted form to editing with err shown.
func (m ItemForm) reopen(err error) ItemForm {
	m.submitted = false
	m.err = err

	return m
}

func (m ItemForm) Update(msg tea.Msg) (ItemForm, tea.Cmd) {
	switch msg := msg.(type) {
	case lookupResultMsg:
		if !m.draft.Current(msg.ticket) {
			return m, nil
		}

		m.busy = ""

		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.draft.Apply(msg.ticket, msg.res)
		m.load()
		m.note = describeResult(msg.res)

		return m, nil

	case scanResultMsg:
		if !m.draft.Current(msg.ticket) {
			return m, nil
		}

		m.busy = ""
		m.stopScan = nil

		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.inputs[fieldBarcode].SetValue(msg.barcode)
		m.sync()

		return m.startLookup()

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.Close()
			m.cancelled = true

			return m, nil
		case "ctrl+s":
			return m.startScan()
		case "tab", "down":
			return m.move(1), nil
		case "shift+tab", "up":
			return m.move(-1), nil
		case "enter":
			if m.focus == fieldBarcode && strings.TrimSpace(m.inputs[fieldBarcode].Value()) != "" {
				return m.startLookup()
			}

			if m.focus < len(m.inputs)-1 {
				return m.move(1), nil
			}

			m.sync()
			m.submitted = true

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	m.sync()

	return m, cmd
}

func (m ItemForm) move(delta int) ItemForm {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()

	return m
}

// sync copies the inputs into the draft.
func (m ItemForm) sync() {
	fields := m.draft.Fields()
	fields.Barcode = m.inputs[fieldBarcode].Value()
	fields.Name = m.inputs[fieldName].Value()
	fields.Price = m.inputs[fieldPrice].Value()

	if len(m.inputs) > fieldQuantity {
		fields.Quantity = m.inputs[fieldQuantity].Value()
	}

	m.draft.Set(fields)
}

// load copies the draft into the inputs.
func (m ItemForm) load() {
	fields := m.draft.Fields()
	m.inputs[fieldBarcode].SetValue(fields.Barcode)
	m.inputs[fieldName].SetValue(fields.Name)
	m.inputs[fieldPrice].SetValue(fields.Price)
}

func (m ItemForm) startLookup() (ItemForm, tea.Cmd) {
	m.cancelScan()
	m.stopScan = nil

	m.sync()
	m.err = nil
	m.note = ""
	m.busy = "looking up"

	ticket := m.draft.BeginLookup()
	barcode := m.draft.Fields().Barcode
	resolver := m.app.Resolver

	lookup := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()

		res, err := resolver.Resolve(ctx, barcode)

		return lookupResultMsg{ticket: ticket, res: res, err: err}
	}

	return m, tea.Batch(lookup, m.spinner.Tick)
}

func (m ItemForm) startScan() (ItemForm, tea.Cmd) {
	m.cancelScan()

	m.err = nil
	m.note = ""
	m.busy = "scanning"

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	m.stopScan = cancel

	ticket := m.draft.BeginLookup()
	a := m.app

	scanning := func() tea.Msg {
		defer cancel()

		dev, err := a.PickCamera(ctx)
		if err != nil {
			return scanResultMsg{ticket: ticket, err: err}
		}

		outcomes, err := a.Scanner.Start(ctx, dev)
		if err != nil {
			return scanResultMsg{ticket: ticket, err: err}
		}

		o, ok := <-outcomes
		if !ok {
			if ctx.Err() != nil {
				return scanResultMsg{ticket: ticket, err: ctx.Err()}
			}

			return scanResultMsg{ticket: ticket, err: errScanStopped}
		}

		return scanResultMsg{ticket: ticket, barcode: o.Barcode, err: o.Err}
	}

	return m, tea.Batch(scanning, m.spinner.Tick)
}

func describeResult(res catalog.Result) string {
	var b strings.Builder

	if res.Found() {
		fmt.Fprintf(&b, "Found in %s", res.Product.Source)
	} else {
		b.WriteString("Product not found, fill in name and price")
	}

	for _, src := range res.Unreachable {
		fmt.Fprintf(&b, "\n%s catalog unreachable", src)
	}

	return b.String()
}

func (m ItemForm) View() string {
	rows := make([]string, 0, len(m.inputs)+4)
	rows = append(rows, lipgloss.NewStyle().Bold(true).Render(m.title), "")

	for _, in := range m.inputs {
		rows = append(rows, in.View())
	}

	rows = append(rows, "")

	switch {
	case m.busy != "":
		rows = append(rows, fmt.Sprintf("%s %s...", m.spinner.View(), m.busy))
	case m.err != nil:
		rows = append(rows, errorStyle.Render(m.err.Error()))
	case m.note != "":
		rows = append(rows, faintStyle.Render(m.note))
	}

	rows = append(rows, faintStyle.Render("enter: next/save | ctrl+s: scan | esc: cancel"))

	return panelStyle.Width(52).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
