package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/draft"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/money"
	"github.com/MrJamesThe3rd/tally/internal/plan"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateItem
	listStateBudget
	listStateConfirm
)

type ListModel struct {
	CommonModel
	app *app.App

	state listState
	table table.Model
	items []*ledger.LineItem
	flash Flash

	itemForm ItemForm
	editing  uuid.UUID // zero while adding

	form  *huh.Form
	onYes tea.Cmd

	// handoff is the finalized plan being shopped for; zero when none.
	handoff plan.Handoff
}

func NewListModel(a *app.App) ListModel {
	columns := []table.Column{
		{Title: "Barcode", Width: 15},
		{Title: "Name", Width: 30},
		{Title: "Unit", Width: 12},
		{Title: "Qty", Width: 5},
		{Title: "Total", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m := ListModel{app: a, table: t}
	m.refreshTable()

	return m
}

// WithPlan starts shopping for a finalized plan. The budget flow asks for a
// ceiling first when none is set.
func (m ListModel) WithPlan(h plan.Handoff) (ListModel, tea.Cmd) {
	m.handoff = h

	if h.Mode == plan.ModeBudget {
		if _, ok := m.app.Ledger.Ceiling(); !ok {
			updated, cmd := m.enterBudget()
			return updated.(ListModel), cmd
		}
	}

	return m, nil
}

func (m ListModel) Title() string { return "Shopping List" }

func (m ListModel) ShortHelp() string {
	switch m.state {
	case listStateItem:
		return "Enter: next/save | ctrl+s: scan | Esc: cancel"
	case listStateBudget, listStateConfirm:
		return "Enter: confirm | Esc: cancel"
	}

	if len(m.handoff.Items) > 0 {
		return "Esc: back | a: add | p: next planned | e: edit | d: delete | b: budget | c: clear"
	}

	return "Esc: back | a: add | e: edit | d: delete | b: budget | c: clear"
}

func (m ListModel) Init() tea.Cmd {
	return nil
}

type listSaveMsg struct {
	note string
	err  error
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case listSaveMsg:
		m.refreshTable()

		if msg.err != nil {
			return m.show(saveErrorText(msg.err), true)
		}

		return m.show(msg.note, false)

	case clearFlashMsg:
		m.flash = m.flash.Update(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-12, 5))

		return m, nil
	}

	switch m.state {
	case listStateItem:
		return m.updateItem(msg)
	case listStateBudget, listStateConfirm:
		return m.updateForm(msg)
	}

	return m.updateBrowse(msg)
}

func (m ListModel) show(text string, isErr bool) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.flash, cmd = m.flash.Show(text, isErr)

	return m, cmd
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "a":
			if m.app.Ledger.Policy().RequireCeiling {
				if _, ok := m.app.Ledger.Ceiling(); !ok {
					return m.show("Set a budget before adding items", true)
				}
			}

			m.editing = uuid.Nil
			m.itemForm = NewItemForm(m.app, "New item", draft.Fields{}, true)

			return m.enter(listStateItem, m.itemForm.Init())
		case "p":
			left := m.handoff.Outstanding(m.items)
			if len(left) == 0 {
				return m, nil
			}

			next := left[0]
			m.editing = uuid.Nil
			m.itemForm = NewItemForm(m.app, "Planned: "+next.Name, draft.FromPlanned(next).Fields(), true)

			return m.enter(listStateItem, m.itemForm.Init())
		case "e", "enter":
			item := m.selected()
			if item == nil {
				return m, nil
			}

			m.editing = item.ID
			m.itemForm = NewItemForm(m.app, "Edit item", draft.FromItem(item).Fields(), true)

			return m.enter(listStateItem, m.itemForm.Init())
		case "d":
			item := m.selected()
			if item == nil {
				return m, nil
			}

			return m.askConfirm(fmt.Sprintf("Delete %s?", item.Name), m.removeCmd(item.ID))
		case "b":
			return m.enterBudget()
		case "c":
			return m.askConfirm("Clear every item and the budget?", m.clearCmd())
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) enter(state listState, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.state = state
	m.table.Blur()

	return m, cmd
}

func (m ListModel) leave() ListModel {
	m.state = listStateBrowse
	m.form = nil
	m.onYes = nil
	m.table.Focus()

	return m
}

func (m ListModel) updateItem(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.itemForm, cmd = m.itemForm.Update(msg)

	switch {
	case m.itemForm.Cancelled():
		return m.leave(), nil
	case m.itemForm.Submitted():
		params, err := m.itemForm.Draft().Params()
		if err != nil {
			m.itemForm = m.itemForm.reopen(err)
			return m, nil
		}

		m.itemForm.Close()

		return m.leave(), m.saveItemCmd(m.editing, params)
	}

	return m, cmd
}

func (m ListModel) enterBudget() (tea.Model, tea.Cmd) {
	current := ""
	if ceiling, ok := m.app.Ledger.Ceiling(); ok {
		current = ceiling.StringFixed(2)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("ceiling").
				Title("Budget ceiling").
				Description("Leave empty to remove the budget").
				Placeholder("0,00").
				Value(&current).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}

					d, err := money.Parse(s)
					if err != nil {
						return errors.New("not a valid amount")
					}

					if d.IsNegative() {
						return errors.New("must not be negative")
					}

					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.onYes = nil

	return m.enter(listStateBudget, m.form.Init())
}

func (m ListModel) askConfirm(question string, onYes tea.Cmd) (tea.Model, tea.Cmd) {
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

	return m.enter(listStateConfirm, m.form.Init())
}

func (m ListModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.leave(), nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		return m.leave(), nil
	case huh.StateCompleted:
	default:
		return m, cmd
	}

	if m.state == listStateBudget {
		raw := m.form.GetString("ceiling")
		return m.leave(), m.saveBudgetCmd(raw)
	}

	onYes := m.onYes
	if !m.form.GetBool("ok") {
		onYes = nil
	}

	return m.leave(), onYes
}

func (m ListModel) selected() *ledger.LineItem {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.items) {
		return nil
	}

	return m.items[idx]
}

func (m *ListModel) refreshTable() {
	m.items = m.app.Ledger.Items()

	rows := make([]table.Row, 0, len(m.items))
	for _, item := range m.items {
		barcode := item.Barcode
		if barcode == "" {
			barcode = "-"
		}

		rows = append(rows, table.Row{
			barcode,
			item.Name,
			FormatMoney(item.UnitPrice),
			strconv.Itoa(item.Quantity),
			FormatMoney(item.LineTotal()),
		})
	}

	m.table.SetRows(rows)
}

func (m ListModel) View() string {
	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if len(m.items) == 0 {
		tableView = faintStyle.Render("The list is empty. Press a to add an item.")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, tableView, "", m.totalsView())

	if len(m.handoff.Items) > 0 {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.plannedView())
	}

	switch m.state {
	case listStateItem:
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.itemForm.View())
	case listStateBudget, listStateConfirm:
		if m.form != nil {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(48).Render(m.form.View()))
		}
	}

	if flash := m.flash.View(); flash != "" {
		content = flash + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m ListModel) totalsView() string {
	l := m.app.Ledger

	total := fmt.Sprintf("Total: %s", accentStyle.Render(FormatMoney(l.AggregateTotal())))

	ceiling, ok := l.Ceiling()
	if !ok {
		return total + faintStyle.Render("   (no budget, press b)")
	}

	remaining, _ := l.Remaining()
	budget := fmt.Sprintf("   Budget: %s   Remaining: %s", FormatMoney(ceiling), FormatMoney(remaining))

	if remaining.IsNegative() {
		return total + errorStyle.Render(budget+"   Over budget")
	}

	return total + budget
}

func (m ListModel) plannedView() string {
	left := m.handoff.Outstanding(m.items)
	if len(left) == 0 {
		return okStyle.Render("Everything planned is in the cart")
	}

	names := make([]string, len(left))
	for i, item := range left {
		names[i] = fmt.Sprintf("%d x %s", item.Quantity, item.Name)
	}

	return faintStyle.Render(fmt.Sprintf("Still to buy (p): %s", strings.Join(names, ", ")))
}

// Messages

func (m ListModel) saveItemCmd(id uuid.UUID, params ledger.Draft) tea.Cmd {
	l := m.app.Ledger

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if id == uuid.Nil {
			item, err := l.Add(ctx, params)
			if err != nil {
				return listSaveMsg{err: err}
			}

			return listSaveMsg{note: fmt.Sprintf("Added %s", item.Name)}
		}

		item, err := l.Update(ctx, id, params)
		if err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{note: fmt.Sprintf("Updated %s", item.Name)}
	}
}

func (m ListModel) removeCmd(id uuid.UUID) tea.Cmd {
	l := m.app.Ledger

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if err := l.Remove(ctx, id); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{note: "Item removed"}
	}
}

func (m ListModel) clearCmd() tea.Cmd {
	l := m.app.Ledger

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if err := l.ClearAll(ctx); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{note: "List cleared"}
	}
}

func (m ListModel) saveBudgetCmd(raw string) tea.Cmd {
	l := m.app.Ledger

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if raw == "" {
			if err := l.SetBudgetCeiling(ctx, nil); err != nil {
				return listSaveMsg{err: err}
			}

			return listSaveMsg{note: "Budget removed"}
		}

		amount, err := money.Parse(raw)
		if err != nil {
			return listSaveMsg{err: err}
		}

		if err := l.SetBudgetCeiling(ctx, &amount); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{note: fmt.Sprintf("Budget set to %s", FormatMoney(amount))}
	}
}

func saveErrorText(err error) string {
	var verr *ledger.ValidationError

	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, ledger.ErrCeilingRequired):
		return "Set a budget before adding items"
	case errors.Is(err, ledger.ErrNotFound):
		return "Item no longer exists"
	}

	return fmt.Sprintf("Error saving: %v", err)
}
