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
	"github.com/MrJamesThe3rd/tally/internal/plan"
)

type planState int

const (
	planStateBrowse planState = iota
	planStateAdd
	planStateConfirm
	planStateFinalize
)

// PlanFinalizedMsg asks the parent to open the shopping list with the plan.
type PlanFinalizedMsg struct {
	Handoff plan.Handoff
}

// PlanModel edits the pre-shopping plan: names and quantities, no prices.
type PlanModel struct {
	CommonModel
	app *app.App

	state planState
	table table.Model
	items []plan.Item
	flash Flash

	form  *huh.Form
	onYes tea.Cmd
}

type planSaveMsg struct {
	note string
	err  error
}

func NewPlanModel(a *app.App) PlanModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Qty", Width: 5},
			{Title: "Name", Width: 40},
		}),
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

	m := PlanModel{app: a, table: t}
	m.refreshTable()

	return m
}

func (m PlanModel) Title() string { return "Plan" }

func (m PlanModel) ShortHelp() string {
	if m.state != planStateBrowse {
		return "Enter: confirm | Esc: cancel"
	}

	return "Esc: back | a: add | +/-: quantity | d: delete | c: clear | f: finalize"
}

func (m PlanModel) Init() tea.Cmd {
	return nil
}

func (m PlanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case planSaveMsg:
		m.refreshTable()

		if msg.err != nil {
			return m.show(planErrorText(msg.err), true)
		}

		return m.show(msg.note, false)

	case clearFlashMsg:
		m.flash = m.flash.Update(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-10, 5))

		return m, nil
	}

	if m.state != planStateBrowse {
		return m.updateForm(msg)
	}

	return m.updateBrowse(msg)
}

func (m PlanModel) show(text string, isErr bool) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.flash, cmd = m.flash.Show(text, isErr)

	return m, cmd
}

func (m PlanModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "a":
			return m.enterAdd()
		case "+", "=":
			if item, ok := m.selected(); ok {
				return m, m.adjustCmd(item.ID, 1)
			}

			return m, nil
		case "-":
			if item, ok := m.selected(); ok {
				return m, m.adjustCmd(item.ID, -1)
			}

			return m, nil
		case "d":
			if item, ok := m.selected(); ok {
				return m.askConfirm(fmt.Sprintf("Delete %s?", item.Name), m.removeCmd(item.ID))
			}

			return m, nil
		case "c":
			if len(m.items) == 0 {
				return m, nil
			}

			return m.askConfirm("Delete every planned item?", m.clearCmd())
		case "f":
			if len(m.items) == 0 {
				return m.show("Plan something first", true)
			}

			return m.enterFinalize()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m PlanModel) enter(state planState, form *huh.Form) (tea.Model, tea.Cmd) {
	m.state = state
	m.form = form
	m.table.Blur()

	return m, form.Init()
}

func (m PlanModel) leave() PlanModel {
	m.state = planStateBrowse
	m.form = nil
	m.onYes = nil
	m.table.Focus()

	return m
}

func (m PlanModel) enterAdd() (tea.Model, tea.Cmd) {
	qty := "1"

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Item").
				Placeholder("e.g. skimmed milk").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}

					return nil
				}),
			huh.NewInput().
				Key("qty").
				Title("Quantity").
				Value(&qty).
				Validate(func(s string) error {
					if n, err := strconv.Atoi(strings.TrimSpace(s)); err != nil || n < 1 {
						return errors.New("must be a whole number of at least 1")
					}

					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	return m.enter(planStateAdd, form)
}

func (m PlanModel) enterFinalize() (tea.Model, tea.Cmd) {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("mode").
				Title("Ready to shop?").
				Description("How do you want to track spending?").
				Options(
					huh.NewOption("Sum everything in the cart", string(plan.ModeSum)),
					huh.NewOption("Stay within a budget", string(plan.ModeBudget)),
				),
		),
	).WithWidth(45).WithShowHelp(false)

	return m.enter(planStateFinalize, form)
}

func (m PlanModel) askConfirm(question string, onYes tea.Cmd) (tea.Model, tea.Cmd) {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("ok").
				Title(question).
				Affirmative("Yes").
				Negative("No"),
		),
	).WithWidth(45).WithShowHelp(false)

	m.onYes = onYes

	return m.enter(planStateConfirm, form)
}

func (m PlanModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
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

	switch m.state {
	case planStateAdd:
		qty, _ := strconv.Atoi(strings.TrimSpace(m.form.GetString("qty")))
		name := m.form.GetString("name")

		return m.leave(), m.addCmd(name, qty)
	case planStateFinalize:
		mode := plan.Mode(m.form.GetString("mode"))
		return m.leave(), m.finalizeCmd(mode)
	}

	onYes := m.onYes
	if !m.form.GetBool("ok") {
		onYes = nil
	}

	return m.leave(), onYes
}

func (m PlanModel) selected() (plan.Item, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.items) {
		return plan.Item{}, false
	}

	return m.items[idx], true
}

func (m *PlanModel) refreshTable() {
	m.items = m.app.Plan.Items()

	rows := make([]table.Row, 0, len(m.items))
	for _, item := range m.items {
		rows = append(rows, table.Row{strconv.Itoa(item.Quantity), item.Name})
	}

	m.table.SetRows(rows)
}

func (m PlanModel) View() string {
	content := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	if len(m.items) == 0 {
		content = faintStyle.Render("Nothing planned yet. Press a to add an item.")
	}

	if m.form != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(48).Render(m.form.View()))
	}

	if flash := m.flash.View(); flash != "" {
		content = flash + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

func (m PlanModel) addCmd(name string, qty int) tea.Cmd {
	p := m.app.Plan

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		item, err := p.Add(ctx, name, qty)
		if err != nil {
			return planSaveMsg{err: err}
		}

		return planSaveMsg{note: fmt.Sprintf("Planned %d x %s", item.Quantity, item.Name)}
	}
}

func (m PlanModel) adjustCmd(id uuid.UUID, delta int) tea.Cmd {
	p := m.app.Plan

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		item, err := p.Adjust(ctx, id, delta)
		if err != nil {
			return planSaveMsg{err: err}
		}

		return planSaveMsg{note: fmt.Sprintf("%s: %d", item.Name, item.Quantity)}
	}
}

func (m PlanModel) removeCmd(id uuid.UUID) tea.Cmd {
	p := m.app.Plan

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if err := p.Remove(ctx, id); err != nil {
			return planSaveMsg{err: err}
		}

		return planSaveMsg{note: "Item removed"}
	}
}

func (m PlanModel) clearCmd() tea.Cmd {
	p := m.app.Plan

	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if err := p.ClearAll(ctx); err != nil {
			return planSaveMsg{err: err}
		}

		return planSaveMsg{note: "Plan cleared"}
	}
}

func (m PlanModel) finalizeCmd(mode plan.Mode) tea.Cmd {
	p := m.app.Plan

	return func() tea.Msg {
		h, err := p.Finalize(mode)
		if err != nil {
			return planSaveMsg{err: err}
		}

		return PlanFinalizedMsg{Handoff: h}
	}
}

func planErrorText(err error) string {
	switch {
	case errors.Is(err, plan.ErrValidation):
		return err.Error()
	case errors.Is(err, plan.ErrNotFound):
		return "Item no longer exists"
	case errors.Is(err, plan.ErrEmpty):
		return "Plan something first"
	}

	return fmt.Sprintf("Error saving: %v", err)
}
