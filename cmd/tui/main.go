package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/config"
)

type model struct {
	app     *app.App
	session auth.Session
	size    tea.WindowSizeMsg

	currentView View

	loginView     view.LoginModel
	listView      view.ListModel
	planView      view.PlanModel
	exportView    view.ExportModel
	collectorView view.CollectorModel
}

type View int

const (
	ViewLogin     View = 0
	ViewMenu      View = 1
	ViewList      View = 2
	ViewReport    View = 3
	ViewCollector View = 4
	ViewPlan      View = 5
)

func initialModel(a *app.App) model {
	m := model{
		app:         a,
		currentView: ViewLogin,
		loginView:   view.NewLoginModel(a.Auth),
	}

	ctx, cancel := view.OpCtx()
	defer cancel()

	session, ok, err := auth.LoadSession(ctx, a.State, time.Now())
	if err != nil {
		slog.Warn("failed to restore session", "error", err)
	}

	if ok {
		m.session = session
		m.currentView = ViewMenu
	}

	return m
}

func (m model) Init() tea.Cmd {
	if m.currentView == ViewLogin {
		return m.loginView.Init()
	}

	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.size = msg
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.LoggedInMsg:
		m.session = msg.Session
		m.currentView = ViewMenu

		ctx, cancel := view.OpCtx()
		defer cancel()

		if err := auth.SaveSession(ctx, m.app.State, msg.Session); err != nil {
			slog.Warn("failed to save session", "error", err)
		}

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	case view.PlanFinalizedMsg:
		m.currentView = ViewList
		m.listView, cmd = resize(view.NewListModel(m.app), m.size).WithPlan(msg.Handoff)

		return m, cmd
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewList:
		var newModel tea.Model
		newModel, cmd = m.listView.Update(msg)
		m.listView = newModel.(view.ListModel)
	case ViewPlan:
		var newModel tea.Model
		newModel, cmd = m.planView.Update(msg)
		m.planView = newModel.(view.PlanModel)
	case ViewReport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	case ViewCollector:
		var newModel tea.Model
		newModel, cmd = m.collectorView.Update(msg)
		m.collectorView = newModel.(view.CollectorModel)
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		m.currentView = ViewList
		m.listView = resize(view.NewListModel(m.app), m.size)

		return m, m.listView.Init()
	case "2":
		m.currentView = ViewPlan
		m.planView = resize(view.NewPlanModel(m.app), m.size)

		return m, m.planView.Init()
	case "3":
		m.currentView = ViewReport
		m.exportView = resize(view.NewExportModel(m.app.Report), m.size)

		return m, m.exportView.Init()
	case "4":
		if !m.session.IsManager() {
			return m, nil
		}

		m.currentView = ViewCollector
		m.collectorView = resize(view.NewCollectorModel(m.app), m.size)

		return m, m.collectorView.Init()
	case "l":
		ctx, cancel := view.OpCtx()
		defer cancel()

		if err := auth.ClearSession(ctx, m.app.State); err != nil {
			slog.Warn("failed to clear session", "error", err)
		}

		m.session = auth.Session{}
		m.currentView = ViewLogin
		m.loginView = view.NewLoginModel(m.app.Auth)

		return m, m.loginView.Init()
	}

	return m, nil
}

// resize hands a freshly built view the last known terminal size.
func resize[T tea.Model](v T, size tea.WindowSizeMsg) T {
	if size.Width == 0 {
		return v
	}

	updated, _ := v.Update(size)

	return updated.(T)
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		menu := fmt.Sprintf("Tally | %s\n\n", m.session.Name) +
			"1. Shopping List\n" +
			"2. Plan\n" +
			"3. Report\n"

		if m.session.IsManager() {
			menu += "4. Product Collector\n"
		}

		return lipgloss.NewStyle().Padding(2).Render(menu + "\nl. Logout\nq. Quit")
	case ViewList:
		return m.listView.View()
	case ViewPlan:
		return m.planView.View()
	case ViewReport:
		return m.exportView.View()
	case ViewCollector:
		return m.collectorView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open state", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(initialModel(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
