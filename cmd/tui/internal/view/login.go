package view

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/auth"
)

// LoggedInMsg is sent once the credentials are accepted.
type LoggedInMsg struct {
	Session auth.Session
}

type LoginModel struct {
	CommonModel
	auth *auth.Service

	form *huh.Form
	err  error
}

func NewLoginModel(svc *auth.Service) LoginModel {
	return LoginModel{auth: svc, form: buildLoginForm()}
}

func buildLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Placeholder("usuario@app.com").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("email is required")
					}

					return nil
				}),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword),
		),
	).WithWidth(40).WithShowHelp(false)
}

func (m LoginModel) Title() string { return "Login" }

func (m LoginModel) ShortHelp() string { return "Enter: next | ctrl+c: quit" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		return m, tea.Quit
	case huh.StateCompleted:
	default:
		return m, cmd
	}

	session, err := m.auth.Login(m.form.GetString("email"), m.form.GetString("password"))
	if err != nil {
		m.err = err
		m.form = buildLoginForm()

		return m, m.form.Init()
	}

	m.err = nil

	return m, func() tea.Msg { return LoggedInMsg{Session: session} }
}

func (m LoginModel) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Render("Tally"),
		"",
		m.form.View(),
	)

	if m.err != nil {
		msg := "Login failed"

		switch {
		case errors.Is(m.err, auth.ErrInvalidCredentials):
			msg = "Wrong email or password"
		case errors.Is(m.err, auth.ErrMissingCredentials):
			msg = "Email and password are required"
		}

		content = lipgloss.JoinVertical(lipgloss.Left, content, "", errorStyle.Render(msg))
	}

	return lipgloss.NewStyle().Padding(2).Render(content)
}
