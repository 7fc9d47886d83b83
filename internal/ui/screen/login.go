package screen

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/prometheus-client/internal/api"
	"github.com/rovshanmuradov/prometheus-client/internal/ui"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/component"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/router"
	"github.com/rovshanmuradov/prometheus-client/internal/ui/style"
)

const redirectDelay = 1500 * time.Millisecond

// authResultMsg carries the outcome of a login or signup
type authResultMsg struct {
	username string
	err      error
}

// redirectMsg fires after the success banner has been shown
type redirectMsg struct {
	username string
}

// LoginScreen signs the user in or registers a new account
type LoginScreen struct {
	svc    *ui.Services
	width  int
	height int
	keyMap ui.KeyMap

	form    *component.Form
	helpBar *component.HelpBar

	signup     bool
	submitting bool
	succeeded  bool
	notice     notice
	banner     string
}

// NewLoginScreen creates the login screen. banner is shown above the form,
// for example after a session expired.
func NewLoginScreen(svc *ui.Services, banner string) *LoginScreen {
	keyMap := ui.DefaultKeyMap()
	s := &LoginScreen{
		svc:    svc,
		keyMap: keyMap,
		banner: banner,
		helpBar: component.NewHelpBar().
			SetKeyBindings(keyMap.ContextualHelp(ui.RouteLogin)),
	}
	s.buildForm()
	return s
}

func (s *LoginScreen) buildForm() {
	f := component.NewForm().
		AddField("username", component.FieldTypeText, "Username", true, "Your forge name")
	if s.signup {
		f.AddField("email", component.FieldTypeText, "Email", true, "you@example.com")
	}
	f.AddField("password", component.FieldTypePassword, "Password", true, "Your secret key")
	if s.form != nil {
		f.SetFieldValue("username", s.form.GetValue("username"))
	}
	f.SetSize(s.width, s.height)
	s.form = f
}

// Init initializes the login screen
func (s *LoginScreen) Init() tea.Cmd {
	return s.form.Init()
}

// Update handles screen updates
func (s *LoginScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.notice.dismiss(msg, s.keyMap.Dismiss) {
			return s, nil
		}
		if s.submitting || s.succeeded {
			return s, nil
		}
		switch {
		case key.Matches(msg, s.keyMap.ToggleMode):
			s.signup = !s.signup
			s.notice.set("", false)
			s.buildForm()
			return s, nil

		case key.Matches(msg, s.keyMap.Save),
			key.Matches(msg, s.keyMap.Enter) && s.form.AtLastField():
			return s, s.submit()
		}

		var cmd tea.Cmd
		s.form, cmd = s.form.Update(msg)
		return s, cmd

	case authResultMsg:
		s.submitting = false
		if msg.err != nil {
			return s, s.notice.fail(s.failure(msg.err))
		}
		s.succeeded = true
		s.banner = ""
		s.notice.set(s.successText(), false)
		username := msg.username
		return s, tea.Tick(redirectDelay, func(time.Time) tea.Msg {
			return redirectMsg{username: username}
		})

	case redirectMsg:
		return s, func() tea.Msg { return ui.LoggedInMsg{Username: msg.username} }

	case clearNoticeMsg:
		s.notice.clear(msg)
	}

	return s, nil
}

func (s *LoginScreen) successText() string {
	if s.signup {
		return "Account created! Redirecting..."
	}
	return "Login successful! Redirecting..."
}

// failure maps a login error to its message. A 401 here means bad
// credentials, not an expired session.
func (s *LoginScreen) failure(err error) string {
	if s.signup {
		return api.Detail(err, "Signup failed")
	}
	return api.Detail(err, "Login failed")
}

func (s *LoginScreen) submit() tea.Cmd {
	if !s.form.Validate() {
		return nil
	}
	s.submitting = true

	values := s.form.GetValues()
	username := strings.TrimSpace(values["username"])
	password := values["password"]
	email := strings.TrimSpace(values["email"])
	signup := s.signup

	svc := s.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(svc.Ctx, 30*time.Second)
		defer cancel()

		var err error
		if signup {
			_, err = svc.Auth.Signup(ctx, api.SignupRequest{Username: username, Email: email, Password: password})
		} else {
			_, err = svc.Auth.Login(ctx, api.LoginRequest{Username: username, Password: password})
		}
		if err != nil {
			svc.Logger.Warn("Authentication failed", zap.String("username", username), zap.Bool("signup", signup), zap.Error(err))
		}
		return authResultMsg{username: username, err: err}
	}
}

// View renders the login screen
func (s *LoginScreen) View() string {
	var b strings.Builder

	mode := "Enter the Forge"
	if s.signup {
		mode = "Claim your Fire"
	}
	b.WriteString(style.SubHeaderStyle.Render(mode))
	b.WriteString("\n")

	if s.banner != "" {
		b.WriteString(style.WarningStyle.Render(s.banner))
		b.WriteString("\n\n")
	}

	b.WriteString(s.form.View())

	if s.submitting {
		b.WriteString(style.MutedStyle.Render("Authenticating..."))
		b.WriteString("\n")
	}
	if n := s.notice.view(); n != "" {
		b.WriteString(n)
		b.WriteString("\n")
	}

	switchHint := "No account yet? ctrl+t to sign up"
	if s.signup {
		switchHint = "Already forged? ctrl+t to log in"
	}
	b.WriteString(style.MutedStyle.Render(switchHint))

	panel := style.ActivePanelStyle.Render(b.String())
	if s.width > 0 {
		panel = lipgloss.PlaceHorizontal(s.width, lipgloss.Center, panel)
	}
	return frame(s.width, "PROMETHEUS", panel, s.helpBar.SetWidth(s.width).View())
}

// SetSize sets the screen dimensions
func (s *LoginScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	formWidth := width / 2
	if formWidth < 40 {
		formWidth = 40
	}
	s.form.SetSize(formWidth, height)
	s.helpBar.SetWidth(width)
}
