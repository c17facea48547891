package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SwopeYT/espybot-dashboard/internal/dashboard"
	"github.com/SwopeYT/espybot-dashboard/internal/session"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	logoutTimeout = 5 * time.Second
)

// Auth is the auth state holder driven by the TUI.
type Auth interface {
	dashboard.Auth
	CheckSession(ctx context.Context) session.State
	Login(ctx context.Context) error
	Logout(ctx context.Context)
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	auth    Auth
	shell   *dashboard.Shell
	width   int
	height  int
	guilds  list.Model
	spinner spinner.Model
	signing bool
	leaving bool
	err     error
	help    help.Model
	keys    keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, auth Auth, source dashboard.GuildSource) *Model {
	return &Model{
		ctx:     ctx,
		auth:    auth,
		shell:   dashboard.NewShell(auth, source),
		width:   defaultWidth,
		height:  defaultHeight,
		guilds:  newGuildList(nil, defaultWidth, defaultHeight),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.avatar)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

func newGuildList(items []list.Item, width, height int) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), width-4, height-8)
	l.Title = "Select a server"
	l.SetShowHelp(false)
	l.Styles.Title = styles.button
	return l
}

// Screen returns the screen currently shown.
func (m *Model) Screen() dashboard.Screen {
	return m.shell.Screen()
}

// Init starts the session check.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.checkSession())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.guilds.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case sessionCheckedMsg:
		return m, m.enterScreen()

	case loginDoneMsg:
		m.signing = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		return m, m.checkSession()

	case guildsFetchedMsg:
		if !m.shell.SetGuilds(msg.gen, msg.guilds) {
			return m, nil
		}
		m.guilds.SetItems(guildItems(msg.guilds.Guilds))
		m.guilds.ResetSelected()
		return m, nil

	case signedOutMsg:
		m.leaving = false
		m.shell.Forget()
		m.guilds.SetItems(nil)
		m.err = nil
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	screen := m.shell.Screen()
	filtering := screen == dashboard.ScreenServerSelect && m.guilds.FilterState() == list.Filtering

	if key.Matches(msg, m.keys.quit) && !filtering {
		return m, tea.Quit
	}
	if m.leaving {
		return m, nil
	}

	switch screen {
	case dashboard.ScreenSignIn:
		if key.Matches(msg, m.keys.login) && !m.signing {
			m.signing = true
			m.err = nil
			return m, m.login()
		}

	case dashboard.ScreenServerSelect:
		if filtering {
			return m.updateList(msg)
		}
		switch {
		case key.Matches(msg, m.keys.signOut):
			return m, m.signOut()
		case key.Matches(msg, m.keys.retry):
			if m.shell.Retry() {
				return m, m.enterScreen()
			}
		case key.Matches(msg, m.keys.enter):
			if m.shell.Guilds().Status != dashboard.GuildsLoaded {
				return m, nil
			}
			if item, ok := m.guilds.SelectedItem().(guildItem); ok {
				m.shell.Select(item.guild)
			}
			return m, nil
		default:
			return m.updateList(msg)
		}

	case dashboard.ScreenManage:
		switch {
		case key.Matches(msg, m.keys.change):
			m.shell.ChangeServer()
			return m, m.enterScreen()
		case key.Matches(msg, m.keys.signOut):
			return m, m.signOut()
		}
	}

	return m, nil
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.shell.Screen() != dashboard.ScreenServerSelect {
		return m, nil
	}
	var cmd tea.Cmd
	m.guilds, cmd = m.guilds.Update(msg)
	return m, cmd
}

// enterScreen starts the guild fetch when the server-selection screen is entered.
func (m *Model) enterScreen() tea.Cmd {
	if !m.shell.BeginFetch() {
		return nil
	}
	m.guilds.SetItems(nil)
	return m.fetchGuilds()
}

func (m *Model) checkSession() tea.Cmd {
	return func() tea.Msg {
		return sessionCheckedMsg{state: m.auth.CheckSession(m.ctx)}
	}
}

func (m *Model) login() tea.Cmd {
	return func() tea.Msg {
		return loginDoneMsg{err: m.auth.Login(m.ctx)}
	}
}

func (m *Model) fetchGuilds() tea.Cmd {
	gen := m.shell.Generation()
	return func() tea.Msg {
		return guildsFetchedMsg{gen: gen, guilds: m.shell.FetchGuilds(m.ctx)}
	}
}

// signOut ends the session in a command; the shell is cleared when signedOutMsg arrives.
func (m *Model) signOut() tea.Cmd {
	m.leaving = true
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, logoutTimeout)
		defer cancel()
		m.auth.Logout(ctx)
		return signedOutMsg{}
	}
}

// View renders the screen chosen by the shell.
func (m *Model) View() string {
	var body string
	switch m.shell.Screen() {
	case dashboard.ScreenLoading:
		body = m.renderLoading()
	case dashboard.ScreenSignIn:
		body = m.renderSignIn()
	case dashboard.ScreenServerSelect:
		body = m.renderServerSelect()
	case dashboard.ScreenManage:
		body = m.renderManage()
	}
	return styles.frame.Render(body)
}

func (m *Model) renderLoading() string {
	return fmt.Sprintf("%s %s\n%s", m.spinner.View(), styles.title.Render(dashboard.TextLoading),
		styles.help.Render(dashboard.TextAuthenticating))
}

func (m *Model) renderSignIn() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("ESPY"))
	b.WriteString("\n")
	b.WriteString(styles.button.Render(dashboard.TextSignIn))
	b.WriteString("\n\n")

	switch {
	case m.signing:
		b.WriteString(fmt.Sprintf("%s %s\n\n", m.spinner.View(), styles.help.Render("waiting for the browser...")))
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Sign in failed: %v", m.err)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.login, m.keys.quit}))
	return b.String()
}

func (m *Model) renderServerSelect() string {
	guilds := m.shell.Guilds()
	helpKeys := []key.Binding{m.keys.signOut, m.keys.quit}

	var body string
	switch guilds.Status {
	case dashboard.GuildsPending:
		body = fmt.Sprintf("%s %s", m.spinner.View(), styles.title.Render(dashboard.TextLoadingServers))
	case dashboard.GuildsEmpty:
		body = fmt.Sprintf("%s\n%s", styles.warn.Render(dashboard.TextNoServers), styles.help.Render(dashboard.TextAddBot))
	case dashboard.GuildsFailed:
		body = fmt.Sprintf("%s\n%s", styles.err.Render(dashboard.TextFetchFailed), styles.help.Render(guilds.Err.Error()))
		helpKeys = []key.Binding{m.keys.retry, m.keys.signOut, m.keys.quit}
	case dashboard.GuildsLoaded:
		body = m.guilds.View()
		helpKeys = []key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.signOut, m.keys.quit}
	}

	return fmt.Sprintf("%s\n\n%s", body, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderManage() string {
	guild := m.shell.Selected()

	var signedIn string
	if user := m.shell.User(); user != nil {
		signedIn = styles.help.Render("signed in as " + user.DisplayName())
	}

	helpKeys := []key.Binding{m.keys.change, m.keys.signOut, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s\n\n%s",
		styles.title.Render(dashboard.ManageTitle(*guild)),
		styles.ok.Render(guild.Label()),
		signedIn,
		m.help.ShortHelpView(helpKeys),
	)
}
