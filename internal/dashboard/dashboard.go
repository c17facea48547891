// Package dashboard decides what the dashboard shows.
//
// The [Shell] reads the auth [session.State] and a locally selected guild and picks one of four
// screens, in priority order:
//  1. [ScreenLoading] while the session check is in flight
//  2. [ScreenSignIn] when nobody is signed in
//  3. [ScreenServerSelect] when no guild is selected
//  4. [ScreenManage] otherwise
//
// Rendering lives in package ui; this package only holds the decision tree and the guild list.
package dashboard

import (
	"context"

	"github.com/SwopeYT/espybot-dashboard/internal/models"
	"github.com/SwopeYT/espybot-dashboard/internal/session"
)

// Screen is what the dashboard is currently showing.
type Screen int

const (
	ScreenLoading Screen = iota
	ScreenSignIn
	ScreenServerSelect
	ScreenManage
)

func (s Screen) String() string {
	switch s {
	case ScreenLoading:
		return "loading"
	case ScreenSignIn:
		return "sign-in"
	case ScreenServerSelect:
		return "server-select"
	case ScreenManage:
		return "manage"
	default:
		return "unknown"
	}
}

// Auth is the auth state holder the shell reads from.
type Auth interface {
	State() session.State
}

// GuildSource lists the guilds the bot is installed in.
type GuildSource interface {
	BotGuilds(ctx context.Context) ([]models.Guild, error)
}

// Shell owns the guild selection and the server-selection list.
//
// It is not safe for concurrent use; the UI drives it from a single goroutine.
type Shell struct {
	auth     Auth
	source   GuildSource
	selected *models.Guild
	guilds   GuildList
	fetching bool
	gen      uint64
}

// NewShell creates a shell with nothing selected and the guild list pending.
func NewShell(auth Auth, source GuildSource) *Shell {
	return &Shell{auth: auth, source: source}
}

// Screen evaluates the decision tree against the current state.
func (s *Shell) Screen() Screen {
	st := s.auth.State()
	switch {
	case st.Loading:
		return ScreenLoading
	case !st.Authenticated:
		return ScreenSignIn
	case s.selected == nil:
		return ScreenServerSelect
	default:
		return ScreenManage
	}
}

// User returns the signed-in user, or nil.
func (s *Shell) User() *models.User {
	return s.auth.State().User
}

// Selected returns the selected guild, or nil.
func (s *Shell) Selected() *models.Guild {
	return s.selected
}

// Select makes g the guild being managed.
func (s *Shell) Select(g models.Guild) {
	s.selected = &g
}

// ChangeServer clears the selection and queues a fresh guild fetch.
func (s *Shell) ChangeServer() {
	s.Forget()
}

// Forget drops the selection and the guild list. Call it once the auth holder has signed out.
// A fetch still in flight is abandoned; its result is ignored by [Shell.SetGuilds].
func (s *Shell) Forget() {
	s.selected = nil
	s.guilds = GuildList{}
	s.fetching = false
}

// Guilds returns the server-selection list.
func (s *Shell) Guilds() GuildList {
	return s.guilds
}

// BeginFetch reports whether the server-selection view should fetch guilds now and marks
// the fetch as in flight. It returns true at most once per entry into the view.
func (s *Shell) BeginFetch() bool {
	if s.Screen() != ScreenServerSelect || s.fetching || s.guilds.Status != GuildsPending {
		return false
	}
	s.fetching = true
	s.gen++
	return true
}

// Generation identifies the fetch most recently started by [Shell.BeginFetch].
func (s *Shell) Generation() uint64 {
	return s.gen
}

// FetchGuilds calls the guild source and wraps the outcome. It does not modify the shell;
// pass the result to [Shell.SetGuilds].
func (s *Shell) FetchGuilds(ctx context.Context) GuildList {
	guilds, err := s.source.BotGuilds(ctx)
	return NewGuildList(guilds, err)
}

// SetGuilds records the result of the fetch started as generation gen. Results of abandoned or
// superseded fetches are dropped and SetGuilds reports false.
func (s *Shell) SetGuilds(gen uint64, l GuildList) bool {
	if !s.fetching || gen != s.gen {
		return false
	}
	s.fetching = false
	s.guilds = l
	return true
}

// Retry re-queues a failed guild fetch.
func (s *Shell) Retry() bool {
	if s.guilds.Status != GuildsFailed {
		return false
	}
	s.guilds = GuildList{}
	return true
}
