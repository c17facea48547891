// Package session holds the dashboard client's authentication state.
//
// A [Session] is the single source of truth for whether a user is signed in and who they are.
// It is constructed explicitly and handed to whatever renders the dashboard; only the
// Session mutates its [State]. Each operation issues exactly one call to the [API].
package session

import (
	"context"
	"sync"

	"github.com/SwopeYT/espybot-dashboard/internal/models"
	"github.com/charmbracelet/log"
)

// API is the subset of the dashboard API the session depends on.
type API interface {
	CurrentUser(ctx context.Context) (*models.User, error)
	LoginURL(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	UserGuilds(ctx context.Context) ([]models.UserGuild, error)
}

// Navigator sends the user to an external URL, e.g. by opening a browser.
type Navigator interface {
	Navigate(url string) error
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(url string) error

func (f NavigatorFunc) Navigate(url string) error { return f(url) }

// State is a snapshot of the authentication state.
//
// User is non-nil exactly when Authenticated is true.
type State struct {
	Authenticated bool
	User          *models.User
	Loading       bool
}

// Session owns the authentication [State].
type Session struct {
	api    API
	nav    Navigator
	logger *log.Logger

	mu    sync.RWMutex
	state State
}

// New creates a Session in the loading state. Call [Session.CheckSession] to resolve it.
func New(api API, nav Navigator, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		api:    api,
		nav:    nav,
		logger: logger,
		state:  State{Loading: true},
	}
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s *Session) set(st State) {
	if st.User == nil {
		st.Authenticated = false
	}
	if !st.Authenticated {
		st.User = nil
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// CheckSession asks the API who is signed in.
//
// Any failure, including 401, network errors, and malformed bodies, leaves the session
// unauthenticated. Loading is always cleared.
func (s *Session) CheckSession(ctx context.Context) State {
	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		s.logger.Debug("session check failed", "error", err)
		s.set(State{})
		return s.State()
	}
	if user == nil {
		s.logger.Debug("session check returned no user")
		s.set(State{})
		return s.State()
	}

	s.logger.Info("signed in", "user", user.DisplayName())
	s.set(State{Authenticated: true, User: user})
	return s.State()
}

// Login fetches the Discord authorization URL and hands it to the [Navigator].
//
// On failure the error is logged and returned; the state is left unchanged.
func (s *Session) Login(ctx context.Context) error {
	authURL, err := s.api.LoginURL(ctx)
	if err != nil {
		s.logger.Error("login failed", "error", err)
		return err
	}

	if err := s.nav.Navigate(authURL); err != nil {
		s.logger.Error("failed to open login page", "url", authURL, "error", err)
		return err
	}
	return nil
}

// Logout ends the session on the server and clears local state whatever the server says.
func (s *Session) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("logout request failed", "error", err)
	}
	s.set(State{})
}

// UserGuilds returns the signed-in user's guilds, or an empty slice on any failure.
func (s *Session) UserGuilds(ctx context.Context) []models.UserGuild {
	guilds, err := s.api.UserGuilds(ctx)
	if err != nil {
		s.logger.Error("failed to fetch user guilds", "error", err)
		return []models.UserGuild{}
	}
	if guilds == nil {
		return []models.UserGuild{}
	}
	return guilds
}
