// Package web serves the dashboard API.
//
// # Routes
//
//	GET  /health            → liveness probe
//	GET  /api/auth/login    → {auth_url}; optional return_to for terminal clients
//	GET  /api/auth/callback → Discord OAuth2 redirect target; sets the auth_token cookie
//	GET  /api/auth/user     → signed-in user profile
//	POST /api/auth/logout   → revokes the session and deletes the cookie
//	GET  /api/auth/guilds   → the user's guilds
//	GET  /api/bot/guilds    → guilds the bot is installed in
//	GET  /api/bot/status    → bot account summary
//
// # Sessions
//
// A successful callback stores a row in the sessions table and sets an HS256-signed JWT in the
// auth_token cookie. The token's jti is the session row ID, so revoking the row ends the session
// even while the token is still within its 7-day lifetime.
//
// The OAuth state parameter is itself a short-lived signed token. It carries the optional
// return_to URL so the callback can send the session token back to a loopback listener.
//
// # Errors
//
// Errors are returned as JSON {"detail": "..."} with 400, 401, 429, 500 or 502.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/SwopeYT/espybot-dashboard/internal/models"
	"github.com/SwopeYT/espybot-dashboard/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

const (
	// SessionCookie holds the session JWT.
	SessionCookie = "auth_token"
	// SessionTTL is the lifetime of a session and its cookie.
	SessionTTL = 7 * 24 * time.Hour
	// StateTTL bounds how long a user may take on the Discord consent screen.
	StateTTL = 10 * time.Minute

	AuthRate  = 0.5
	AuthBurst = 10

	defaultAvatar = "https://cdn.discordapp.com/embed/avatars/0.png"
)

// Discord is the Discord access the API needs.
type Discord interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
	UserGuilds(ctx context.Context, accessToken string) ([]models.UserGuild, error)
	BotGuilds(ctx context.Context) ([]models.Guild, error)
	BotStatus(ctx context.Context) (*models.BotStatus, error)
}

// Deps are the collaborators of the API server.
type Deps struct {
	Config   shared.ServerConfig
	Discord  Discord
	Users    models.UserStore
	Sessions models.SessionStore
	Logger   *log.Logger
}

// Server is the dashboard API.
type Server struct {
	deps    Deps
	tokens  *Tokens
	limiter *IPRateLimiter
	logger  *log.Logger
	now     func() time.Time
	handler http.Handler
}

// NewServer wires the routes and middleware.
func NewServer(deps Deps) (*Server, error) {
	if deps.Config.JWTSecret == "" {
		return nil, fmt.Errorf("%w: jwt_secret is empty", shared.ErrInvalidConfig)
	}
	if deps.Discord == nil || deps.Users == nil || deps.Sessions == nil {
		return nil, fmt.Errorf("%w: discord, users and sessions are required", shared.ErrInvalidConfig)
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}

	s := &Server{
		deps:    deps,
		tokens:  NewTokens(deps.Config.JWTSecret),
		limiter: NewIPRateLimiter(rate.Limit(AuthRate), AuthBurst, deps.Logger),
		logger:  deps.Logger,
		now:     time.Now,
	}
	s.handler = s.routes()
	return s, nil
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	origins := s.deps.Config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.With(s.limiter.Middleware).Get("/login", s.handleLogin)
			auth.With(s.limiter.Middleware).Get("/callback", s.handleCallback)
			auth.Post("/logout", s.handleLogout)

			auth.Group(func(private chi.Router) {
				private.Use(s.requireSession)
				private.Get("/user", s.handleUser)
				private.Get("/guilds", s.handleUserGuilds)
			})
		})

		api.Route("/bot", func(bot chi.Router) {
			bot.Use(s.requireSession)
			bot.Get("/guilds", s.handleBotGuilds)
			bot.Get("/status", s.handleBotStatus)
		})
	})

	return r
}

// ListenAndServe serves on the configured address until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.deps.Config.Addr(),
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go s.limiter.Run(ctx)
	go s.purgeSessions(ctx, time.Hour)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard API listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) purgeSessions(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.deps.Sessions.DeleteExpired(s.now())
			if err != nil {
				s.logger.Error("failed to purge sessions", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("purged expired sessions", "count", n)
			}
		}
	}
}
