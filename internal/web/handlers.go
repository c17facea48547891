package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/SwopeYT/espybot-dashboard/internal/models"
	"github.com/SwopeYT/espybot-dashboard/internal/shared"
)

type contextKey string

const claimsKey contextKey = "session_claims"

func claimsFrom(r *http.Request) *SessionClaims {
	claims, _ := r.Context().Value(claimsKey).(*SessionClaims)
	return claims
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "espy-dashboard"})
}

// validateReturnTo accepts only plain-http URLs on a loopback host.
func validateReturnTo(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: return_to: %v", shared.ErrInvalidInput, err)
	}
	if u.Scheme != "http" || u.User != nil {
		return fmt.Errorf("%w: return_to must be an http loopback URL", shared.ErrInvalidInput)
	}

	host := u.Hostname()
	if host == "localhost" {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return nil
	}
	return fmt.Errorf("%w: return_to must be an http loopback URL", shared.ErrInvalidInput)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	returnTo := r.URL.Query().Get("return_to")
	if returnTo != "" {
		if err := validateReturnTo(returnTo); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	state, err := s.tokens.IssueState(returnTo, StateTTL)
	if err != nil {
		s.logger.Error("failed to issue state", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to start login")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"auth_url": s.deps.Discord.AuthCodeURL(state)})
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	state, err := s.tokens.ParseState(q.Get("state"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid state")
		return
	}

	if denied := q.Get("error"); denied != "" {
		if state.ReturnTo != "" {
			http.Redirect(w, r, withQuery(state.ReturnTo, "error", denied), http.StatusFound)
			return
		}
		respondError(w, http.StatusBadRequest, "Authentication failed: "+denied)
		return
	}

	code := q.Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	token, err := s.signIn(r.Context(), code)
	if err != nil {
		s.logger.Error("sign-in failed", "error", err)
		status := statusFor(err)
		if status == http.StatusBadGateway {
			status = http.StatusBadRequest
		}
		respondError(w, status, "Authentication failed: "+err.Error())
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	target := s.deps.Config.FrontendURL
	if target == "" {
		target = "/"
	}
	if state.ReturnTo != "" {
		target = withQuery(state.ReturnTo, "token", token)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// signIn exchanges code, records the user and a new session, and returns the signed session token.
func (s *Server) signIn(ctx context.Context, code string) (string, error) {
	accessToken, err := s.deps.Discord.Exchange(ctx, code)
	if err != nil {
		return "", err
	}

	user, err := s.deps.Discord.CurrentUser(ctx, accessToken)
	if err != nil {
		return "", err
	}

	record := &models.UserRecord{
		ID:            user.ID,
		Username:      user.Username,
		Discriminator: user.Discriminator,
		Avatar:        user.Avatar,
	}
	if err := s.deps.Users.Upsert(record); err != nil {
		return "", err
	}

	now := s.now().UTC()
	sess := &models.SessionRecord{UserID: user.ID, CreatedAt: now, ExpiresAt: now.Add(SessionTTL)}
	if err := s.deps.Sessions.Create(sess); err != nil {
		return "", err
	}

	s.logger.Info("user signed in", "user", user.DisplayName(), "logins", record.LoginCount)
	return s.tokens.IssueSession(sess.ID, *user, accessToken, SessionTTL)
}

func withQuery(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// authenticate resolves the session cookie to live claims.
func (s *Server) authenticate(r *http.Request) (*SessionClaims, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, shared.ErrNotAuthenticated
	}

	claims, err := s.tokens.ParseSession(cookie.Value)
	if err != nil {
		return nil, err
	}

	sess, err := s.deps.Sessions.Get(claims.Id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown session", shared.ErrSessionRevoked)
	}
	if err != nil {
		return nil, err
	}
	if !sess.Active(s.now()) {
		return nil, shared.ErrSessionRevoked
	}
	return claims, nil
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.authenticate(r)
		switch {
		case errors.Is(err, shared.ErrNotAuthenticated) && !hasCookie(r):
			respondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		case errors.Is(err, shared.ErrSessionRevoked):
			respondError(w, http.StatusUnauthorized, "Session expired")
			return
		case errors.Is(err, shared.ErrNotAuthenticated):
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		case err != nil:
			s.logger.Error("session lookup failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Session lookup failed")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func hasCookie(r *http.Request) bool {
	c, err := r.Cookie(SessionCookie)
	return err == nil && c.Value != ""
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, claimsFrom(r).User())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if claims, err := s.tokens.ParseSession(cookie.Value); err == nil {
			if err := s.deps.Sessions.Revoke(claims.Id); err != nil && !errors.Is(err, shared.ErrNotFound) {
				s.logger.Error("failed to revoke session", "session", claims.Id, "error", err)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) handleUserGuilds(w http.ResponseWriter, r *http.Request) {
	guilds, err := s.deps.Discord.UserGuilds(r.Context(), claimsFrom(r).AccessToken)
	if err != nil {
		s.logger.Error("failed to get user guilds", "error", err)
		respondError(w, statusFor(err), "Failed to get user guilds")
		return
	}
	respondJSON(w, http.StatusOK, guilds)
}

func (s *Server) handleBotGuilds(w http.ResponseWriter, r *http.Request) {
	guilds, err := s.deps.Discord.BotGuilds(r.Context())
	if errors.Is(err, shared.ErrMissingCredentials) {
		respondJSON(w, http.StatusOK, []models.Guild{})
		return
	}
	if err != nil {
		s.logger.Error("failed to get bot guilds", "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Owner is relative to the signed-in user; without their guild list every guild stays false.
	if mine, err := s.deps.Discord.UserGuilds(r.Context(), claimsFrom(r).AccessToken); err == nil {
		owned := make(map[string]bool, len(mine))
		for _, g := range mine {
			owned[g.ID] = g.Owner
		}
		for i := range guilds {
			guilds[i].Owner = owned[guilds[i].ID]
		}
	} else {
		s.logger.Warn("could not resolve guild ownership", "error", err)
	}

	if guilds == nil {
		guilds = []models.Guild{}
	}
	respondJSON(w, http.StatusOK, guilds)
}

func (s *Server) handleBotStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.deps.Discord.BotStatus(r.Context())
	if err != nil {
		s.logger.Error("failed to get bot status", "error", err)
		respondJSON(w, http.StatusOK, map[string]string{"status": "error", "message": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, status)
}
