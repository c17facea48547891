package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/SwopeYT/espybot-dashboard/internal/models"
	"github.com/SwopeYT/espybot-dashboard/internal/shared"
)

// SessionCookie is the cookie the dashboard API issues on sign-in.
const SessionCookie = "auth_token"

// APIError is a non-2xx response from the dashboard API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Unwrap lets callers match [shared.ErrAPIRequest], and [shared.ErrNotAuthenticated] on a 401.
func (e *APIError) Unwrap() []error {
	errs := []error{shared.ErrAPIRequest}
	if e.StatusCode == http.StatusUnauthorized {
		errs = append(errs, shared.ErrNotAuthenticated)
	}
	return errs
}

// DashboardService is the typed client for the dashboard API endpoints.
type DashboardService struct {
	api      *APIService
	returnTo string
}

// NewDashboardService wraps api with typed endpoint calls.
func NewDashboardService(api *APIService) *DashboardService {
	return &DashboardService{api: api}
}

// SetReturnTo makes LoginURL ask the API to hand the session token to a loopback URL after sign-in.
func (d *DashboardService) SetReturnTo(u string) {
	d.returnTo = u
}

// SetToken seeds the session cookie, e.g. from a saved token or a loopback callback.
func (d *DashboardService) SetToken(token string) error {
	return d.api.SetCookie(SessionCookie, token)
}

// Token returns the current session cookie value, or "" when signed out.
func (d *DashboardService) Token() string {
	return d.api.Cookie(SessionCookie)
}

// CurrentUser calls GET /api/auth/user.
func (d *DashboardService) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := d.getJSON(ctx, "/api/auth/user", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// LoginURL calls GET /api/auth/login and returns the Discord authorization URL.
func (d *DashboardService) LoginURL(ctx context.Context) (string, error) {
	path := "/api/auth/login"
	if d.returnTo != "" {
		path += "?" + url.Values{"return_to": {d.returnTo}}.Encode()
	}

	var body struct {
		AuthURL string `json:"auth_url"`
	}
	if err := d.getJSON(ctx, path, &body); err != nil {
		return "", err
	}
	if body.AuthURL == "" {
		return "", fmt.Errorf("%w: login response has no auth_url", shared.ErrAPIRequest)
	}
	return body.AuthURL, nil
}

// Logout calls POST /api/auth/logout. The local session cookie is dropped whatever the outcome.
func (d *DashboardService) Logout(ctx context.Context) error {
	defer d.api.SetCookie(SessionCookie, "")

	resp, err := d.api.Post(ctx, "/api/auth/logout", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	if !resp.OK() {
		return &APIError{Method: http.MethodPost, Path: "/api/auth/logout", StatusCode: resp.StatusCode, Detail: resp.Detail()}
	}
	return nil
}

// UserGuilds calls GET /api/auth/guilds.
func (d *DashboardService) UserGuilds(ctx context.Context) ([]models.UserGuild, error) {
	guilds := []models.UserGuild{}
	if err := d.getJSON(ctx, "/api/auth/guilds", &guilds); err != nil {
		return nil, err
	}
	return guilds, nil
}

// BotGuilds calls GET /api/bot/guilds.
func (d *DashboardService) BotGuilds(ctx context.Context) ([]models.Guild, error) {
	guilds := []models.Guild{}
	if err := d.getJSON(ctx, "/api/bot/guilds", &guilds); err != nil {
		return nil, err
	}
	return guilds, nil
}

// BotStatus calls GET /api/bot/status.
func (d *DashboardService) BotStatus(ctx context.Context) (*models.BotStatus, error) {
	var status models.BotStatus
	if err := d.getJSON(ctx, "/api/bot/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (d *DashboardService) getJSON(ctx context.Context, path string, out any) error {
	resp, err := d.api.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	if !resp.OK() {
		return &APIError{Method: http.MethodGet, Path: path, StatusCode: resp.StatusCode, Detail: resp.Detail()}
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %w", shared.ErrAPIRequest, path, err)
	}
	return nil
}

// IsUnauthorized reports whether err came from a 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, shared.ErrNotAuthenticated)
}
