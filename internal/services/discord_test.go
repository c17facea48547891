package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/SwopeYT/espybot-dashboard/internal/shared"
)

// rewriteTransport sends every request to target, keeping the path.
type rewriteTransport struct {
	target *url.URL
}

func (rt rewriteTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	r.Host = ""
	return http.DefaultTransport.RoundTrip(r)
}

func fakeDiscord(t *testing.T) *http.Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		auth := r.Header.Get("Authorization")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/oauth2/token":
			r.ParseForm()
			if r.Form.Get("code") != "good-code" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error": "invalid_grant"}`))
				return
			}
			w.Write([]byte(`{"access_token": "user-token", "token_type": "Bearer", "expires_in": 604800}`))

		case strings.HasSuffix(r.URL.Path, "/users/@me/guilds"):
			switch auth {
			case "Bot bot-token":
				json.NewEncoder(w).Encode([]map[string]any{
					{"id": "1", "name": "Alpha", "icon": "abc", "approximate_member_count": 5, "permissions": "8"},
					{"id": "2", "name": "Beta", "approximate_member_count": 7, "permissions": "0"},
				})
			case "Bearer user-token":
				json.NewEncoder(w).Encode([]map[string]any{
					{"id": "1", "name": "Alpha", "owner": true, "permissions": "2147483647"},
				})
			default:
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message": "401: Unauthorized", "code": 0}`))
			}

		case strings.HasSuffix(r.URL.Path, "/users/@me"):
			switch auth {
			case "Bot bot-token":
				w.Write([]byte(`{"id": "99", "username": "EspyBot", "discriminator": "0", "avatar": "bothash", "bot": true}`))
			case "Bearer user-token":
				w.Write([]byte(`{"id": "42", "username": "espy", "discriminator": "0", "avatar": "userhash"}`))
			default:
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message": "401: Unauthorized", "code": 0}`))
			}

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	target, _ := url.Parse(server.URL)
	return &http.Client{Transport: rewriteTransport{target: target}}
}

func newTestDiscord(t *testing.T, botToken string) *DiscordService {
	t.Helper()
	svc, err := NewDiscordService(shared.DiscordConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURI:  "http://127.0.0.1:8001/api/auth/callback",
		BotToken:     botToken,
	}, fakeDiscord(t))
	if err != nil {
		t.Fatalf("failed to create discord service: %v", err)
	}
	return svc
}

func TestDiscordService(t *testing.T) {
	ctx := context.Background()

	t.Run("New", func(t *testing.T) {
		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewDiscordService(shared.DiscordConfig{ClientSecret: "secret"}, nil)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewDiscordService(shared.DiscordConfig{ClientID: "client"}, nil)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("AuthCodeURL", func(t *testing.T) {
		svc := newTestDiscord(t, "")
		raw := svc.AuthCodeURL("state-123")

		u, err := url.Parse(raw)
		if err != nil {
			t.Fatalf("invalid auth url: %v", err)
		}
		if u.Host != "discord.com" {
			t.Errorf("expected discord.com host, got %s", u.Host)
		}

		q := u.Query()
		if q.Get("client_id") != "client" || q.Get("state") != "state-123" || q.Get("response_type") != "code" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Get("scope") != "identify guilds" {
			t.Errorf("expected scope 'identify guilds', got %q", q.Get("scope"))
		}
		if q.Get("redirect_uri") != "http://127.0.0.1:8001/api/auth/callback" {
			t.Errorf("unexpected redirect_uri %q", q.Get("redirect_uri"))
		}
	})

	t.Run("Exchange", func(t *testing.T) {
		svc := newTestDiscord(t, "")

		token, err := svc.Exchange(ctx, "good-code")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if token != "user-token" {
			t.Errorf("expected user-token, got %s", token)
		}

		if _, err := svc.Exchange(ctx, "bad-code"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("CurrentUser", func(t *testing.T) {
		svc := newTestDiscord(t, "")

		user, err := svc.CurrentUser(ctx, "user-token")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if user.ID != "42" || user.Username != "espy" {
			t.Errorf("unexpected user %+v", user)
		}
		if !strings.Contains(user.Avatar, "/avatars/42/userhash") {
			t.Errorf("expected avatar CDN url, got %s", user.Avatar)
		}

		if _, err := svc.CurrentUser(ctx, "expired"); !errors.Is(err, shared.ErrDiscordRequest) {
			t.Errorf("expected ErrDiscordRequest, got %v", err)
		}
	})

	t.Run("UserGuilds", func(t *testing.T) {
		svc := newTestDiscord(t, "")

		guilds, err := svc.UserGuilds(ctx, "user-token")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(guilds) != 1 || !guilds[0].Owner || !guilds[0].CanManage() {
			t.Errorf("unexpected guilds %+v", guilds)
		}
	})

	t.Run("BotGuilds", func(t *testing.T) {
		t.Run("Without Bot Token", func(t *testing.T) {
			svc := newTestDiscord(t, "")
			if _, err := svc.BotGuilds(ctx); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("With Bot Token", func(t *testing.T) {
			svc := newTestDiscord(t, "bot-token")

			guilds, err := svc.BotGuilds(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(guilds) != 2 {
				t.Fatalf("expected 2 guilds, got %d", len(guilds))
			}
			if guilds[0].MemberCount != 5 || guilds[0].Permissions != 8 {
				t.Errorf("unexpected guild %+v", guilds[0])
			}
			if !strings.Contains(guilds[0].Icon, "/icons/1/abc") {
				t.Errorf("expected icon CDN url, got %s", guilds[0].Icon)
			}
			if guilds[1].Icon != "" {
				t.Errorf("expected no icon for guild without hash, got %s", guilds[1].Icon)
			}
		})
	})

	t.Run("BotStatus", func(t *testing.T) {
		t.Run("Offline Without Bot Token", func(t *testing.T) {
			svc := newTestDiscord(t, "")

			status, err := svc.BotStatus(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if status.Status != "offline" || status.GuildsCount != 0 {
				t.Errorf("unexpected status %+v", status)
			}
		})

		t.Run("Online", func(t *testing.T) {
			svc := newTestDiscord(t, "bot-token")

			status, err := svc.BotStatus(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if status.Status != "online" || status.Username != "EspyBot" {
				t.Errorf("unexpected status %+v", status)
			}
			if status.GuildsCount != 2 || status.UserCount != 12 {
				t.Errorf("expected 2 guilds and 12 users, got %+v", status)
			}
		})
	})
}
