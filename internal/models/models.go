package models

import (
	"fmt"
	"strings"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	GetID() string   // GetID returns the unique identifier for this model
	Validate() error // Validate checks if the model's data is valid and returns an error if not
}

// User is the profile returned by GET /api/auth/user.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
}

// DisplayName returns username#discriminator, omitting the legacy "0" discriminator.
func (u User) DisplayName() string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return fmt.Sprintf("%s#%s", u.Username, u.Discriminator)
}

// Guild is a server the bot is installed in, as returned by GET /api/bot/guilds.
type Guild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	MemberCount int    `json:"member_count"`
	Owner       bool   `json:"owner"`
	Permissions int64  `json:"permissions"`
}

// Initial returns the first letter of the guild name, used when no icon is set.
func (g Guild) Initial() string {
	for _, r := range strings.TrimSpace(g.Name) {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// Label renders the guild as "Name — N members".
func (g Guild) Label() string {
	return fmt.Sprintf("%s — %d members", g.Name, g.MemberCount)
}

// UserGuild is a server the signed-in user belongs to, as returned by GET /api/auth/guilds.
type UserGuild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Owner       bool   `json:"owner"`
	Permissions int64  `json:"permissions"`
}

// PermissionManageGuild is Discord's MANAGE_GUILD permission bit.
const PermissionManageGuild int64 = 1 << 5

// PermissionAdministrator is Discord's ADMINISTRATOR permission bit.
const PermissionAdministrator int64 = 1 << 3

// CanManage reports whether the user owns the guild or holds administrator/manage-guild permission.
func (g UserGuild) CanManage() bool {
	return g.Owner || g.Permissions&(PermissionAdministrator|PermissionManageGuild) != 0
}

// BotStatus is returned by GET /api/bot/status.
type BotStatus struct {
	Status      string `json:"status"`
	GuildsCount int    `json:"guilds_count"`
	UserCount   int    `json:"user_count"`
	Username    string `json:"username,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
}

// UserRecord is a Discord user who has signed in to the dashboard.
type UserRecord struct {
	ID            string
	Username      string
	Discriminator string
	Avatar        string
	LoginCount    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (u *UserRecord) GetID() string { return u.ID }

func (u *UserRecord) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user id is required")
	}
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}
	return nil
}

// SessionRecord is an issued dashboard session.
type SessionRecord struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

func (s *SessionRecord) GetID() string { return s.ID }

func (s *SessionRecord) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if s.UserID == "" {
		return fmt.Errorf("session user id is required")
	}
	if !s.ExpiresAt.After(s.CreatedAt) {
		return fmt.Errorf("session must expire after it is created")
	}
	return nil
}

// Active reports whether the session is neither revoked nor expired at now.
func (s *SessionRecord) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// UserStore persists [UserRecord] values.
type UserStore interface {
	Upsert(u *UserRecord) error
	Get(id string) (*UserRecord, error)
}

// SessionStore persists [SessionRecord] values.
type SessionStore interface {
	Create(s *SessionRecord) error
	Get(id string) (*SessionRecord, error)
	Revoke(id string) error
	DeleteExpired(before time.Time) (int64, error)
}
