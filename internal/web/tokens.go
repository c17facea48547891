package web

import (
	"errors"
	"fmt"
	"time"

	"github.com/SwopeYT/espybot-dashboard/internal/models"
	"github.com/SwopeYT/espybot-dashboard/internal/shared"
	"github.com/golang-jwt/jwt"
)

const (
	tokenIssuer  = "espy-dashboard"
	subjectState = "oauth_state"
	subjectAuth  = "session"
)

// SessionClaims are carried by the auth_token cookie. Id (jti) is the session row ID.
type SessionClaims struct {
	jwt.StandardClaims
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
	AccessToken   string `json:"access_token"`
}

// User returns the profile served by GET /api/auth/user.
func (c *SessionClaims) User() models.User {
	avatar := c.Avatar
	if avatar == "" {
		avatar = defaultAvatar
	}
	discriminator := c.Discriminator
	if discriminator == "" {
		discriminator = "0"
	}
	return models.User{ID: c.UserID, Username: c.Username, Discriminator: discriminator, Avatar: avatar}
}

// StateClaims are carried by the OAuth state parameter.
type StateClaims struct {
	jwt.StandardClaims
	ReturnTo string `json:"return_to,omitempty"`
}

// Tokens signs and verifies session and state tokens with one HMAC secret.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens creates a signer for secret.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

func (t *Tokens) standard(id, subject string, ttl time.Duration) jwt.StandardClaims {
	now := t.now()
	return jwt.StandardClaims{
		Id:        id,
		Subject:   subject,
		Issuer:    tokenIssuer,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
}

func (t *Tokens) sign(claims jwt.Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (t *Tokens) parse(raw string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	if !token.Valid {
		return fmt.Errorf("%w: invalid or expired token", shared.ErrNotAuthenticated)
	}
	return nil
}

// IssueSession signs a session token for user.
func (t *Tokens) IssueSession(sessionID string, user models.User, accessToken string, ttl time.Duration) (string, error) {
	return t.sign(&SessionClaims{
		StandardClaims: t.standard(sessionID, subjectAuth, ttl),
		UserID:         user.ID,
		Username:       user.Username,
		Discriminator:  user.Discriminator,
		Avatar:         user.Avatar,
		AccessToken:    accessToken,
	})
}

// ParseSession verifies a session token.
func (t *Tokens) ParseSession(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := t.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.Subject != subjectAuth || claims.Id == "" {
		return nil, fmt.Errorf("%w: not a session token", shared.ErrNotAuthenticated)
	}
	return claims, nil
}

// IssueState signs an OAuth state value carrying returnTo.
func (t *Tokens) IssueState(returnTo string, ttl time.Duration) (string, error) {
	return t.sign(&StateClaims{
		StandardClaims: t.standard(shared.GenerateID(), subjectState, ttl),
		ReturnTo:       returnTo,
	})
}

// ParseState verifies an OAuth state value.
func (t *Tokens) ParseState(raw string) (*StateClaims, error) {
	claims := &StateClaims{}
	if err := t.parse(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidState, err)
	}
	if claims.Subject != subjectState {
		return nil, fmt.Errorf("%w: not a state token", shared.ErrInvalidState)
	}
	return claims, nil
}
