package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SwopeYT/espybot-dashboard/internal/models"
	"github.com/SwopeYT/espybot-dashboard/internal/shared"
)

// SessionRepository implements [models.SessionStore] for [models.SessionRecord] persistence.
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSessionRepository creates a new [SessionRepository] with the given database connection
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

// Create inserts a new session. An empty ID is replaced with a generated UUID.
func (r *SessionRepository) Create(s *models.SessionRecord) error {
	if s.ID == "" {
		s.ID = shared.GenerateID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = r.now().UTC()
	}

	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.Exec(query, s.ID, s.UserID, s.CreatedAt.UTC(), s.ExpiresAt.UTC()); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID, including revoked and expired sessions.
func (r *SessionRepository) Get(id string) (*models.SessionRecord, error) {
	query := `
		SELECT id, user_id, created_at, expires_at, revoked_at
		FROM sessions
		WHERE id = ?
	`

	var (
		s         models.SessionRecord
		revokedAt sql.NullTime
	)
	err := r.db.QueryRow(query, id).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: session %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	if revokedAt.Valid {
		s.RevokedAt = &revokedAt.Time
	}
	return &s, nil
}

// Revoke marks a session as revoked. Revoking an already revoked session is a no-op.
func (r *SessionRepository) Revoke(id string) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET revoked_at = COALESCE(revoked_at, ?) WHERE id = ?`,
		r.now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return affectedOne(result, fmt.Errorf("%w: session %s", shared.ErrNotFound, id))
}

// DeleteExpired removes sessions that expired before the given time and returns how many were removed.
func (r *SessionRepository) DeleteExpired(before time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE expires_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}
