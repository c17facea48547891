package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SwopeYT/espybot-dashboard/internal/models"
	"github.com/SwopeYT/espybot-dashboard/internal/shared"
)

// UserRepository implements [models.UserStore] for [models.UserRecord] persistence.
type UserRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db, now: time.Now}
}

// Upsert inserts the user on first sign-in or refreshes the profile and bumps the login count.
//
// CreatedAt, UpdatedAt, and LoginCount on user are updated to the stored values.
func (r *UserRepository) Upsert(user *models.UserRecord) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := r.now().UTC()
	query := `
		INSERT INTO users (id, username, discriminator, avatar, login_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			discriminator = excluded.discriminator,
			avatar = excluded.avatar,
			login_count = users.login_count + 1,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.Exec(query, user.ID, user.Username, user.Discriminator, user.Avatar, now, now); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	stored, err := r.Get(user.ID)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

// Get retrieves a user by Discord ID.
func (r *UserRepository) Get(id string) (*models.UserRecord, error) {
	query := `
		SELECT id, username, discriminator, avatar, login_count, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	var u models.UserRecord
	err := r.db.QueryRow(query, id).Scan(&u.ID, &u.Username, &u.Discriminator, &u.Avatar, &u.LoginCount, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &u, nil
}

// List returns all users ordered by most recent sign-in.
func (r *UserRepository) List() ([]*models.UserRecord, error) {
	rows, err := r.db.Query(`
		SELECT id, username, discriminator, avatar, login_count, created_at, updated_at
		FROM users
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.UserRecord
	for rows.Next() {
		var u models.UserRecord
		if err := rows.Scan(&u.ID, &u.Username, &u.Discriminator, &u.Avatar, &u.LoginCount, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}
