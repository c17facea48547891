package repositories

import (
	"database/sql"
	"fmt"

	"github.com/SwopeYT/espybot-dashboard/internal/models"
)

var (
	_ models.UserStore    = (*UserRepository)(nil)
	_ models.SessionStore = (*SessionRepository)(nil)
)

// affectedOne returns an error wrapping notFound when result changed no rows.
func affectedOne(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
