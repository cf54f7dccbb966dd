package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// User is an athlete identity row.
type User struct {
	ID          int    `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// EnsureUser returns the user for a login, creating the row on first sight.
// Used by the identity middleware to map a tailnet login to a user id.
func (db *DB) EnsureUser(ctx context.Context, login, displayName string) (*User, error) {
	row := db.Pool.QueryRow(ctx,
		`INSERT INTO users (login, display_name) VALUES ($1, $2)
		 ON CONFLICT (login) DO UPDATE SET display_name = EXCLUDED.display_name
		 RETURNING id, login, display_name`,
		login, displayName)

	var u User
	if err := row.Scan(&u.ID, &u.Login, &u.DisplayName); err != nil {
		return nil, fmt.Errorf("ensuring user: %w", err)
	}
	return &u, nil
}

// UserByID retrieves a user, or nil when none exists.
func (db *DB) UserByID(ctx context.Context, id int) (*User, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, login, display_name FROM users WHERE id = $1`, id)

	var u User
	if err := row.Scan(&u.ID, &u.Login, &u.DisplayName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}
