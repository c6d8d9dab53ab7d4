package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/afonsoproenca/tukano/internal/apperror"
	"github.com/afonsoproenca/tukano/internal/model"
	"github.com/afonsoproenca/tukano/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB implements repository.UserRepository over the users table.
type UserDB struct {
	conn *sql.DB
}

// Create inserts the user. There is no dedup pre-check: the PRIMARY KEY on
// user_id rejects duplicates and the constraint error propagates to the
// caller, which maps every insert failure to an internal error.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	_, err := u.conn.ExecContext(ctx,
		`INSERT INTO users (user_id, pwd, email, display_name) VALUES (?, ?, ?, ?)`,
		user.ID,
		user.Password,
		user.Email,
		user.DisplayName,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", user.ID, err)
	}
	return nil
}

// GetByID retrieves a user by id alone. Used for existence probes, where the
// caller must not learn whether a password would have matched.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return u.get(ctx,
		`SELECT user_id, pwd, email, display_name FROM users WHERE user_id = ?`,
		id)
}

// GetByCredential retrieves a user conditioned on (id, pwd). sql.ErrNoRows
// covers both a missing id and a wrong password, deliberately
// indistinguishable at this layer.
func (u *UserDB) GetByCredential(ctx context.Context, id, password string) (*model.User, error) {
	return u.get(ctx,
		`SELECT user_id, pwd, email, display_name FROM users WHERE user_id = ? AND pwd = ?`,
		id, password)
}

func (u *UserDB) get(ctx context.Context, query string, args ...any) (*model.User, error) {
	var user model.User
	err := u.conn.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Password,
		&user.Email,
		&user.DisplayName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(args[0]))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}
	return &user, nil
}

// Update applies the non-empty fields of patch in a single conditional
// UPDATE. COALESCE(NULLIF(?, ''), col) keeps the current value when the
// patch field is empty, so the whole patch-and-check happens atomically at
// the store, with no read-modify-write race with a concurrent update.
func (u *UserDB) Update(ctx context.Context, id, password string, patch model.User) (*model.User, error) {
	res, err := u.conn.ExecContext(ctx,
		`UPDATE users SET
			pwd          = COALESCE(NULLIF(?, ''), pwd),
			email        = COALESCE(NULLIF(?, ''), email),
			display_name = COALESCE(NULLIF(?, ''), display_name)
		 WHERE user_id = ? AND pwd = ?`,
		patch.Password,
		patch.Email,
		patch.DisplayName,
		id, password,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating user %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating user %s: %w", id, err)
	}
	if rows == 0 {
		return nil, apperror.NotFound("user", id)
	}

	// Read the row back so the caller (and the cache) gets the record
	// exactly as stored.
	return u.GetByID(ctx, id)
}

// Delete removes the row conditioned on (id, pwd). Zero rows affected means
// no such user or wrong password; NotFound either way.
func (u *UserDB) Delete(ctx context.Context, id, password string) error {
	res, err := u.conn.ExecContext(ctx,
		`DELETE FROM users WHERE user_id = ? AND pwd = ?`,
		id, password,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}
	if rows == 0 {
		return apperror.NotFound("user", id)
	}
	return nil
}

// Search matches the pattern case-insensitively against display name and
// email. LOWER on both sides keeps the query portable (ILIKE is
// Postgres-only).
func (u *UserDB) Search(ctx context.Context, pattern string) ([]model.User, error) {
	needle := "%" + strings.ToLower(pattern) + "%"
	rows, err := u.conn.QueryContext(ctx,
		`SELECT user_id, pwd, email, display_name FROM users
		 WHERE LOWER(display_name) LIKE ? OR LOWER(email) LIKE ?`,
		needle, needle,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var user model.User
		if err := rows.Scan(&user.ID, &user.Password, &user.Email, &user.DisplayName); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user rows: %w", err)
	}
	return users, nil
}
