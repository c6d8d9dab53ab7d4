package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/afonsoproenca/tukano/internal/apperror"
	"github.com/afonsoproenca/tukano/internal/model"
	"github.com/afonsoproenca/tukano/internal/repository"
)

// compile-time check that *ShortDB implements repository.ShortRepository
var _ repository.ShortRepository = (*ShortDB)(nil)

// ShortDB implements repository.ShortRepository over the shorts table
// (and, for transactional deletion, the likes table).
type ShortDB struct {
	conn *sql.DB
}

// Create inserts the short. The id is minted by the service (it embeds the
// owner id); created_at is set here so feed ordering reflects the store's
// notion of insertion time.
func (s *ShortDB) Create(ctx context.Context, short *model.Short) error {
	short.CreatedAt = time.Now().UTC()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO shorts (short_id, user_id, blob_url, created_at) VALUES (?, ?, ?, ?)`,
		short.ID,
		short.OwnerID,
		short.BlobURL,
		short.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting short %s: %w", short.ID, err)
	}
	return nil
}

func (s *ShortDB) GetByID(ctx context.Context, id string) (*model.Short, error) {
	var short model.Short
	err := s.conn.QueryRowContext(ctx,
		`SELECT short_id, user_id, blob_url, created_at FROM shorts WHERE short_id = ?`,
		id,
	).Scan(
		&short.ID,
		&short.OwnerID,
		&short.BlobURL,
		&short.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("short", id)
		}
		return nil, fmt.Errorf("sqlite: getting short %s: %w", id, err)
	}
	return &short, nil
}

// Delete removes a short and its likes in one transaction, so a reader never
// observes likes pointing at a short that is already gone. Deleting an
// absent short is NotFound so the caller can propagate it.
func (s *ShortDB) Delete(ctx context.Context, id string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete of short %s: %w", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE short_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting likes of short %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM shorts WHERE short_id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting short %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: deleting short %s: %w", id, err)
	}
	if rows == 0 {
		return apperror.NotFound("short", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete of short %s: %w", id, err)
	}
	return nil
}

func (s *ShortDB) IDsByOwner(ctx context.Context, userID string) ([]string, error) {
	return s.ids(ctx,
		`SELECT short_id FROM shorts WHERE user_id = ?`,
		userID)
}

// Feed returns the ids of shorts posted by anyone the user follows, most
// recent first. No secondary tie-break is imposed: rows sharing a
// created_at come back in the store's insertion order.
func (s *ShortDB) Feed(ctx context.Context, userID string) ([]string, error) {
	return s.ids(ctx,
		`SELECT short_id FROM shorts
		 WHERE user_id IN (SELECT followee FROM following WHERE follower = ?)
		 ORDER BY created_at DESC`,
		userID)
}

func (s *ShortDB) DeleteByOwner(ctx context.Context, userID string) error {
	if _, err := s.conn.ExecContext(ctx,
		`DELETE FROM shorts WHERE user_id = ?`, userID,
	); err != nil {
		return fmt.Errorf("sqlite: deleting shorts of user %s: %w", userID, err)
	}
	return nil
}

func (s *ShortDB) ids(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying short ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning short id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating short ids: %w", err)
	}
	return ids, nil
}
