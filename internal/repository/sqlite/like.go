package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/afonsoproenca/tukano/internal/repository"
)

// compile-time check that *LikeDB implements repository.LikeRepository
var _ repository.LikeRepository = (*LikeDB)(nil)

// LikeDB implements repository.LikeRepository over the likes table.
type LikeDB struct {
	conn *sql.DB
}

// SetLiked inserts or removes the (user, short, owner) edge. owner_id is
// written on insert and never consulted on unlike; it exists so bulk
// deletion by content owner needs no join against shorts.
func (l *LikeDB) SetLiked(ctx context.Context, userID, shortID, ownerID string, liked bool) error {
	var err error
	if liked {
		_, err = l.conn.ExecContext(ctx,
			`INSERT INTO likes (user_id, short_id, owner_id) VALUES (?, ?, ?)`,
			userID, shortID, ownerID)
	} else {
		_, err = l.conn.ExecContext(ctx,
			`DELETE FROM likes WHERE user_id = ? AND short_id = ?`,
			userID, shortID)
	}
	if err != nil {
		return fmt.Errorf("sqlite: setting like %s on %s: %w", userID, shortID, err)
	}
	return nil
}

func (l *LikeDB) LikersOf(ctx context.Context, shortID string) ([]string, error) {
	rows, err := l.conn.QueryContext(ctx,
		`SELECT user_id FROM likes WHERE short_id = ?`, shortID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying likes of %s: %w", shortID, err)
	}
	defer rows.Close()

	likers := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning liker: %w", err)
		}
		likers = append(likers, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating likers: %w", err)
	}
	return likers, nil
}

func (l *LikeDB) DeleteByOwner(ctx context.Context, ownerID string) error {
	if _, err := l.conn.ExecContext(ctx,
		`DELETE FROM likes WHERE owner_id = ?`, ownerID,
	); err != nil {
		return fmt.Errorf("sqlite: deleting likes owned by %s: %w", ownerID, err)
	}
	return nil
}
