package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/afonsoproenca/tukano/internal/repository"
)

// compile-time check that *FollowDB implements repository.FollowRepository
var _ repository.FollowRepository = (*FollowDB)(nil)

// FollowDB implements repository.FollowRepository over the following table.
type FollowDB struct {
	conn *sql.DB
}

// SetFollowing inserts or removes the edge. The composite primary key makes
// a duplicate follow a constraint error, which the caller surfaces as an
// internal error; removing an edge that is not there affects zero rows and
// is silently fine.
func (f *FollowDB) SetFollowing(ctx context.Context, follower, followee string, following bool) error {
	query := `DELETE FROM following WHERE follower = ? AND followee = ?`
	if following {
		query = `INSERT INTO following (follower, followee) VALUES (?, ?)`
	}
	if _, err := f.conn.ExecContext(ctx, query, follower, followee); err != nil {
		return fmt.Errorf("sqlite: setting follow %s -> %s: %w", follower, followee, err)
	}
	return nil
}

func (f *FollowDB) FollowersOf(ctx context.Context, userID string) ([]string, error) {
	rows, err := f.conn.QueryContext(ctx,
		`SELECT follower FROM following WHERE followee = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying followers of %s: %w", userID, err)
	}
	defer rows.Close()

	followers := []string{}
	for rows.Next() {
		var follower string
		if err := rows.Scan(&follower); err != nil {
			return nil, fmt.Errorf("sqlite: scanning follower: %w", err)
		}
		followers = append(followers, follower)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating followers: %w", err)
	}
	return followers, nil
}

func (f *FollowDB) DeleteByFollower(ctx context.Context, userID string) error {
	if _, err := f.conn.ExecContext(ctx,
		`DELETE FROM following WHERE follower = ?`, userID,
	); err != nil {
		return fmt.Errorf("sqlite: deleting follows by %s: %w", userID, err)
	}
	return nil
}

func (f *FollowDB) DeleteByFollowee(ctx context.Context, userID string) error {
	if _, err := f.conn.ExecContext(ctx,
		`DELETE FROM following WHERE followee = ?`, userID,
	); err != nil {
		return fmt.Errorf("sqlite: deleting follows of %s: %w", userID, err)
	}
	return nil
}
