// Package repository defines the persistence interfaces for the
// authoritative relational store. The service layer programs against these
// interfaces; internal/repository/sqlite provides the concrete
// implementation. The store is the single source of truth; every cache
// entry is a disposable projection of what these methods return.
package repository

import (
	"context"

	"github.com/afonsoproenca/tukano/internal/model"
)

type UserRepository interface {
	// Create inserts a user. A duplicate id surfaces as the store's
	// constraint error; no pre-check is performed here.
	Create(ctx context.Context, user *model.User) error

	// GetByID looks a user up by id alone (existence probe).
	GetByID(ctx context.Context, id string) (*model.User, error)

	// GetByCredential looks a user up conditioned on (id, pwd). A wrong id
	// and a wrong password are indistinguishable: both are NotFound.
	GetByCredential(ctx context.Context, id, password string) (*model.User, error)

	// Update applies the non-empty fields of patch, conditioned on
	// (id, pwd) matching. Zero rows affected is NotFound. Returns the
	// record as stored after the update.
	Update(ctx context.Context, id, password string, patch model.User) (*model.User, error)

	// Delete removes the row conditioned on (id, pwd). Zero rows is NotFound.
	Delete(ctx context.Context, id, password string) error

	// Search returns users whose display name or email contains the
	// pattern, case-insensitively.
	Search(ctx context.Context, pattern string) ([]model.User, error)
}

type ShortRepository interface {
	Create(ctx context.Context, short *model.Short) error
	GetByID(ctx context.Context, id string) (*model.Short, error)

	// Delete removes the short row and its likes in one transaction.
	Delete(ctx context.Context, id string) error

	// IDsByOwner lists the short ids owned by a user.
	IDsByOwner(ctx context.Context, userID string) ([]string, error)

	// Feed lists short ids posted by anyone the user follows, most recent
	// first. Ties are left to the store's insertion order.
	Feed(ctx context.Context, userID string) ([]string, error)

	DeleteByOwner(ctx context.Context, userID string) error
}

type FollowRepository interface {
	// SetFollowing inserts or removes the (follower, followee) edge.
	// A duplicate insert is a constraint error; removing an absent edge
	// is a no-op.
	SetFollowing(ctx context.Context, follower, followee string, following bool) error

	FollowersOf(ctx context.Context, userID string) ([]string, error)

	DeleteByFollower(ctx context.Context, userID string) error
	DeleteByFollowee(ctx context.Context, userID string) error
}

type LikeRepository interface {
	// SetLiked inserts or removes the (user, short, owner) edge. The owner
	// id is denormalized onto the edge so unlike and bulk deletion never
	// need a join against shorts.
	SetLiked(ctx context.Context, userID, shortID, ownerID string, liked bool) error

	LikersOf(ctx context.Context, shortID string) ([]string, error)

	// DeleteByOwner removes every like on any short owned by the user.
	DeleteByOwner(ctx context.Context, ownerID string) error
}
