// Package service contains the business logic layer: the authorization gate
// and the five stores (users, shorts, social graph, engagement, blobs) that
// keep the relational system-of-record, the cache and the blob store
// mutually consistent.
//
// Every store follows the same discipline:
//
//   - reads go through the cache (read-through: lookup, load, populate);
//   - writes hit the authoritative store FIRST and only then touch the
//     cache, so a stale entry can outlive a concurrent writer's
//     invalidation only for the duration of one read;
//   - cache failures degrade silently to the store, never to the caller;
//   - authoritative-store failures surface as internal errors, always.
//
// Services receive repository interfaces, a cache.Cache and a *slog.Logger
// by injection; there are no ambient singletons, so construction order is
// explicit in the composition root and each service is testable in
// isolation.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/afonsoproenca/tukano/internal/apperror"
	"github.com/afonsoproenca/tukano/internal/cache"
	"github.com/afonsoproenca/tukano/internal/model"
	"github.com/afonsoproenca/tukano/internal/repository"
)

// AuthGate validates a caller's identity or a subject's existence before any
// owner-scoped operation proceeds. It is a leaf component: it holds its own
// repository and cache handles rather than calling into UserService, which
// keeps the dependency graph acyclic (UserService's delete cascade reaches
// ShortService, which needs the gate).
type AuthGate struct {
	users  repository.UserRepository
	cache  cache.Cache
	logger *slog.Logger
}

func NewAuthGate(users repository.UserRepository, c cache.Cache, logger *slog.Logger) *AuthGate {
	return &AuthGate{
		users:  users,
		cache:  c,
		logger: logger,
	}
}

// Authenticate returns the user when the presented password matches.
//
// The cached record counts as a hit only when its stored password matches
// the presented one; on mismatch the lookup falls through to the store
// instead of answering Forbidden from the cache; the cache path must not be
// distinguishable (by timing or by answer) from the DB path.
//
// NotFound means no such user id; Forbidden means the id exists but the
// password does not match. The distinction requires a second, id-only probe
// because the credentialed query deliberately conflates the two cases.
func (g *AuthGate) Authenticate(ctx context.Context, userID, password string) (*model.User, error) {
	key := cache.UserKey(userID)
	if u, ok := cache.Lookup[model.User](ctx, g.cache, key); ok && u.Password == password {
		return &u, nil
	}

	user, err := g.users.GetByCredential(ctx, userID, password)
	if err == nil {
		cache.Store(ctx, g.cache, key, *user, 0)
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Internal("authenticating user", err)
	}

	if _, probeErr := g.users.GetByID(ctx, userID); probeErr == nil {
		return nil, apperror.Forbidden("wrong credentials for user " + userID)
	} else if !errors.Is(probeErr, apperror.ErrNotFound) {
		return nil, apperror.Internal("authenticating user", probeErr)
	}
	return nil, apperror.NotFound("user", userID)
}

// Exists checks that a user id is registered, without any credential. This
// is a distinct operation rather than an Authenticate call with an empty
// password; conflating "check identity" and "check existence" behind a
// sentinel value is how authorization bugs are born.
//
// A found record is cached: it is the same full row the credentialed path
// would have cached.
func (g *AuthGate) Exists(ctx context.Context, userID string) error {
	key := cache.UserKey(userID)
	if _, ok := cache.Lookup[model.User](ctx, g.cache, key); ok {
		return nil
	}

	user, err := g.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return apperror.Internal("checking user exists", err)
	}
	cache.Store(ctx, g.cache, key, *user, 0)
	return nil
}

// mapErr passes typed application errors (NotFound and friends) through
// unchanged and wraps anything else (a backing-store failure) as an
// internal error.
func mapErr(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Internal(op, err)
}
