package service

import (
	"context"
	"log/slog"

	"github.com/afonsoproenca/tukano/internal/apperror"
	"github.com/afonsoproenca/tukano/internal/cache"
	"github.com/afonsoproenca/tukano/internal/model"
	"github.com/afonsoproenca/tukano/internal/repository"
)

// UserService handles user accounts: CRUD, pattern search, and the deletion
// cascade that tears down everything an account owns.
type UserService struct {
	users  repository.UserRepository
	cache  cache.Cache
	shorts *ShortService // cascade target for account deletion
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, c cache.Cache, shorts *ShortService, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		cache:  c,
		shorts: shorts,
		logger: logger,
	}
}

// Create registers a new account. All four fields are required; the id must
// not contain the short-id separator (it would make owner-embedded short ids
// ambiguous). Duplicate ids are caught by the store's primary key, not by a
// pre-check, and surface as an internal error like any other insert failure.
func (s *UserService) Create(ctx context.Context, user model.User) (*model.User, error) {
	if !user.Complete() {
		return nil, apperror.BadRequest("user", "userId, pwd, email and displayName are all required")
	}
	if !model.ValidUserID(user.ID) {
		return nil, apperror.BadRequest("userId", "user id must not contain '+'")
	}

	if err := s.users.Create(ctx, &user); err != nil {
		s.logger.Error("failed to create user",
			slog.String("userId", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Internal("creating user", err)
	}

	cache.Store(ctx, s.cache, cache.UserKey(user.ID), user, 0)
	s.logger.Info("user created", slog.String("userId", user.ID))
	return &user, nil
}

// Get returns the user for a matching (id, password) pair. A cached record
// with a different password is a cache miss, not a Forbidden; and the store
// query is conditioned on both columns, so a wrong id and a wrong password
// are both NotFound here. The AuthGate is the layer that tells them apart.
func (s *UserService) Get(ctx context.Context, userID, password string) (*model.User, error) {
	key := cache.UserKey(userID)
	if u, ok := cache.Lookup[model.User](ctx, s.cache, key); ok && u.Password == password {
		return &u, nil
	}

	user, err := s.users.GetByCredential(ctx, userID, password)
	if err != nil {
		return nil, mapErr("getting user", err)
	}
	cache.Store(ctx, s.cache, key, *user, 0)
	return user, nil
}

// Update applies the non-empty fields of patch, conditioned on the current
// password matching. The cache entry is overwritten with the record as
// stored, never with the patch itself, which may be partial.
func (s *UserService) Update(ctx context.Context, userID, password string, patch model.User) (*model.User, error) {
	updated, err := s.users.Update(ctx, userID, password, patch)
	if err != nil {
		return nil, mapErr("updating user", err)
	}

	cache.Store(ctx, s.cache, cache.UserKey(userID), *updated, 0)
	s.logger.Info("user updated", slog.String("userId", userID))
	return updated, nil
}

// Delete removes the account and cascades into everything it owns: likes on
// its shorts, the shorts themselves, follow edges in both directions, every
// related cache entry, and the blobs. The user row goes first: once the
// conditional delete has matched (id, pwd), the cascade runs with the caller
// already proven to be the owner.
func (s *UserService) Delete(ctx context.Context, userID, password string) error {
	if err := s.users.Delete(ctx, userID, password); err != nil {
		return mapErr("deleting user", err)
	}
	cache.Invalidate(ctx, s.cache, cache.UserKey(userID))

	if err := s.shorts.DeleteAllByOwner(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("user deleted", slog.String("userId", userID))
	return nil
}

// Search returns users whose display name or email contains the pattern,
// case-insensitively. Results are cached under a pattern-derived key with a
// fixed expiry: there is no discrete entity to invalidate when users change,
// so the TTL, not invalidation, is the consistency mechanism, and results
// may be stale within that window.
func (s *UserService) Search(ctx context.Context, pattern string) ([]model.User, error) {
	users, err := cache.GetOrLoad(ctx, s.cache, cache.SearchKey(pattern), cache.ListTTL,
		func(ctx context.Context) ([]model.User, error) {
			return s.users.Search(ctx, pattern)
		})
	if err != nil {
		return nil, mapErr("searching users", err)
	}
	return users, nil
}
