package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/afonsoproenca/tukano/internal/apperror"
	"github.com/afonsoproenca/tukano/internal/cache"
	"github.com/afonsoproenca/tukano/internal/repository"
)

// EngagementService handles likes.
type EngagementService struct {
	gate   *AuthGate
	likes  repository.LikeRepository
	shorts *ShortService
	cache  cache.Cache
	logger *slog.Logger
}

func NewEngagementService(likes repository.LikeRepository, shorts *ShortService, gate *AuthGate, c cache.Cache, logger *slog.Logger) *EngagementService {
	return &EngagementService{
		gate:   gate,
		likes:  likes,
		shorts: shorts,
		cache:  c,
		logger: logger,
	}
}

// SetLiked makes the user like (or unlike) a short. The user authenticates
// and the short must exist; the short's owner id is denormalized onto the
// edge at insert time. Liking the same short twice is a constraint error
// from the store, surfaced as an internal error.
func (s *EngagementService) SetLiked(ctx context.Context, shortID, userID, password string, liked bool) error {
	if _, err := s.gate.Authenticate(ctx, userID, password); err != nil {
		return err
	}
	short, err := s.shorts.Get(ctx, shortID)
	if err != nil {
		return err
	}

	if err := s.likes.SetLiked(ctx, userID, shortID, short.OwnerID, liked); err != nil {
		return apperror.Internal("setting like edge", err)
	}

	cache.Invalidate(ctx, s.cache, cache.LikesKey(shortID))
	s.logger.Info("like edge changed",
		slog.String("shortId", shortID),
		slog.String("userId", userID),
		slog.Bool("liked", liked),
	)
	return nil
}

// Likes lists who liked a short. Like lists are private to the content
// owner: the credential must authenticate as the short's owner. Forbidden
// passes through (valid user, not the owner); any other authentication
// failure is reported as a bad request rather than leaking why. Store
// failures stay internal errors.
func (s *EngagementService) Likes(ctx context.Context, shortID, password string) ([]string, error) {
	short, err := s.shorts.Get(ctx, shortID)
	if err != nil {
		return nil, err
	}

	if _, err := s.gate.Authenticate(ctx, short.OwnerID, password); err != nil {
		if errors.Is(err, apperror.ErrForbidden) || errors.Is(err, apperror.ErrInternal) {
			return nil, err
		}
		return nil, apperror.BadRequest("pwd", "could not authenticate the owner of short "+shortID)
	}

	likers, err := cache.GetOrLoad(ctx, s.cache, cache.LikesKey(shortID), cache.ListTTL,
		func(ctx context.Context) ([]string, error) {
			return s.likes.LikersOf(ctx, shortID)
		})
	if err != nil {
		return nil, mapErr("listing likes", err)
	}
	return likers, nil
}
