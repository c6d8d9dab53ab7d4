package service

import (
	"context"
	"log/slog"

	"github.com/afonsoproenca/tukano/internal/apperror"
	"github.com/afonsoproenca/tukano/internal/cache"
	"github.com/afonsoproenca/tukano/internal/repository"
)

// SocialService handles the follow graph.
type SocialService struct {
	gate    *AuthGate
	follows repository.FollowRepository
	cache   cache.Cache
	logger  *slog.Logger
}

func NewSocialService(follows repository.FollowRepository, gate *AuthGate, c cache.Cache, logger *slog.Logger) *SocialService {
	return &SocialService{
		gate:    gate,
		follows: follows,
		cache:   c,
		logger:  logger,
	}
}

// SetFollowing makes follower follow (or unfollow) followee. The follower
// authenticates; the followee need only exist. A duplicate follow surfaces
// the store's constraint error as an internal error; the edge table does
// not deduplicate on behalf of careless callers.
//
// Three cached lists go stale here and are invalidated: the follower's feed
// (their followee set changed) and the follower lists of both sides.
func (s *SocialService) SetFollowing(ctx context.Context, followerID, password, followeeID string, following bool) error {
	if _, err := s.gate.Authenticate(ctx, followerID, password); err != nil {
		return err
	}
	if err := s.gate.Exists(ctx, followeeID); err != nil {
		return err
	}

	if err := s.follows.SetFollowing(ctx, followerID, followeeID, following); err != nil {
		return apperror.Internal("setting follow edge", err)
	}

	cache.Invalidate(ctx, s.cache,
		cache.FeedKey(followerID),
		cache.FollowersKey(followerID),
		cache.FollowersKey(followeeID),
	)

	s.logger.Info("follow edge changed",
		slog.String("follower", followerID),
		slog.String("followee", followeeID),
		slog.Bool("following", following),
	)
	return nil
}

// Followers lists who follows the user. Only the subject may ask: the
// credential must be the subject's own, and any gate error propagates
// verbatim.
func (s *SocialService) Followers(ctx context.Context, userID, password string) ([]string, error) {
	if _, err := s.gate.Authenticate(ctx, userID, password); err != nil {
		return nil, err
	}
	followers, err := cache.GetOrLoad(ctx, s.cache, cache.FollowersKey(userID), cache.ListTTL,
		func(ctx context.Context) ([]string, error) {
			return s.follows.FollowersOf(ctx, userID)
		})
	if err != nil {
		return nil, mapErr("listing followers", err)
	}
	return followers, nil
}
