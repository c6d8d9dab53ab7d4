package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/afonsoproenca/tukano/internal/apperror"
	"github.com/afonsoproenca/tukano/internal/auth"
	"github.com/afonsoproenca/tukano/internal/cache"
	"github.com/afonsoproenca/tukano/internal/model"
	"github.com/afonsoproenca/tukano/internal/repository"
)

// cascadeTokenTTL bounds the lifetime of tokens minted for internal
// service-to-service blob deletions. They are used within the same request.
const cascadeTokenTTL = time.Minute

// ShortService handles short posts: creation, public reads, owner-gated
// deletion, per-owner listings, feed assembly, and the bulk cascade that
// account deletion runs through.
type ShortService struct {
	gate    *AuthGate
	shorts  repository.ShortRepository
	follows repository.FollowRepository
	likes   repository.LikeRepository
	blobs   *BlobService
	tokens  *auth.TokenService
	cache   cache.Cache
	logger  *slog.Logger

	// blobBase is the public URL prefix for blob access; a short's BlobURL
	// is blobBase/<shortID>?token=<access token>.
	blobBase string
}

func NewShortService(
	shorts repository.ShortRepository,
	follows repository.FollowRepository,
	likes repository.LikeRepository,
	gate *AuthGate,
	blobs *BlobService,
	tokens *auth.TokenService,
	c cache.Cache,
	blobBase string,
	logger *slog.Logger,
) *ShortService {
	return &ShortService{
		gate:     gate,
		shorts:   shorts,
		follows:  follows,
		likes:    likes,
		blobs:    blobs,
		tokens:   tokens,
		cache:    c,
		blobBase: blobBase,
		logger:   logger,
	}
}

// Create mints a new short for an authenticated owner. The id embeds the
// owner id, and the returned BlobURL carries a token bound to the id; the
// create response is everything a client needs to upload the media.
func (s *ShortService) Create(ctx context.Context, ownerID, password string) (*model.Short, error) {
	if _, err := s.gate.Authenticate(ctx, ownerID, password); err != nil {
		return nil, err
	}

	id := model.NewShortID(ownerID)
	token, err := s.tokens.Mint(id)
	if err != nil {
		return nil, apperror.Internal("minting blob token", err)
	}

	short := &model.Short{
		ID:      id,
		OwnerID: ownerID,
		BlobURL: fmt.Sprintf("%s/%s?token=%s", s.blobBase, id, token),
	}
	if err := s.shorts.Create(ctx, short); err != nil {
		s.logger.Error("failed to create short",
			slog.String("ownerId", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Internal("creating short", err)
	}

	cache.Store(ctx, s.cache, cache.ShortKey(id), *short, 0)
	s.logger.Info("short created",
		slog.String("shortId", id),
		slog.String("ownerId", ownerID),
	)
	return short, nil
}

// Get returns a short by id. Shorts are publicly readable, no credential.
func (s *ShortService) Get(ctx context.Context, shortID string) (*model.Short, error) {
	short, err := cache.GetOrLoad(ctx, s.cache, cache.ShortKey(shortID), 0,
		func(ctx context.Context) (model.Short, error) {
			st, err := s.shorts.GetByID(ctx, shortID)
			if err != nil {
				return model.Short{}, err
			}
			return *st, nil
		})
	if err != nil {
		return nil, mapErr("getting short", err)
	}
	return &short, nil
}

// Delete removes a short. The record is fetched first (NotFound propagates),
// then the credential is checked against the owner embedded in it; anyone
// but the owner gets Forbidden. Likes and the short row go in one
// transaction, the cache entries are invalidated, and finally the blob is
// deleted; blob absence is tolerated, a half-uploaded short is deletable.
func (s *ShortService) Delete(ctx context.Context, shortID, password string) error {
	short, err := s.Get(ctx, shortID)
	if err != nil {
		return err
	}

	if _, err := s.gate.Authenticate(ctx, short.OwnerID, password); err != nil {
		if errors.Is(err, apperror.ErrInternal) {
			return err
		}
		return apperror.Forbidden("only the owner may delete short " + shortID)
	}

	if err := s.shorts.Delete(ctx, shortID); err != nil {
		return mapErr("deleting short", err)
	}
	cache.Invalidate(ctx, s.cache,
		cache.ShortKey(shortID),
		cache.LikesKey(shortID),
		cache.ShortsOfKey(short.OwnerID),
	)

	token, err := s.tokens.MintTTL(shortID, cascadeTokenTTL)
	if err != nil {
		return apperror.Internal("minting cascade token", err)
	}
	if err := s.blobs.Delete(ctx, shortID, token); err != nil {
		return err
	}

	s.logger.Info("short deleted", slog.String("shortId", shortID))
	return nil
}

// ListByOwner returns the ids of a user's shorts. Only existence of the user
// is required; the listing itself is public.
func (s *ShortService) ListByOwner(ctx context.Context, userID string) ([]string, error) {
	if err := s.gate.Exists(ctx, userID); err != nil {
		return nil, err
	}
	ids, err := cache.GetOrLoad(ctx, s.cache, cache.ShortsOfKey(userID), cache.ListTTL,
		func(ctx context.Context) ([]string, error) {
			return s.shorts.IDsByOwner(ctx, userID)
		})
	if err != nil {
		return nil, mapErr("listing shorts", err)
	}
	return ids, nil
}

// Feed returns the ids of shorts posted by the user's followees, most recent
// first. Only the subject may read their own feed.
func (s *ShortService) Feed(ctx context.Context, userID, password string) ([]string, error) {
	if _, err := s.gate.Authenticate(ctx, userID, password); err != nil {
		return nil, err
	}
	feed, err := cache.GetOrLoad(ctx, s.cache, cache.FeedKey(userID), cache.ListTTL,
		func(ctx context.Context) ([]string, error) {
			return s.shorts.Feed(ctx, userID)
		})
	if err != nil {
		return nil, mapErr("assembling feed", err)
	}
	return feed, nil
}

// DeleteAllByOwner is the cascade entry point for account deletion. It does
// NOT authenticate; callers must already have proven the caller owns
// userID (UserService.Delete has, via its conditional row delete).
//
// The cascade is an explicit saga: a fixed sequence of steps, each failure
// wrapped with its step name so a caller (or a test) can tell exactly how
// far it progressed. Order matters twice over: short ids are enumerated
// FIRST, because after the rows are gone nothing can say which
// likes_short:<id> and bytes:<id> entries or which blobs belonged to the
// owner; and blobs go LAST, after the relational store and cache are
// already consistent, so a blob-store failure leaves at worst orphaned
// media, never dangling rows.
func (s *ShortService) DeleteAllByOwner(ctx context.Context, userID string) error {
	ids, err := s.shorts.IDsByOwner(ctx, userID)
	if err != nil {
		return apperror.Internal("cascade: enumerating shorts", err)
	}

	if err := s.likes.DeleteByOwner(ctx, userID); err != nil {
		return apperror.Internal("cascade: deleting likes", err)
	}
	if err := s.shorts.DeleteByOwner(ctx, userID); err != nil {
		return apperror.Internal("cascade: deleting shorts", err)
	}
	if err := s.follows.DeleteByFollower(ctx, userID); err != nil {
		return apperror.Internal("cascade: deleting follow edges as follower", err)
	}
	if err := s.follows.DeleteByFollowee(ctx, userID); err != nil {
		return apperror.Internal("cascade: deleting follow edges as followee", err)
	}

	keys := []string{
		cache.ShortsOfKey(userID),
		cache.FollowersKey(userID),
		cache.FeedKey(userID),
	}
	for _, id := range ids {
		keys = append(keys, cache.ShortKey(id), cache.LikesKey(id))
	}
	cache.Invalidate(ctx, s.cache, keys...)

	for _, id := range ids {
		token, err := s.tokens.MintTTL(id, cascadeTokenTTL)
		if err != nil {
			return apperror.Internal("cascade: minting blob token", err)
		}
		// The first blob-store failure aborts the cascade; blobs already
		// deleted stay deleted. Partial blob deletion is an accepted
		// limitation, reported rather than retried.
		if err := s.blobs.Delete(ctx, id, token); err != nil {
			return err
		}
	}

	s.logger.Info("owner cascade complete",
		slog.String("userId", userID),
		slog.Int("shorts", len(ids)),
	)
	return nil
}
