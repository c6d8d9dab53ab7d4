package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"log/slog"

	"github.com/afonsoproenca/tukano/internal/apperror"
	"github.com/afonsoproenca/tukano/internal/auth"
	"github.com/afonsoproenca/tukano/internal/blob"
	"github.com/afonsoproenca/tukano/internal/cache"
	"github.com/afonsoproenca/tukano/internal/repository"
)

// BlobService handles media payloads. A blob id IS a short id (one blob per
// short) and every operation is gated by a signed token bound to that id
// (or, for the bulk deletion, to the owning user id). The byte-cache in
// front of the store holds a materialized copy of blob content under
// bytes:<id>.
type BlobService struct {
	gate   *AuthGate
	store  blob.Store
	shorts repository.ShortRepository
	tokens *auth.TokenService
	cache  cache.Cache
	logger *slog.Logger
}

func NewBlobService(store blob.Store, shorts repository.ShortRepository, gate *AuthGate, tokens *auth.TokenService, c cache.Cache, logger *slog.Logger) *BlobService {
	return &BlobService{
		gate:   gate,
		store:  store,
		shorts: shorts,
		tokens: tokens,
		cache:  c,
		logger: logger,
	}
}

// Upload stores the media for a blob id, exactly once.
//
// Blobs are immutable: if bytes already exist under the id, the upload is
// compared by sha256 digest against what is stored. Equal digests make the
// call a successful no-op (a client retrying a timed-out upload must not
// be punished) while different content is a Conflict and the original
// bytes stay untouched. Delete-then-recreate is the only way to replace.
func (b *BlobService) Upload(ctx context.Context, blobID string, data []byte, token string) error {
	if !b.tokens.IsValid(token, blobID) {
		return apperror.Forbidden("invalid token for blob " + blobID)
	}

	exists, err := b.store.Exists(ctx, blobID)
	if err != nil {
		return apperror.Internal("checking blob", err)
	}
	if exists {
		current, err := b.store.Get(ctx, blobID)
		if err != nil {
			return apperror.Internal("reading blob", err)
		}
		currentSum := sha256.Sum256(current)
		newSum := sha256.Sum256(data)
		if bytes.Equal(currentSum[:], newSum[:]) {
			return nil // idempotent retry
		}
		return apperror.Conflict("blob", blobID)
	}

	if err := b.store.Put(ctx, blobID, data); err != nil {
		return apperror.Internal("storing blob", err)
	}
	cache.Store(ctx, b.cache, cache.BytesKey(blobID), data, 0)

	b.logger.Info("blob uploaded",
		slog.String("blobId", blobID),
		slog.Int("bytes", len(data)),
	)
	return nil
}

// Download returns the media for a blob id, read through the byte-cache.
func (b *BlobService) Download(ctx context.Context, blobID, token string) ([]byte, error) {
	if !b.tokens.IsValid(token, blobID) {
		return nil, apperror.Forbidden("invalid token for blob " + blobID)
	}

	data, err := cache.GetOrLoad(ctx, b.cache, cache.BytesKey(blobID), 0,
		func(ctx context.Context) ([]byte, error) {
			return b.store.Get(ctx, blobID)
		})
	if err != nil {
		if errors.Is(err, blob.ErrNotExist) {
			return nil, apperror.NotFound("blob", blobID)
		}
		return nil, apperror.Internal("downloading blob", err)
	}
	return data, nil
}

// Delete removes the blob and its cache entry. Deleting an absent blob is a
// success; delete is idempotent, and cascade callers rely on that.
func (b *BlobService) Delete(ctx context.Context, blobID, token string) error {
	if !b.tokens.IsValid(token, blobID) {
		return apperror.Forbidden("invalid token for blob " + blobID)
	}

	if err := b.store.Delete(ctx, blobID); err != nil {
		return apperror.Internal("deleting blob", err)
	}
	cache.Invalidate(ctx, b.cache, cache.BytesKey(blobID))
	return nil
}

// DeleteAllForOwner removes every blob belonging to a user's shorts. The
// token must be bound to the user id and the user must exist. Enumeration
// goes through the cached per-owner listing (the same projection
// ListByOwner serves); individual absences are tolerated, but the first
// store failure aborts the remainder; partial deletion is reported, not
// papered over.
func (b *BlobService) DeleteAllForOwner(ctx context.Context, userID, token string) error {
	if !b.tokens.IsValid(token, userID) {
		return apperror.Forbidden("invalid token for user " + userID)
	}
	if err := b.gate.Exists(ctx, userID); err != nil {
		return err
	}

	ids, err := cache.GetOrLoad(ctx, b.cache, cache.ShortsOfKey(userID), cache.ListTTL,
		func(ctx context.Context) ([]string, error) {
			return b.shorts.IDsByOwner(ctx, userID)
		})
	if err != nil {
		return apperror.Internal("enumerating blobs", err)
	}

	for _, id := range ids {
		if err := b.store.Delete(ctx, id); err != nil {
			return apperror.Internal("deleting blob", err)
		}
		cache.Invalidate(ctx, b.cache, cache.BytesKey(id))
	}

	b.logger.Info("owner blobs deleted",
		slog.String("userId", userID),
		slog.Int("count", len(ids)),
	)
	return nil
}
