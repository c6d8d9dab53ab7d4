package service

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/afonsoproenca/tukano/internal/auth"
	"github.com/afonsoproenca/tukano/internal/blob"
	"github.com/afonsoproenca/tukano/internal/cache"
	"github.com/afonsoproenca/tukano/internal/model"
	"github.com/afonsoproenca/tukano/internal/repository/sqlite"
)

const testBlobBase = "http://test.local/rest/blobs"

// env assembles the full service graph over an in-memory database, cache and
// blob store, the same wiring the server does, minus HTTP.
type env struct {
	db        *sqlite.DB
	cache     *cache.Memory
	blobStore *blob.Memory
	tokens    *auth.TokenService

	gate       *AuthGate
	users      *UserService
	shorts     *ShortService
	social     *SocialService
	engagement *EngagementService
	blobs      *BlobService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService("test-secret-key-0123456789abcdef")
	if err != nil {
		t.Fatalf("failed to create token service: %v", err)
	}

	logger := slog.New(slog.DiscardHandler)
	c := cache.NewMemory()
	store := blob.NewMemory()

	gate := NewAuthGate(db.Users(), c, logger)
	blobs := NewBlobService(store, db.Shorts(), gate, tokens, c, logger)
	shorts := NewShortService(db.Shorts(), db.Follows(), db.Likes(), gate, blobs, tokens, c, testBlobBase, logger)

	return &env{
		db:         db,
		cache:      c,
		blobStore:  store,
		tokens:     tokens,
		gate:       gate,
		users:      NewUserService(db.Users(), c, shorts, logger),
		shorts:     shorts,
		social:     NewSocialService(db.Follows(), gate, c, logger),
		engagement: NewEngagementService(db.Likes(), shorts, gate, c, logger),
		blobs:      blobs,
	}
}

func (e *env) createUser(t *testing.T, id string) model.User {
	t.Helper()
	user := model.User{ID: id, Password: id + "-pwd", Email: id + "@mail.example", DisplayName: "The " + id}
	if _, err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", id, err)
	}
	return user
}

func (e *env) createShort(t *testing.T, ownerID string) *model.Short {
	t.Helper()
	short, err := e.shorts.Create(context.Background(), ownerID, ownerID+"-pwd")
	if err != nil {
		t.Fatalf("failed to create short for %s: %v", ownerID, err)
	}
	return short
}

// blobToken extracts the access token embedded in a short's BlobURL.
func blobToken(t *testing.T, short *model.Short) string {
	t.Helper()
	_, token, found := strings.Cut(short.BlobURL, "?token=")
	if !found || token == "" {
		t.Fatalf("BlobURL %q carries no token", short.BlobURL)
	}
	return token
}

// uploadBlob stores media for a short using the token from its own BlobURL,
// exactly as a client would.
func (e *env) uploadBlob(t *testing.T, short *model.Short, data []byte) {
	t.Helper()
	if err := e.blobs.Upload(context.Background(), short.ID, data, blobToken(t, short)); err != nil {
		t.Fatalf("failed to upload blob for %s: %v", short.ID, err)
	}
}
