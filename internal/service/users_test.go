package service

import (
	"context"
	"errors"
	"testing"

	"github.com/afonsoproenca/tukano/internal/apperror"
	"github.com/afonsoproenca/tukano/internal/cache"
	"github.com/afonsoproenca/tukano/internal/model"
)

func TestUserCreateValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		user model.User
	}{
		{"missing password", model.User{ID: "alice", Email: "a@b.c", DisplayName: "Alice"}},
		{"missing email", model.User{ID: "alice", Password: "p", DisplayName: "Alice"}},
		{"missing display name", model.User{ID: "alice", Password: "p", Email: "a@b.c"}},
		{"empty id", model.User{Password: "p", Email: "a@b.c", DisplayName: "Alice"}},
		{"id contains separator", model.User{ID: "ali+ce", Password: "p", Email: "a@b.c", DisplayName: "Alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.users.Create(ctx, tt.user); !errors.Is(err, apperror.ErrBadRequest) {
				t.Errorf("Create() error = %v, want BadRequest", err)
			}
		})
	}
}

// Cache/store agreement: whenever user:<id> is populated, it holds exactly
// the current authoritative row.
func TestUserCreateCachesStoredRecord(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.createUser(t, "alice")

	cached, ok := cache.Lookup[model.User](ctx, e.cache, cache.UserKey("alice"))
	if !ok {
		t.Fatal("Create() did not populate user:alice")
	}
	stored, err := e.db.Users().GetByID(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if cached != *stored {
		t.Errorf("cached %+v != stored %+v", cached, *stored)
	}
}

func TestUserGet(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "alice")
	ctx := context.Background()

	t.Run("matching credentials", func(t *testing.T) {
		user, err := e.users.Get(ctx, "alice", "alice-pwd")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if user.ID != "alice" || user.Email != "alice@mail.example" {
			t.Errorf("Get() = %+v", user)
		}
	})

	// Unlike the gate, the read endpoint never distinguishes a wrong
	// password from a missing user: both are NotFound.
	t.Run("wrong password is NotFound", func(t *testing.T) {
		_, err := e.users.Get(ctx, "alice", "wrong")
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("Get() error = %v, want NotFound", err)
		}
	})
	t.Run("unknown id is NotFound", func(t *testing.T) {
		_, err := e.users.Get(ctx, "nobody", "whatever")
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("Get() error = %v, want NotFound", err)
		}
	})
}

func TestUserGetServedFromCache(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "alice")
	ctx := context.Background()

	// Remove the row behind the cache's back; a credential-matching cached
	// record must still answer. (The entry lives until invalidated; only
	// UserService.Delete, which also runs the cascade, removes it.)
	if err := e.db.Users().Delete(ctx, "alice", "alice-pwd"); err != nil {
		t.Fatal(err)
	}

	user, err := e.users.Get(ctx, "alice", "alice-pwd")
	if err != nil {
		t.Fatalf("Get() error = %v, want a cache hit", err)
	}
	if user.ID != "alice" {
		t.Errorf("Get() = %+v", user)
	}

	// With the wrong password the cached record is a miss, and the store
	// has nothing: NotFound, not Forbidden: the cache must not leak
	// existence the store would deny.
	if _, err := e.users.Get(ctx, "alice", "wrong"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() with wrong password = %v, want NotFound", err)
	}
}

func TestUserUpdateRefreshesCache(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "alice")
	ctx := context.Background()

	updated, err := e.users.Update(ctx, "alice", "alice-pwd", model.User{DisplayName: "Alice Prime"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.DisplayName != "Alice Prime" || updated.Email != "alice@mail.example" {
		t.Errorf("Update() = %+v", updated)
	}

	// The cache holds the record as stored, not the partial patch.
	cached, ok := cache.Lookup[model.User](ctx, e.cache, cache.UserKey("alice"))
	if !ok {
		t.Fatal("Update() did not refresh the cache entry")
	}
	if cached != *updated {
		t.Errorf("cached %+v != updated %+v", cached, *updated)
	}
}

func TestUserUpdateWrongPassword(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "alice")

	_, err := e.users.Update(context.Background(), "alice", "wrong", model.User{DisplayName: "X"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want NotFound", err)
	}
}

func TestUserDeleteRequiresCredential(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "alice")

	if err := e.users.Delete(context.Background(), "alice", "wrong"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() with wrong password = %v, want NotFound", err)
	}
	// The account must be untouched.
	if _, err := e.db.Users().GetByID(context.Background(), "alice"); err != nil {
		t.Errorf("account damaged by a rejected delete: %v", err)
	}
}

func TestUserSearchIsCachedUnderThePattern(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "alice")
	e.createUser(t, "bob")
	ctx := context.Background()

	got, err := e.users.Search(ctx, "ali")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "alice" {
		t.Fatalf("Search(ali) = %+v, want just alice", got)
	}

	// Results are cached under the uppercased pattern; a new matching user
	// does not appear until the entry expires. That window is the accepted
	// staleness of search.
	e.createUser(t, "alina")
	stale, err := e.users.Search(ctx, "ALI")
	if err != nil {
		t.Fatal(err)
	}
	if len(stale) != 1 {
		t.Errorf("Search(ALI) = %d results, want the cached single result", len(stale))
	}

	// Once the entry is gone (TTL backstop, simulated here), the new row
	// shows up.
	cache.Invalidate(ctx, e.cache, cache.SearchKey("ali"))
	fresh, err := e.users.Search(ctx, "ali")
	if err != nil {
		t.Fatal(err)
	}
	if len(fresh) != 2 {
		t.Errorf("Search(ali) after expiry = %d results, want 2", len(fresh))
	}
}
