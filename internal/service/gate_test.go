package service

import (
	"context"
	"errors"
	"testing"

	"github.com/afonsoproenca/tukano/internal/apperror"
	"github.com/afonsoproenca/tukano/internal/cache"
	"github.com/afonsoproenca/tukano/internal/model"
)

func TestAuthenticate(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "alice")
	ctx := context.Background()

	t.Run("correct credentials", func(t *testing.T) {
		user, err := e.gate.Authenticate(ctx, "alice", "alice-pwd")
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if user.ID != "alice" {
			t.Errorf("Authenticate() = %+v", user)
		}
	})

	t.Run("wrong password is Forbidden", func(t *testing.T) {
		_, err := e.gate.Authenticate(ctx, "alice", "wrong")
		if !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("Authenticate() error = %v, want Forbidden", err)
		}
	})

	t.Run("unknown user is NotFound", func(t *testing.T) {
		_, err := e.gate.Authenticate(ctx, "nobody", "whatever")
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("Authenticate() error = %v, want NotFound", err)
		}
	})
}

func TestAuthenticatePopulatesCache(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "alice")
	ctx := context.Background()

	// Clear whatever Create cached so this authenticates from the store.
	cache.Invalidate(ctx, e.cache, cache.UserKey("alice"))

	if _, err := e.gate.Authenticate(ctx, "alice", "alice-pwd"); err != nil {
		t.Fatal(err)
	}

	cached, ok := cache.Lookup[model.User](ctx, e.cache, cache.UserKey("alice"))
	if !ok {
		t.Fatal("successful authentication did not populate the user cache")
	}
	stored, err := e.db.Users().GetByID(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if cached != *stored {
		t.Errorf("cached record %+v differs from stored record %+v", cached, stored)
	}
}

// A cached record with a non-matching password must behave exactly like a
// cache miss: the decision falls to the store, and the outcome is the same
// Forbidden the uncached path would produce.
func TestAuthenticateCachedWrongPasswordFallsThrough(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "alice")
	ctx := context.Background()

	// Warm the cache with the real record.
	if _, err := e.gate.Authenticate(ctx, "alice", "alice-pwd"); err != nil {
		t.Fatal(err)
	}

	_, err := e.gate.Authenticate(ctx, "alice", "wrong")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("Authenticate() with cached record and wrong password = %v, want Forbidden", err)
	}
}

func TestExists(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "alice")
	ctx := context.Background()

	if err := e.gate.Exists(ctx, "alice"); err != nil {
		t.Errorf("Exists(alice) = %v, want nil", err)
	}
	if err := e.gate.Exists(ctx, "nobody"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Exists(nobody) = %v, want NotFound", err)
	}
}

func TestExistsNeverChecksPasswords(t *testing.T) {
	e := newEnv(t)
	e.createUser(t, "alice")
	ctx := context.Background()

	// Existence is a property of the id alone; no credential variant of the
	// call exists, and a user found by id is cached as the full row.
	cache.Invalidate(ctx, e.cache, cache.UserKey("alice"))
	if err := e.gate.Exists(ctx, "alice"); err != nil {
		t.Fatal(err)
	}
	cached, ok := cache.Lookup[model.User](ctx, e.cache, cache.UserKey("alice"))
	if !ok || cached.Password != "alice-pwd" {
		t.Errorf("Exists() cached %+v (hit=%v), want the full stored row", cached, ok)
	}
}
