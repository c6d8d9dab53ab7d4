package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/afonsoproenca/tukano/internal/apperror"
	"github.com/afonsoproenca/tukano/internal/model"
)

// newTestDB opens a fresh in-memory database for one test. t.Cleanup closes
// it even when subtests fail.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, id string) *model.User {
	t.Helper()
	user := &model.User{ID: id, Password: id + "-pwd", Email: id + "@mail.example", DisplayName: "The " + id}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %s: %v", id, err)
	}
	return user
}

func TestUserCreateAndGetByID(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "alice")

	got, err := db.Users().GetByID(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if *got != *created {
		t.Errorf("GetByID() = %+v, want %+v", got, created)
	}
}

func TestUserCreateDuplicateIDFails(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")

	dup := &model.User{ID: "alice", Password: "other", Email: "x@y.z", DisplayName: "X"}
	if err := db.Users().Create(context.Background(), dup); err == nil {
		t.Error("Create() accepted a duplicate user id")
	}
}

func TestUserGetByCredential(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")
	ctx := context.Background()

	t.Run("matching pair", func(t *testing.T) {
		got, err := db.Users().GetByCredential(ctx, "alice", "alice-pwd")
		if err != nil {
			t.Fatalf("GetByCredential() error = %v", err)
		}
		if got.ID != "alice" {
			t.Errorf("GetByCredential() = %+v", got)
		}
	})

	// A wrong password and a wrong id must be the same error: this query
	// is what keeps user enumeration impossible at the store level.
	t.Run("wrong password is NotFound", func(t *testing.T) {
		_, err := db.Users().GetByCredential(ctx, "alice", "wrong")
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("GetByCredential() error = %v, want NotFound", err)
		}
	})
	t.Run("wrong id is NotFound", func(t *testing.T) {
		_, err := db.Users().GetByCredential(ctx, "nobody", "alice-pwd")
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("GetByCredential() error = %v, want NotFound", err)
		}
	})
}

func TestUserUpdate(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")
	ctx := context.Background()

	t.Run("partial patch keeps unset fields", func(t *testing.T) {
		got, err := db.Users().Update(ctx, "alice", "alice-pwd", model.User{DisplayName: "Alice II"})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if got.DisplayName != "Alice II" {
			t.Errorf("DisplayName = %q, want %q", got.DisplayName, "Alice II")
		}
		if got.Email != "alice@mail.example" || got.Password != "alice-pwd" {
			t.Errorf("untouched fields changed: %+v", got)
		}
	})

	t.Run("password change takes effect", func(t *testing.T) {
		if _, err := db.Users().Update(ctx, "alice", "alice-pwd", model.User{Password: "new-pwd"}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if _, err := db.Users().GetByCredential(ctx, "alice", "new-pwd"); err != nil {
			t.Errorf("new password does not authenticate: %v", err)
		}
		if _, err := db.Users().GetByCredential(ctx, "alice", "alice-pwd"); !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("old password still authenticates")
		}
	})

	t.Run("wrong password is NotFound", func(t *testing.T) {
		_, err := db.Users().Update(ctx, "alice", "stale-pwd", model.User{DisplayName: "X"})
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("Update() error = %v, want NotFound", err)
		}
	})
}

func TestUserDelete(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")
	ctx := context.Background()

	if err := db.Users().Delete(ctx, "alice", "wrong"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() with wrong password = %v, want NotFound", err)
	}
	if err := db.Users().Delete(ctx, "alice", "alice-pwd"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := db.Users().GetByID(ctx, "alice"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete = %v, want NotFound", err)
	}
}

func TestUserSearch(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")
	createTestUser(t, db, "bob")
	ctx := context.Background()

	t.Run("matches display name case-insensitively", func(t *testing.T) {
		got, err := db.Users().Search(ctx, "ALI")
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != "alice" {
			t.Errorf("Search(ALI) = %+v, want just alice", got)
		}
	})

	t.Run("matches email", func(t *testing.T) {
		got, err := db.Users().Search(ctx, "bob@mail")
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != "bob" {
			t.Errorf("Search(bob@mail) = %+v, want just bob", got)
		}
	})

	t.Run("no match is an empty list, not an error", func(t *testing.T) {
		got, err := db.Users().Search(ctx, "zzz")
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Search(zzz) = %+v, want empty", got)
		}
	})
}
