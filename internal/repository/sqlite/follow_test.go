package sqlite

import (
	"context"
	"testing"
)

func follow(t *testing.T, db *DB, follower, followee string) {
	t.Helper()
	if err := db.Follows().SetFollowing(context.Background(), follower, followee, true); err != nil {
		t.Fatalf("failed to follow %s -> %s: %v", follower, followee, err)
	}
}

func TestFollowAndUnfollow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	follow(t, db, "bob", "alice")
	followers, err := db.Follows().FollowersOf(ctx, "alice")
	if err != nil {
		t.Fatalf("FollowersOf() error = %v", err)
	}
	if len(followers) != 1 || followers[0] != "bob" {
		t.Errorf("FollowersOf(alice) = %v, want [bob]", followers)
	}

	if err := db.Follows().SetFollowing(ctx, "bob", "alice", false); err != nil {
		t.Fatalf("unfollow error = %v", err)
	}
	followers, err = db.Follows().FollowersOf(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(followers) != 0 {
		t.Errorf("FollowersOf(alice) after unfollow = %v, want empty", followers)
	}
}

func TestDuplicateFollowIsConstraintError(t *testing.T) {
	db := newTestDB(t)
	follow(t, db, "bob", "alice")

	if err := db.Follows().SetFollowing(context.Background(), "bob", "alice", true); err == nil {
		t.Error("SetFollowing() accepted a duplicate edge")
	}
}

func TestUnfollowAbsentEdgeIsNoOp(t *testing.T) {
	db := newTestDB(t)
	if err := db.Follows().SetFollowing(context.Background(), "bob", "alice", false); err != nil {
		t.Errorf("removing an absent edge = %v, want nil", err)
	}
}

func TestDeleteByFollowerAndFollowee(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// alice follows bob, carol follows alice, alice also has dave following.
	follow(t, db, "alice", "bob")
	follow(t, db, "carol", "alice")
	follow(t, db, "dave", "alice")

	if err := db.Follows().DeleteByFollower(ctx, "alice"); err != nil {
		t.Fatalf("DeleteByFollower() error = %v", err)
	}
	if followers, _ := db.Follows().FollowersOf(ctx, "bob"); len(followers) != 0 {
		t.Errorf("alice's outgoing edge survived: %v", followers)
	}

	if err := db.Follows().DeleteByFollowee(ctx, "alice"); err != nil {
		t.Fatalf("DeleteByFollowee() error = %v", err)
	}
	if followers, _ := db.Follows().FollowersOf(ctx, "alice"); len(followers) != 0 {
		t.Errorf("alice's incoming edges survived: %v", followers)
	}
}
