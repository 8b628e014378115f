package services

import (
	"context"
	"errors"
	"testing"

	"github.com/listoflists/go-survey-backend/internal/domain"
	"github.com/listoflists/go-survey-backend/internal/repo"
)

func friendshipCount(t *testing.T, db *FriendService) int64 {
	t.Helper()
	var n int64
	if err := db.DB.Model(&domain.Friendship{}).Count(&n).Error; err != nil {
		t.Fatalf("count friendships: %v", err)
	}
	return n
}

func TestRequestOrConfirm_FirstRequestIsPending(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	alice := mustUser(t, db, "alice")
	bob := mustUser(t, db, "bob")

	svc := &FriendService{DB: db}
	if err := svc.RequestOrConfirm(ctx, "alice", "bob"); err != nil {
		t.Fatalf("RequestOrConfirm: %v", err)
	}

	f, err := repo.FindFriendshipBetween(ctx, db, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("FindFriendshipBetween: %v", err)
	}
	if f.Confirmed {
		t.Fatalf("first request must be pending")
	}
	if f.FriendAID != alice.ID || f.FriendBID != bob.ID {
		t.Fatalf("requester must be friend_a, got %d→%d", f.FriendAID, f.FriendBID)
	}
}

func TestRequestOrConfirm_CounterRequestConfirmsSingleRow(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	alice := mustUser(t, db, "alice")
	bob := mustUser(t, db, "bob")

	svc := &FriendService{DB: db}
	if err := svc.RequestOrConfirm(ctx, "alice", "bob"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if err := svc.RequestOrConfirm(ctx, "bob", "alice"); err != nil {
		t.Fatalf("counter request: %v", err)
	}

	if n := friendshipCount(t, svc); n != 1 {
		t.Fatalf("pair must hold exactly one row, got %d", n)
	}
	f, err := repo.FindFriendshipBetween(ctx, db, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("FindFriendshipBetween: %v", err)
	}
	if !f.Confirmed {
		t.Fatalf("counter request must confirm")
	}
}

func TestRequestOrConfirm_RepeatIsNoop(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	alice := mustUser(t, db, "alice")
	bob := mustUser(t, db, "bob")

	svc := &FriendService{DB: db}
	if err := svc.RequestOrConfirm(ctx, "alice", "bob"); err != nil {
		t.Fatalf("first request: %v", err)
	}
	// Re-sending one's own pending request changes nothing.
	if err := svc.RequestOrConfirm(ctx, "alice", "bob"); err != nil {
		t.Fatalf("repeat request: %v", err)
	}
	f, err := repo.FindFriendshipBetween(ctx, db, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("FindFriendshipBetween: %v", err)
	}
	if f.Confirmed {
		t.Fatalf("repeat request must not self-confirm")
	}

	// Requesting an already confirmed friend changes nothing either.
	if err := svc.RequestOrConfirm(ctx, "bob", "alice"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := svc.RequestOrConfirm(ctx, "alice", "bob"); err != nil {
		t.Fatalf("request after confirm: %v", err)
	}
	if n := friendshipCount(t, svc); n != 1 {
		t.Fatalf("want one row, got %d", n)
	}
}

func TestRequestOrConfirm_Guards(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	mustUser(t, db, "alice")

	svc := &FriendService{DB: db}
	if err := svc.RequestOrConfirm(ctx, "alice", "alice"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("self-friend: expected ErrInvalidInput, got %v", err)
	}
	if err := svc.RequestOrConfirm(ctx, "alice", "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown target: expected ErrNotFound, got %v", err)
	}
	if err := svc.RequestOrConfirm(ctx, "ghost", "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown requester: expected ErrNotFound, got %v", err)
	}
}

func TestRemove_EitherSideAnyState(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	alice := mustUser(t, db, "alice")
	bob := mustUser(t, db, "bob")

	svc := &FriendService{DB: db}
	if err := svc.RequestOrConfirm(ctx, "alice", "bob"); err != nil {
		t.Fatalf("request: %v", err)
	}
	// The recipient can drop a pending request they never answered.
	if err := svc.Remove(ctx, "bob", "alice"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := repo.FindFriendshipBetween(ctx, db, alice.ID, bob.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("row should be gone, got %v", err)
	}
	// Removing again is fine.
	if err := svc.Remove(ctx, "bob", "alice"); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
}

func TestList_BucketsByDirectionAndState(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	mustUser(t, db, "alice")
	mustUser(t, db, "bob")
	mustUser(t, db, "charlie")
	mustUser(t, db, "dora")

	svc := &FriendService{DB: db}
	if err := svc.RequestOrConfirm(ctx, "alice", "bob"); err != nil {
		t.Fatalf("request: %v", err)
	}
	if err := svc.RequestOrConfirm(ctx, "bob", "alice"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := svc.RequestOrConfirm(ctx, "charlie", "alice"); err != nil {
		t.Fatalf("incoming request: %v", err)
	}
	if err := svc.RequestOrConfirm(ctx, "alice", "dora"); err != nil {
		t.Fatalf("outgoing request: %v", err)
	}

	view, err := svc.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(view.Friends) != 1 || view.Friends[0] != "bob" {
		t.Fatalf("friends: want [bob], got %v", view.Friends)
	}
	if len(view.Incoming) != 1 || view.Incoming[0] != "charlie" {
		t.Fatalf("incoming: want [charlie], got %v", view.Incoming)
	}
	if len(view.Outgoing) != 1 || view.Outgoing[0] != "dora" {
		t.Fatalf("outgoing: want [dora], got %v", view.Outgoing)
	}
}

func TestList_EmptySlicesNotNil(t *testing.T) {
	db := newServiceDB(t)
	mustUser(t, db, "alice")

	svc := &FriendService{DB: db}
	view, err := svc.List(context.Background(), "alice")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if view.Friends == nil || view.Incoming == nil || view.Outgoing == nil {
		t.Fatalf("buckets must serialize as [] not null: %+v", view)
	}
}
