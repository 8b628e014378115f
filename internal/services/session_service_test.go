package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/listoflists/go-survey-backend/internal/repo"
)

func TestSession_CreateAndResolve(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	svc := &SessionService{DB: db, TTL: time.Hour}

	token, err := svc.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if token == "" {
		t.Fatalf("expected opaque token")
	}

	username, err := svc.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if username != "alice" {
		t.Fatalf("want alice, got %q", username)
	}
}

func TestSession_ResolveTouchesAccessTime(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()

	start := time.Unix(1700000000, 0).UTC()
	clock := start
	svc := &SessionService{DB: db, TTL: time.Hour, Now: func() time.Time { return clock }}

	token, err := svc.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Stay active just under the TTL, repeatedly: the session must survive
	// far past its original deadline.
	for i := 0; i < 3; i++ {
		clock = clock.Add(59 * time.Minute)
		if _, err := svc.Resolve(ctx, token); err != nil {
			t.Fatalf("Resolve at +%dm: %v", (i+1)*59, err)
		}
	}

	sess, err := repo.GetSession(ctx, db, token)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if !sess.ATime.Equal(clock) {
		t.Fatalf("atime not refreshed: want %v, got %v", clock, sess.ATime)
	}
}

func TestSession_ExpiredTokenRemovedOnSight(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()

	start := time.Unix(1700000000, 0).UTC()
	clock := start
	svc := &SessionService{DB: db, TTL: time.Hour, Now: func() time.Time { return clock }}

	token, err := svc.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	clock = clock.Add(2 * time.Hour)
	if _, err := svc.Resolve(ctx, token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired token, got %v", err)
	}
	if _, err := repo.GetSession(ctx, db, token); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expired row must be deleted, got %v", err)
	}
}

func TestSession_ResolveRejectsEmptyAndUnknown(t *testing.T) {
	db := newServiceDB(t)
	svc := &SessionService{DB: db, TTL: time.Hour}

	if _, err := svc.Resolve(context.Background(), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty token: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Resolve(context.Background(), "bogus"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown token: expected ErrNotFound, got %v", err)
	}
}

func TestSession_ClearIsIdempotent(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()
	svc := &SessionService{DB: db, TTL: time.Hour}

	token, err := svc.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Clear(ctx, token); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := svc.Resolve(ctx, token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cleared token must not resolve, got %v", err)
	}
	if err := svc.Clear(ctx, token); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
	if err := svc.Clear(ctx, ""); err != nil {
		t.Fatalf("Clear empty: %v", err)
	}
}

func TestSession_SweepDropsIdleOnly(t *testing.T) {
	db := newServiceDB(t)
	ctx := context.Background()

	start := time.Unix(1700000000, 0).UTC()
	clock := start
	svc := &SessionService{DB: db, TTL: time.Hour, Now: func() time.Time { return clock }}

	stale, err := svc.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	clock = clock.Add(2 * time.Hour)
	fresh, err := svc.Create(ctx, "bob")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := svc.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 swept, got %d", n)
	}
	if _, err := repo.GetSession(ctx, db, stale); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("stale session should be gone, got %v", err)
	}
	if _, err := repo.GetSession(ctx, db, fresh); err != nil {
		t.Fatalf("fresh session should survive: %v", err)
	}
}

func TestSession_SweepRequiresTTL(t *testing.T) {
	db := newServiceDB(t)
	svc := &SessionService{DB: db}

	if _, err := svc.Sweep(context.Background()); err == nil {
		t.Fatalf("expected error without a TTL")
	}
}
