package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newStoreTest(t *testing.T) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, "gg")
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestCreateAndFindByRefreshToken(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	sess, err := store.Create(ctx, "u-1", "admin", "10.0.0.1", time.Hour, "at-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sess.RefreshToken == "" {
		t.Fatal("expected refresh token to be generated")
	}
	if sess.OldRefreshToken != "" {
		t.Fatalf("fresh session has old token %q", sess.OldRefreshToken)
	}

	got, err := store.FindByRefreshToken(ctx, sess.RefreshToken)
	if err != nil {
		t.Fatalf("find by refresh token: %v", err)
	}
	if got.ID != sess.ID || got.UserID != "u-1" || got.Role != "admin" {
		t.Fatalf("unexpected session: %+v", got)
	}
	if got.AccessToken != "at-1" {
		t.Fatalf("access token = %q, want at-1", got.AccessToken)
	}
	if got.ClientIP != "10.0.0.1" {
		t.Fatalf("client ip = %q", got.ClientIP)
	}

	byUser, err := store.FindByUserID(ctx, "u-1")
	if err != nil {
		t.Fatalf("find by user: %v", err)
	}
	if byUser.ID != sess.ID {
		t.Fatalf("user index points at %s, want %s", byUser.ID, sess.ID)
	}
}

func TestFindUnknownTokenReturnsNotFound(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()

	if _, err := store.FindByRefreshToken(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("find unknown = %v, want ErrNotFound", err)
	}
}

func TestCreateReplacesExistingSession(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	first, err := store.Create(ctx, "u-1", "member", "", time.Hour, "at-1")
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := store.Create(ctx, "u-1", "member", "", time.Hour, "at-2")
	if err != nil {
		t.Fatalf("second create: %v", err)
	}

	if _, err := store.FindByRefreshToken(ctx, first.RefreshToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("first session refresh token still resolves: %v", err)
	}
	got, err := store.FindByUserID(ctx, "u-1")
	if err != nil {
		t.Fatalf("find by user: %v", err)
	}
	if got.ID != second.ID {
		t.Fatalf("user index points at %s, want %s", got.ID, second.ID)
	}
}

func TestRotateMovesTokenGenerations(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	sess, err := store.Create(ctx, "u-1", "member", "", time.Hour, "at-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rotated, err := store.Rotate(ctx, sess, time.Hour, "at-2")
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rotated.RefreshToken == sess.RefreshToken {
		t.Fatal("rotate did not replace the refresh token")
	}
	if rotated.OldRefreshToken != sess.RefreshToken {
		t.Fatalf("old token = %q, want %q", rotated.OldRefreshToken, sess.RefreshToken)
	}
	if rotated.AccessToken != "at-2" {
		t.Fatalf("access token = %q, want at-2", rotated.AccessToken)
	}

	// The replaced token must resolve only through the old-token index.
	if _, err := store.FindByRefreshToken(ctx, sess.RefreshToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("replaced token still in current index: %v", err)
	}
	viaOld, err := store.FindByOldRefreshToken(ctx, sess.RefreshToken)
	if err != nil {
		t.Fatalf("find by old token: %v", err)
	}
	if viaOld.RefreshToken != rotated.RefreshToken {
		t.Fatalf("old-token lookup returned stale record %+v", viaOld)
	}
	if _, err := store.FindByRefreshToken(ctx, rotated.RefreshToken); err != nil {
		t.Fatalf("new token does not resolve: %v", err)
	}
}

func TestRotateDropsTwoGenerationsOldToken(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	sess, err := store.Create(ctx, "u-1", "member", "", time.Hour, "at-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	firstToken := sess.RefreshToken

	once, err := store.Rotate(ctx, sess, time.Hour, "at-2")
	if err != nil {
		t.Fatalf("first rotate: %v", err)
	}
	if _, err := store.Rotate(ctx, once, time.Hour, "at-3"); err != nil {
		t.Fatalf("second rotate: %v", err)
	}

	if _, err := store.FindByOldRefreshToken(ctx, firstToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("two-generations-old token still resolves: %v", err)
	}
	if _, err := store.FindByOldRefreshToken(ctx, once.RefreshToken); err != nil {
		t.Fatalf("one-generation-old token must resolve: %v", err)
	}
}

func TestDeleteByUserIDRemovesAllIndexes(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	sess, err := store.Create(ctx, "u-1", "member", "", time.Hour, "at-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rotated, err := store.Rotate(ctx, sess, time.Hour, "at-2")
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}

	if err := store.DeleteByUserID(ctx, "u-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.FindByUserID(ctx, "u-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("user index survives delete: %v", err)
	}
	if _, err := store.FindByRefreshToken(ctx, rotated.RefreshToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("refresh index survives delete: %v", err)
	}
	if _, err := store.FindByOldRefreshToken(ctx, rotated.OldRefreshToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old-token index survives delete: %v", err)
	}
}

func TestDeleteByUserIDWithoutSession(t *testing.T) {
	store, _, done := newStoreTest(t)
	defer done()

	if err := store.DeleteByUserID(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing user = %v, want ErrNotFound", err)
	}
}

func TestKeysExpireWithRefreshTTL(t *testing.T) {
	store, mr, done := newStoreTest(t)
	defer done()
	ctx := context.Background()

	sess, err := store.Create(ctx, "u-1", "member", "", time.Minute, "at-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.FindByRefreshToken(ctx, sess.RefreshToken); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired token still resolves: %v", err)
	}
	if _, err := store.FindByUserID(ctx, "u-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired user index still resolves: %v", err)
	}
}
