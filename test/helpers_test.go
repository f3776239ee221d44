//go:build integration
// +build integration

package test

import (
	"context"
	"fmt"
	"testing"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type mapDirectory map[string]goGuard.UserRecord

func (d mapDirectory) GetUserByUsername(_ context.Context, username string) (goGuard.UserRecord, error) {
	for _, u := range d {
		if u.Username == username {
			return u, nil
		}
	}
	return goGuard.UserRecord{}, fmt.Errorf("user not found")
}

func (d mapDirectory) GetUserByID(_ context.Context, userID string) (goGuard.UserRecord, error) {
	u, ok := d[userID]
	if !ok {
		return goGuard.UserRecord{}, fmt.Errorf("user not found")
	}
	return u, nil
}

// plainVerifier compares passwords against plaintext "hashes". Test-only.
type plainVerifier struct{}

func (plainVerifier) Verify(password, hash string) bool { return password == hash }

func newIntegrationEngine(t *testing.T) (*goGuard.Engine, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	directory := mapDirectory{
		"u-1": {UserID: "u-1", Username: "alice@example.com", Role: "admin", Active: true, PasswordHash: "correct-horse"},
	}

	engine, err := goGuard.New().
		WithRedis(rdb).
		WithUserDirectory(directory).
		WithPasswordVerifier(plainVerifier{}).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}

	return engine, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}
