package test

import (
	"context"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/redis/go-redis/v9"
)

// ExampleNew demonstrates engine construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	engine, _ := goGuard.New().
		WithRedis(rdb).
		WithUserDirectory(&exampleDirectory{}).
		WithPasswordVerifier(exampleVerifier{}).
		Build()
	_ = engine
}

// ExampleEngine_Login shows a typical login entrypoint call and structured error handling.
func ExampleEngine_Login() {
	var engine *goGuard.Engine
	res, err := engine.Login(context.Background(), "alice@example.com", "password")
	if err != nil {
		_ = err
		return
	}
	_ = res.Pair.AccessToken
	_ = res.Pair.RefreshToken
}

// ExampleEngine_MetricsSnapshot shows how to read in-process metrics counters.
func ExampleEngine_MetricsSnapshot() {
	var engine *goGuard.Engine
	snapshot := engine.MetricsSnapshot()
	_ = snapshot
}

type exampleDirectory struct{}

func (e *exampleDirectory) GetUserByUsername(ctx context.Context, username string) (goGuard.UserRecord, error) {
	return goGuard.UserRecord{}, nil
}

func (e *exampleDirectory) GetUserByID(ctx context.Context, userID string) (goGuard.UserRecord, error) {
	return goGuard.UserRecord{}, nil
}

type exampleVerifier struct{}

func (exampleVerifier) Verify(password, hash string) bool { return false }
