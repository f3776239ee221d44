// Command goguard-loadtest measures authorize and refresh throughput of a
// goGuard engine against a real Redis (REDIS_ADDR or -redis-addr) or an
// embedded miniredis when neither is set.
//
// It seeds one session per synthetic user, then runs two phases: an
// authorize phase that validates access tokens, and a refresh phase that
// rotates refresh tokens with per-session serialization.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type sessionState struct {
	username string
	pair     goGuard.TokenPair
	mu       sync.Mutex
}

func main() {
	var (
		sessions    = flag.Int("sessions", 10000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 100000, "operations per phase (authorize + refresh)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	directory := newSyntheticDirectory(*sessions)

	engine, err := goGuard.New().
		WithRedis(client).
		WithUserDirectory(directory).
		WithPasswordVerifier(plainVerifier{}).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	states := make([]sessionState, *sessions)
	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	for i := 0; i < *sessions; i++ {
		username := fmt.Sprintf("user-%d@loadtest", i)
		res, err := engine.Login(ctx, username, "loadtest")
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed login failed: %v\n", err)
			os.Exit(1)
		}
		states[i] = sessionState{username: username, pair: res.Pair}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	authorizeStats := runAuthorizePhase(ctx, engine, states, *ops, *concurrency)
	refreshStats := runRefreshPhase(ctx, engine, states, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("authorize", authorizeStats)
	printStats("refresh", refreshStats)

	snapshot := engine.MetricsSnapshot()
	fmt.Printf("refresh successes=%d race-absorbed=%d lock-timeouts=%d\n",
		snapshot.Counters[goGuard.MetricRefreshSuccess],
		snapshot.Counters[goGuard.MetricRefreshRaceAbsorbed],
		snapshot.Counters[goGuard.MetricRefreshLockTimeout],
	)
}

func runAuthorizePhase(ctx context.Context, engine *goGuard.Engine, states []sessionState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				state := &states[idx]

				state.mu.Lock()
				token := state.pair.AccessToken
				state.mu.Unlock()

				t0 := time.Now()
				_, err := engine.Authorize(ctx, token)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runRefreshPhase(ctx context.Context, engine *goGuard.Engine, states []sessionState, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(states))
				state := &states[idx]

				state.mu.Lock()
				t0 := time.Now()
				res, err := engine.Refresh(ctx, state.pair.RefreshToken)
				d := time.Since(t0)
				if err == nil {
					state.pair = res.Pair
				} else {
					atomic.AddInt64(&failures, 1)
				}
				state.mu.Unlock()

				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

type syntheticDirectory struct {
	byID       map[string]goGuard.UserRecord
	byUsername map[string]string
}

func newSyntheticDirectory(n int) *syntheticDirectory {
	d := &syntheticDirectory{
		byID:       make(map[string]goGuard.UserRecord, n),
		byUsername: make(map[string]string, n),
	}
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("u-%d", i)
		username := fmt.Sprintf("user-%d@loadtest", i)
		d.byID[id] = goGuard.UserRecord{
			UserID:       id,
			Username:     username,
			Role:         "member",
			Active:       true,
			PasswordHash: "loadtest",
		}
		d.byUsername[username] = id
	}
	return d
}

func (d *syntheticDirectory) GetUserByUsername(_ context.Context, username string) (goGuard.UserRecord, error) {
	id, ok := d.byUsername[username]
	if !ok {
		return goGuard.UserRecord{}, fmt.Errorf("user not found")
	}
	return d.byID[id], nil
}

func (d *syntheticDirectory) GetUserByID(_ context.Context, userID string) (goGuard.UserRecord, error) {
	u, ok := d.byID[userID]
	if !ok {
		return goGuard.UserRecord{}, fmt.Errorf("user not found")
	}
	return u, nil
}

type plainVerifier struct{}

func (plainVerifier) Verify(password, hash string) bool { return password == hash }
