package refresh

import (
	"context"
	"errors"
	"hash/fnv"
	"time"

	"github.com/MrEthical07/goGuard/session"
)

// ErrSessionNotFound is returned when the presented token matches no live
// session: never issued, superseded beyond the grace window, or deleted.
var ErrSessionNotFound = errors.New("refresh session not found")

// ErrExpiredRefresh is returned when the session's own refresh lifetime has
// lapsed.
var ErrExpiredRefresh = errors.New("refresh token expired")

// ErrIPMismatch is returned when the request IP differs from the IP the
// session was bound to at login.
var ErrIPMismatch = errors.New("client ip mismatch")

// ErrLockTimeout is returned when a shard lock could not be acquired within
// the configured timeout.
var ErrLockTimeout = errors.New("refresh lock timeout")

const (
	// DefaultShards is the default number of lock shards.
	DefaultShards = 10
	// DefaultLockTimeout bounds how long a refresh waits for its shard.
	DefaultLockTimeout = 10 * time.Second
	// DefaultGraceWindow is how long a superseded token stays accepted.
	DefaultGraceWindow = 30 * time.Second
)

// Store is the session persistence surface the coordinator drives.
// *session.Store satisfies it.
type Store interface {
	FindByRefreshToken(ctx context.Context, refreshToken string) (*session.Session, error)
	FindByOldRefreshToken(ctx context.Context, refreshToken string) (*session.Session, error)
	Rotate(ctx context.Context, sess *session.Session, refreshTTL time.Duration, accessToken string) (*session.Session, error)
}

// Issuer mints the access token handed out with a rotated session.
// *jwt.Manager satisfies it.
type Issuer interface {
	CreateAccess(subject, role string) (string, error)
}

// Config controls coordinator behavior. Zero values for Shards, LockTimeout,
// and GraceWindow fall back to the package defaults; RefreshTTL is required.
type Config struct {
	Shards      int
	LockTimeout time.Duration
	RefreshTTL  time.Duration
	GraceWindow time.Duration
}

// Coordinator serializes refresh attempts per token through hashed shard
// locks and performs rotation exactly once per presented token.
type Coordinator struct {
	store  Store
	issuer Issuer
	cfg    Config
	shards []chan struct{}
	now    func() time.Time
}

// NewCoordinator validates cfg and builds a [Coordinator].
func NewCoordinator(store Store, issuer Issuer, cfg Config) (*Coordinator, error) {
	if store == nil {
		return nil, errors.New("refresh: store is required")
	}
	if issuer == nil {
		return nil, errors.New("refresh: issuer is required")
	}
	if cfg.RefreshTTL <= 0 {
		return nil, errors.New("refresh: RefreshTTL must be positive")
	}
	if cfg.Shards < 0 || cfg.LockTimeout < 0 || cfg.GraceWindow < 0 {
		return nil, errors.New("refresh: negative config value")
	}
	if cfg.Shards == 0 {
		cfg.Shards = DefaultShards
	}
	if cfg.LockTimeout == 0 {
		cfg.LockTimeout = DefaultLockTimeout
	}
	if cfg.GraceWindow == 0 {
		cfg.GraceWindow = DefaultGraceWindow
	}

	shards := make([]chan struct{}, cfg.Shards)
	for i := range shards {
		shards[i] = make(chan struct{}, 1)
	}

	return &Coordinator{
		store:  store,
		issuer: issuer,
		cfg:    cfg,
		shards: shards,
		now:    time.Now,
	}, nil
}

// Refresh exchanges refreshToken for the session's current token pair.
//
// When the token is current, the session is rotated and rotated is true.
// When the token was superseded within the grace window, the already-rotated
// session is returned unchanged and rotated is false. Callers racing on the
// same token therefore all receive the identical pair.
func (c *Coordinator) Refresh(ctx context.Context, refreshToken, clientIP string) (sess *session.Session, rotated bool, err error) {
	shard := c.shardIndex(refreshToken)
	if err := c.lock(ctx, shard); err != nil {
		return nil, false, err
	}
	defer c.unlock(shard)

	current, err := c.store.FindByRefreshToken(ctx, refreshToken)
	if err == nil {
		return c.rotate(ctx, current, clientIP)
	}
	if !errors.Is(err, session.ErrNotFound) {
		return nil, false, err
	}

	// Not the current token. A race loser or a retried request may hold the
	// previous generation.
	prev, err := c.store.FindByOldRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, false, ErrSessionNotFound
		}
		return nil, false, err
	}

	if err := c.checkIP(prev, clientIP); err != nil {
		return nil, false, err
	}
	// Beyond the grace window a superseded token is indistinguishable from
	// one that was never issued.
	if !c.withinGrace(prev) {
		return nil, false, ErrSessionNotFound
	}
	return prev, false, nil
}

func (c *Coordinator) rotate(ctx context.Context, current *session.Session, clientIP string) (*session.Session, bool, error) {
	if err := c.checkIP(current, clientIP); err != nil {
		return nil, false, err
	}
	if current.Expired(c.now()) {
		return nil, false, ErrExpiredRefresh
	}

	accessToken, err := c.issuer.CreateAccess(current.UserID, current.Role)
	if err != nil {
		return nil, false, err
	}

	next, err := c.store.Rotate(ctx, current, c.cfg.RefreshTTL, accessToken)
	if err != nil {
		return nil, false, err
	}
	return next, true, nil
}

func (c *Coordinator) checkIP(sess *session.Session, clientIP string) error {
	if sess.ClientIP != "" && sess.ClientIP != clientIP {
		return ErrIPMismatch
	}
	return nil
}

// withinGrace reports whether the session was rotated recently enough for
// its superseded token to still be honored. The rotation instant is derived
// from the stored expiry rather than persisted separately.
func (c *Coordinator) withinGrace(sess *session.Session) bool {
	rotatedAt := sess.RefreshExpiry().Add(-c.cfg.RefreshTTL)
	return c.now().Sub(rotatedAt) <= c.cfg.GraceWindow
}

func (c *Coordinator) shardIndex(refreshToken string) int {
	h := fnv.New32a()
	h.Write([]byte(refreshToken))
	return int(h.Sum32() % uint32(len(c.shards)))
}

func (c *Coordinator) lock(ctx context.Context, shard int) error {
	timer := time.NewTimer(c.cfg.LockTimeout)
	defer timer.Stop()

	select {
	case c.shards[shard] <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrLockTimeout
	}
}

func (c *Coordinator) unlock(shard int) {
	<-c.shards[shard]
}
