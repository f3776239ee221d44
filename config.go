package goGuard

import (
	"errors"
	"time"

	"github.com/MrEthical07/goGuard/refresh"
)

// Config is the full engine configuration. Zero-value fields fall back to
// the defaults from [DefaultConfig] during [Builder.Build] validation only
// where documented; everything else must be set explicitly.
type Config struct {
	JWT        JWTConfig
	Session    SessionConfig
	Refresh    RefreshConfig
	Cookie     CookieConfig
	Middleware MiddlewareConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

// JWTConfig controls access token issuance and validation.
type JWTConfig struct {
	// AccessTTL is the signed access token lifetime.
	AccessTTL time.Duration
	// RefreshTTL is the refresh token lifetime; it also bounds session
	// retention in Redis.
	RefreshTTL time.Duration
	// Key is the HMAC-SHA512 signing key. Leave nil to generate a random
	// process-wide key at Build, invalidating outstanding tokens on restart.
	Key []byte
	// Leeway tolerates clock skew during expiry validation.
	Leeway time.Duration
}

// SessionConfig controls Redis session storage.
type SessionConfig struct {
	// RedisPrefix namespaces all session keys.
	RedisPrefix string
}

// RefreshConfig controls refresh coordination.
type RefreshConfig struct {
	// LockShards is the number of hashed shard locks serializing refreshes.
	LockShards int
	// LockTimeout bounds how long a refresh waits for its shard.
	LockTimeout time.Duration
	// GraceWindow is how long a superseded refresh token stays accepted.
	GraceWindow time.Duration
}

// CookieConfig names the cookies the middleware reads and writes.
type CookieConfig struct {
	AccessName  string
	RefreshName string
	FlashName   string
	Secure      bool
}

// MiddlewareConfig sets default middleware failure behavior. Per-route
// options override both fields.
type MiddlewareConfig struct {
	// RedirectURL is where browser clients are sent on auth failure.
	RedirectURL string
	// OverrideStatus, when non-zero, replies with this status instead of
	// redirecting. API deployments set 401 here.
	OverrideStatus int
}

// AuditConfig controls the async audit event dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking when the buffer is full.
	DropIfFull bool
}

// MetricsConfig controls the in-process atomic counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration used when [Builder.WithConfig] is
// never called.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  20 * time.Minute,
			RefreshTTL: 24 * time.Hour,
		},
		Session: SessionConfig{
			RedisPrefix: "gg",
		},
		Refresh: RefreshConfig{
			LockShards:  refresh.DefaultShards,
			LockTimeout: refresh.DefaultLockTimeout,
			GraceWindow: refresh.DefaultGraceWindow,
		},
		Cookie: CookieConfig{
			AccessName:  "access_token",
			RefreshName: "refresh_token",
			FlashName:   "flash",
		},
		Middleware: MiddlewareConfig{
			RedirectURL: "/login",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate reports the first configuration error found.
func (c *Config) Validate() error {
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("JWT RefreshTTL must exceed AccessTTL")
	}
	if c.JWT.Leeway < 0 {
		return errors.New("JWT Leeway must be >= 0")
	}

	if c.Session.RedisPrefix == "" {
		return errors.New("Session RedisPrefix must be set")
	}

	if c.Refresh.LockShards < 0 {
		return errors.New("Refresh LockShards must be >= 0")
	}
	if c.Refresh.LockTimeout < 0 {
		return errors.New("Refresh LockTimeout must be >= 0")
	}
	if c.Refresh.GraceWindow < 0 {
		return errors.New("Refresh GraceWindow must be >= 0")
	}
	// A grace window outliving the access token would let a superseded
	// refresh token mint pairs after the pair it raced with has expired.
	if c.Refresh.GraceWindow >= c.JWT.AccessTTL {
		return errors.New("Refresh GraceWindow must be shorter than JWT AccessTTL")
	}

	if c.Cookie.AccessName == "" || c.Cookie.RefreshName == "" {
		return errors.New("Cookie AccessName and RefreshName must be set")
	}

	if c.Middleware.OverrideStatus != 0 &&
		(c.Middleware.OverrideStatus < 100 || c.Middleware.OverrideStatus > 599) {
		return errors.New("Middleware OverrideStatus must be a valid HTTP status")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Key = cloneBytes(cfg.JWT.Key)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
