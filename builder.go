package goGuard

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goGuard/jwt"
	"github.com/MrEthical07/goGuard/refresh"
	"github.com/MrEthical07/goGuard/session"
)

// Builder assembles an [Engine]. A Builder is single-use; Build returns an
// error if called twice.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	directory UserDirectory
	verifier  PasswordVerifier
	auditSink AuditSink

	built bool
}

// New returns a [Builder] seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing session storage.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserDirectory sets the caller's user database integration.
func (b *Builder) WithUserDirectory(dir UserDirectory) *Builder {
	b.directory = dir
	return b
}

// WithPasswordVerifier sets the caller's password hash verification.
func (b *Builder) WithPasswordVerifier(v PasswordVerifier) *Builder {
	b.verifier = v
	return b
}

// WithAuditSink sets the destination for audit events. Enable the
// dispatcher through Config.Audit.Enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the authorize-path latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires all components, and returns a
// ready [Engine].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.directory == nil {
		return nil, errors.New("user directory required")
	}
	if b.verifier == nil {
		return nil, errors.New("password verifier required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if len(cfg.JWT.Key) == 0 {
		key, err := jwt.NewProcessKey()
		if err != nil {
			return nil, err
		}
		cfg.JWT.Key = key
	}

	jm, err := jwt.NewManager(jwt.Config{
		AccessTTL: cfg.JWT.AccessTTL,
		Key:       cfg.JWT.Key,
		Leeway:    cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	store := session.NewStore(b.redis, cfg.Session.RedisPrefix)

	coordinator, err := refresh.NewCoordinator(store, jm, refresh.Config{
		Shards:      cfg.Refresh.LockShards,
		LockTimeout: cfg.Refresh.LockTimeout,
		RefreshTTL:  cfg.JWT.RefreshTTL,
		GraceWindow: cfg.Refresh.GraceWindow,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       cfg,
		jwtManager:   jm,
		sessionStore: store,
		coordinator:  coordinator,
		directory:    b.directory,
		verifier:     b.verifier,
		audit:        newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:      NewMetrics(cfg.Metrics),
	}

	b.built = true

	return engine, nil
}
