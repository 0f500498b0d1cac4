package dnaAuth

import (
	"errors"
	"log/slog"
	"time"

	"github.com/MrEthical07/dnaAuth/fingerprint"
	"github.com/MrEthical07/dnaAuth/internal/rate"
	"github.com/MrEthical07/dnaAuth/matcher"
	"github.com/MrEthical07/dnaAuth/permission"
	"github.com/MrEthical07/dnaAuth/profile"
	"github.com/MrEthical07/dnaAuth/session"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. A Builder can be used once.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  session.Store

	profiles    []profile.Profile
	permissions []string
	matcher     matcher.Matcher

	auditSink AuditSink
	logger    *slog.Logger
	clock     func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig] and [profile.Defaults].
func New() *Builder {
	return &Builder{
		config:   DefaultConfig(),
		profiles: profile.Defaults(),
	}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithProfiles replaces the profile table. Order is match precedence.
func (b *Builder) WithProfiles(profiles []profile.Profile) *Builder {
	b.profiles = profiles
	return b
}

// WithPermissions registers permission names that routes check but no profile
// grants, so they resolve to a bit.
func (b *Builder) WithPermissions(perms []string) *Builder {
	b.permissions = perms
	return b
}

// WithMatcher overrides the default four-rule chain.
func (b *Builder) WithMatcher(m matcher.Matcher) *Builder {
	b.matcher = m
	return b
}

// WithRedis stores sessions in Redis instead of process memory.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithSessionStore supplies a ready-made store. It excludes [Builder.WithRedis].
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithAuditSink sets the audit destination. Audit.Enabled must also be set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. Defaults to discarding output.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock replaces time.Now for fingerprint windows and session expiry.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

// WithMetricsEnabled toggles counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the Analyze latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store != nil && b.redis != nil {
		return nil, errors.New("WithSessionStore and WithRedis are mutually exclusive")
	}
	if cfg.Throttle.Enabled && b.redis == nil {
		return nil, errors.New("Throttle requires WithRedis")
	}

	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	// -------- PERMISSION REGISTRY --------
	perms := permission.NewRegistry()
	for _, p := range b.permissions {
		if _, err := perms.Register(p); err != nil {
			return nil, err
		}
	}

	// -------- PROFILE REGISTRY --------
	profiles, err := profile.NewRegistry(b.profiles, perms)
	if err != nil {
		return nil, err
	}

	// -------- SESSION STORE --------
	store := b.store
	switch {
	case store != nil:
	case b.redis != nil:
		store = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix, cfg.Session.TTL, clock)
	default:
		store = session.NewMemoryStore(cfg.Session.TTL, clock)
	}

	m := b.matcher
	if m == nil {
		m = matcher.Default(cfg.matcherConfig())
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	engine := &Engine{
		config:      cfg,
		generator:   fingerprint.New(cfg.Fingerprint.Window, cfg.Fingerprint.Length),
		matcher:     m,
		profiles:    profiles,
		permissions: perms,
		store:       store,
		logger:      logger,
		clock:       clock,
	}
	if cfg.Throttle.Enabled {
		engine.throttle = rate.New(b.redis, rate.Config{
			Prefix:      cfg.Session.RedisPrefix,
			MaxFailures: cfg.Throttle.MaxFailures,
			Cooldown:    cfg.Throttle.Cooldown,
		})
	}
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
