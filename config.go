package dnaAuth

import (
	"errors"
	"time"

	"github.com/MrEthical07/dnaAuth/fingerprint"
	"github.com/MrEthical07/dnaAuth/matcher"
	"github.com/MrEthical07/dnaAuth/session"
)

// Config is the full engine configuration. Start from [DefaultConfig] and override.
type Config struct {
	Fingerprint FingerprintConfig `yaml:"fingerprint"`
	Matcher     MatcherConfig     `yaml:"matcher"`
	Trust       TrustConfig       `yaml:"trust"`
	Session     SessionConfig     `yaml:"session"`
	Throttle    ThrottleConfig    `yaml:"throttle"`
	Audit       AuditConfig       `yaml:"audit"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Institution InstitutionConfig `yaml:"institution"`
}

/*
====================================
FINGERPRINT CONFIG
====================================
*/

// FingerprintConfig controls the time bucket and sequence length.
type FingerprintConfig struct {
	Window time.Duration `yaml:"window"`
	Length int           `yaml:"length"`
}

/*
====================================
MATCHER CONFIG
====================================
*/

// MatcherConfig tunes the fuzzy rules of the sequence matcher.
type MatcherConfig struct {
	WindowSize          int     `yaml:"window_size"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

/*
====================================
TRUST CONFIG
====================================
*/

// TrustConfig defines the trust score: SecurityLevel * Multiplier for a matched
// profile, Baseline otherwise.
type TrustConfig struct {
	Baseline   int `yaml:"baseline"`
	Multiplier int `yaml:"multiplier"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls session lifetime and the Redis key namespace.
type SessionConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	RedisPrefix string        `yaml:"redis_prefix"`
}

// ThrottleConfig limits failed logins per IP. It needs a Redis backend.
type ThrottleConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures int           `yaml:"max_failures"`
	Cooldown    time.Duration `yaml:"cooldown"`
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

// InstitutionConfig feeds the X-Institution diagnostic headers.
type InstitutionConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Fingerprint: FingerprintConfig{
			Window: fingerprint.DefaultWindow,
			Length: fingerprint.DefaultLength,
		},
		Matcher: MatcherConfig{
			WindowSize:          matcher.DefaultWindowSize,
			SimilarityThreshold: matcher.DefaultSimilarityThreshold,
		},
		Trust: TrustConfig{
			Baseline:   10,
			Multiplier: 20,
		},
		Session: SessionConfig{
			TTL:         session.DefaultTTL,
			RedisPrefix: "dna",
		},
		Throttle: ThrottleConfig{
			Enabled:     false,
			MaxFailures: 10,
			Cooldown:    15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
		Institution: InstitutionConfig{
			Name: "Nuralai School",
			Type: "Educational Services Provider",
		},
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	// Fingerprint
	if c.Fingerprint.Window < time.Millisecond {
		return errors.New("Fingerprint Window must be >= 1ms")
	}
	if c.Fingerprint.Length <= 0 || c.Fingerprint.Length > 64 {
		return errors.New("Fingerprint Length must be in 1..64")
	}

	// Matcher
	if err := c.matcherConfig().Validate(); err != nil {
		return err
	}

	// Trust
	if c.Trust.Baseline < 0 {
		return errors.New("Trust Baseline must be >= 0")
	}
	if c.Trust.Multiplier <= 0 {
		return errors.New("Trust Multiplier must be > 0")
	}

	// Session
	if c.Session.TTL <= 0 {
		return errors.New("Session TTL must be > 0")
	}
	if c.Session.RedisPrefix == "" {
		return errors.New("Session RedisPrefix must not be empty")
	}

	// Throttle
	if c.Throttle.Enabled {
		if c.Throttle.MaxFailures <= 0 {
			return errors.New("Throttle MaxFailures must be > 0 when throttling is enabled")
		}
		if c.Throttle.Cooldown <= 0 {
			return errors.New("Throttle Cooldown must be > 0 when throttling is enabled")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

func (c *Config) matcherConfig() matcher.Config {
	return matcher.Config{
		WindowSize:          c.Matcher.WindowSize,
		SimilarityThreshold: c.Matcher.SimilarityThreshold,
	}
}
