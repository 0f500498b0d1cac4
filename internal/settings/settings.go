// Package settings loads the server's YAML configuration file.
package settings

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	dnaAuth "github.com/MrEthical07/dnaAuth"
	"github.com/MrEthical07/dnaAuth/profile"
)

// Settings is the complete server configuration.
type Settings struct {
	Server      ServerSettings    `yaml:"server"`
	Redis       RedisSettings     `yaml:"redis"`
	Logging     LoggingSettings   `yaml:"logging"`
	Engine      dnaAuth.Config    `yaml:"engine"`
	Profiles    []profile.Profile `yaml:"profiles"`
	Permissions []string          `yaml:"permissions"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// RedisSettings selects the session backend. With no address and Embedded
// unset, sessions are kept in process memory.
type RedisSettings struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Embedded bool   `yaml:"embedded"`
}

// LoggingSettings configures the slog handler.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns settings for a local development server.
func Default() Settings {
	return Settings{
		Server: ServerSettings{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "json",
		},
		Engine:   dnaAuth.DefaultConfig(),
		Profiles: profile.Defaults(),
	}
}

// Load reads path, expands ${VAR} references and overlays the result on
// [Default]. An empty path returns the defaults.
func Load(path string) (*Settings, error) {
	s := Default()
	if path == "" {
		return &s, s.Validate()
	}

	// #nosec G304 -- path is from CLI args, controlled by admin
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML data over [Default].
func Parse(data []byte) (*Settings, error) {
	s := Default()
	s.Profiles = nil

	data = []byte(expandEnvVars(string(data)))
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if len(s.Profiles) == 0 {
		s.Profiles = profile.Defaults()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with its value; unset variables become empty.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// Validate checks server fields and the engine configuration.
func (s *Settings) Validate() error {
	if s.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if s.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be > 0")
	}
	if s.Redis.Embedded && s.Redis.Addr != "" {
		return errors.New("redis.embedded and redis.addr are mutually exclusive")
	}
	if _, err := s.Logging.level(); err != nil {
		return err
	}
	switch s.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format %q must be json or text", s.Logging.Format)
	}
	return s.Engine.Validate()
}

func (l LoggingSettings) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return lvl, nil
}

// NewLogger builds the configured slog logger writing to w.
func (l LoggingSettings) NewLogger(w io.Writer) *slog.Logger {
	lvl, err := l.level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
