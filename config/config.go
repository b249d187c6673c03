// Package config loads process configuration from a .env file and BOXPUSH_*
// environment variables. Command-line flags override the loaded values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/wricardo/mcp-training/boxpush/game/service"
)

// Config is the full process configuration.
type Config struct {
	// Host and Port of the HTTP server.
	Host string `env:"BOXPUSH_HOST" envDefault:"localhost"`
	Port int    `env:"BOXPUSH_PORT" envDefault:"8080"`

	// LevelsDir holds level pack files (*.yaml, *.yml, *.json).
	LevelsDir string `env:"BOXPUSH_LEVELS_DIR" envDefault:"levels"`
	// DefaultPack is used by sessions created without a pack.
	DefaultPack string `env:"BOXPUSH_DEFAULT_PACK" envDefault:"builtin"`
	// WatchLevels reloads packs when files in LevelsDir change.
	WatchLevels bool `env:"BOXPUSH_WATCH_LEVELS" envDefault:"true"`

	AutoAdvance         bool          `env:"BOXPUSH_AUTO_ADVANCE" envDefault:"true"`
	AdvanceDelay        time.Duration `env:"BOXPUSH_ADVANCE_DELAY" envDefault:"3s"`
	RestartAfterVictory bool          `env:"BOXPUSH_RESTART_AFTER_VICTORY" envDefault:"true"`
	VictoryDelay        time.Duration `env:"BOXPUSH_VICTORY_DELAY" envDefault:"5s"`

	SessionMaxAge   time.Duration `env:"BOXPUSH_SESSION_MAX_AGE" envDefault:"24h"`
	CleanupInterval time.Duration `env:"BOXPUSH_CLEANUP_INTERVAL" envDefault:"1h"`

	// JournalDir holds the outcome journal. Empty disables it.
	JournalDir string `env:"BOXPUSH_JOURNAL_DIR" envDefault:"data/journal"`

	// APIURL is the REST API the MCP bridge talks to.
	APIURL string `env:"BOXPUSH_API_URL" envDefault:"http://localhost:8080"`

	LogLevel string `env:"BOXPUSH_LOG_LEVEL" envDefault:"info"`

	Ngrok Ngrok `envPrefix:"NGROK_"`
}

// Ngrok configures the optional public tunnel.
type Ngrok struct {
	Enabled   bool   `env:"ENABLED"`
	AuthToken string `env:"AUTHTOKEN"`
	// AuthTokenAlt is the underscore spelling NGROK_AUTH_TOKEN.
	AuthTokenAlt string `env:"AUTH_TOKEN"`
	Domain       string `env:"DOMAIN"`
}

// Token returns the configured auth token under either spelling.
func (n Ngrok) Token() string {
	if n.AuthToken != "" {
		return n.AuthToken
	}
	return n.AuthTokenAlt
}

// Load reads the given .env files (".env" when none are given) into the
// process environment, then parses it. Missing files are skipped.
func Load(files ...string) (*Config, []string, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var loaded []string
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, loaded, fmt.Errorf("load %s: %w", f, err)
		}
		loaded = append(loaded, f)
	}

	cfg, err := Parse(nil)
	if err != nil {
		return nil, loaded, err
	}
	return cfg, loaded, nil
}

// Parse builds a Config from environ, or from the process environment when
// environ is nil.
func Parse(environ map[string]string) (*Config, error) {
	var cfg Config
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the server can not start with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("host must not be empty")
	}
	if c.AdvanceDelay < 0 || c.VictoryDelay < 0 {
		return errors.New("transition delays must not be negative")
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("invalid session max age %s", c.SessionMaxAge)
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("invalid cleanup interval %s", c.CleanupInterval)
	}
	return nil
}

// Addr is the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ServiceOptions maps the transition settings onto service options.
func (c *Config) ServiceOptions(logger *slog.Logger) service.Options {
	return service.Options{
		AutoAdvance:         c.AutoAdvance,
		AdvanceDelay:        c.AdvanceDelay,
		RestartAfterVictory: c.RestartAfterVictory,
		VictoryDelay:        c.VictoryDelay,
		Logger:              logger,
	}
}
