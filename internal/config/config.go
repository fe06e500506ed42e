// ABOUTME: Wellness configuration management with backend selection.
// ABOUTME: JSON file at the XDG config path, WELLNESS_* environment overrides and the storage factory.

package config

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/charmbracelet/log"

	"github.com/harperreed/wellness/internal/recognition"
	"github.com/harperreed/wellness/internal/storage"
)

// Backends accepted by OpenStorage.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendCharm    = "charm"
	BackendMemory   = "memory"
)

// Config stores wellness tool configuration.
type Config struct {
	// Backend selects the record store: "sqlite" (default), "postgres", "charm" or "memory".
	Backend string `json:"backend,omitempty" env:"WELLNESS_BACKEND"`

	// DataDir is the root directory for local data. SQLite puts wellness.db
	// and auth.db here. Supports ~ expansion. Defaults to ~/.local/share/wellness.
	DataDir string `json:"data_dir,omitempty" env:"WELLNESS_DATA_DIR"`

	// PostgresDSN is required by the postgres backend.
	PostgresDSN string `json:"postgres_dsn,omitempty" env:"WELLNESS_POSTGRES_DSN"`

	// CharmHost overrides the Charm server used by the charm backend.
	CharmHost string `json:"charm_host,omitempty" env:"WELLNESS_CHARM_HOST"`

	// AuthSecret signs session tokens. Generated on first use.
	AuthSecret string `json:"auth_secret,omitempty" env:"WELLNESS_AUTH_SECRET"`

	// RequireVerification holds new accounts until `wellness verify` is run.
	RequireVerification bool `json:"require_verification,omitempty" env:"WELLNESS_REQUIRE_VERIFICATION"`

	// ScanDelay is how long the simulated meal recognizer takes. Zero means the default.
	ScanDelay Duration `json:"scan_delay,omitempty" env:"WELLNESS_SCAN_DELAY"`

	// LogLevel is one of debug, info, warn, error. Defaults to warn.
	LogLevel string `json:"log_level,omitempty" env:"WELLNESS_LOG_LEVEL"`
}

// Duration is a time.Duration that reads and writes as "2s" in JSON and
// the environment.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	return d.UnmarshalText([]byte(s))
}

// UnmarshalText implements encoding.TextUnmarshaler for env parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	*d = Duration(v)
	return nil
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetScanDelay returns the recognizer delay, defaulting to recognition.DefaultDelay.
func (c *Config) GetScanDelay() time.Duration {
	if c.ScanDelay <= 0 {
		return recognition.DefaultDelay
	}
	return time.Duration(c.ScanDelay)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Store for the configured backend.
func (c *Config) OpenStorage(ctx context.Context) (storage.Store, error) {
	return c.OpenBackend(ctx, c.GetBackend())
}

// OpenBackend creates a Store for backend using the rest of this config.
func (c *Config) OpenBackend(ctx context.Context, backend string) (storage.Store, error) {
	switch backend {
	case BackendSQLite:
		return storage.OpenSQLite(storage.DBPath(c.GetDataDir()))
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres backend needs postgres_dsn or WELLNESS_POSTGRES_DSN")
		}
		return storage.OpenPostgres(ctx, c.PostgresDSN)
	case BackendCharm:
		return storage.OpenCharm(c.CharmHost, storage.DefaultCharmDB)
	case BackendMemory:
		return storage.OpenMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", storage.ErrUnknownStore, backend)
	}
}

// AuthDBPath is where local accounts are stored.
func (c *Config) AuthDBPath() string {
	return filepath.Join(c.GetDataDir(), "auth.db")
}

// SessionPath is where the signed-in session is persisted between runs.
func SessionPath() string {
	return filepath.Join(configDir(), "wellness", "session.json")
}

// EnsureSecret returns the token signing secret, generating one when none is
// configured. Only the secret is added to the file on disk; environment and
// flag overrides held in c are never written back.
func (c *Config) EnsureSecret() ([]byte, error) {
	if c.AuthSecret != "" {
		return []byte(c.AuthSecret), nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate auth secret: %w", err)
	}

	onDisk, err := loadFile(GetConfigPath())
	if err != nil {
		return nil, err
	}
	onDisk.AuthSecret = hex.EncodeToString(buf)
	if err := onDisk.Save(); err != nil {
		return nil, fmt.Errorf("save auth secret: %w", err)
	}
	c.AuthSecret = onDisk.AuthSecret
	return []byte(c.AuthSecret), nil
}

// NewLogger builds the process logger at the configured level.
func (c *Config) NewLogger(w io.Writer) *log.Logger {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		level = log.WarnLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: level == log.DebugLevel,
		Prefix:          "wellness",
	})
}

func configDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return dir
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	return filepath.Join(configDir(), "wellness", "config.json")
}

// Load reads config from disk and applies WELLNESS_* environment overrides.
func Load() (*Config, error) {
	cfg, err := loadFile(GetConfigPath())
	if err != nil {
		return nil, err
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
