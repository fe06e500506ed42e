// ABOUTME: Tests for wellness configuration management.
// ABOUTME: Covers load, save, env overrides, defaults, backend selection, secrets and path expansion.
package config

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/wellness/internal/recognition"
	"github.com/harperreed/wellness/internal/storage"
)

// isolate points the config and data directories at fresh temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, k := range []string{
		"WELLNESS_BACKEND", "WELLNESS_DATA_DIR", "WELLNESS_POSTGRES_DSN", "WELLNESS_CHARM_HOST",
		"WELLNESS_AUTH_SECRET", "WELLNESS_REQUIRE_VERIFICATION", "WELLNESS_SCAN_DELAY", "WELLNESS_LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func TestGetBackendDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetBackend(); got != BackendSQLite {
		t.Errorf("GetBackend() = %q, want %q", got, BackendSQLite)
	}
}

func TestGetBackendExplicit(t *testing.T) {
	cfg := &Config{Backend: "Postgres"}
	if got := cfg.GetBackend(); got != BackendPostgres {
		t.Errorf("GetBackend() = %q, want %q", got, BackendPostgres)
	}
}

func TestGetDataDirDefault(t *testing.T) {
	dir := isolate(t)
	cfg := &Config{}

	want := filepath.Join(dir, "data", "wellness")
	if got := cfg.GetDataDir(); got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestGetDataDirExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{DataDir: "~/wellness-data"}
	want := filepath.Join(home, "wellness-data")
	if got := cfg.GetDataDir(); got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/wellness", filepath.Join(home, "data/wellness")},
		{"data/wellness", "data/wellness"},
		{"~other/x", "~other/x"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetScanDelay(t *testing.T) {
	if got := (&Config{}).GetScanDelay(); got != recognition.DefaultDelay {
		t.Errorf("GetScanDelay() = %v, want %v", got, recognition.DefaultDelay)
	}
	cfg := &Config{ScanDelay: Duration(500 * time.Millisecond)}
	if got := cfg.GetScanDelay(); got != 500*time.Millisecond {
		t.Errorf("GetScanDelay() = %v, want 500ms", got)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.Backend != "" || cfg.DataDir != "" || cfg.AuthSecret != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	isolate(t)

	cfg := &Config{
		Backend:             BackendPostgres,
		DataDir:             "/tmp/wellness-data",
		PostgresDSN:         "postgres://localhost/wellness",
		RequireVerification: true,
		ScanDelay:           Duration(3 * time.Second),
		LogLevel:            "debug",
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}

	info, err := os.Stat(GetConfigPath())
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config permissions = %o, want 600", perm)
	}
}

func TestScanDelayJSON(t *testing.T) {
	data, err := json.Marshal(&Config{ScanDelay: Duration(1500 * time.Millisecond)})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if want := `{"scan_delay":"1.5s"}`; string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var cfg Config
	if err := json.Unmarshal([]byte(`{"scan_delay":"soon"}`), &cfg); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)

	if err := (&Config{Backend: BackendSQLite, LogLevel: "info"}).Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	t.Setenv("WELLNESS_BACKEND", "memory")
	t.Setenv("WELLNESS_SCAN_DELAY", "250ms")
	t.Setenv("WELLNESS_REQUIRE_VERIFICATION", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Backend != BackendMemory {
		t.Errorf("Backend = %q, want env override %q", cfg.Backend, BackendMemory)
	}
	if cfg.GetScanDelay() != 250*time.Millisecond {
		t.Errorf("ScanDelay = %v, want 250ms", cfg.GetScanDelay())
	}
	if !cfg.RequireVerification {
		t.Error("RequireVerification should be set from the environment")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, file value should survive", cfg.LogLevel)
	}
}

func TestEnvOverrideInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("WELLNESS_SCAN_DELAY", "forever")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid WELLNESS_SCAN_DELAY")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := isolate(t)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "nonexistent"))

	if err := (&Config{Backend: BackendSQLite}).Save(); err != nil {
		t.Fatalf("Save() should create directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "nonexistent", "wellness")); os.IsNotExist(err) {
		t.Error("Expected config directory to be created")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := isolate(t)

	configDir := filepath.Join(dir, "wellness")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestPaths(t *testing.T) {
	dir := isolate(t)

	if got, want := GetConfigPath(), filepath.Join(dir, "wellness", "config.json"); got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
	if got, want := SessionPath(), filepath.Join(dir, "wellness", "session.json"); got != want {
		t.Errorf("SessionPath() = %q, want %q", got, want)
	}
	cfg := &Config{DataDir: "/srv/wellness"}
	if got, want := cfg.AuthDBPath(), filepath.Join("/srv/wellness", "auth.db"); got != want {
		t.Errorf("AuthDBPath() = %q, want %q", got, want)
	}
}

func TestEnsureSecret(t *testing.T) {
	isolate(t)

	cfg := &Config{}
	secret, err := cfg.EnsureSecret()
	if err != nil {
		t.Fatalf("EnsureSecret() failed: %v", err)
	}
	if len(secret) != 64 {
		t.Errorf("secret length = %d, want 64 hex chars", len(secret))
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.AuthSecret != string(secret) {
		t.Error("generated secret should be persisted")
	}

	again, err := loaded.EnsureSecret()
	if err != nil {
		t.Fatalf("EnsureSecret() failed: %v", err)
	}
	if !bytes.Equal(again, secret) {
		t.Error("existing secret should be reused")
	}
}

func TestEnsureSecretKeepsOverridesOutOfFile(t *testing.T) {
	isolate(t)

	if err := (&Config{LogLevel: "info"}).Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	t.Setenv("WELLNESS_BACKEND", "postgres")
	t.Setenv("WELLNESS_POSTGRES_DSN", "postgres://u:hunter2@db/x")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	cfg.Backend = BackendMemory
	secret, err := cfg.EnsureSecret()
	if err != nil {
		t.Fatalf("EnsureSecret() failed: %v", err)
	}
	if cfg.PostgresDSN != "postgres://u:hunter2@db/x" || cfg.Backend != BackendMemory {
		t.Error("in-memory overrides should survive EnsureSecret")
	}

	data, err := os.ReadFile(GetConfigPath())
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var onDisk map[string]any
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if _, ok := onDisk["backend"]; ok {
		t.Errorf("backend override written to config file: %s", data)
	}
	if _, ok := onDisk["postgres_dsn"]; ok {
		t.Errorf("postgres dsn written to config file: %s", data)
	}
	if onDisk["log_level"] != "info" {
		t.Errorf("existing settings lost: %s", data)
	}
	if onDisk["auth_secret"] != string(secret) {
		t.Errorf("secret not persisted: %s", data)
	}
}

func TestOpenStorageSQLite(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{DataDir: dir}

	store, err := cfg.OpenStorage(context.Background())
	if err != nil {
		t.Fatalf("OpenStorage() for sqlite failed: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*storage.SQLStore); !ok {
		t.Errorf("expected *storage.SQLStore, got %T", store)
	}
	if _, err := os.Stat(filepath.Join(dir, "wellness.db")); os.IsNotExist(err) {
		t.Error("Expected wellness.db to be created")
	}
}

func TestOpenStorageMemory(t *testing.T) {
	cfg := &Config{Backend: BackendMemory}

	store, err := cfg.OpenStorage(context.Background())
	if err != nil {
		t.Fatalf("OpenStorage() for memory failed: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*storage.CharmStore); !ok {
		t.Errorf("expected *storage.CharmStore, got %T", store)
	}
}

func TestOpenStorageErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown backend", Config{Backend: "invalid", DataDir: "/tmp"}},
		{"postgres without dsn", Config{Backend: BackendPostgres}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cfg.OpenStorage(context.Background()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestConfigJSONOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(&Config{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Expected empty JSON object, got %s", string(data))
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
		want  log.Level
	}{
		{"", log.WarnLevel},
		{"debug", log.DebugLevel},
		{"error", log.ErrorLevel},
		{"loud", log.WarnLevel},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		logger := (&Config{LogLevel: tt.level}).NewLogger(&buf)
		if got := logger.GetLevel(); got != tt.want {
			t.Errorf("NewLogger(%q) level = %v, want %v", tt.level, got, tt.want)
		}
	}
}
