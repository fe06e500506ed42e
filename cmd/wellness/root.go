// ABOUTME: Root Cobra command for the wellness CLI.
// ABOUTME: Opens config, logger, session gate and record store via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/harperreed/wellness/internal/auth"
	"github.com/harperreed/wellness/internal/config"
	"github.com/harperreed/wellness/internal/recognition"
	"github.com/harperreed/wellness/internal/storage"
	"github.com/harperreed/wellness/internal/tracker"
)

// screenAnnotation marks commands that show a gated screen and need the store.
const screenAnnotation = "screen"

var (
	cfg        *config.Config
	logger     *log.Logger
	provider   *auth.LocalProvider
	gate       *auth.Gate
	store      storage.Store
	client     *storage.Client
	recognizer recognition.Recognizer
	pages      *tracker.Tracker

	backendFlag string
)

var rootCmd = &cobra.Command{
	Use:   "wellness",
	Short: "Personal weight, diet and fitness tracker",
	Long: `Wellness tracks your weight, meals and workouts and summarises your week.

GETTING STARTED:

  $ wellness signup you@example.com      # Create an account and sign in
  $ wellness login you@example.com       # Sign in on this machine
  $ wellness whoami                      # Show the signed-in account

DAILY USE:

  $ wellness home                        # Today's intake, burn and net
  $ wellness weight add 72.4             # Log your weight (kg)
  $ wellness weight goal --target 68     # Set a goal weight
  $ wellness diet add "Oatmeal" 350 --meal breakfast --protein 12
  $ wellness diet scan photo.jpg         # Recognize a meal from a photo
  $ wellness fitness add running 30 300  # Log 30 minutes, 300 kcal
  $ wellness fitness timer               # Time a workout live
  $ wellness report                      # Last 7 days

STORAGE BACKENDS:

  sqlite    Local database in ~/.local/share/wellness (default)
  postgres  Shared database, set postgres_dsn or WELLNESS_POSTGRES_DSN
  charm     Charm KV with encrypted sync across devices
  memory    Throwaway store for trying things out

  Pick one in ~/.config/wellness/config.json, with WELLNESS_BACKEND,
  or per command with --backend.

MCP INTEGRATION:

  Run 'wellness mcp' to expose your data to AI assistants:

  {
    "mcpServers": {
      "wellness": { "command": "wellness", "args": ["mcp"] }
    }
  }`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return setup(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeAll()
	},
}

// setup loads configuration and restores the session. Commands annotated
// with a screen also get the record store and page controllers, but only
// when the gate lets the user onto that screen.
func setup(cmd *cobra.Command) error {
	_ = closeAll()

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = cfg.NewLogger(cmd.ErrOrStderr())

	secret, err := cfg.EnsureSecret()
	if err != nil {
		return err
	}
	if backendFlag != "" {
		cfg.Backend = backendFlag
	}
	if err := os.MkdirAll(cfg.GetDataDir(), 0750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	provider, err = auth.OpenLocal(cfg.AuthDBPath(), config.SessionPath(), secret,
		auth.WithRequireVerification(cfg.RequireVerification))
	if err != nil {
		return err
	}

	gate = auth.NewGate(provider, auth.WithLogger(logger))
	if err := gate.Init(cmd.Context()); err != nil {
		logger.Warn("could not restore session", "err", err)
	}

	screen, ok := screenOf(cmd)
	if !ok {
		return nil
	}
	if gate.Route(screen) != screen {
		return fmt.Errorf("%w: run 'wellness login <email>' first", auth.ErrNotAuthenticated)
	}

	logger.Debug("opening store", "backend", cfg.GetBackend())
	store, err = cfg.OpenStorage(cmd.Context())
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.GetBackend(), err)
	}
	client = storage.NewClient(store, gate.RequireSession)
	recognizer = recognition.NewSimulated(cfg.GetScanDelay())
	pages = tracker.New(client, recognizer, tracker.WithLogger(logger))
	return nil
}

// closeAll releases everything setup opened. It is safe to call twice.
func closeAll() error {
	var err error
	if store != nil {
		err = store.Close()
		store = nil
	}
	if gate != nil {
		gate.Close()
		gate = nil
	}
	if provider != nil {
		if cerr := provider.Close(); err == nil {
			err = cerr
		}
		provider = nil
	}
	client = nil
	pages = nil
	return err
}

// screenOf finds the screen a command, or one of its parents, belongs to.
func screenOf(cmd *cobra.Command) (auth.Screen, bool) {
	for c := cmd; c != nil; c = c.Parent() {
		if s, ok := c.Annotations[screenAnnotation]; ok {
			return auth.Screen(s), true
		}
	}
	return "", false
}

func onScreen(s auth.Screen) map[string]string {
	return map[string]string{screenAnnotation: string(s)}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend (sqlite, postgres, charm, memory)")
}
