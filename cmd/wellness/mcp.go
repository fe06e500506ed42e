// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio MCP server over the signed-in user's data.
package main

import (
	"github.com/spf13/cobra"

	"github.com/harperreed/wellness/internal/auth"
	"github.com/harperreed/wellness/internal/mcp"
	"github.com/harperreed/wellness/internal/tracker"
)

var mcpCmd = &cobra.Command{
	Use:         "mcp",
	Short:       "Start MCP server",
	Annotations: onScreen(auth.ScreenHome),
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to read and log your weight, meals and
workouts through a standardized protocol. The server communicates via
stdin/stdout and acts as the account you are logged in as.

CLAUDE DESKTOP CONFIGURATION:

  Add this to your Claude Desktop config (claude_desktop_config.json):

  {
    "mcpServers": {
      "wellness": {
        "command": "wellness",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  add_weight     Record a weight in kg
  set_goal       Set target and start weights
  get_weight     Current weight, goal progress and recent weigh-ins
  add_meal       Record a meal with calories and macros
  scan_meal      Recognize a meal photo into a pending entry
  confirm_meal   Save or discard the pending scanned meal
  add_activity   Record a workout
  list_entries   List weights, meals or activities
  delete_entry   Delete an entry by id or id prefix
  get_today      Today's intake, burn and net calories
  get_report     7-day series, averages and macro split

AVAILABLE RESOURCES:

  wellness://today    Today's totals and entries
  wellness://weight   Weight progress
  wellness://report   Weekly report`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(client, recognizer, tracker.WithLogger(logger))
		if err != nil {
			return err
		}
		logger.Info("mcp server starting", "backend", cfg.GetBackend())
		return server.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
