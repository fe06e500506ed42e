// ABOUTME: CLI commands for exporting and importing wellness data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats and JSON import.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/wellness/internal/auth"
	"github.com/harperreed/wellness/internal/storage"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:         "export <format>",
	Short:       "Export your data",
	Annotations: onScreen(auth.ScreenHome),
	Long: `Export everything you have logged: weights, meals, activities and goals.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable)
  markdown   Markdown tables (for documentation/sharing)

EXAMPLES:

  wellness export json                  # Export all data as JSON
  wellness export json -o backup.json   # Save to file
  wellness export markdown              # Tables for sharing`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]
		switch format {
		case "json", "yaml", "markdown":
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		exported, err := storage.Export(cmd.Context(), client)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		var data []byte
		switch format {
		case "json":
			data, err = storage.ExportJSON(exported)
		case "yaml":
			data, err = storage.ExportYAML(exported)
		case "markdown":
			data = []byte(storage.ExportMarkdown(exported))
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Exported to %s", exportOutput))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:         "import <file>",
	Short:       "Import data from a JSON export",
	Annotations: onScreen(auth.ScreenHome),
	Long: `Import a JSON file written by 'wellness export json' into your account.

Records keep their ids and timestamps. Importing the same file twice fails
on the duplicate ids.

EXAMPLES:

  wellness import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		raw, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		data, err := storage.ImportJSON(raw)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		summary, err := storage.Import(cmd.Context(), client, data)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("✓ Imported from %s", filename))
		printSummary(out, summary)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
