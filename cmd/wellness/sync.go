// ABOUTME: CLI commands for Charm-based sync.
// ABOUTME: Supports link, unlink, status, now, repair, reset, and wipe for the charm backend.
package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/wellness/internal/config"
	"github.com/harperreed/wellness/internal/storage"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Sync wellness data across devices",
	Long: `Sync wellness data across devices using Charm Cloud.

Only the charm backend syncs. Select it with "backend": "charm" in
~/.config/wellness/config.json or WELLNESS_BACKEND=charm.

Your data is E2E encrypted with your SSH key before upload.

GETTING STARTED:

  1. Link your device (creates/uses SSH key automatically):
     wellness sync link

  2. On other devices, link with the same Charm account:
     wellness sync link

  3. Check sync status:
     wellness sync status

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  status      Show sync status and account info
  now         Sync immediately
  repair      Repair database corruption (checkpoints WAL, removes SHM, vacuums)
  reset       Reset local data and restore from cloud (destructive)
  wipe        Delete cloud and local data (destructive)

Data syncs automatically after each add/delete operation.`,
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to Charm",
	Long: `Link this device to your Charm account.

If you don't have a Charm account, one will be created using your SSH key.
If you already have an account, you'll be prompted to link via charm.sh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm(cmd, "link"); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("\n✓ Device linked to Charm"))
		if cfg.GetBackend() != config.BackendCharm {
			fmt.Fprintln(out, "Set WELLNESS_BACKEND=charm to store and sync your data there.")
			return nil
		}

		s, err := openCharm()
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.Sync(); err != nil {
			fmt.Fprintln(out, color.YellowString("⚠ Initial sync failed: %v", err))
		} else {
			fmt.Fprintln(out, color.GreenString("✓ Initial sync complete"))
		}
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Disconnect from Charm",
	Long: `Disconnect this device from Charm.

This does not delete your local wellness data.
You can link again later with 'wellness sync link'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm(cmd, "unlink"); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Device unlinked from Charm"))
		fmt.Fprintln(cmd.OutOrStdout(), "Your local wellness data is preserved.")
		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	Long: `Show current sync status including:
- Charm account info
- Connection status
- Local data counts for the signed-in user`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if !charmBackend(out) {
			return nil
		}

		id, err := storage.CharmID(cfg.CharmHost)
		if err != nil {
			fmt.Fprintln(out, color.YellowString("Not linked to Charm"))
			fmt.Fprintln(out, "\nRun 'wellness sync link' to connect to Charm.")
			return nil
		}

		host := cfg.CharmHost
		if host == "" {
			host = storage.DefaultCharmHost
		}
		fmt.Fprintln(out, "Charm ID:", id)
		fmt.Fprintln(out, "Server:", host)
		fmt.Fprintln(out)

		s, err := openCharm()
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Fprintln(out, color.GreenString("✓ Connected to Charm"))
		if s.IsReadOnly() {
			fmt.Fprintln(out, color.YellowString("  Read-only: another wellness process holds the database"))
		}

		if _, err := gate.RequireSession(); err != nil {
			fmt.Fprintln(out, "  Log in to see your record counts.")
			return nil
		}
		data, err := storage.Export(cmd.Context(), storage.NewClient(s, gate.RequireSession))
		if err != nil {
			return fmt.Errorf("count records: %w", err)
		}
		fmt.Fprintf(out, "  Weights:    %d\n", len(data.Weights))
		fmt.Fprintf(out, "  Meals:      %d\n", len(data.Diets))
		fmt.Fprintf(out, "  Activities: %d\n", len(data.Fitness))
		return nil
	},
}

var syncNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Sync immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !charmBackend(cmd.OutOrStdout()) {
			return nil
		}
		s, err := openCharm()
		if err != nil {
			return err
		}
		defer s.Close()

		if s.IsReadOnly() {
			return fmt.Errorf("sync failed: database is locked by another wellness process")
		}
		if err := s.Sync(); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Synced"))
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all cloud and local data",
	Long: `Delete all cloud backups and local data.

This is a DESTRUCTIVE operation. ALL data will be permanently deleted.
Use this to:
- Completely remove all wellness data
- Start completely fresh`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will PERMANENTLY DELETE all cloud backups and local wellness data.")
		if readAnswer(cmd, "Type 'wipe' to confirm: ") != "wipe" {
			fmt.Fprintln(out, "Canceled.")
			return nil
		}

		result, err := kv.Wipe(storage.DefaultCharmDB)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		fmt.Fprintln(out, color.GreenString("✓ Data wiped successfully"))
		fmt.Fprintf(out, "  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Fprintf(out, "  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair database corruption",
	Long: `Repair database corruption by checkpointing WAL, removing SHM files, checking integrity, and vacuuming.

Use this when you encounter database lock errors or corruption.
Run with --force to attempt recovery even if integrity checks fail.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Repairing wellness database...")
		result, err := kv.Repair(storage.DefaultCharmDB, force)

		if result.WalCheckpointed {
			fmt.Fprintln(out, color.GreenString("  ✓ WAL checkpointed"))
		}
		if result.ShmRemoved {
			fmt.Fprintln(out, color.GreenString("  ✓ SHM file removed"))
		}
		if result.IntegrityOK {
			fmt.Fprintln(out, color.GreenString("  ✓ Integrity check passed"))
		} else {
			fmt.Fprintln(out, color.RedString("  ✗ Integrity check failed"))
		}
		if result.Vacuumed {
			fmt.Fprintln(out, color.GreenString("  ✓ Database vacuumed"))
		}

		if err != nil {
			if !force {
				fmt.Fprintln(out, color.YellowString("\nRun with --force to attempt recovery."))
			}
			return fmt.Errorf("repair failed: %w", err)
		}

		fmt.Fprintln(out, color.GreenString("\n✓ Repair complete"))
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local data and restore from cloud",
	Long: `Delete all local data and restore from Charm Cloud.

This is a destructive operation. All local data will be lost and restored from cloud.
Use this to:
- Fix sync conflicts
- Reset a device to cloud state
- Start fresh on a device`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "This will DELETE all local wellness data and restore from cloud.")
		answer := readAnswer(cmd, "Continue? [y/N]: ")
		if answer != "y" && answer != "Y" {
			fmt.Fprintln(out, "Canceled.")
			return nil
		}

		if err := kv.Reset(storage.DefaultCharmDB); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}

		fmt.Fprintln(out, color.GreenString("✓ Local data reset and restored from cloud"))
		return nil
	},
}

func runCharm(cmd *cobra.Command, arg string) error {
	charmCmd := exec.CommandContext(cmd.Context(), "charm", arg)
	charmCmd.Stdin = os.Stdin
	charmCmd.Stdout = cmd.OutOrStdout()
	charmCmd.Stderr = cmd.ErrOrStderr()
	return charmCmd.Run()
}

// charmBackend reports whether sync applies, explaining why not when it doesn't.
func charmBackend(out io.Writer) bool {
	if cfg.GetBackend() == config.BackendCharm {
		return true
	}
	fmt.Fprintln(out, color.YellowString("Sync is off: the %s backend does not sync", cfg.GetBackend()))
	fmt.Fprintln(out, "\nSet WELLNESS_BACKEND=charm to sync through Charm Cloud.")
	return false
}

func openCharm() (*storage.CharmStore, error) {
	s, err := storage.OpenCharm(cfg.CharmHost, storage.DefaultCharmDB)
	if err != nil {
		return nil, fmt.Errorf("open charm store: %w", err)
	}
	return s, nil
}

func readAnswer(cmd *cobra.Command, prompt string) string {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	var answer string
	_, _ = fmt.Fscanln(cmd.InOrStdin(), &answer)
	return answer
}

func init() {
	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncNowCmd)
	syncCmd.AddCommand(syncRepairCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)

	syncRepairCmd.Flags().Bool("force", false, "Attempt recovery even if integrity checks fail")

	rootCmd.AddCommand(syncCmd)
}
