package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/piecefinder/internal/store"
	"github.com/spf13/cobra"
)

var (
	overlayDataDir string
	keepLast       int
	olderThanDays  int
	forceClean     bool
)

var overlaysCmd = &cobra.Command{
	Use:   "overlays",
	Short: "Manage stored overlay images",
	Long: `Manage overlay images written by locate when no --out path is given.
Each run stores a single overlay.png under <data-dir>/runs/<run-id>/.`,
}

var listOverlaysCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored overlays",
	RunE:  runListOverlays,
}

var cleanOverlaysCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete old overlays",
	Long: `Delete stored overlays based on a retention policy.
You can keep only the newest N overlays or delete overlays older than N days.`,
	RunE: runCleanOverlays,
}

func init() {
	rootCmd.AddCommand(overlaysCmd)
	overlaysCmd.AddCommand(listOverlaysCmd)
	overlaysCmd.AddCommand(cleanOverlaysCmd)

	overlaysCmd.PersistentFlags().StringVar(&overlayDataDir, "data-dir", "./data", "Base directory for stored overlays")

	cleanOverlaysCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the newest N overlays (0 = keep all)")
	cleanOverlaysCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete overlays older than N days (0 = no age limit)")
	cleanOverlaysCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func runListOverlays(cmd *cobra.Command, args []string) error {
	overlayStore, err := store.NewFSStore(overlayDataDir)
	if err != nil {
		return fmt.Errorf("failed to create overlay store: %w", err)
	}

	infos, err := overlayStore.ListOverlays()
	if err != nil {
		return fmt.Errorf("failed to list overlays: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No overlays found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tTIMESTAMP\tSIZE\tPATH")
	fmt.Fprintln(w, "------\t---------\t----\t----")

	for _, info := range infos {
		displayID := info.RunID
		if len(displayID) > 12 {
			displayID = displayID[:12] + "..."
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			displayID,
			info.Timestamp.Format("2006-01-02 15:04:05"),
			formatBytes(info.Size),
			info.Path,
		)
	}

	w.Flush()

	fmt.Printf("\nTotal overlays: %d\n", len(infos))
	fmt.Printf("Overlay size: %s\n", formatBytes(totalSize(infos)))
	return nil
}

func runCleanOverlays(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	overlayStore, err := store.NewFSStore(overlayDataDir)
	if err != nil {
		return fmt.Errorf("failed to create overlay store: %w", err)
	}

	infos, err := overlayStore.ListOverlays()
	if err != nil {
		return fmt.Errorf("failed to list overlays: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No overlays to clean.")
		return nil
	}

	toDelete := selectOverlaysForDeletion(infos, keepLast, olderThanDays, time.Now())
	if len(toDelete) == 0 {
		fmt.Println("No overlays match deletion criteria.")
		return nil
	}

	fmt.Printf("Found %d overlay(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Printf("  - %s (%s)\n", info.RunID, info.Timestamp.Format("2006-01-02 15:04:05"))
	}

	if !forceClean {
		fmt.Print("\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, info := range toDelete {
		if err := overlayStore.DeleteOverlay(info.RunID); err != nil {
			slog.Error("Failed to delete overlay", "run_id", info.RunID, "error", err)
			failed++
		} else {
			slog.Info("Deleted overlay", "run_id", info.RunID)
			deleted++
		}
	}

	fmt.Printf("\nDeleted %d overlay(s), %d failed.\n", deleted, failed)
	return nil
}

// selectOverlaysForDeletion returns the overlays outside the newest keepLast
// or older than olderThanDays. infos must be oldest first, as ListOverlays
// returns them; the result keeps that order.
func selectOverlaysForDeletion(infos []store.OverlayInfo, keepLast, olderThanDays int, now time.Time) []store.OverlayInfo {
	keepFrom := 0
	if keepLast > 0 && len(infos) > keepLast {
		keepFrom = len(infos) - keepLast
	}
	var cutoff time.Time
	if olderThanDays > 0 {
		cutoff = now.AddDate(0, 0, -olderThanDays)
	}

	var toDelete []store.OverlayInfo
	for i, info := range infos {
		if i < keepFrom || info.Timestamp.Before(cutoff) {
			toDelete = append(toDelete, info)
		}
	}
	return toDelete
}

// totalSize sums the encoded size of the listed overlays.
func totalSize(infos []store.OverlayInfo) int64 {
	var n int64
	for _, info := range infos {
		n += info.Size
	}
	return n
}

var byteUnits = []string{"KB", "MB", "GB", "TB"}

func formatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n)
	var unit string
	for _, unit = range byteUnits {
		v /= 1024
		if v < 1024 {
			break
		}
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}
