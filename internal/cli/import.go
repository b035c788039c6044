package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkarren/chesstime/internal/config"
	"github.com/mkarren/chesstime/internal/export"
	"github.com/mkarren/chesstime/internal/prefs"
)

var importCmd = &cobra.Command{
	Use:   "import <snapshot.json>",
	Short: "Validate a snapshot file and adopt its username",
	Long: `Validate the integrity of an exported snapshot and save its username as
the tracked one. The dashboard loads game data from the live API; use
CHESSTIME_WATCH_SNAPSHOT to keep a snapshot file loaded automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	envelope, err := export.Decode(data)
	if err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	prefsStore, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		return fmt.Errorf("failed to open preferences: %w", err)
	}
	defer prefsStore.Close()

	if err := prefsStore.SetUsername(envelope.Metadata.Username); err != nil {
		return fmt.Errorf("failed to save username: %w", err)
	}

	meta := envelope.Metadata
	fmt.Printf("Snapshot OK: %d games for %s\n", meta.TotalGames, meta.Username)
	fmt.Printf("Covering %s to %s, exported %s\n",
		time.UnixMilli(meta.EarliestTimestamp).Format("Jan 2, 2006"),
		time.UnixMilli(meta.MostRecentTimestamp).Format("Jan 2, 2006"),
		time.UnixMilli(meta.ExportDate).Format("Jan 2, 2006"))
	return nil
}
