package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mkarren/chesstime/internal/config"
	"github.com/mkarren/chesstime/internal/export"
	"github.com/mkarren/chesstime/internal/prefs"
	"github.com/mkarren/chesstime/internal/services"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch games and write a snapshot file",
	Long: `Fetch the game history for a user and write it to an integrity-checked
JSON snapshot that can be re-imported later.

Examples:
  chesstime export --user magnuscarlsen
  chesstime export --user magnuscarlsen --max 1000 -o games.json`,
	RunE: runExport,
}

var (
	exportUser   string
	exportMax    int
	exportOutput string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportUser, "user", "u", "", "lichess username (defaults to the saved one)")
	exportCmd.Flags().IntVar(&exportMax, "max", 0, "maximum games to fetch (defaults to CHESSTIME_MAX_GAMES)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output path (defaults to lichess-<user>-<date>.json)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	prefsStore, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		return fmt.Errorf("failed to open preferences: %w", err)
	}
	defer prefsStore.Close()

	user := strings.TrimSpace(exportUser)
	if user == "" {
		user, _ = prefsStore.Username()
	}
	if user == "" {
		return fmt.Errorf("no username given: pass --user or set one in the dashboard")
	}

	maxGames := exportMax
	if maxGames <= 0 {
		maxGames = cfg.MaxGames
	}

	mgr, err := services.NewManager(cfg, prefsStore)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer mgr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	defer cancel()

	fmt.Printf("Fetching up to %d games for %s...\n", maxGames, user)
	if err := mgr.Fetch(ctx, user, maxGames); err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	path := exportOutput
	if path == "" {
		path = export.Filename(user, time.Now())
	}
	if err := mgr.Export(path); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("Wrote %d games to %s\n", mgr.GameCount(), path)
	return nil
}
