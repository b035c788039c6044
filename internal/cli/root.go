// Package cli wires the chesstime commands together.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mkarren/chesstime/internal/app"
	"github.com/mkarren/chesstime/internal/config"
	"github.com/mkarren/chesstime/internal/logger"
	"github.com/mkarren/chesstime/internal/prefs"
	"github.com/mkarren/chesstime/internal/services"
	"github.com/mkarren/chesstime/internal/ui/tabs/heatmap"
	"github.com/mkarren/chesstime/internal/ui/tabs/info"
	"github.com/mkarren/chesstime/internal/ui/tabs/insights"
)

var rootCmd = &cobra.Command{
	Use:   "chesstime",
	Short: "Terminal dashboard for your lichess playtime",
	Long: `chesstime fetches your game history from lichess.org and renders it as a
calendar heatmap with playtime insights, daily goals, and binge warnings.

Running without a subcommand starts the interactive dashboard.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file instead of stderr.
	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	logger.SetOutput(logFile)

	prefsStore, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		return fmt.Errorf("failed to open preferences: %w", err)
	}
	defer prefsStore.Close()

	svcManager, err := services.NewManager(cfg, prefsStore)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)
	state := model.GetState()
	model.SetTabs([]app.Tab{
		heatmap.New(state, svcManager, cfg),
		insights.New(state, svcManager),
		info.New(state, cfg),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
