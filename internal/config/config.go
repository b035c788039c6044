// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	// APIBaseURL is the game-history provider endpoint.
	APIBaseURL string
	// PrefsPath is the SQLite file holding persisted preferences.
	PrefsPath string
	// LogPath receives log output while the TUI owns the terminal.
	LogPath string
	// WatchSnapshot, when set, is an export file watched for changes and
	// re-imported automatically.
	WatchSnapshot string
	// HTTPTimeout bounds a single fetch request end to end.
	HTTPTimeout time.Duration
	// MaxGames caps the batch size of one fetch.
	MaxGames int
	// Notifications enables desktop notifications.
	Notifications bool
}

// Default values
const (
	defaultAPIBaseURL  = "https://lichess.org"
	defaultHTTPTimeout = 5 * time.Minute
	defaultMaxGames    = 300
	maxGamesLimit      = 5000
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		APIBaseURL:    getEnvString("CHESSTIME_API_URL", defaultAPIBaseURL),
		PrefsPath:     getEnvString("CHESSTIME_DB_PATH", getDefaultPrefsPath()),
		LogPath:       getEnvString("CHESSTIME_LOG_PATH", getDefaultLogPath()),
		WatchSnapshot: getEnvString("CHESSTIME_WATCH_SNAPSHOT", ""),
		HTTPTimeout:   getEnvDuration("CHESSTIME_HTTP_TIMEOUT", defaultHTTPTimeout),
		MaxGames:      getEnvInt("CHESSTIME_MAX_GAMES", defaultMaxGames),
		Notifications: getEnvBool("CHESSTIME_NOTIFICATIONS", true),
	}

	if cfg.MaxGames < 1 {
		cfg.MaxGames = defaultMaxGames
	}
	if cfg.MaxGames > maxGamesLimit {
		cfg.MaxGames = maxGamesLimit
	}

	// Ensure preferences directory exists
	if err := ensureDir(filepath.Dir(cfg.PrefsPath)); err != nil {
		return nil, err
	}

	if cfg.LogPath != "" {
		if err := ensureDir(filepath.Dir(cfg.LogPath)); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// MaxGamesLimit returns the hard cap on a single fetch.
func MaxGamesLimit() int {
	return maxGamesLimit
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "chesstime", ".env"),
			filepath.Join(home, ".chesstime", ".env"),
		)
	}

	return paths
}

func getDefaultPrefsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "chesstime.db"
	}
	return filepath.Join(home, ".config", "chesstime", "chesstime.db")
}

func getDefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "chesstime.log"
	}
	return filepath.Join(home, ".config", "chesstime", "chesstime.log")
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
