package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnvString(t *testing.T) {
	key := "TEST_ENV_STRING"
	val := "test_value"
	os.Setenv(key, val)
	defer os.Unsetenv(key)

	if got := getEnvString(key, "default"); got != val {
		t.Errorf("getEnvString() = %q, want %q", got, val)
	}

	if got := getEnvString("NON_EXISTENT", "default"); got != "default" {
		t.Errorf("getEnvString() = %q, want %q", got, "default")
	}
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_ENV_INT"

	tests := []struct {
		name   string
		envVal string
		want   int
	}{
		{"Valid", "42", 42},
		{"Invalid", "not-a-number", 7},
		{"Empty", "", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envVal != "" {
				os.Setenv(key, tt.envVal)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			if got := getEnvInt(key, 7); got != tt.want {
				t.Errorf("getEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	key := "TEST_ENV_BOOL"
	os.Setenv(key, "false")
	defer os.Unsetenv(key)

	if got := getEnvBool(key, true); got {
		t.Error("getEnvBool() should honor an explicit false")
	}

	os.Setenv(key, "not-a-bool")
	if got := getEnvBool(key, true); !got {
		t.Error("getEnvBool() should fall back on parse failure")
	}
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_ENV_DURATION"

	tests := []struct {
		name   string
		envVal string
		want   time.Duration
	}{
		{"ValidDuration", "1m", time.Minute},
		{"Invalid", "invalid", time.Second},
		{"Empty", "", time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envVal != "" {
				os.Setenv(key, tt.envVal)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			if got := getEnvDuration(key, time.Second); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestLoadCapsMaxGames(t *testing.T) {
	tmpDir := t.TempDir()
	os.Setenv("CHESSTIME_DB_PATH", filepath.Join(tmpDir, "prefs.db"))
	os.Setenv("CHESSTIME_LOG_PATH", filepath.Join(tmpDir, "chesstime.log"))
	os.Setenv("CHESSTIME_MAX_GAMES", "999999")
	defer func() {
		os.Unsetenv("CHESSTIME_DB_PATH")
		os.Unsetenv("CHESSTIME_LOG_PATH")
		os.Unsetenv("CHESSTIME_MAX_GAMES")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.MaxGames != MaxGamesLimit() {
		t.Errorf("MaxGames = %d, want capped at %d", cfg.MaxGames, MaxGamesLimit())
	}
	if cfg.APIBaseURL == "" {
		t.Error("APIBaseURL should have a default")
	}
}
