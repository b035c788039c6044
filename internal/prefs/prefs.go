// Package prefs persists user preferences in a local SQLite database.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"

	"github.com/mkarren/chesstime/internal/models"
)

// Preference keys.
const (
	keyGoalValue = "goal_value"
	keyGoalUnit  = "goal_unit"
	keyUsername  = "username"
)

// Store wraps the SQL database connection for preference access.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the preferences database and initializes the schema.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create preferences directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open preferences database: %w", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to preferences database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure preferences database: %w", err)
	}
	if err := s.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create preferences schema: %w", err)
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}

func (s *Store) createSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Get returns the raw value for key, or fallback when unset.
func (s *Store) Get(key, fallback string) (string, error) {
	var value string
	err := s.db.QueryRowContext(context.Background(),
		"SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, nil
}

// Set writes the value for key.
func (s *Store) Set(key, value string) error {
	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}

// Goal reads the persisted goal spec, defaulting to a disabled minutes goal.
func (s *Store) Goal() (models.GoalSpec, error) {
	rawValue, err := s.Get(keyGoalValue, "0")
	if err != nil {
		return models.GoalSpec{}, err
	}
	value, err := strconv.Atoi(rawValue)
	if err != nil {
		value = 0
	}
	rawUnit, err := s.Get(keyGoalUnit, models.GoalMinutes.String())
	if err != nil {
		return models.GoalSpec{}, err
	}
	return models.GoalSpec{Value: value, Unit: models.ParseGoalUnit(rawUnit)}, nil
}

// SetGoal persists the goal spec.
func (s *Store) SetGoal(goal models.GoalSpec) error {
	if err := s.Set(keyGoalValue, strconv.Itoa(goal.Value)); err != nil {
		return err
	}
	return s.Set(keyGoalUnit, goal.Unit.String())
}

// Filters reads the persisted per-speed filters. Absent keys default to
// enabled.
func (s *Store) Filters() (models.FilterSet, error) {
	filters := models.AllSpeeds()
	for _, speed := range models.Speeds {
		raw, err := s.Get(filterKey(speed), "true")
		if err != nil {
			return nil, err
		}
		if enabled, err := strconv.ParseBool(raw); err == nil {
			filters[speed] = enabled
		}
	}
	return filters, nil
}

// SetFilter persists one speed's filter state.
func (s *Store) SetFilter(speed models.Speed, enabled bool) error {
	return s.Set(filterKey(speed), strconv.FormatBool(enabled))
}

// Username reads the last used owner identity.
func (s *Store) Username() (string, error) {
	return s.Get(keyUsername, "")
}

// SetUsername persists the owner identity.
func (s *Store) SetUsername(username string) error {
	return s.Set(keyUsername, username)
}

func filterKey(speed models.Speed) string {
	return "filter_" + speed.String()
}
