// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/google/uuid"

	"github.com/mkarren/chesstime/internal/calendar"
	"github.com/mkarren/chesstime/internal/config"
	"github.com/mkarren/chesstime/internal/export"
	"github.com/mkarren/chesstime/internal/lichess"
	"github.com/mkarren/chesstime/internal/logger"
	"github.com/mkarren/chesstime/internal/models"
	"github.com/mkarren/chesstime/internal/prefs"
	"github.com/mkarren/chesstime/internal/stats"
	"github.com/mkarren/chesstime/internal/store"
)

type (
	// FetchProgressEvent is emitted per decoded record during a fetch.
	FetchProgressEvent struct {
		FetchID       string
		Count         int
		LastCreatedAt time.Time
	}

	// GamesUpdatedEvent is emitted after a merge changed the cached set.
	GamesUpdatedEvent struct {
		Owner    string
		Stats    *models.AggregateStats
		Boundary models.CacheBoundary
		NewGames int
	}

	// SnapshotImportedEvent is emitted after a snapshot import replaced the
	// cache.
	SnapshotImportedEvent struct {
		Path       string
		Owner      string
		TotalGames int
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (FetchProgressEvent) isServiceEvent()    {}
func (GamesUpdatedEvent) isServiceEvent()     {}
func (SnapshotImportedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()            {}

// Manager owns the session cache and orchestrates fetching, aggregation,
// snapshots, and event routing. Operations are serialized: the store and
// stats are only ever mutated by the single active operation, and a
// completed aggregation pass replaces the previous one wholesale.
type Manager struct {
	opMu sync.Mutex
	mu   sync.RWMutex

	client     *lichess.Client
	gameStore  *store.GameStore
	aggregator *stats.Aggregator
	prefsStore *prefs.Store
	cfg        *config.Config

	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent

	watcher *snapshotWatcher

	lastStats     *models.AggregateStats
	lastBinge     int
	goalNotified  models.Day
	notifications bool
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config, prefsStore *prefs.Store) (*Manager, error) {
	m := &Manager{
		client:        lichess.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout),
		gameStore:     store.New(),
		aggregator:    stats.New(time.Local),
		prefsStore:    prefsStore,
		cfg:           cfg,
		eventChan:     make(chan ServiceEvent, 100),
		stopChan:      make(chan struct{}),
		notifications: cfg.Notifications,
	}

	if cfg.WatchSnapshot != "" {
		w, err := newSnapshotWatcher(cfg.WatchSnapshot, m)
		if err != nil {
			return nil, fmt.Errorf("failed to watch snapshot %s: %w", cfg.WatchSnapshot, err)
		}
		m.watcher = w
	}

	return m, nil
}

// Close stops background work and releases resources.
func (m *Manager) Close() error {
	close(m.stopChan)
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}

// Events returns the main event channel.
func (m *Manager) Events() <-chan ServiceEvent {
	return m.eventChan
}

// Subscribe registers a new event subscriber channel.
func (m *Manager) Subscribe() (chan ServiceEvent, func()) {
	ch := make(chan ServiceEvent, 100)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	unsubscribe := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, sub := range m.subscribers {
			if sub == ch {
				m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
				break
			}
		}
	}
	return ch, unsubscribe
}

// WaitForEvent returns a function that blocks for the next event on ch,
// for use as a Bubble Tea command.
func WaitForEvent(ch <-chan ServiceEvent) func() ServiceEvent {
	return func() ServiceEvent {
		return <-ch
	}
}

// Stats returns the latest aggregation pass, or nil before the first one.
func (m *Manager) Stats() *models.AggregateStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastStats
}

// Owner returns the identity the cache belongs to.
func (m *Manager) Owner() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gameStore.Owner()
}

// Boundary returns the cache boundary of the current set.
func (m *Manager) Boundary() (models.CacheBoundary, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gameStore.Boundary()
}

// GameCount returns the size of the cached set.
func (m *Manager) GameCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gameStore.Len()
}

// Prefs exposes the preferences store.
func (m *Manager) Prefs() *prefs.Store {
	return m.prefsStore
}

// Fetch downloads up to max games for user and merges them into the cache.
// A transport failure aborts the operation and leaves prior state untouched.
func (m *Manager) Fetch(ctx context.Context, user string, max int) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	return m.fullFetch(ctx, user, max)
}

// fullFetch runs an unbounded fetch. Caller holds opMu.
func (m *Manager) fullFetch(ctx context.Context, user string, max int) error {
	batch, err := m.fetchBatch(ctx, lichess.FetchRequest{User: user, Max: max})
	if err != nil {
		m.broadcast(ErrorEvent{Service: "fetch", Error: err})
		return err
	}

	m.mergeAndPublish(user, batch, nil)
	return nil
}

// SyncTopUp performs the incremental top-up protocol: one batch bounded
// below by the cached most-recent timestamp and one bounded above by the
// cached earliest timestamp, fetched sequentially and merged with the
// cached set in a single call. Without a boundary for user it falls back to
// a full fetch.
func (m *Manager) SyncTopUp(ctx context.Context, user string, max int) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	since, until, ok := m.topUpBounds(user)
	if !ok {
		return m.fullFetch(ctx, user, max)
	}

	newer, err := m.fetchBatch(ctx, lichess.FetchRequest{User: user, Max: max, Since: since})
	if err != nil {
		m.broadcast(ErrorEvent{Service: "sync", Error: err})
		return err
	}

	older, err := m.fetchBatch(ctx, lichess.FetchRequest{User: user, Max: max, Until: until})
	if err != nil {
		m.broadcast(ErrorEvent{Service: "sync", Error: err})
		return err
	}

	m.mergeAndPublish(user, newer, older)
	return nil
}

// SyncNew fetches only games newer than the cache boundary.
func (m *Manager) SyncNew(ctx context.Context, user string, max int) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	since, _, ok := m.topUpBounds(user)
	if !ok {
		return m.fullFetch(ctx, user, max)
	}

	batch, err := m.fetchBatch(ctx, lichess.FetchRequest{User: user, Max: max, Since: since})
	if err != nil {
		m.broadcast(ErrorEvent{Service: "sync", Error: err})
		return err
	}

	m.mergeAndPublish(user, batch, nil)
	return nil
}

// Backfill fetches only games older than the cache boundary.
func (m *Manager) Backfill(ctx context.Context, user string, max int) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	_, until, ok := m.topUpBounds(user)
	if !ok {
		return m.fullFetch(ctx, user, max)
	}

	batch, err := m.fetchBatch(ctx, lichess.FetchRequest{User: user, Max: max, Until: until})
	if err != nil {
		m.broadcast(ErrorEvent{Service: "backfill", Error: err})
		return err
	}

	m.mergeAndPublish(user, batch, nil)
	return nil
}

// Export writes the current cache as a hashed snapshot to path.
func (m *Manager) Export(path string) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.RLock()
	games := m.gameStore.Games()
	boundary, ok := m.gameStore.Boundary()
	m.mu.RUnlock()

	if !ok {
		return fmt.Errorf("no data to export")
	}

	env, err := export.Build(games, boundary, time.Now())
	if err != nil {
		return err
	}
	data, err := env.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	logger.Info("exported snapshot", "path", path, "games", len(games))
	return nil
}

// Import validates a snapshot file and replaces the cache with its
// contents. Validation happens before any state mutation: a rejected
// snapshot leaves the prior cache and stats untouched.
func (m *Manager) Import(path string) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	env, err := export.Decode(data)
	if err != nil {
		return err
	}

	owner := env.Metadata.Username

	m.mu.Lock()
	m.gameStore.Replace(owner, env.Games)
	m.mu.Unlock()

	m.recomputeStats(owner, len(env.Games))

	if m.prefsStore != nil {
		if err := m.prefsStore.SetUsername(owner); err != nil {
			logger.Warn("failed to persist username", "error", err)
		}
	}

	m.broadcast(SnapshotImportedEvent{Path: path, Owner: owner, TotalGames: len(env.Games)})
	logger.Info("imported snapshot", "path", path, "owner", owner, "games", len(env.Games))
	return nil
}

func (m *Manager) fetchBatch(ctx context.Context, req lichess.FetchRequest) ([]models.GameRecord, error) {
	fetchID := uuid.NewString()
	logger.Info("fetching games", "fetch_id", fetchID, "user", req.User,
		"max", req.Max, "since", req.Since, "until", req.Until)

	return m.client.FetchGames(ctx, req, func(count int, createdAt time.Time) {
		m.broadcast(FetchProgressEvent{
			FetchID:       fetchID,
			Count:         count,
			LastCreatedAt: createdAt,
		})
	})
}

func (m *Manager) topUpBounds(user string) (since, until int64, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gameStore.TopUpBounds(user)
}

func (m *Manager) mergeAndPublish(owner string, batches ...[]models.GameRecord) {
	newGames := 0
	for _, b := range batches {
		newGames += len(b)
	}

	m.mu.Lock()
	m.gameStore.Merge(owner, batches...)
	m.mu.Unlock()

	m.recomputeStats(owner, newGames)

	if m.prefsStore != nil {
		if err := m.prefsStore.SetUsername(owner); err != nil {
			logger.Warn("failed to persist username", "error", err)
		}
	}
}

// recomputeStats runs a full aggregation pass and broadcasts the result.
func (m *Manager) recomputeStats(owner string, newGames int) {
	m.mu.Lock()
	aggregated := m.aggregator.Aggregate(m.gameStore.Games(), owner)
	previousBinge := m.lastBinge
	m.lastStats = aggregated
	m.lastBinge = aggregated.BingeCount
	boundary, _ := m.gameStore.Boundary()
	m.mu.Unlock()

	m.checkNotifications(aggregated, previousBinge)

	m.broadcast(GamesUpdatedEvent{
		Owner:    owner,
		Stats:    aggregated,
		Boundary: boundary,
		NewGames: newGames,
	})
}

// checkNotifications raises desktop notifications on binge-count increases
// and when today's goal transitions to met.
func (m *Manager) checkNotifications(aggregated *models.AggregateStats, previousBinge int) {
	if !m.notifications || m.prefsStore == nil {
		return
	}

	if aggregated.BingeCount > previousBinge && previousBinge > 0 {
		title := "Binge warning"
		body := fmt.Sprintf("%d high-density sessions detected", aggregated.BingeCount)
		_ = beeep.Notify(title, body, "")
	}

	goal, err := m.prefsStore.Goal()
	if err != nil || goal.Value <= 0 {
		return
	}
	filters, err := m.prefsStore.Filters()
	if err != nil {
		return
	}

	today := models.DayOf(time.Now(), m.aggregator.Location)

	m.mu.Lock()
	alreadyNotified := m.goalNotified == today
	m.mu.Unlock()
	if alreadyNotified {
		return
	}

	if todayGoalMet(aggregated, goal, filters, today) {
		m.mu.Lock()
		m.goalNotified = today
		m.mu.Unlock()

		title := "Daily goal achieved"
		body := fmt.Sprintf("You reached your %d %s goal for today.", goal.Value, goal.Unit)
		_ = beeep.Notify(title, body, "")
	}
}

// todayGoalMet applies the calendar's goal rule to the current day only.
func todayGoalMet(aggregated *models.AggregateStats, goal models.GoalSpec, filters models.FilterSet, today models.Day) bool {
	if goal.Unit == models.GoalGames {
		return aggregated.DailyGames[today] >= goal.Value
	}
	minutes := 0.0
	for _, s := range models.Speeds {
		if filters.Enabled(s) {
			minutes += aggregated.DailyMinutesBySpeed[today][s]
		}
	}
	return minutes >= float64(goal.Value)
}

// CalendarView builds the current calendar from the latest stats and the
// persisted goal/filter preferences.
func (m *Manager) CalendarView() calendar.View {
	aggregated := m.Stats()
	if aggregated == nil {
		return calendar.View{Empty: true}
	}

	goal := models.GoalSpec{}
	filters := models.AllSpeeds()
	if m.prefsStore != nil {
		if g, err := m.prefsStore.Goal(); err == nil {
			goal = g
		}
		if f, err := m.prefsStore.Filters(); err == nil {
			filters = f
		}
	}

	return calendar.Build(aggregated, goal, filters, m.aggregator.Location, time.Now())
}

// broadcast sends an event to the main channel and all subscribers without
// blocking.
func (m *Manager) broadcast(event ServiceEvent) {
	select {
	case m.eventChan <- event:
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
		}
	}
}
