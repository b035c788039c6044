// Package app implements the main Bubble Tea application with tab-based
// navigation.
package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/mkarren/chesstime/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// State is the shared application state read by every tab. All mutation
// happens from the single Bubble Tea update loop; the mutex guards the
// background command goroutines that publish results.
type State struct {
	mu sync.RWMutex

	owner    string
	stats    *models.AggregateStats
	boundary models.CacheBoundary
	hasData  bool

	goal    models.GoalSpec
	filters models.FilterSet

	fetching      bool
	fetchProgress string

	lastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates an empty application state.
func NewState() *State {
	return &State{filters: models.AllSpeeds()}
}

// SetGames replaces the aggregated stats and boundary after a merge.
func (s *State) SetGames(owner string, stats *models.AggregateStats, boundary models.CacheBoundary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner = owner
	s.stats = stats
	s.boundary = boundary
	s.hasData = stats.HasData()
	s.lastUpdated = time.Now()
}

// Owner returns the tracked owner identity.
func (s *State) Owner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// Stats returns the latest aggregation pass, or nil.
func (s *State) Stats() *models.AggregateStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Boundary returns the cache boundary and whether data exists.
func (s *State) Boundary() (models.CacheBoundary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.boundary, s.hasData
}

// SetPrefs replaces the goal and filter inputs.
func (s *State) SetPrefs(goal models.GoalSpec, filters models.FilterSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goal = goal
	s.filters = filters
}

// Goal returns the active goal spec.
func (s *State) Goal() models.GoalSpec {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.goal
}

// Filters returns a copy of the active filter set.
func (s *State) Filters() models.FilterSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	copied := make(models.FilterSet, len(s.filters))
	for speed, enabled := range s.filters {
		copied[speed] = enabled
	}
	return copied
}

// SetFetching flips the fetch-in-progress flag.
func (s *State) SetFetching(fetching bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetching = fetching
	if !fetching {
		s.fetchProgress = ""
	}
}

// IsFetching reports whether a fetch is in flight.
func (s *State) IsFetching() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetching
}

// SetFetchProgress records the latest progress line of the running fetch.
func (s *State) SetFetchProgress(progress string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchProgress = progress
}

// FetchProgress returns the latest progress line.
func (s *State) FetchProgress() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchProgress
}

// LastUpdated returns the time of the last merge.
func (s *State) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// AddNotification appends a notification and returns its ID.
func (s *State) AddNotification(typ NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := fmt.Sprintf("notification-%d", s.notificationSeq)
	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      typ,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})
	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications drops notifications past their duration.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if !n.IsExpired() {
			kept = append(kept, n)
		}
	}
	s.notifications = kept
}

// Notifications returns a copy of the active notifications.
func (s *State) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]Notification, len(s.notifications))
	copy(copied, s.notifications)
	return copied
}
