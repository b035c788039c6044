package app

import (
	"time"

	"github.com/mkarren/chesstime/internal/models"
	"github.com/mkarren/chesstime/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// FetchStartedMsg signals that a games fetch has begun.
type FetchStartedMsg struct {
	User string
	Kind FetchKind
}

// FetchKind distinguishes the fetch operations.
type FetchKind int

const (
	// FetchFull downloads a fresh batch without boundary bounds.
	FetchFull FetchKind = iota
	// FetchSyncNew tops up games newer than the cache boundary.
	FetchSyncNew
	// FetchBackfill tops up games older than the cache boundary.
	FetchBackfill
	// FetchTopUp tops up on both sides of the cache boundary.
	FetchTopUp
)

// String returns the display name for a fetch kind.
func (k FetchKind) String() string {
	switch k {
	case FetchSyncNew:
		return "sync"
	case FetchBackfill:
		return "backfill"
	case FetchTopUp:
		return "top-up"
	default:
		return "fetch"
	}
}

// FetchFinishedMsg signals that a fetch operation completed.
type FetchFinishedMsg struct {
	User  string
	Kind  FetchKind
	Error error
}

// ExportFinishedMsg signals that an export completed.
type ExportFinishedMsg struct {
	Path  string
	Error error
}

// ImportFinishedMsg signals that an import completed.
type ImportFinishedMsg struct {
	Path  string
	Error error
}

// PrefsChangedMsg signals that the goal or filters changed; consumers
// should recompute their derived views.
type PrefsChangedMsg struct {
	Goal    models.GoalSpec
	Filters models.FilterSet
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg carries the subscriber channel after subscribing.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}
