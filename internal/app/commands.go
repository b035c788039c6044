package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkarren/chesstime/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// FetchCmd runs a fetch operation of the given kind against the manager.
func FetchCmd(mgr *services.Manager, kind FetchKind, user string, max int) tea.Cmd {
	return func() tea.Msg {
		var err error
		switch kind {
		case FetchSyncNew:
			err = mgr.SyncNew(context.Background(), user, max)
		case FetchBackfill:
			err = mgr.Backfill(context.Background(), user, max)
		case FetchTopUp:
			err = mgr.SyncTopUp(context.Background(), user, max)
		default:
			err = mgr.Fetch(context.Background(), user, max)
		}
		return FetchFinishedMsg{User: user, Kind: kind, Error: err}
	}
}

// StartFetchCmd reports the fetch start and then runs it.
func StartFetchCmd(mgr *services.Manager, kind FetchKind, user string, max int) tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return FetchStartedMsg{User: user, Kind: kind} },
		FetchCmd(mgr, kind, user, max),
	)
}

// ExportCmd writes the cache snapshot to path.
func ExportCmd(mgr *services.Manager, path string) tea.Cmd {
	return func() tea.Msg {
		return ExportFinishedMsg{Path: path, Error: mgr.Export(path)}
	}
}

// ImportCmd loads a snapshot file into the cache.
func ImportCmd(mgr *services.Manager, path string) tea.Cmd {
	return func() tea.Msg {
		return ImportFinishedMsg{Path: path, Error: mgr.Import(path)}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// notifyCmd returns a command that adds a notification.
func notifyCmd(typ NotificationType, message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     typ,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// NotifyErrorCmd surfaces an error as a notification, for use by tabs.
func NotifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message)
}

// NotifySuccessCmd surfaces a success message as a notification.
func NotifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message)
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}
