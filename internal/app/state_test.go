package app

import (
	"testing"
	"time"

	"github.com/mkarren/chesstime/internal/models"
)

func TestStateSetGames(t *testing.T) {
	s := NewState()

	if s.Owner() != "" {
		t.Error("new state should have no owner")
	}
	if s.Stats().HasData() {
		t.Error("new state should have no stats")
	}

	stats := &models.AggregateStats{TotalGames: 3}
	boundary := models.CacheBoundary{Owner: "alice", EarliestTimestamp: 1, MostRecentTimestamp: 9}
	s.SetGames("alice", stats, boundary)

	if s.Owner() != "alice" {
		t.Errorf("Owner = %q", s.Owner())
	}
	if s.Stats().TotalGames != 3 {
		t.Errorf("Stats.TotalGames = %d", s.Stats().TotalGames)
	}

	got, ok := s.Boundary()
	if !ok || got.MostRecentTimestamp != 9 {
		t.Errorf("Boundary = %+v, ok=%v", got, ok)
	}
	if s.LastUpdated().IsZero() {
		t.Error("SetGames should stamp LastUpdated")
	}
}

func TestStatePrefs(t *testing.T) {
	s := NewState()

	goal := models.GoalSpec{Value: 30, Unit: models.GoalMinutes}
	filters := models.AllSpeeds()
	filters.Toggle(models.SpeedBullet)
	s.SetPrefs(goal, filters)

	if s.Goal() != goal {
		t.Errorf("Goal = %+v", s.Goal())
	}

	// The returned filter set is a copy; mutating it must not leak back.
	copied := s.Filters()
	if copied.Enabled(models.SpeedBullet) {
		t.Error("bullet should be disabled")
	}
	copied.Toggle(models.SpeedBlitz)
	if !s.Filters().Enabled(models.SpeedBlitz) {
		t.Error("mutating the returned copy changed shared state")
	}
}

func TestStateFetching(t *testing.T) {
	s := NewState()

	s.SetFetching(true)
	if !s.IsFetching() {
		t.Error("IsFetching should be true")
	}

	s.SetFetchProgress("Fetched 10 games")
	if s.FetchProgress() != "Fetched 10 games" {
		t.Errorf("FetchProgress = %q", s.FetchProgress())
	}

	s.SetFetching(false)
	if s.IsFetching() {
		t.Error("IsFetching should be false")
	}
	if s.FetchProgress() != "" {
		t.Error("finishing a fetch should clear the progress text")
	}
}

func TestStateNotifications(t *testing.T) {
	s := NewState()

	id1 := s.AddNotification(NotificationInfo, "first", time.Minute)
	id2 := s.AddNotification(NotificationError, "second", time.Minute)
	if id1 == id2 {
		t.Error("notification IDs should be unique")
	}
	if len(s.Notifications()) != 2 {
		t.Fatalf("Notifications = %d, want 2", len(s.Notifications()))
	}

	s.RemoveNotification(id1)
	remaining := s.Notifications()
	if len(remaining) != 1 || remaining[0].Message != "second" {
		t.Errorf("after remove: %+v", remaining)
	}

	// A zero duration means sticky; a tiny one expires almost immediately.
	s.AddNotification(NotificationInfo, "sticky", 0)
	s.AddNotification(NotificationInfo, "ephemeral", time.Nanosecond)
	time.Sleep(5 * time.Millisecond)
	s.ClearExpiredNotifications()

	var sawSticky bool
	for _, n := range s.Notifications() {
		if n.Message == "sticky" {
			sawSticky = true
		}
	}
	if !sawSticky {
		t.Error("sticky notification should survive the sweep")
	}
	for _, n := range s.Notifications() {
		if n.Message == "ephemeral" {
			t.Error("expired notification survived the sweep")
		}
	}
}
