package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkarren/chesstime/internal/config"
	"github.com/mkarren/chesstime/internal/prefs"
)

func gameLine(id string, createdAt int64) string {
	return fmt.Sprintf(
		`{"id":%q,"createdAt":%d,"lastMoveAt":%d,"speed":"blitz","winner":"white","players":{"white":{"user":{"name":"alice"},"rating":1800},"black":{"user":{"name":"bob"},"rating":1750}}}`,
		id, createdAt, createdAt+300_000)
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	return &config.Config{
		APIBaseURL:    baseURL,
		HTTPTimeout:   5 * time.Second,
		MaxGames:      300,
		Notifications: false,
	}
}

func testManager(t *testing.T, baseURL string) *Manager {
	t.Helper()

	prefsStore, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("prefs.Open failed: %v", err)
	}
	t.Cleanup(func() { prefsStore.Close() })

	m, err := NewManager(testConfig(t, baseURL), prefsStore)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestManagerFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, gameLine("g1", 2_000_000))
		fmt.Fprintln(w, gameLine("g2", 1_000_000))
	}))
	defer server.Close()

	m := testManager(t, server.URL)

	if err := m.Fetch(context.Background(), "alice", 300); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if m.GameCount() != 2 {
		t.Errorf("GameCount = %d, want 2", m.GameCount())
	}
	if m.Owner() != "alice" {
		t.Errorf("Owner = %q, want alice", m.Owner())
	}

	stats := m.Stats()
	if !stats.HasData() || stats.TotalGames != 2 {
		t.Errorf("stats = %+v", stats)
	}

	boundary, ok := m.Boundary()
	if !ok {
		t.Fatal("expected a boundary after fetch")
	}
	if boundary.EarliestTimestamp != 1_000_000 || boundary.MostRecentTimestamp != 2_000_000 {
		t.Errorf("boundary = [%d, %d]", boundary.EarliestTimestamp, boundary.MostRecentTimestamp)
	}

	if name, _ := m.Prefs().Username(); name != "alice" {
		t.Errorf("persisted username = %q, want alice", name)
	}
}

func TestManagerFetchEmitsEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, gameLine("g1", 1_000_000))
	}))
	defer server.Close()

	m := testManager(t, server.URL)
	ch, unsubscribe := m.Subscribe()
	defer unsubscribe()

	if err := m.Fetch(context.Background(), "alice", 300); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	var sawProgress, sawUpdate bool
	deadline := time.After(2 * time.Second)
	for !(sawProgress && sawUpdate) {
		select {
		case event := <-ch:
			switch e := event.(type) {
			case FetchProgressEvent:
				sawProgress = true
				if e.Count != 1 {
					t.Errorf("progress count = %d, want 1", e.Count)
				}
			case GamesUpdatedEvent:
				sawUpdate = true
				if e.Owner != "alice" || e.Stats.TotalGames != 1 {
					t.Errorf("update event = %+v", e)
				}
			}
		case <-deadline:
			t.Fatalf("timed out; progress=%v update=%v", sawProgress, sawUpdate)
		}
	}
}

func TestManagerSyncTopUp(t *testing.T) {
	var requests []map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		requests = append(requests, q)

		switch {
		case q.Get("since") != "":
			fmt.Fprintln(w, gameLine("newer", 3_000_000))
		case q.Get("until") != "":
			fmt.Fprintln(w, gameLine("older", 500_000))
		default:
			fmt.Fprintln(w, gameLine("g1", 2_000_000))
			fmt.Fprintln(w, gameLine("g2", 1_000_000))
		}
	}))
	defer server.Close()

	m := testManager(t, server.URL)

	if err := m.Fetch(context.Background(), "alice", 300); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if err := m.SyncTopUp(context.Background(), "alice", 300); err != nil {
		t.Fatalf("SyncTopUp failed: %v", err)
	}

	if m.GameCount() != 4 {
		t.Errorf("GameCount = %d, want 4", m.GameCount())
	}

	boundary, _ := m.Boundary()
	if boundary.EarliestTimestamp != 500_000 || boundary.MostRecentTimestamp != 3_000_000 {
		t.Errorf("boundary = [%d, %d], want [500000, 3000000]",
			boundary.EarliestTimestamp, boundary.MostRecentTimestamp)
	}

	// One initial request plus the two bounded top-up batches.
	if len(requests) != 3 {
		t.Fatalf("server saw %d requests, want 3", len(requests))
	}
	if got := requests[1]["since"]; len(got) != 1 || got[0] != "2000000" {
		t.Errorf("newer batch since = %v, want 2000000", got)
	}
	if got := requests[2]["until"]; len(got) != 1 || got[0] != "1000000" {
		t.Errorf("older batch until = %v, want 1000000", got)
	}
}

func TestManagerSyncTopUpFallsBackToFullFetch(t *testing.T) {
	var sawBounds bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("since") != "" || r.URL.Query().Get("until") != "" {
			sawBounds = true
		}
		fmt.Fprintln(w, gameLine("g1", 1_000_000))
	}))
	defer server.Close()

	m := testManager(t, server.URL)

	if err := m.SyncTopUp(context.Background(), "alice", 300); err != nil {
		t.Fatalf("SyncTopUp on empty cache failed: %v", err)
	}
	if sawBounds {
		t.Error("empty cache should trigger an unbounded full fetch")
	}
	if m.GameCount() != 1 {
		t.Errorf("GameCount = %d, want 1", m.GameCount())
	}
}

func TestManagerFetchErrorLeavesState(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, gameLine("g1", 1_000_000))
	}))
	defer healthy.Close()

	m := testManager(t, healthy.URL)
	if err := m.Fetch(context.Background(), "alice", 300); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	healthy.Close()

	if err := m.Fetch(context.Background(), "alice", 300); err == nil {
		t.Fatal("expected fetch error after server shutdown")
	}
	if m.GameCount() != 1 {
		t.Errorf("failed fetch changed GameCount to %d", m.GameCount())
	}
}

func TestManagerExportImportRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, gameLine("g1", 2_000_000))
		fmt.Fprintln(w, gameLine("g2", 1_000_000))
	}))
	defer server.Close()

	m := testManager(t, server.URL)
	if err := m.Fetch(context.Background(), "alice", 300); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := m.Export(path); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// A fresh manager adopts the snapshot wholesale.
	other := testManager(t, server.URL)
	if err := other.Import(path); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if other.GameCount() != 2 {
		t.Errorf("imported GameCount = %d, want 2", other.GameCount())
	}
	if other.Owner() != "alice" {
		t.Errorf("imported Owner = %q, want alice", other.Owner())
	}
	if name, _ := other.Prefs().Username(); name != "alice" {
		t.Errorf("imported username pref = %q, want alice", name)
	}
}

func TestManagerImportRejectsTamperedSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, gameLine("g1", 1_000_000))
	}))
	defer server.Close()

	m := testManager(t, server.URL)
	if err := m.Fetch(context.Background(), "alice", 300); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"games":[],"metadata":{"username":"mallory","hash":"deadbeef"}}`), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := m.Import(path); err == nil {
		t.Fatal("expected import to reject a bad hash")
	}

	// The rejected import must not have touched the cache.
	if m.GameCount() != 1 || m.Owner() != "alice" {
		t.Errorf("rejected import mutated state: count=%d owner=%q", m.GameCount(), m.Owner())
	}
}

func TestManagerExportWithoutData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	m := testManager(t, server.URL)
	if err := m.Export(filepath.Join(t.TempDir(), "empty.json")); err == nil {
		t.Error("expected export of an empty cache to fail")
	}
}
