// Package store holds the deduplicated, time-ordered session cache of games.
package store

import (
	"sort"

	"github.com/mkarren/chesstime/internal/models"
)

// GameStore owns the known game set for one owner plus its cache boundary.
// It is empty at session start, grows through Merge, and is replaced
// wholesale on import.
type GameStore struct {
	owner string
	byID  map[string]struct{}
	games []models.GameRecord // newest first
}

// New creates an empty store.
func New() *GameStore {
	return &GameStore{byID: make(map[string]struct{})}
}

// Owner returns the identity the cached set belongs to.
func (s *GameStore) Owner() string {
	return s.owner
}

// Len returns the number of cached games.
func (s *GameStore) Len() int {
	return len(s.games)
}

// Games returns the cached set, newest first. The caller must not mutate
// the returned slice.
func (s *GameStore) Games() []models.GameRecord {
	return s.games
}

// Boundary returns the timestamp extremes of the cached set, and false when
// the store is empty.
func (s *GameStore) Boundary() (models.CacheBoundary, bool) {
	if len(s.games) == 0 {
		return models.CacheBoundary{}, false
	}
	return models.CacheBoundary{
		Owner:               s.owner,
		EarliestTimestamp:   s.games[len(s.games)-1].CreatedAt,
		MostRecentTimestamp: s.games[0].CreatedAt,
	}, true
}

// Merge folds batches into the cached set for owner. A different owner
// (case-insensitive) clears the store first, so one user's cache never
// contaminates another's. Duplicated identifiers keep their first
// occurrence across all batches in order; identifiers imply identical
// content, so no field comparison happens. After the merge the set is
// re-sorted newest first and the boundary is recomputed from the extremes.
// Merging already-known records is a no-op.
func (s *GameStore) Merge(owner string, batches ...[]models.GameRecord) {
	if !s.sameOwner(owner) {
		s.Clear()
	}
	s.owner = owner

	for _, batch := range batches {
		for _, g := range batch {
			if _, seen := s.byID[g.ID]; seen {
				continue
			}
			s.byID[g.ID] = struct{}{}
			s.games = append(s.games, g)
		}
	}

	sort.SliceStable(s.games, func(i, j int) bool {
		return s.games[i].CreatedAt > s.games[j].CreatedAt
	})
}

// Replace swaps the entire contents of the store, used by import.
func (s *GameStore) Replace(owner string, games []models.GameRecord) {
	s.Clear()
	s.Merge(owner, games)
}

// Clear empties the store.
func (s *GameStore) Clear() {
	s.owner = ""
	s.byID = make(map[string]struct{})
	s.games = nil
}

// TopUpBounds returns the fetch bounds of the incremental top-up protocol:
// since for the newer batch and until for the older one. ok is false when no
// boundary exists for this owner and a full fetch is needed instead.
func (s *GameStore) TopUpBounds(owner string) (since, until int64, ok bool) {
	b, ok := s.Boundary()
	if !ok || !b.SameOwner(owner) {
		return 0, 0, false
	}
	return b.MostRecentTimestamp, b.EarliestTimestamp, true
}

func (s *GameStore) sameOwner(owner string) bool {
	if s.owner == "" {
		return true
	}
	return models.CacheBoundary{Owner: s.owner}.SameOwner(owner)
}
