// Package export writes and validates integrity-hashed snapshots of the
// session's game cache.
package export

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mkarren/chesstime/internal/models"
)

// Validation failures surfaced to the caller. A failed import never
// mutates any state.
var (
	ErrMissingGames    = errors.New("snapshot has no games list")
	ErrMissingMetadata = errors.New("snapshot has no metadata record")
	ErrMissingHash     = errors.New("snapshot metadata carries no integrity hash")
	ErrIntegrity       = errors.New("integrity check failed: snapshot was modified")
)

// Metadata embeds the cache boundary and provenance of a snapshot.
type Metadata struct {
	Username            string `json:"username"`
	EarliestTimestamp   int64  `json:"earliestTimestamp"`
	MostRecentTimestamp int64  `json:"mostRecentTimestamp"`
	Hash                string `json:"hash,omitempty"`
	ExportDate          int64  `json:"exportDate,omitempty"`
	TotalGames          int    `json:"totalGames,omitempty"`
}

// Envelope is the on-disk snapshot format.
type Envelope struct {
	Games    []models.GameRecord `json:"games"`
	Metadata *Metadata           `json:"metadata"`
}

// Hash computes the hex SHA-256 digest over the canonical JSON encoding of
// the game list. Struct fields marshal in declaration order, so the
// serialization is deterministic for a given list.
func Hash(games []models.GameRecord) (string, error) {
	if games == nil {
		games = []models.GameRecord{}
	}
	data, err := json.Marshal(games)
	if err != nil {
		return "", fmt.Errorf("failed to serialize games for hashing: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Verify recomputes the digest of games and compares it to expected.
func Verify(games []models.GameRecord, expected string) (bool, error) {
	actual, err := Hash(games)
	if err != nil {
		return false, err
	}
	return actual == expected, nil
}

// Build assembles a hashed envelope for the current cache contents.
func Build(games []models.GameRecord, boundary models.CacheBoundary, now time.Time) (*Envelope, error) {
	if games == nil {
		games = []models.GameRecord{}
	}
	digest, err := Hash(games)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		Games: games,
		Metadata: &Metadata{
			Username:            boundary.Owner,
			EarliestTimestamp:   boundary.EarliestTimestamp,
			MostRecentTimestamp: boundary.MostRecentTimestamp,
			Hash:                digest,
			ExportDate:          now.UnixMilli(),
			TotalGames:          len(games),
		},
	}, nil
}

// Encode renders the envelope as indented JSON.
func (e *Envelope) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses and validates a snapshot. Both top-level keys and the
// metadata hash must be present, and the digest must verify against the
// embedded games; any failure rejects the whole snapshot.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("snapshot is not valid JSON: %w", err)
	}

	if env.Games == nil {
		return nil, ErrMissingGames
	}
	if env.Metadata == nil {
		return nil, ErrMissingMetadata
	}
	if env.Metadata.Hash == "" {
		return nil, ErrMissingHash
	}

	ok, err := Verify(env.Games, env.Metadata.Hash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrIntegrity
	}

	return &env, nil
}

// Filename returns the conventional snapshot name for owner on a given day.
func Filename(owner string, now time.Time) string {
	return fmt.Sprintf("lichess-%s-%s.json", owner, now.Format("2006-01-02"))
}
