// Package models defines data structures and domain types.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Speed classifies a game by its time control family.
type Speed int

const (
	// SpeedBullet is for games under 3 minutes per side.
	SpeedBullet Speed = iota
	// SpeedBlitz is for games between 3 and 8 minutes per side.
	SpeedBlitz
	// SpeedRapid is for games between 8 and 25 minutes per side.
	SpeedRapid
	// SpeedClassical is for games above 25 minutes per side.
	SpeedClassical
)

// Speeds lists every known speed in display order.
var Speeds = []Speed{SpeedBullet, SpeedBlitz, SpeedRapid, SpeedClassical}

// String returns the display name for a speed.
func (s Speed) String() string {
	switch s {
	case SpeedBullet:
		return "Bullet"
	case SpeedBlitz:
		return "Blitz"
	case SpeedRapid:
		return "Rapid"
	case SpeedClassical:
		return "Classical"
	default:
		return "Unknown"
	}
}

// apiName returns the lowercase name used on the wire.
func (s Speed) apiName() string {
	return strings.ToLower(s.String())
}

// ParseSpeed maps a wire string to a Speed. The mapping is total over the
// provider's contract; anything else is reported to the caller instead of
// being silently dropped from some tallies.
func ParseSpeed(raw string) (Speed, error) {
	switch strings.ToLower(raw) {
	case "bullet":
		return SpeedBullet, nil
	case "blitz":
		return SpeedBlitz, nil
	case "rapid":
		return SpeedRapid, nil
	case "classical":
		return SpeedClassical, nil
	default:
		return 0, fmt.Errorf("unknown game speed %q", raw)
	}
}

// MarshalJSON encodes the speed as its lowercase wire name.
func (s Speed) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.apiName())
}

// UnmarshalJSON decodes a lowercase wire name. An unrecognized name fails
// the whole record, which routes it through the malformed-record path.
func (s *Speed) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSpeed(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Side identifies a board color.
type Side string

const (
	// SideWhite is the white player.
	SideWhite Side = "white"
	// SideBlack is the black player.
	SideBlack Side = "black"
)

// PlayerUser holds the account behind a player seat.
type PlayerUser struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// Player describes one seat of a game.
type Player struct {
	User   *PlayerUser `json:"user,omitempty"`
	Rating int         `json:"rating,omitempty"`
}

// Name returns the player's account name, or "" for anonymous seats.
func (p Player) Name() string {
	if p.User == nil {
		return ""
	}
	return p.User.Name
}

// Players holds both seats of a game.
type Players struct {
	White Player `json:"white"`
	Black Player `json:"black"`
}

// Clock is the time control of a game, in seconds.
type Clock struct {
	Initial   int `json:"initial"`
	Increment int `json:"increment"`
}

// Label renders the conventional "minutes+increment" form, e.g. "5+3".
func (c Clock) Label() string {
	return fmt.Sprintf("%d+%d", c.Initial/60, c.Increment)
}

// GameRecord is one game as delivered by the provider. Records are immutable
// once ingested; ID uniquely determines a record.
type GameRecord struct {
	ID         string  `json:"id"`
	CreatedAt  int64   `json:"createdAt"`
	LastMoveAt int64   `json:"lastMoveAt"`
	Speed      Speed   `json:"speed"`
	Perf       string  `json:"perf,omitempty"`
	Winner     Side    `json:"winner,omitempty"`
	Players    Players `json:"players"`
	Clock      *Clock  `json:"clock,omitempty"`
}

// Duration returns the elapsed play time of the game.
func (g GameRecord) Duration() time.Duration {
	return time.Duration(g.LastMoveAt-g.CreatedAt) * time.Millisecond
}

// CreatedTime returns the creation timestamp as a time.Time.
func (g GameRecord) CreatedTime() time.Time {
	return time.UnixMilli(g.CreatedAt)
}

// OwnerSide returns the color played by owner, matched case-insensitively
// against the white seat; black is inferred by elimination.
func (g GameRecord) OwnerSide(owner string) Side {
	if strings.EqualFold(g.Players.White.Name(), owner) {
		return SideWhite
	}
	return SideBlack
}

// Outcome is a game result relative to the tracked owner.
type Outcome int

const (
	// OutcomeDraw means no side won.
	OutcomeDraw Outcome = iota
	// OutcomeWin means the owner's side won.
	OutcomeWin
	// OutcomeLoss means the opponent's side won.
	OutcomeLoss
)

// String returns the display name for an outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "Win"
	case OutcomeLoss:
		return "Loss"
	default:
		return "Draw"
	}
}

// OutcomeFor resolves the game result from owner's point of view.
func (g GameRecord) OutcomeFor(owner string) Outcome {
	if g.Winner == "" {
		return OutcomeDraw
	}
	if g.Winner == g.OwnerSide(owner) {
		return OutcomeWin
	}
	return OutcomeLoss
}

// TimeControlLabel returns the clock label when a clock is present, else the
// speed name.
func (g GameRecord) TimeControlLabel() string {
	if g.Clock != nil {
		return g.Clock.Label()
	}
	return g.Speed.String()
}

// CacheBoundary records the timestamp extremes of the cached set for one
// owner, used to bound incremental fetches.
type CacheBoundary struct {
	Owner               string
	EarliestTimestamp   int64
	MostRecentTimestamp int64
}

// SameOwner reports whether the boundary belongs to owner, compared
// case-insensitively.
func (b CacheBoundary) SameOwner(owner string) bool {
	return strings.EqualFold(b.Owner, owner)
}
