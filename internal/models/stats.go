package models

import "time"

// Day is a local-midnight calendar day used as a bucket key. It is the
// UnixMilli of midnight in the aggregation location.
type Day int64

// Time converts the day key back to a time.Time in loc.
func (d Day) Time(loc *time.Location) time.Time {
	return time.UnixMilli(int64(d)).In(loc)
}

// DayOf buckets t to its local calendar day in loc.
func DayOf(t time.Time, loc *time.Location) Day {
	local := t.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Day(midnight.UnixMilli())
}

// HourlyWinStats tallies games and wins for one hour of day.
type HourlyWinStats struct {
	Games int
	Wins  int
}

// Rate returns the win rate, or 0 when no games were recorded.
func (h HourlyWinStats) Rate() float64 {
	if h.Games == 0 {
		return 0
	}
	return float64(h.Wins) / float64(h.Games)
}

// SpeedMinutes holds per-speed minute totals.
type SpeedMinutes map[Speed]float64

// AggregateStats is the fully derived statistics model. It is recomputed
// from the ordered game set on every pass and never patched in place.
type AggregateStats struct {
	TotalMs    int64
	TotalGames int

	// Keyed by local-midnight day.
	DailyMinutes        map[Day]float64
	DailyMinutesBySpeed map[Day]SpeedMinutes
	DailyGames          map[Day]int
	DailyGamesList      map[Day][]GameRecord

	// Global per-speed minute totals.
	SpeedDistribution SpeedMinutes

	// Keyed by local hour of day, 0-23.
	HourlyWins map[int]HourlyWinStats

	BingeCount int
}

// HasData returns true when at least one game was aggregated.
func (a *AggregateStats) HasData() bool {
	return a != nil && a.TotalGames > 0
}

// BestHour returns the hour with the highest win rate among hours with at
// least minGames games, or -1 when no hour qualifies.
func (a *AggregateStats) BestHour(minGames int) (hour int, rate float64) {
	hour = -1
	for h := range 24 {
		stats, ok := a.HourlyWins[h]
		if !ok || stats.Games < minGames {
			continue
		}
		if r := stats.Rate(); r > rate {
			rate = r
			hour = h
		}
	}
	return hour, rate
}

// MostActiveSpeed returns the speed with the largest minute total.
func (a *AggregateStats) MostActiveSpeed() Speed {
	best := SpeedBullet
	for _, s := range Speeds {
		if a.SpeedDistribution[s] > a.SpeedDistribution[best] {
			best = s
		}
	}
	return best
}

// GoalUnit selects what a daily goal threshold measures.
type GoalUnit int

const (
	// GoalMinutes measures minutes played per day.
	GoalMinutes GoalUnit = iota
	// GoalGames measures games played per day.
	GoalGames
)

// String returns the persisted name for a goal unit.
func (u GoalUnit) String() string {
	if u == GoalGames {
		return "games"
	}
	return "minutes"
}

// ParseGoalUnit maps a persisted name back to a unit, defaulting to minutes.
func ParseGoalUnit(raw string) GoalUnit {
	if raw == "games" {
		return GoalGames
	}
	return GoalMinutes
}

// GoalSpec is a daily goal threshold. Value 0 disables goal checks.
type GoalSpec struct {
	Value int
	Unit  GoalUnit
}

// FilterSet enables or disables each speed independently.
type FilterSet map[Speed]bool

// AllSpeeds returns a filter set with every speed enabled.
func AllSpeeds() FilterSet {
	f := make(FilterSet, len(Speeds))
	for _, s := range Speeds {
		f[s] = true
	}
	return f
}

// Enabled reports whether s passes the filter.
func (f FilterSet) Enabled(s Speed) bool {
	return f[s]
}

// Toggle flips the filter for s.
func (f FilterSet) Toggle(s Speed) {
	f[s] = !f[s]
}
