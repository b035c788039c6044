// Package stats turns an ordered game set into the derived statistics model.
package stats

import (
	"sort"
	"time"

	"github.com/mkarren/chesstime/internal/models"
)

// bingeWindowSize is the width of the session-density sliding window.
const bingeWindowSize = 5

// bingeWindowSpan is the maximum elapsed time for a window to count as a
// binge, in milliseconds (2 hours).
const bingeWindowSpan = 7_200_000

// Aggregator computes AggregateStats from a game list. The location is
// explicit state rather than ambient timezone so rendering and tests are
// deterministic.
type Aggregator struct {
	Location *time.Location
}

// New creates an aggregator bucketing days and hours in loc. A nil loc
// falls back to time.Local.
func New(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{Location: loc}
}

// Aggregate recomputes the full statistics model for owner's games. It is a
// pure function of its inputs: no incremental state survives between calls.
// Games are processed chronologically ascending regardless of input order
// because the binge counter and per-day game lists are order-sensitive.
func (a *Aggregator) Aggregate(games []models.GameRecord, owner string) *models.AggregateStats {
	result := &models.AggregateStats{
		TotalGames:          len(games),
		DailyMinutes:        make(map[models.Day]float64),
		DailyMinutesBySpeed: make(map[models.Day]models.SpeedMinutes),
		DailyGames:          make(map[models.Day]int),
		DailyGamesList:      make(map[models.Day][]models.GameRecord),
		SpeedDistribution:   make(models.SpeedMinutes, len(models.Speeds)),
		HourlyWins:          make(map[int]models.HourlyWinStats),
	}
	for _, s := range models.Speeds {
		result.SpeedDistribution[s] = 0
	}

	ordered := make([]models.GameRecord, len(games))
	copy(ordered, games)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt < ordered[j].CreatedAt
	})

	for i, g := range ordered {
		durationMs := g.LastMoveAt - g.CreatedAt
		result.TotalMs += durationMs
		minutes := float64(durationMs) / 60_000

		day := models.DayOf(g.CreatedTime(), a.Location)
		result.DailyMinutes[day] += minutes
		result.DailyGames[day]++
		result.DailyGamesList[day] = append(result.DailyGamesList[day], g)

		if _, ok := result.DailyMinutesBySpeed[day]; !ok {
			perSpeed := make(models.SpeedMinutes, len(models.Speeds))
			for _, s := range models.Speeds {
				perSpeed[s] = 0
			}
			result.DailyMinutesBySpeed[day] = perSpeed
		}
		result.DailyMinutesBySpeed[day][g.Speed] += minutes
		result.SpeedDistribution[g.Speed] += minutes

		hour := g.CreatedTime().In(a.Location).Hour()
		tally := result.HourlyWins[hour]
		tally.Games++
		if g.Winner != "" && g.Winner == g.OwnerSide(owner) {
			tally.Wins++
		}
		result.HourlyWins[hour] = tally

		// Session-density check: a game ending within two hours of the
		// creation of the game five positions earlier counts once. A long
		// dense run therefore increments once per qualifying game, not once
		// per distinct window.
		if i >= bingeWindowSize {
			windowStart := ordered[i-bingeWindowSize].CreatedAt
			if g.LastMoveAt-windowStart < bingeWindowSpan {
				result.BingeCount++
			}
		}
	}

	return result
}
