// Package calendar reconciles aggregated day statistics with user filters
// and goal thresholds into a renderable grid. It is pure computation; the
// UI layer owns painting.
package calendar

import (
	"time"

	"github.com/mkarren/chesstime/internal/models"
)

// Intensity tiers are assigned by fixed minute thresholds when the goal is
// not met.
const (
	tier4Minutes = 60
	tier3Minutes = 30
	tier2Minutes = 15
)

// DayCell is the visual state of one grid day.
type DayCell struct {
	Day  models.Day
	Date time.Time

	// Minutes is the day's total over the enabled speeds only.
	Minutes float64
	// Games is the raw game count, unfiltered.
	Games int

	GoalMet bool
	// Tier is 1-4 when the day has filtered activity and the goal is not
	// met, else 0.
	Tier int
	// OutOfRange marks grid padding before the earliest data day and days
	// past the current day.
	OutOfRange bool
	// MonthStart marks the first rendered day of a month, for labels.
	MonthStart bool
}

// HasGames reports whether the day can be expanded into a game list.
func (c DayCell) HasGames() bool {
	return c.Games > 0
}

// View is the computed calendar for one filter/goal combination.
type View struct {
	// Empty is true when no day has nonzero filtered minutes; the grid is
	// not rendered in that case.
	Empty bool

	// Cells covers every day from the aligned start through today.
	Cells []DayCell

	// Start is the most recent Sunday on or before the earliest data day.
	Start time.Time
	// End is the current local day.
	End time.Time

	DaysGoalMet  int
	DaysWithData int
}

// GoalProgress returns the fraction of days with recorded activity on which
// the goal was met. Days without any play are deliberately excluded from
// the denominator so a sparse history is not penalized.
func (v View) GoalProgress() float64 {
	if v.DaysWithData == 0 {
		return 0
	}
	return float64(v.DaysGoalMet) / float64(v.DaysWithData)
}

// Build computes the calendar from aggregated stats. now supplies the
// current day and loc the calendar timezone; both are explicit for
// deterministic rendering.
func Build(stats *models.AggregateStats, goal models.GoalSpec, filters models.FilterSet, loc *time.Location, now time.Time) View {
	if loc == nil {
		loc = time.Local
	}

	filtered := filterDailyMinutes(stats, filters)
	if len(filtered) == 0 {
		return View{Empty: true}
	}

	var minDay models.Day
	first := true
	for day := range filtered {
		if first || day < minDay {
			minDay = day
			first = false
		}
	}

	minDate := minDay.Time(loc)
	start := addDays(minDate, -int(minDate.Weekday()), loc)
	local := now.In(loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	view := View{Start: start, End: end}

	lastMonth := time.Month(0)
	for d := start; !d.After(end); d = addDays(d, 1, loc) {
		day := models.DayOf(d, loc)
		mins := filtered[day]
		games := stats.DailyGames[day]

		cell := DayCell{
			Day:        day,
			Date:       d,
			Minutes:    mins,
			Games:      games,
			OutOfRange: d.Before(minDate) || d.After(now),
			MonthStart: d.Month() != lastMonth,
		}
		lastMonth = d.Month()

		if mins > 0 {
			view.DaysWithData++
		}

		progress := mins
		if goal.Unit == models.GoalGames {
			progress = float64(games)
		}
		if goal.Value > 0 && progress >= float64(goal.Value) {
			cell.GoalMet = true
			view.DaysGoalMet++
		} else {
			cell.Tier = intensityTier(mins)
		}

		view.Cells = append(view.Cells, cell)
	}

	return view
}

// DayGame is one row of a day's expanded game list.
type DayGame struct {
	Game        models.GameRecord
	Outcome     models.Outcome
	White       string
	WhiteRating int
	Black       string
	BlackRating int
	TimeControl string
}

// DayDetail lists the day's games ascending by creation time, annotated
// relative to owner.
func DayDetail(stats *models.AggregateStats, day models.Day, owner string) []DayGame {
	games := stats.DailyGamesList[day]
	detail := make([]DayGame, 0, len(games))
	for _, g := range games {
		detail = append(detail, DayGame{
			Game:        g,
			Outcome:     g.OutcomeFor(owner),
			White:       g.Players.White.Name(),
			WhiteRating: g.Players.White.Rating,
			Black:       g.Players.Black.Name(),
			BlackRating: g.Players.Black.Rating,
			TimeControl: g.TimeControlLabel(),
		})
	}
	return detail
}

// filterDailyMinutes re-sums each day over the enabled speeds; a day whose
// filtered total is zero carries no data for range or goal purposes.
func filterDailyMinutes(stats *models.AggregateStats, filters models.FilterSet) map[models.Day]float64 {
	filtered := make(map[models.Day]float64)
	if stats == nil {
		return filtered
	}
	for day, perSpeed := range stats.DailyMinutesBySpeed {
		total := 0.0
		for _, s := range models.Speeds {
			if filters.Enabled(s) {
				total += perSpeed[s]
			}
		}
		if total > 0 {
			filtered[day] = total
		}
	}
	return filtered
}

func intensityTier(minutes float64) int {
	switch {
	case minutes > tier4Minutes:
		return 4
	case minutes > tier3Minutes:
		return 3
	case minutes > tier2Minutes:
		return 2
	case minutes > 0:
		return 1
	default:
		return 0
	}
}

// addDays advances by whole calendar days, renormalizing through time.Date
// so DST transitions cannot skew the midnight anchor.
func addDays(t time.Time, days int, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+days, 0, 0, 0, 0, loc)
}
