package stats

import (
	"testing"
	"time"

	"github.com/mkarren/chesstime/internal/models"
)

// base is 2024-03-10 14:00:00 UTC.
var base = time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC).UnixMilli()

func game(id string, createdAt, durationMs int64, winner models.Side) models.GameRecord {
	return models.GameRecord{
		ID:         id,
		CreatedAt:  createdAt,
		LastMoveAt: createdAt + durationMs,
		Speed:      models.SpeedBlitz,
		Winner:     winner,
		Players: models.Players{
			White: models.Player{User: &models.PlayerUser{Name: "alice"}},
			Black: models.Player{User: &models.PlayerUser{Name: "bob"}},
		},
	}
}

func TestAggregateEmpty(t *testing.T) {
	stats := New(time.UTC).Aggregate(nil, "alice")

	if stats.HasData() {
		t.Error("empty input should have no data")
	}
	if stats.TotalMs != 0 || stats.BingeCount != 0 {
		t.Errorf("empty input produced TotalMs=%d BingeCount=%d", stats.TotalMs, stats.BingeCount)
	}
	if stats.SpeedDistribution[models.SpeedBullet] != 0 {
		t.Error("speed distribution should be initialized to zero")
	}
}

func TestAggregateTotals(t *testing.T) {
	fiveMin := int64(5 * 60_000)
	tenMin := int64(10 * 60_000)

	games := []models.GameRecord{
		game("g1", base, fiveMin, models.SideWhite),
		game("g2", base+tenMin, fiveMin, models.SideBlack),
		game("g3", base+2*tenMin, fiveMin, ""),
	}

	stats := New(time.UTC).Aggregate(games, "alice")

	if stats.TotalGames != 3 {
		t.Errorf("TotalGames = %d, want 3", stats.TotalGames)
	}
	if stats.TotalMs != 3*fiveMin {
		t.Errorf("TotalMs = %d, want %d", stats.TotalMs, 3*fiveMin)
	}

	if len(stats.DailyMinutes) != 1 {
		t.Fatalf("expected one day bucket, got %d", len(stats.DailyMinutes))
	}
	day := models.DayOf(time.UnixMilli(base), time.UTC)
	if got := stats.DailyMinutes[day]; got != 15 {
		t.Errorf("DailyMinutes = %v, want 15", got)
	}
	if stats.DailyGames[day] != 3 {
		t.Errorf("DailyGames = %d, want 3", stats.DailyGames[day])
	}
	if got := stats.SpeedDistribution[models.SpeedBlitz]; got != 15 {
		t.Errorf("blitz minutes = %v, want 15", got)
	}
	if stats.BingeCount != 0 {
		t.Errorf("BingeCount = %d, want 0 for spread-out games", stats.BingeCount)
	}
}

func TestAggregateHourlyWins(t *testing.T) {
	fiveMin := int64(5 * 60_000)
	games := []models.GameRecord{
		// alice plays white in all three: one win, one loss, one draw.
		game("g1", base, fiveMin, models.SideWhite),
		game("g2", base+fiveMin, fiveMin, models.SideBlack),
		game("g3", base+2*fiveMin, fiveMin, ""),
	}

	stats := New(time.UTC).Aggregate(games, "alice")

	tally := stats.HourlyWins[14]
	if tally.Games != 3 {
		t.Fatalf("hour 14 games = %d, want 3", tally.Games)
	}
	if tally.Wins != 1 {
		t.Errorf("hour 14 wins = %d, want 1", tally.Wins)
	}

	// The same games from the opponent's view: one win for bob.
	stats = New(time.UTC).Aggregate(games, "bob")
	if got := stats.HourlyWins[14].Wins; got != 1 {
		t.Errorf("bob's wins = %d, want 1", got)
	}
}

func TestAggregateBingeDetection(t *testing.T) {
	// Six rapid-fire games: the sixth ends well inside two hours of the
	// first one's start.
	threeMin := int64(3 * 60_000)
	var games []models.GameRecord
	for i := range 6 {
		games = append(games, game(
			string(rune('a'+i)), base+int64(i)*4*60_000, threeMin, models.SideWhite))
	}

	stats := New(time.UTC).Aggregate(games, "alice")
	if stats.BingeCount != 1 {
		t.Errorf("BingeCount = %d, want 1", stats.BingeCount)
	}

	// A seventh dense game adds exactly one more.
	games = append(games, game("g7", base+6*4*60_000, threeMin, models.SideWhite))
	stats = New(time.UTC).Aggregate(games, "alice")
	if stats.BingeCount != 2 {
		t.Errorf("BingeCount = %d, want 2", stats.BingeCount)
	}
}

func TestAggregateNoBingeWhenSpreadOut(t *testing.T) {
	// Six games, each three hours apart.
	var games []models.GameRecord
	for i := range 6 {
		games = append(games, game(
			string(rune('a'+i)), base+int64(i)*3*3_600_000, 60_000, models.SideWhite))
	}

	stats := New(time.UTC).Aggregate(games, "alice")
	if stats.BingeCount != 0 {
		t.Errorf("BingeCount = %d, want 0", stats.BingeCount)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	fiveMin := int64(5 * 60_000)
	ordered := []models.GameRecord{
		game("g1", base, fiveMin, models.SideWhite),
		game("g2", base+fiveMin, fiveMin, models.SideWhite),
		game("g3", base+2*fiveMin, fiveMin, models.SideWhite),
		game("g4", base+3*fiveMin, fiveMin, models.SideWhite),
		game("g5", base+4*fiveMin, fiveMin, models.SideWhite),
		game("g6", base+5*fiveMin, fiveMin, models.SideWhite),
	}
	reversed := make([]models.GameRecord, len(ordered))
	for i, g := range ordered {
		reversed[len(ordered)-1-i] = g
	}

	a := New(time.UTC)
	fromOrdered := a.Aggregate(ordered, "alice")
	fromReversed := a.Aggregate(reversed, "alice")

	if fromOrdered.TotalMs != fromReversed.TotalMs {
		t.Error("TotalMs differs by input order")
	}
	if fromOrdered.BingeCount != fromReversed.BingeCount {
		t.Errorf("BingeCount differs by input order: %d vs %d",
			fromOrdered.BingeCount, fromReversed.BingeCount)
	}

	day := models.DayOf(time.UnixMilli(base), time.UTC)
	list := fromReversed.DailyGamesList[day]
	if list[0].ID != "g1" || list[len(list)-1].ID != "g6" {
		t.Error("per-day game lists should be chronological regardless of input order")
	}
}

func TestAggregateMidnightSplit(t *testing.T) {
	loc := time.FixedZone("east", 3*3600)
	beforeMidnight := time.Date(2024, 3, 10, 23, 50, 0, 0, loc).UnixMilli()
	afterMidnight := time.Date(2024, 3, 11, 0, 10, 0, 0, loc).UnixMilli()

	games := []models.GameRecord{
		game("g1", beforeMidnight, 60_000, models.SideWhite),
		game("g2", afterMidnight, 60_000, models.SideWhite),
	}

	stats := New(loc).Aggregate(games, "alice")
	if len(stats.DailyMinutes) != 2 {
		t.Errorf("games across local midnight should land in 2 buckets, got %d", len(stats.DailyMinutes))
	}
}
