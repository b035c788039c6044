package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseSpeed(t *testing.T) {
	tests := []struct {
		raw     string
		want    Speed
		wantErr bool
	}{
		{"bullet", SpeedBullet, false},
		{"blitz", SpeedBlitz, false},
		{"rapid", SpeedRapid, false},
		{"classical", SpeedClassical, false},
		{"Blitz", SpeedBlitz, false},
		{"ultraBullet", 0, true},
		{"correspondence", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseSpeed(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSpeed(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseSpeed(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSpeedJSONRoundTrip(t *testing.T) {
	for _, speed := range Speeds {
		data, err := json.Marshal(speed)
		if err != nil {
			t.Fatalf("Marshal(%v) failed: %v", speed, err)
		}

		var got Speed
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", data, err)
		}
		if got != speed {
			t.Errorf("round trip %v = %v", speed, got)
		}
	}
}

func TestUnknownSpeedFailsRecord(t *testing.T) {
	line := `{"id":"abc","createdAt":1,"lastMoveAt":2,"speed":"ultraBullet"}`

	var g GameRecord
	if err := json.Unmarshal([]byte(line), &g); err == nil {
		t.Error("expected decode error for unknown speed")
	}
}

func TestOwnerSide(t *testing.T) {
	game := GameRecord{
		Players: Players{
			White: Player{User: &PlayerUser{Name: "Alice"}},
			Black: Player{User: &PlayerUser{Name: "Bob"}},
		},
	}

	tests := []struct {
		owner string
		want  Side
	}{
		{"Alice", SideWhite},
		{"alice", SideWhite},
		{"ALICE", SideWhite},
		{"Bob", SideBlack},
		{"someone-else", SideBlack},
	}

	for _, tt := range tests {
		if got := game.OwnerSide(tt.owner); got != tt.want {
			t.Errorf("OwnerSide(%q) = %v, want %v", tt.owner, got, tt.want)
		}
	}
}

func TestOutcomeFor(t *testing.T) {
	game := GameRecord{
		Players: Players{
			White: Player{User: &PlayerUser{Name: "alice"}},
			Black: Player{User: &PlayerUser{Name: "bob"}},
		},
	}

	game.Winner = SideWhite
	if got := game.OutcomeFor("alice"); got != OutcomeWin {
		t.Errorf("white win for white owner = %v, want win", got)
	}
	if got := game.OutcomeFor("bob"); got != OutcomeLoss {
		t.Errorf("white win for black owner = %v, want loss", got)
	}

	game.Winner = ""
	if got := game.OutcomeFor("alice"); got != OutcomeDraw {
		t.Errorf("no winner = %v, want draw", got)
	}
}

func TestClockLabel(t *testing.T) {
	tests := []struct {
		clock Clock
		want  string
	}{
		{Clock{Initial: 300, Increment: 3}, "5+3"},
		{Clock{Initial: 60, Increment: 0}, "1+0"},
		{Clock{Initial: 1800, Increment: 20}, "30+20"},
	}

	for _, tt := range tests {
		if got := tt.clock.Label(); got != tt.want {
			t.Errorf("Label(%+v) = %q, want %q", tt.clock, got, tt.want)
		}
	}
}

func TestTimeControlLabel(t *testing.T) {
	withClock := GameRecord{Speed: SpeedBlitz, Clock: &Clock{Initial: 180, Increment: 2}}
	if got := withClock.TimeControlLabel(); got != "3+2" {
		t.Errorf("TimeControlLabel with clock = %q, want %q", got, "3+2")
	}

	withoutClock := GameRecord{Speed: SpeedRapid}
	if got := withoutClock.TimeControlLabel(); got != "Rapid" {
		t.Errorf("TimeControlLabel without clock = %q, want %q", got, "Rapid")
	}
}

func TestGameRecordDuration(t *testing.T) {
	g := GameRecord{CreatedAt: 1_000_000, LastMoveAt: 1_300_000}
	if got := g.Duration(); got != 5*time.Minute {
		t.Errorf("Duration() = %v, want 5m", got)
	}
}

func TestCacheBoundarySameOwner(t *testing.T) {
	b := CacheBoundary{Owner: "Alice"}

	if !b.SameOwner("alice") {
		t.Error("SameOwner should be case-insensitive")
	}
	if b.SameOwner("bob") {
		t.Error("SameOwner matched a different user")
	}
}
