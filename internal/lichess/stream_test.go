package lichess

import (
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

// chunkReader delivers at most size bytes per Read to exercise records
// split across read boundaries.
type chunkReader struct {
	data []byte
	size int
	pos  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := min(r.size, len(r.data)-r.pos, len(p))
	copy(p, r.data[r.pos:r.pos+n])
	r.pos += n
	return n, nil
}

func gameLine(id string, createdAt int64, white string) string {
	return fmt.Sprintf(
		`{"id":%q,"createdAt":%d,"lastMoveAt":%d,"speed":"blitz","winner":"white","players":{"white":{"user":{"name":%q},"rating":1800},"black":{"user":{"name":"opponent"},"rating":1750}}}`,
		id, createdAt, createdAt+300_000, white)
}

func TestDecodeGamesBasic(t *testing.T) {
	stream := strings.Join([]string{
		gameLine("g1", 3_000_000, "alice"),
		gameLine("g2", 2_000_000, "alice"),
		gameLine("g3", 1_000_000, "alice"),
	}, "\n") + "\n"

	var progressCalls int
	var lastCount int
	games, err := DecodeGames(strings.NewReader(stream), func(count int, createdAt time.Time) {
		progressCalls++
		lastCount = count
	})
	if err != nil {
		t.Fatalf("DecodeGames failed: %v", err)
	}

	if len(games) != 3 {
		t.Fatalf("decoded %d games, want 3", len(games))
	}
	if games[0].ID != "g1" || games[2].ID != "g3" {
		t.Errorf("games out of arrival order: %v, %v", games[0].ID, games[2].ID)
	}
	if progressCalls != 3 || lastCount != 3 {
		t.Errorf("progress calls = %d (last count %d), want 3/3", progressCalls, lastCount)
	}
}

func TestDecodeGamesChunkBoundaryInvariance(t *testing.T) {
	// The multi-byte name forces some chunk sizes to split mid-rune.
	stream := strings.Join([]string{
		gameLine("g1", 3_000_000, "Grünfeld_Player"),
		gameLine("g2", 2_000_000, "Grünfeld_Player"),
		gameLine("g3", 1_000_000, "Grünfeld_Player"),
	}, "\n") + "\n"

	want, err := DecodeGames(strings.NewReader(stream), nil)
	if err != nil {
		t.Fatalf("reference decode failed: %v", err)
	}
	if len(want) != 3 {
		t.Fatalf("reference decode got %d games, want 3", len(want))
	}

	for _, size := range []int{1, 2, 3, 5, 7, 13, 64, 1024} {
		t.Run(fmt.Sprintf("chunk-%d", size), func(t *testing.T) {
			games, err := DecodeGames(&chunkReader{data: []byte(stream), size: size}, nil)
			if err != nil {
				t.Fatalf("DecodeGames failed: %v", err)
			}
			if len(games) != len(want) {
				t.Fatalf("decoded %d games, want %d", len(games), len(want))
			}
			for i := range games {
				if games[i].ID != want[i].ID {
					t.Errorf("game %d = %q, want %q", i, games[i].ID, want[i].ID)
				}
				if games[i].Players.White.Name() != want[i].Players.White.Name() {
					t.Errorf("game %d white = %q, want %q",
						i, games[i].Players.White.Name(), want[i].Players.White.Name())
				}
			}
		})
	}
}

func TestDecodeGamesSkipsMalformedLines(t *testing.T) {
	stream := gameLine("g1", 2_000_000, "alice") + "\n" +
		`{"id":"broken","speed":"ultraBullet"}` + "\n" +
		"not json at all\n" +
		gameLine("g2", 1_000_000, "alice") + "\n"

	games, err := DecodeGames(strings.NewReader(stream), nil)
	if err != nil {
		t.Fatalf("DecodeGames failed: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("decoded %d games, want 2", len(games))
	}
	if games[0].ID != "g1" || games[1].ID != "g2" {
		t.Errorf("unexpected ids: %v, %v", games[0].ID, games[1].ID)
	}
}

func TestDecodeGamesIgnoresBlankLines(t *testing.T) {
	stream := "\n\n" + gameLine("g1", 1_000_000, "alice") + "\n\n\n"

	games, err := DecodeGames(strings.NewReader(stream), nil)
	if err != nil {
		t.Fatalf("DecodeGames failed: %v", err)
	}
	if len(games) != 1 {
		t.Errorf("decoded %d games, want 1", len(games))
	}
}

func TestDecodeGamesUnterminatedFinalRecord(t *testing.T) {
	// No trailing newline: the final record arrives as carry-over at EOF.
	stream := gameLine("g1", 2_000_000, "alice") + "\n" + gameLine("g2", 1_000_000, "alice")

	games, err := DecodeGames(strings.NewReader(stream), nil)
	if err != nil {
		t.Fatalf("DecodeGames failed: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("decoded %d games, want 2", len(games))
	}
	if games[1].ID != "g2" {
		t.Errorf("trailing record id = %q, want g2", games[1].ID)
	}
}

func TestDecodeGamesDropsTruncatedTrailer(t *testing.T) {
	stream := gameLine("g1", 2_000_000, "alice") + "\n" + `{"id":"g2","crea`

	games, err := DecodeGames(strings.NewReader(stream), nil)
	if err != nil {
		t.Fatalf("DecodeGames failed: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("decoded %d games, want 1", len(games))
	}
}

func TestDecodeGamesEmptyStream(t *testing.T) {
	games, err := DecodeGames(strings.NewReader(""), nil)
	if err != nil {
		t.Fatalf("DecodeGames failed: %v", err)
	}
	if len(games) != 0 {
		t.Errorf("decoded %d games from empty stream", len(games))
	}
}
