// Package lichess fetches a user's game history from the Lichess export API
// and decodes its newline-delimited JSON stream.
package lichess

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/mkarren/chesstime/internal/logger"
	"github.com/mkarren/chesstime/internal/models"
)

// ProgressFunc is called once per decoded record with the running count and
// the record's creation time.
type ProgressFunc func(count int, createdAt time.Time)

// readBufferSize is the chunk size for stream reads.
const readBufferSize = 32 * 1024

// DecodeGames consumes a newline-delimited JSON stream of game records.
// Records may be split across read boundaries: bytes after the last newline
// of a chunk are carried over and prepended to the next chunk, so multi-byte
// runes split mid-rune survive intact. A line that fails to decode is logged
// and skipped; one malformed record never loses the rest of the stream.
func DecodeGames(r io.Reader, onProgress ProgressFunc) ([]models.GameRecord, error) {
	var (
		games []models.GameRecord
		carry []byte
		buf   = make([]byte, readBufferSize)
	)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := append(carry, buf[:n]...)
			lines := bytes.Split(chunk, []byte{'\n'})

			// The final segment may be an incomplete record.
			carry = append([]byte(nil), lines[len(lines)-1]...)

			for _, line := range lines[:len(lines)-1] {
				if g, ok := decodeLine(line); ok {
					games = append(games, g)
					if onProgress != nil {
						onProgress(len(games), g.CreatedTime())
					}
				}
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return games, err
		}
	}

	// The provider terminates lines with a newline, so a non-empty carry-over
	// at stream end is either a final unterminated record or a truncated
	// transfer. Decode it if possible, otherwise drop it with a warning.
	if len(bytes.TrimSpace(carry)) > 0 {
		if g, ok := decodeTrailer(carry); ok {
			games = append(games, g)
			if onProgress != nil {
				onProgress(len(games), g.CreatedTime())
			}
		}
	}

	return games, nil
}

func decodeLine(line []byte) (models.GameRecord, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return models.GameRecord{}, false
	}
	var g models.GameRecord
	if err := json.Unmarshal(line, &g); err != nil {
		logger.Warn("skipping malformed game record", "error", err, "bytes", len(line))
		return models.GameRecord{}, false
	}
	return g, true
}

func decodeTrailer(carry []byte) (models.GameRecord, bool) {
	var g models.GameRecord
	if err := json.Unmarshal(bytes.TrimSpace(carry), &g); err != nil {
		logger.Warn("dropping unparsable trailing fragment at stream end",
			"error", err, "bytes", len(carry))
		return models.GameRecord{}, false
	}
	return g, true
}
