package lichess

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mkarren/chesstime/internal/models"
)

// perfTypes is the fixed category filter sent with every fetch.
const perfTypes = "bullet,blitz,rapid,classical"

// FetchRequest describes one games fetch.
type FetchRequest struct {
	// User is the owner identity whose games are fetched.
	User string
	// Max caps the number of games returned.
	Max int
	// Until, when nonzero, limits the fetch to games created before it (ms).
	Until int64
	// Since, when nonzero, limits the fetch to games created after it (ms).
	Since int64
}

// Client talks to the Lichess game export API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given API base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchGames streams the user's games newest-first and returns them in
// arrival order. onProgress, when non-nil, is invoked per decoded record.
// A non-success response aborts the fetch with an error; no retry.
func (c *Client) FetchGames(ctx context.Context, req FetchRequest, onProgress ProgressFunc) ([]models.GameRecord, error) {
	u, err := c.buildURL(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch games: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("game history request failed with status %d: check username or API status", resp.StatusCode)
	}

	return DecodeGames(resp.Body, onProgress)
}

func (c *Client) buildURL(req FetchRequest) (string, error) {
	if req.User == "" {
		return "", fmt.Errorf("username is required")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid API base URL %q: %w", c.baseURL, err)
	}
	u = u.JoinPath("api", "games", "user", req.User)

	q := url.Values{}
	q.Set("max", strconv.Itoa(req.Max))
	q.Set("perfType", perfTypes)
	q.Set("moves", "false")
	q.Set("clocks", "true")
	if req.Until > 0 {
		q.Set("until", strconv.FormatInt(req.Until, 10))
	}
	if req.Since > 0 {
		q.Set("since", strconv.FormatInt(req.Since, 10))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}
