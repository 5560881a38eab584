package pubg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"fightworker/internal/telemetry"
)

const defaultBaseURL = "https://api.pubg.com"

// ErrNoTelemetry is returned when a match document carries no telemetry asset.
var ErrNoTelemetry = fmt.Errorf("match has no telemetry asset")

// Client is a minimal PUBG REST API client: match lookup and telemetry
// download, behind a token-interval rate limiter sized to the API key's
// requests-per-minute allowance. Telemetry CDN downloads are not counted
// against the limit (they are unauthenticated).
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	shard      string
	limiter    *rateLimiter
}

// NewClient creates a configured API client. ratePerMinute <= 0 disables
// rate limiting (useful in tests).
func NewClient(apiKey, shard string, ratePerMinute int) *Client {
	var limiter *rateLimiter
	if ratePerMinute > 0 {
		limiter = &rateLimiter{interval: time.Minute / time.Duration(ratePerMinute)}
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		shard:      shard,
		limiter:    limiter,
	}
}

// Match is the subset of a match document the worker needs.
type Match struct {
	ID           string
	MapName      string
	GameMode     string
	MatchType    string
	CreatedAt    time.Time
	TelemetryURL string
}

// matchDocument mirrors the JSON:API layout of GET /shards/{shard}/matches/{id}.
type matchDocument struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			MapName   string    `json:"mapName"`
			GameMode  string    `json:"gameMode"`
			MatchType string    `json:"matchType"`
			CreatedAt time.Time `json:"createdAt"`
		} `json:"attributes"`
	} `json:"data"`
	Included []struct {
		Type       string `json:"type"`
		Attributes struct {
			Name string `json:"name"`
			URL  string `json:"URL"`
		} `json:"attributes"`
	} `json:"included"`
}

// GetMatch fetches match metadata and locates the telemetry asset URL.
func (c *Client) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	url := fmt.Sprintf("%s/shards/%s/matches/%s", c.baseURL, c.shard, matchID)

	var doc matchDocument
	if err := c.getJSON(ctx, url, true, &doc); err != nil {
		return nil, fmt.Errorf("get match %s: %w", matchID, err)
	}

	m := &Match{
		ID:        doc.Data.ID,
		MapName:   doc.Data.Attributes.MapName,
		GameMode:  doc.Data.Attributes.GameMode,
		MatchType: doc.Data.Attributes.MatchType,
		CreatedAt: doc.Data.Attributes.CreatedAt,
	}
	for _, inc := range doc.Included {
		if inc.Type == "asset" && inc.Attributes.Name == "telemetry" {
			m.TelemetryURL = inc.Attributes.URL
			break
		}
	}
	if m.TelemetryURL == "" {
		return nil, ErrNoTelemetry
	}
	return m, nil
}

// DownloadTelemetry fetches a telemetry document from the CDN and returns
// the raw JSON bytes, gunzipping when the CDN served compressed content.
func (c *Client) DownloadTelemetry(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.api+json")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download telemetry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download telemetry: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read telemetry body: %w", err)
	}
	if telemetry.IsGzip(body) {
		return telemetry.Gunzip(body)
	}
	return body, nil
}

// getJSON performs a rate-limited authenticated GET and decodes the response.
// 429 surfaces as an error so the queue's retry layer reschedules the job.
func (c *Client) getJSON(ctx context.Context, url string, authed bool, target any) error {
	if c.limiter != nil {
		if err := c.limiter.wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.api+json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return fmt.Errorf("api rate limited (429)")
	case http.StatusNotFound:
		return fmt.Errorf("not found (404)")
	default:
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(target)
}

// rateLimiter spaces requests at a fixed interval. The PUBG API enforces a
// small per-minute budget per key, so a simple interval gate is enough.
type rateLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

func (l *rateLimiter) wait(ctx context.Context) error {
	l.mu.Lock()
	now := time.Now()
	if l.next.Before(now) {
		l.next = now
	}
	wait := l.next.Sub(now)
	l.next = l.next.Add(l.interval)
	l.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
