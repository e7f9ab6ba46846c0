// Package henrikdev is a minimal client for the HenrikDev Valorant API. It
// fetches a player's stored matches in batches and maps the wire format to
// the pipeline's MatchRecord. The pipeline core never calls this package; the
// generate command fetches first, then runs the pure computation.
package henrikdev

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"valtrack/internal/model"
)

const (
	defaultBaseURL = "https://api.henrikdev.xyz/valorant"
	// The API caps history pages at 10 matches per request.
	pageSize = 10

	maxRetries        = 3
	defaultRetryAfter = 2 * time.Second
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config controls how the client reaches the API.
type Config struct {
	BaseURL    string
	APIKey     string
	Region     string // e.g. "eu", "na"
	HTTPClient *http.Client
}

// Client fetches match telemetry for one region.
type Client struct {
	baseURL string
	apiKey  string
	region  string
	http    httpDoer
	sleep   func(time.Duration) // swapped out in tests
}

// NewClient returns an API client with the given configuration.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	var doer httpDoer = cfg.HTTPClient
	if cfg.HTTPClient == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(base, "/"),
		apiKey:  cfg.APIKey,
		region:  cfg.Region,
		http:    doer,
		sleep:   time.Sleep,
	}
}

// MatchHistory fetches up to count stored matches for a player, newest
// first, batching page requests as needed.
func (c *Client) MatchHistory(ctx context.Context, puuid string, count int) ([]model.MatchRecord, error) {
	var out []model.MatchRecord
	for start := 0; start < count; start += pageSize {
		size := count - start
		if size > pageSize {
			size = pageSize
		}
		path := fmt.Sprintf("/v3/by-puuid/matches/%s/%s?size=%d&start=%d", c.region, puuid, size, start)

		var resp matchesResponse
		if err := c.get(ctx, path, &resp); err != nil {
			return nil, fmt.Errorf("fetch matches [%d,%d): %w", start, start+size, err)
		}
		for i := range resp.Data {
			out = append(out, mapMatch(&resp.Data[i]))
		}
		if len(resp.Data) < size {
			break // no more stored matches
		}
	}
	return out, nil
}

// get performs an authenticated GET, honoring 429 Retry-After up to
// maxRetries times, and JSON-decodes the body into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return err
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryAfter(resp)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("rate limited on %s", path)
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			c.sleep(wait)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return fmt.Errorf("api: %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		return err
	}
	return fmt.Errorf("giving up after %d retries: %w", maxRetries, lastErr)
}

func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultRetryAfter
}
