package discord

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	headerRetryAfter = "Retry-After"

	// Enough of an error page to log, the rest is dropped
	maxBodySnippet = 256
)

// RateLimitResponseError is a 429 whose body discordgo cannot decode, such as the
// HTML page served when the edge bans the client.
type RateLimitResponseError struct {
	URL        string
	RetryAfter time.Duration
	Body       string
}

func (e *RateLimitResponseError) Error() string {
	return fmt.Sprintf("rate limited on %s (retry after %s): %s", e.URL, e.RetryAfter, e.Body)
}

// rateLimitTransport turns undecodable 429 responses into RateLimitResponseError.
// JSON 429 bodies pass through for discordgo to report as RateLimitError.
type rateLimitTransport struct {
	base http.RoundTripper
}

func newRateLimitTransport(base http.RoundTripper) *rateLimitTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &rateLimitTransport{base: base}
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusTooManyRequests {
		return resp, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	if json.Valid(body) {
		resp.Body = io.NopCloser(bytes.NewReader(body))
		return resp, nil
	}

	snippet := body
	if len(snippet) > maxBodySnippet {
		snippet = snippet[:maxBodySnippet]
	}
	return nil, &RateLimitResponseError{
		URL:        req.URL.String(),
		RetryAfter: parseRetryAfter(resp.Header.Get(headerRetryAfter)),
		Body:       string(bytes.TrimSpace(snippet)),
	}
}

// parseRetryAfter reads the header as seconds, possibly fractional.
func parseRetryAfter(value string) time.Duration {
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
