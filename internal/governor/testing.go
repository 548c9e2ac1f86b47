package governor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"cogsync/pkg/discord"
)

// FakeClock replaces the wall clock and sleeps in tests. Sleeping advances the
// clock instantly.
type FakeClock struct {
	Current time.Time
	Slept   []time.Duration

	// Called before each sleep, e.g. to cancel a context mid-backoff
	BeforeSleep func(d time.Duration)
}

func NewFakeClock() *FakeClock {
	return &FakeClock{Current: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	return c.Current
}

func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if c.BeforeSleep != nil {
		c.BeforeSleep(d)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sleep interrupted: %w", err)
	}
	c.Slept = append(c.Slept, d)
	c.Current = c.Current.Add(d)
	return nil
}

func (c *FakeClock) TotalSlept() time.Duration {
	var total time.Duration
	for _, d := range c.Slept {
		total += d
	}
	return total
}

// NewTestGovernor returns a governor driven by the fake clock.
func NewTestGovernor(clock *FakeClock, opts ...Option) *Governor {
	opts = append([]Option{WithSleep(clock.Sleep), WithClock(clock.Now)}, opts...)
	return New(zap.NewNop(), opts...)
}

// NewRateLimitError builds the error discordgo returns on a 429.
func NewRateLimitError(retryAfter time.Duration) error {
	return &discordgo.RateLimitError{
		RateLimit: &discordgo.RateLimit{
			TooManyRequests: &discordgo.TooManyRequests{
				Message:    "You are being rate limited.",
				RetryAfter: retryAfter,
			},
			URL: "https://discord.com/api/v9/applications/1/commands",
		},
	}
}

// NewRESTError builds the error discordgo returns on other HTTP failures.
func NewRESTError(status int) error {
	return &discordgo.RESTError{
		Response: &http.Response{
			StatusCode: status,
			Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		},
		ResponseBody: []byte(`{"message": "mock"}`),
	}
}

// NewRateLimitPageError builds the error a session returns for a 429 with an HTML
// body, as wrapped by http.Client.
func NewRateLimitPageError(retryAfter time.Duration) error {
	return &url.Error{
		Op:  http.MethodGet,
		URL: "https://discord.com/api/v9/oauth2/applications/@me",
		Err: &discord.RateLimitResponseError{
			URL:        "https://discord.com/api/v9/oauth2/applications/@me",
			RetryAfter: retryAfter,
			Body:       "<html>error code: 1015</html>",
		},
	}
}
