package discord

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RateLimitTransport_RoundTrip(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		retryAfter    string
		expErr        bool
		expRetryAfter time.Duration
	}{
		{
			name:   "Happy path - Success passes through",
			status: http.StatusOK,
			body:   `[]`,
		},
		{
			name:       "Happy path - JSON rate limit left to discordgo",
			status:     http.StatusTooManyRequests,
			body:       `{"message": "You are being rate limited.", "retry_after": 0.5, "global": false}`,
			retryAfter: "1",
		},
		{
			name:          "Sad path - Edge ban page",
			status:        http.StatusTooManyRequests,
			body:          `<html>error code: 1015</html>`,
			retryAfter:    "1.5",
			expErr:        true,
			expRetryAfter: 1500 * time.Millisecond,
		},
		{
			name:   "Sad path - Empty body without header",
			status: http.StatusTooManyRequests,
			expErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup mock Discord API
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.retryAfter != "" {
					w.Header().Set(headerRetryAfter, tt.retryAfter)
				}
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer server.Close()

			client := &http.Client{Transport: newRateLimitTransport(nil)}
			resp, err := client.Get(server.URL)

			if tt.expErr {
				var respErr *RateLimitResponseError
				require.True(t, errors.As(err, &respErr))
				assert.Equal(t, tt.expRetryAfter, respErr.RetryAfter)
				assert.Equal(t, tt.body, respErr.Body)
				return
			}
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.body, string(body))
		})
	}
}

func Test_NewSession(t *testing.T) {
	session, err := NewSession("token")

	require.NoError(t, err)
	assert.False(t, session.ShouldRetryOnRateLimit)
	assert.IsType(t, &rateLimitTransport{}, session.Client.Transport)
}
