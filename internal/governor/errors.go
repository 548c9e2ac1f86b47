package governor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"cogsync/pkg/discord"
)

// ErrorKind classifies a failed remote call.
type ErrorKind string

const (
	KindRateLimited ErrorKind = "rate_limited"
	KindAuth        ErrorKind = "auth"
	KindNetwork     ErrorKind = "network"
	KindServer      ErrorKind = "server"
	KindRequest     ErrorKind = "request"
	KindCancelled   ErrorKind = "cancelled"
)

// RateLimitedError is returned once rate-limit retries are exhausted, or when the
// call is cancelled while backing off.
type RateLimitedError struct {
	Op       string
	Retries  int
	Waited   time.Duration
	GaveUpAt time.Time

	// Last retry-after hint sent by Discord.
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: rate limited, gave up after %d retries (waited %s): %v", e.Op, e.Retries, e.Waited, e.Err)
}

func (e *RateLimitedError) Unwrap() error {
	return e.Err
}

// TransportError is returned for failures that are not rate limits.
type TransportError struct {
	Op         string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s error (status %d): %v", e.Op, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAuthRejected reports whether err is a rejected bot token. Nothing can be
// retried after that.
func IsAuthRejected(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr) && transportErr.Kind == KindAuth
}

// Classify maps an SDK error to its kind, HTTP status and retry-after hint.
func Classify(err error) (kind ErrorKind, status int, retryAfter time.Duration) {
	if rlErr, ok := asRateLimit(err); ok {
		if rlErr.RateLimit != nil && rlErr.TooManyRequests != nil {
			retryAfter = rlErr.RetryAfter
		}
		return KindRateLimited, http.StatusTooManyRequests, retryAfter
	}
	var respErr *discord.RateLimitResponseError
	if errors.As(err, &respErr) {
		return KindRateLimited, http.StatusTooManyRequests, respErr.RetryAfter
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled, 0, 0
	}
	if errors.Is(err, discordgo.ErrUnauthorized) {
		return KindAuth, http.StatusUnauthorized, 0
	}

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		status = restErr.Response.StatusCode
		switch {
		case status == http.StatusTooManyRequests:
			return KindRateLimited, status, 0
		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return KindAuth, status, 0
		case status >= http.StatusInternalServerError:
			return KindServer, status, 0
		default:
			return KindRequest, status, 0
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork, 0, 0
	}

	// Unknown transport failures are treated as transient
	return KindNetwork, 0, 0
}

func asRateLimit(err error) (*discordgo.RateLimitError, bool) {
	var rlErr *discordgo.RateLimitError
	if errors.As(err, &rlErr) && rlErr != nil {
		return rlErr, true
	}
	return nil, false
}
