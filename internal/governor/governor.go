package governor

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	loggerName = "rate-governor"

	// Rate-limit schedule: delay_n = min(MaxDelay, BaseDelay * 2^n)
	BaseDelay  = 30 * time.Second
	MaxDelay   = 300 * time.Second
	MaxRetries = 5

	// Other transient failures
	TransportRetries = 2
	TransportDelay   = 2 * time.Second
)

// Event is emitted before every retry sleep.
type Event struct {
	Op         string
	Attempt    int
	Delay      time.Duration
	Reason     ErrorKind
	RetryAfter time.Duration
	Err        error
}

// Result describes how a governed call went.
type Result struct {
	Attempts         int
	Retries          int
	TransportRetries int
	Waited           time.Duration
	Events           []Event
}

type Option func(*Governor)

// WithObserver receives every retry event as it happens.
func WithObserver(fn func(Event)) Option {
	return func(g *Governor) {
		g.observer = fn
	}
}

func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(g *Governor) {
		g.sleep = fn
	}
}

func WithClock(fn func() time.Time) Option {
	return func(g *Governor) {
		g.now = fn
	}
}

// Governor wraps remote calls with the retry policy. It keeps no state between
// calls.
type Governor struct {
	logger   *zap.Logger
	observer func(Event)
	sleep    func(ctx context.Context, d time.Duration) error
	now      func() time.Time
}

func New(logger *zap.Logger, opts ...Option) *Governor {
	g := &Governor{
		logger: logger.Named(loggerName),
		sleep:  SleepWithContext,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewSchedule returns the rate-limit backoff: 30s, 60s, 120s, 240s, 300s, 300s...
func NewSchedule() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = MaxDelay
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// MaxTotalWait is the longest a single call can spend backing off on rate limits.
func MaxTotalWait() time.Duration {
	schedule := NewSchedule()
	var total time.Duration
	for i := 0; i < MaxRetries; i++ {
		total += schedule.NextBackOff()
	}
	return total
}

// Do runs call until it succeeds, fails permanently or runs out of retries.
func (g *Governor) Do(ctx context.Context, op string, call func(ctx context.Context) error) (Result, error) {
	var res Result
	schedule := NewSchedule()

	for {
		if err := ctx.Err(); err != nil {
			return res, g.cancelled(op, &res, err)
		}

		res.Attempts++
		err := call(ctx)
		if err == nil {
			if res.Attempts > 1 {
				g.logger.Info("remote call recovered", zap.String("op", op), zap.Int("attempts", res.Attempts))
			}
			return res, nil
		}

		kind, status, retryAfter := Classify(err)
		switch kind {
		case KindRateLimited:
			if res.Retries >= MaxRetries {
				g.logger.Error("rate limit retries exhausted", zap.String("op", op), zap.Int("retries", res.Retries), zap.Duration("waited", res.Waited))
				return res, &RateLimitedError{
					Op:         op,
					Retries:    res.Retries,
					Waited:     res.Waited,
					GaveUpAt:   g.now(),
					RetryAfter: retryAfter,
					Err:        err,
				}
			}
			res.Retries++
			delay := schedule.NextBackOff()
			ev := Event{Op: op, Attempt: res.Retries, Delay: delay, Reason: kind, RetryAfter: retryAfter, Err: err}
			if waitErr := g.wait(ctx, &res, ev); waitErr != nil {
				return res, g.cancelled(op, &res, waitErr)
			}

		case KindNetwork, KindServer:
			if res.TransportRetries >= TransportRetries {
				return res, &TransportError{Op: op, Kind: kind, StatusCode: status, Err: err}
			}
			res.TransportRetries++
			ev := Event{Op: op, Attempt: res.TransportRetries, Delay: TransportDelay, Reason: kind, Err: err}
			if waitErr := g.wait(ctx, &res, ev); waitErr != nil {
				return res, g.cancelled(op, &res, waitErr)
			}

		case KindCancelled:
			return res, g.cancelled(op, &res, err)

		default:
			g.logger.Error("remote call failed", zap.String("op", op), zap.String("kind", string(kind)), zap.Int("status", status), zap.Error(err))
			return res, &TransportError{Op: op, Kind: kind, StatusCode: status, Err: err}
		}
	}
}

func (g *Governor) wait(ctx context.Context, res *Result, ev Event) error {
	res.Events = append(res.Events, ev)
	g.logger.Warn(
		"retrying remote call",
		zap.String("op", ev.Op),
		zap.Int("attempt", ev.Attempt),
		zap.Duration("delay", ev.Delay),
		zap.String("reason", string(ev.Reason)),
		zap.Duration("retry_after", ev.RetryAfter),
	)
	if g.observer != nil {
		g.observer(ev)
	}

	start := g.now()
	if err := g.sleep(ctx, ev.Delay); err != nil {
		res.Waited += g.now().Sub(start)
		return err
	}
	res.Waited += ev.Delay
	return nil
}

// cancelled finalizes a call interrupted by the context. Once the call has been
// rate limited the interruption is reported as giving up on the rate limit.
func (g *Governor) cancelled(op string, res *Result, err error) error {
	g.logger.Warn("remote call cancelled", zap.String("op", op), zap.Int("retries", res.Retries), zap.Error(err))
	if res.Retries > 0 {
		return &RateLimitedError{
			Op:       op,
			Retries:  res.Retries,
			Waited:   res.Waited,
			GaveUpAt: g.now(),
			Err:      err,
		}
	}
	return &TransportError{Op: op, Kind: KindCancelled, Err: err}
}

// SleepWithContext blocks for d or until ctx is done.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("sleep interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
