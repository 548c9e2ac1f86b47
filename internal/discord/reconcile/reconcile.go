package reconcile

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"cogsync/internal/discord/command"
	"cogsync/internal/governor"
	"cogsync/internal/report"
	"cogsync/pkg/discord"
)

const (
	loggerName = "cmd-reconcile"

	DefaultSettleDelay = 2 * time.Second
	MaxSettleDelay     = 2 * time.Second

	opFetch = "fetch"
	opClear = "clear"
	opPush  = "push"
)

type Option func(*Reconciler)

// WithClearFirst wipes the remote catalog before every push.
func WithClearFirst(clearFirst bool) Option {
	return func(r *Reconciler) {
		r.clearFirst = clearFirst
	}
}

// WithSettleDelay sets the pause between a clear and the following push.
func WithSettleDelay(d time.Duration) Option {
	return func(r *Reconciler) {
		r.settleDelay = d
	}
}

// WithDiff toggles fetching the remote catalog to report added and removed commands.
func WithDiff(diff bool) Option {
	return func(r *Reconciler) {
		r.diff = diff
	}
}

func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Reconciler) {
		r.sleep = fn
	}
}

func WithClock(fn func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = fn
	}
}

// Reconciler makes the remote catalog of a scope match the declared commands.
type Reconciler struct {
	logger   *zap.Logger
	session  discord.SessionIFace
	appID    string
	governor *governor.Governor

	clearFirst  bool
	settleDelay time.Duration
	diff        bool

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func New(logger *zap.Logger, session discord.SessionIFace, appID string, gov *governor.Governor, opts ...Option) *Reconciler {
	r := &Reconciler{
		logger:      logger.Named(loggerName),
		session:     session,
		appID:       appID,
		governor:    gov,
		settleDelay: DefaultSettleDelay,
		diff:        true,
		sleep:       governor.SleepWithContext,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sync replaces the remote catalog of scope with descs. The attempt is always
// finalized. The error is only set when the whole run must stop: the token was
// rejected or the context is done.
func (r *Reconciler) Sync(ctx context.Context, scope command.Scope, descs []command.Descriptor) (report.Attempt, error) {
	logger := r.logger.With(zap.Stringer("scope", scope))
	payload := command.ApplicationCommands(descs)
	attempt := report.Attempt{Scope: scope, StartedAt: r.now(), Count: len(payload)}

	var remote []string
	haveRemote := false
	if r.diff {
		var cmds []*discordgo.ApplicationCommand
		res, err := r.governor.Do(ctx, opFetch, func(ctx context.Context) error {
			var callErr error
			cmds, callErr = r.session.ApplicationCommands(r.appID, scope.GuildID, discordgo.WithContext(ctx))
			return callErr
		})
		addWaits(&attempt, res)
		switch {
		case err == nil:
			remote = commandNames(cmds)
			haveRemote = true
		case aborts(err) || isRateLimited(err):
			return r.finish(logger, attempt, err)
		default:
			logger.Warn("could not fetch remote catalog, diff skipped", zap.Error(err))
		}
	}

	if r.clearFirst {
		logger.Info("clearing remote catalog")
		res, err := r.governor.Do(ctx, opClear, func(ctx context.Context) error {
			_, callErr := r.session.ApplicationCommandBulkOverwrite(r.appID, scope.GuildID, []*discordgo.ApplicationCommand{}, discordgo.WithContext(ctx))
			return callErr
		})
		addWaits(&attempt, res)
		if err != nil {
			return r.finish(logger, attempt, err)
		}
		attempt.Cleared = true

		if err := r.sleep(ctx, r.settleDelay); err != nil {
			return r.finish(logger, attempt, err)
		}
	}

	logger.Info("pushing commands", zap.Int("commands", len(payload)))
	var created []*discordgo.ApplicationCommand
	res, err := r.governor.Do(ctx, opPush, func(ctx context.Context) error {
		var callErr error
		created, callErr = r.session.ApplicationCommandBulkOverwrite(r.appID, scope.GuildID, payload, discordgo.WithContext(ctx))
		return callErr
	})
	addWaits(&attempt, res)
	if err != nil {
		return r.finish(logger, attempt, err)
	}

	attempt.Count = len(created)
	if haveRemote {
		declared := commandNames(payload)
		attempt.Added = difference(declared, remote)
		attempt.Removed = difference(remote, declared)
	}
	return r.finish(logger, attempt, nil)
}

// finish sets the outcome from err and decides whether the run must stop.
func (r *Reconciler) finish(logger *zap.Logger, attempt report.Attempt, err error) (report.Attempt, error) {
	attempt.FinishedAt = r.now()

	if err == nil {
		attempt.Outcome = report.OutcomeSuccess
		logger.Info(
			"scope synchronized",
			zap.Int("count", attempt.Count),
			zap.Strings("added", attempt.Added),
			zap.Strings("removed", attempt.Removed),
			zap.Duration("elapsed", attempt.Elapsed()),
		)
		return attempt, nil
	}

	attempt.Error = err.Error()

	var rlErr *governor.RateLimitedError
	var transportErr *governor.TransportError
	switch {
	case errors.As(err, &rlErr):
		attempt.Outcome = report.OutcomeRateLimited
		attempt.ErrorKind = string(governor.KindRateLimited)
		attempt.GaveUpAt = rlErr.GaveUpAt
	case errors.As(err, &transportErr) && transportErr.Kind == governor.KindCancelled:
		attempt.Outcome = report.OutcomeCancelled
		attempt.ErrorKind = string(transportErr.Kind)
	case errors.As(err, &transportErr):
		attempt.Outcome = report.OutcomeTransportError
		attempt.ErrorKind = string(transportErr.Kind)
	case isContextErr(err):
		// Interrupted settle delay
		attempt.Outcome = report.OutcomeCancelled
		attempt.ErrorKind = string(governor.KindCancelled)
	default:
		attempt.Outcome = report.OutcomeTransportError
		attempt.ErrorKind = string(governor.KindNetwork)
	}

	logger.Error(
		"scope not synchronized",
		zap.String("outcome", string(attempt.Outcome)),
		zap.Int("retries", attempt.Retries),
		zap.Duration("waited", attempt.Waited),
		zap.Error(err),
	)

	if aborts(err) {
		return attempt, err
	}
	return attempt, nil
}

func aborts(err error) bool {
	return governor.IsAuthRejected(err) || isContextErr(err)
}

func isRateLimited(err error) bool {
	var rlErr *governor.RateLimitedError
	return errors.As(err, &rlErr)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func addWaits(attempt *report.Attempt, res governor.Result) {
	attempt.Retries += res.Retries
	attempt.Waited += res.Waited
}

func commandNames(cmds []*discordgo.ApplicationCommand) []string {
	names := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		names = append(names, cmd.Name)
	}
	return names
}

// difference returns the sorted names in a that are not in b.
func difference(a, b []string) []string {
	in := make(map[string]struct{}, len(b))
	for _, name := range b {
		in[name] = struct{}{}
	}

	var diff []string
	for _, name := range a {
		if _, ok := in[name]; !ok {
			diff = append(diff, name)
		}
	}
	sort.Strings(diff)
	return diff
}
