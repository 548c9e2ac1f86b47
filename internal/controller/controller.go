package controller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"cogsync/internal/discord/command"
	"cogsync/internal/discord/reconcile"
	"cogsync/internal/plugin"
	"cogsync/internal/report"
)

const loggerName = "controller"

// Syncer reconciles one scope with the remote catalog.
type Syncer interface {
	Sync(ctx context.Context, scope command.Scope, descs []command.Descriptor) (report.Attempt, error)
}

// Ensure reconcile.Reconciler implements Syncer
var _ Syncer = (*reconcile.Reconciler)(nil)

type Option func(*Controller)

func WithClock(fn func() time.Time) Option {
	return func(c *Controller) {
		c.now = fn
	}
}

// Controller owns the command tree and the report of a single run.
type Controller struct {
	logger *zap.Logger
	tree   *command.Tree
	loader *plugin.Loader
	syncer Syncer
	now    func() time.Time
}

// New creates a controller with an empty tree. syncer may be nil when the run
// makes no remote calls.
func New(logger *zap.Logger, registry *plugin.Registry, syncer Syncer, opts ...Option) *Controller {
	tree := command.NewTree(logger)
	c := &Controller{
		logger: logger.Named(loggerName),
		tree:   tree,
		loader: plugin.NewLoader(logger, registry, tree),
		syncer: syncer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Tree() *command.Tree {
	return c.tree
}

// Plan loads the plugins and freezes the tree without contacting Discord.
func (c *Controller) Plan(ctx context.Context, names []string) (*report.Report, error) {
	builder := report.NewBuilder(c.now())
	err := c.load(ctx, builder, names)
	return builder.Publish(c.now()), err
}

// Run loads the plugins then synchronizes every scope, guilds before global. A
// report is always returned. The error is set when the run stopped early; scopes
// not reached are reported as not attempted.
func (c *Controller) Run(ctx context.Context, names []string, scopes []command.Scope) (*report.Report, error) {
	builder := report.NewBuilder(c.now())
	ordered := command.OrderScopes(scopes)

	if err := c.load(ctx, builder, names); err != nil {
		skip(builder, ordered)
		return builder.Publish(c.now()), err
	}

	for i, scope := range ordered {
		if err := ctx.Err(); err != nil {
			c.logger.Warn("run aborted", zap.Error(err))
			skip(builder, ordered[i:])
			return builder.Publish(c.now()), err
		}

		attempt, err := c.syncer.Sync(ctx, scope, c.tree.Resolve(scope))
		builder.AddAttempt(attempt)
		if err != nil {
			c.logger.Error("run aborted", zap.Stringer("scope", scope), zap.Error(err))
			skip(builder, ordered[i+1:])
			return builder.Publish(c.now()), err
		}
	}

	r := builder.Publish(c.now())
	c.logger.Info("run finished", zap.String("status", string(r.Status)), zap.Duration("elapsed", r.Elapsed()))
	return r, nil
}

func (c *Controller) load(ctx context.Context, builder *report.Builder, names []string) error {
	records, err := c.loader.Load(ctx, names)
	builder.SetPlugins(records)
	if err != nil {
		return err
	}

	c.tree.Freeze()
	builder.SetTree(c.tree)
	return nil
}

func skip(builder *report.Builder, scopes []command.Scope) {
	for _, scope := range scopes {
		builder.AddAttempt(report.NotAttempted(scope))
	}
}
