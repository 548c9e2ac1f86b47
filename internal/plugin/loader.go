package plugin

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"cogsync/internal/discord/command"
)

const (
	loggerName = "plugin-loader"

	notFoundReason    = "plugin not found"
	nilPluginReason   = "plugin constructor returned nil"
	panicReasonFormat = "panic during setup: %v"
	closedErrorFormat = "plugin [%s] registered commands after setup returned"
)

// Loader loads plugins into a command tree. A failing plugin is recorded and
// contributes nothing; the remaining plugins still load.
type Loader struct {
	logger   *zap.Logger
	registry *Registry
	tree     *command.Tree
}

func NewLoader(logger *zap.Logger, registry *Registry, tree *command.Tree) *Loader {
	return &Loader{
		logger:   logger.Named(loggerName),
		registry: registry,
		tree:     tree,
	}
}

// Load attempts every plugin in order. The returned error is only set when loading
// cannot go on: the context is done or the tree is already frozen.
func (l *Loader) Load(ctx context.Context, names []string) ([]Record, error) {
	l.logger.Info("loading plugins", zap.Strings("plugins", names))

	records := make([]Record, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		rec, err := l.load(name)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}

	loaded := 0
	for _, rec := range records {
		if rec.Loaded() {
			loaded++
		}
	}
	l.logger.Info("plugins loaded", zap.Int("loaded", loaded), zap.Int("failed", len(records)-loaded))
	return records, nil
}

func (l *Loader) load(name string) (Record, error) {
	factory, ok := l.registry.lookup(name)
	if !ok {
		return l.failed(name, errors.New(notFoundReason)), nil
	}

	// Commands are staged so a failed setup leaves the tree untouched
	staged := &stage{plugin: name}
	err := setup(factory, staged)
	staged.closed = true
	if err != nil {
		return l.failed(name, err), nil
	}

	for _, d := range staged.descs {
		if err := l.tree.Register(name, d); err != nil {
			var frozenErr *command.FrozenTreeError
			if errors.As(err, &frozenErr) {
				return Record{}, err
			}
			return l.failed(name, err), nil
		}
	}

	l.logger.Info("plugin loaded", zap.String("plugin", name), zap.Int("commands", len(staged.descs)))
	return Record{
		Name:     name,
		Status:   StatusLoaded,
		Commands: len(staged.descs),
	}, nil
}

func (l *Loader) failed(name string, err error) Record {
	l.logger.Error("could not load plugin", zap.String("plugin", name), zap.Error(err))
	return Record{
		Name:   name,
		Status: StatusFailed,
		Reason: err.Error(),
	}
}

func setup(factory func() Plugin, r Registrar) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf(panicReasonFormat, p)
		}
	}()

	p := factory()
	if p == nil {
		return errors.New(nilPluginReason)
	}
	return p.Setup(r)
}

type stage struct {
	plugin string
	descs  []command.Descriptor
	closed bool
}

func (s *stage) Add(descs ...command.Descriptor) error {
	if s.closed {
		return fmt.Errorf(closedErrorFormat, s.plugin)
	}
	for _, d := range descs {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	s.descs = append(s.descs, descs...)
	return nil
}
