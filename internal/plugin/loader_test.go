package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cogsync/internal/discord/command"
)

func Test_Loader_Load(t *testing.T) {
	mockErr := errors.New("mock error")

	tests := []struct {
		name       string
		plugins    []*MockPlugin
		load       []string
		expRecords []Record
		expSize    int
	}{
		{
			name: "Happy path",
			plugins: []*MockPlugin{
				{PluginName: "a", Descs: MockCommands("a", 2, command.Global)},
				{PluginName: "b", Descs: MockCommands("b", 3, command.Global)},
			},
			load: []string{"a", "b"},
			expRecords: []Record{
				{Name: "a", Status: StatusLoaded, Commands: 2},
				{Name: "b", Status: StatusLoaded, Commands: 3},
			},
			expSize: 5,
		},
		{
			name: "Sad path - Unknown plugin",
			plugins: []*MockPlugin{
				{PluginName: "a", Descs: MockCommands("a", 2, command.Global)},
				{PluginName: "c", Descs: MockCommands("c", 1, command.Global)},
			},
			load: []string{"a", "bad", "c"},
			expRecords: []Record{
				{Name: "a", Status: StatusLoaded, Commands: 2},
				{Name: "bad", Status: StatusFailed, Reason: notFoundReason},
				{Name: "c", Status: StatusLoaded, Commands: 1},
			},
			expSize: 3,
		},
		{
			name: "Sad path - Setup error",
			plugins: []*MockPlugin{
				{PluginName: "a", Descs: MockCommands("a", 1, command.Global)},
				{PluginName: "broken", SetupErr: mockErr},
			},
			load: []string{"broken", "a"},
			expRecords: []Record{
				{Name: "broken", Status: StatusFailed, Reason: mockErr.Error()},
				{Name: "a", Status: StatusLoaded, Commands: 1},
			},
			expSize: 1,
		},
		{
			name: "Sad path - Setup panics",
			plugins: []*MockPlugin{
				{PluginName: "panics", Panic: true},
				{PluginName: "a", Descs: MockCommands("a", 1, command.Global)},
			},
			load: []string{"panics", "a"},
			expRecords: []Record{
				{Name: "panics", Status: StatusFailed, Reason: "panic during setup: mock plugin panic"},
				{Name: "a", Status: StatusLoaded, Commands: 1},
			},
			expSize: 1,
		},
		{
			name: "Sad path - Invalid command fails whole plugin",
			plugins: []*MockPlugin{
				{PluginName: "invalid", Descs: append(
					MockCommands("ok", 2, command.Global),
					command.Descriptor{Name: "Bad Name", Description: "desc"},
				)},
			},
			load: []string{"invalid"},
			expRecords: []Record{
				{Name: "invalid", Status: StatusFailed, Reason: `invalid command name [Bad Name]: must match ^[-_a-z0-9]{1,32}$`},
			},
			expSize: 0,
		},
		{
			name:       "Empty plugin list",
			load:       nil,
			expRecords: []Record{},
			expSize:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := command.NewTree(zap.NewNop())
			l := NewLoader(zap.NewNop(), NewMockRegistry(tt.plugins...), tree)

			records, err := l.Load(context.Background(), tt.load)

			require.NoError(t, err)
			assert.Equal(t, tt.expRecords, records)
			assert.Equal(t, tt.expSize, tree.Size())
		})
	}
}

func Test_Loader_Load_Collision(t *testing.T) {
	shared := command.Descriptor{Name: "ping", Description: "First ping"}
	replacement := command.Descriptor{Name: "ping", Description: "Second ping"}

	tree := command.NewTree(zap.NewNop())
	l := NewLoader(zap.NewNop(), NewMockRegistry(
		&MockPlugin{PluginName: "a", Descs: []command.Descriptor{shared}},
		&MockPlugin{PluginName: "b", Descs: []command.Descriptor{replacement}},
	), tree)

	records, err := l.Load(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, tree.Size())
	assert.Equal(t, "Second ping", tree.Commands(command.Global)[0].Description)
	assert.Equal(t, []command.Collision{{Scope: command.Global, Name: "ping", Previous: "a", Plugin: "b"}}, tree.Collisions())
}

func Test_Loader_Load_FailureKeepsOtherCommands(t *testing.T) {
	tree := command.NewTree(zap.NewNop())
	l := NewLoader(zap.NewNop(), NewMockRegistry(
		&MockPlugin{PluginName: "a", Descs: MockCommands("a", 2, command.Global)},
		&MockPlugin{PluginName: "b", SetupErr: errors.New("mock error"), Descs: MockCommands("a", 2, command.Global)},
	), tree)

	_, err := l.Load(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, 2, tree.Size())
	for _, d := range tree.Commands(command.Global) {
		owner, ok := tree.Owner(command.Global, d.Name)
		require.True(t, ok)
		assert.Equal(t, "a", owner)
	}
	assert.Empty(t, tree.Collisions())
}

func Test_Loader_Load_FrozenTree(t *testing.T) {
	tree := command.NewTree(zap.NewNop())
	tree.Freeze()
	l := NewLoader(zap.NewNop(), NewMockRegistry(
		&MockPlugin{PluginName: "a", Descs: MockCommands("a", 1, command.Global)},
	), tree)

	records, err := l.Load(context.Background(), []string{"a"})

	var frozenErr *command.FrozenTreeError
	require.True(t, errors.As(err, &frozenErr))
	assert.Empty(t, records)
	assert.Zero(t, tree.Size())
}

func Test_Loader_Load_RegistrarUsedAfterSetup(t *testing.T) {
	p := &MockPlugin{PluginName: "a", Descs: MockCommands("a", 1, command.Global)}
	tree := command.NewTree(zap.NewNop())
	l := NewLoader(zap.NewNop(), NewMockRegistry(p), tree)

	_, err := l.Load(context.Background(), []string{"a"})
	require.NoError(t, err)

	err = p.Registrar.Add(MockCommands("late", 1, command.Global)...)

	require.Error(t, err)
	assert.Equal(t, 1, tree.Size())
}

func Test_Loader_Load_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tree := command.NewTree(zap.NewNop())
	l := NewLoader(zap.NewNop(), NewMockRegistry(
		&MockPlugin{PluginName: "a", Descs: MockCommands("a", 1, command.Global)},
	), tree)

	records, err := l.Load(ctx, []string{"a"})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, records)
}

func Test_Registry_Names(t *testing.T) {
	r := NewRegistry()
	r.Register("b", func() Plugin { return nil })
	r.Register("a", func() Plugin { return nil })
	r.Register("b", func() Plugin { return nil })

	assert.Equal(t, []string{"b", "a"}, r.Names())
}

func Test_Loader_Load_NilPlugin(t *testing.T) {
	r := NewRegistry()
	r.Register("nil", func() Plugin { return nil })
	l := NewLoader(zap.NewNop(), r, command.NewTree(zap.NewNop()))

	records, err := l.Load(context.Background(), []string{"nil"})

	require.NoError(t, err)
	assert.Equal(t, []Record{{Name: "nil", Status: StatusFailed, Reason: nilPluginReason}}, records)
}
