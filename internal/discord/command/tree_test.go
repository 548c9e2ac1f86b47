package command

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDesc(name string, scope Scope) Descriptor {
	return Descriptor{
		Name:        name,
		Description: "Test command " + name,
		Scope:       scope,
	}
}

func names(descs []Descriptor) []string {
	out := make([]string, len(descs))
	for i, d := range descs {
		out[i] = d.Name
	}
	return out
}

func Test_Tree_Register(t *testing.T) {
	tree := NewTree(zap.NewNop())

	require.NoError(t, tree.Register("a", newDesc("ping", Global)))
	require.NoError(t, tree.Register("a", newDesc("help", Global)))
	require.NoError(t, tree.Register("b", newDesc("ping", Guild("100"))))

	assert.Equal(t, 3, tree.Size())
	assert.Equal(t, []string{"help", "ping"}, names(tree.Commands(Global)))
	assert.Equal(t, []string{"ping"}, names(tree.Commands(Guild("100"))))
	assert.Empty(t, tree.Collisions())
}

func Test_Tree_Register_LastWriterWins(t *testing.T) {
	tree := NewTree(zap.NewNop())

	first := newDesc("ping", Global)
	second := newDesc("ping", Global)
	second.Description = "Replacement"

	require.NoError(t, tree.Register("a", first))
	require.NoError(t, tree.Register("b", second))

	// Every name appears exactly once per scope
	cmds := tree.Commands(Global)
	require.Len(t, cmds, 1)
	assert.Equal(t, "Replacement", cmds[0].Description)

	owner, ok := tree.Owner(Global, "ping")
	require.True(t, ok)
	assert.Equal(t, "b", owner)

	assert.Equal(t, []Collision{{Scope: Global, Name: "ping", Previous: "a", Plugin: "b"}}, tree.Collisions())
}

func Test_Tree_Register_Invalid(t *testing.T) {
	tree := NewTree(zap.NewNop())

	err := tree.Register("a", newDesc("Not Valid", Global))

	require.Error(t, err)
	assert.Zero(t, tree.Size())
}

func Test_Tree_Freeze(t *testing.T) {
	tree := NewTree(zap.NewNop())
	require.NoError(t, tree.Register("a", newDesc("ping", Global)))

	tree.Freeze()
	tree.Freeze()
	require.True(t, tree.Frozen())

	tests := []struct {
		name string
		do   func() error
	}{
		{
			name: "Sad path - Register after freeze",
			do:   func() error { return tree.Register("a", newDesc("late", Global)) },
		},
		{
			name: "Sad path - Replace after freeze",
			do:   func() error { return tree.Register("b", newDesc("ping", Global)) },
		},
		{
			name: "Sad path - Clear after freeze",
			do:   func() error { return tree.Clear(Global) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.do()

			var frozenErr *FrozenTreeError
			require.True(t, errors.As(err, &frozenErr))

			// Tree is unchanged
			assert.Equal(t, 1, tree.Size())
			owner, _ := tree.Owner(Global, "ping")
			assert.Equal(t, "a", owner)
			assert.Empty(t, tree.Collisions())
		})
	}
}

func Test_Tree_Clear(t *testing.T) {
	tree := NewTree(zap.NewNop())
	require.NoError(t, tree.Register("a", newDesc("ping", Global)))
	require.NoError(t, tree.Register("a", newDesc("ping", Guild("100"))))

	require.NoError(t, tree.Clear(Global))

	assert.Empty(t, tree.Commands(Global))
	assert.Len(t, tree.Commands(Guild("100")), 1)
	assert.Equal(t, 1, tree.Size())
}

func Test_Tree_Resolve(t *testing.T) {
	tree := NewTree(zap.NewNop())
	require.NoError(t, tree.Register("a", newDesc("ping", Global)))
	require.NoError(t, tree.Register("a", newDesc("help", Global)))

	guildPing := newDesc("ping", Guild("100"))
	guildPing.Description = "Guild ping"
	require.NoError(t, tree.Register("b", guildPing))
	require.NoError(t, tree.Register("b", newDesc("backup", Guild("100"))))
	require.NoError(t, tree.Register("c", newDesc("other", Guild("200"))))
	tree.Freeze()

	assert.Equal(t, []string{"help", "ping"}, names(tree.Resolve(Global)))

	guild := tree.Resolve(Guild("100"))
	assert.Equal(t, []string{"backup", "help", "ping"}, names(guild))
	assert.Equal(t, "Guild ping", guild[2].Description)

	assert.Equal(t, []string{"help", "ping"}, names(tree.Resolve(Guild("300"))))
}

func Test_Tree_Resolve_Empty(t *testing.T) {
	tree := NewTree(zap.NewNop())
	tree.Freeze()

	descs := tree.Resolve(Global)

	require.NotNil(t, descs)
	assert.Empty(t, descs)
	assert.Empty(t, tree.Scopes())
}

func Test_Tree_Scopes(t *testing.T) {
	tree := NewTree(zap.NewNop())
	require.NoError(t, tree.Register("a", newDesc("ping", Global)))
	require.NoError(t, tree.Register("a", newDesc("ping", Guild("200"))))
	require.NoError(t, tree.Register("a", newDesc("ping", Guild("100"))))

	assert.Equal(t, []Scope{Guild("100"), Guild("200"), Global}, tree.Scopes())
}

func Test_OrderScopes(t *testing.T) {
	tests := []struct {
		name   string
		scopes []Scope
		exp    []Scope
	}{
		{
			name:   "Guild before global",
			scopes: []Scope{Global, Guild("100")},
			exp:    []Scope{Guild("100"), Global},
		},
		{
			name:   "Guild order is preserved",
			scopes: []Scope{Guild("2"), Global, Guild("1")},
			exp:    []Scope{Guild("2"), Guild("1"), Global},
		},
		{
			name:   "Duplicates dropped",
			scopes: []Scope{Global, Global, Guild("1"), Guild("1")},
			exp:    []Scope{Guild("1"), Global},
		},
		{
			name:   "Empty",
			scopes: nil,
			exp:    []Scope{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, OrderScopes(tt.scopes))
		})
	}
}

func Test_Scope_String(t *testing.T) {
	assert.Equal(t, "GLOBAL", Global.String())
	assert.Equal(t, "GUILD(100)", Guild("100").String())
	assert.True(t, Scope{}.IsGlobal())
}

func Test_Descriptor_Validate(t *testing.T) {
	longText := ""
	for i := 0; i < 101; i++ {
		longText += "x"
	}
	tooManyChoices := make([]Choice, 26)
	for i := range tooManyChoices {
		tooManyChoices[i] = Choice{Name: "c", Value: i}
	}

	tests := []struct {
		name   string
		desc   Descriptor
		expErr string
	}{
		{
			name: "Happy path",
			desc: Descriptor{
				Name:        "ask",
				Description: "Ask a question",
				Parameters: []Parameter{
					{Name: "prompt", Description: "The prompt", Type: discordgo.ApplicationCommandOptionString, Required: true},
					{Name: "private", Description: "Only you see it", Type: discordgo.ApplicationCommandOptionBoolean},
				},
			},
		},
		{
			name:   "Sad path - Uppercase name",
			desc:   Descriptor{Name: "Ask", Description: "desc"},
			expErr: "invalid command name",
		},
		{
			name:   "Sad path - Missing description",
			desc:   Descriptor{Name: "ask"},
			expErr: "missing description",
		},
		{
			name:   "Sad path - Long description",
			desc:   Descriptor{Name: "ask", Description: longText},
			expErr: "description longer than 100",
		},
		{
			name: "Sad path - Duplicate parameter",
			desc: Descriptor{Name: "ask", Description: "desc", Parameters: []Parameter{
				{Name: "p", Description: "d"},
				{Name: "p", Description: "d"},
			}},
			expErr: "duplicate parameter",
		},
		{
			name: "Sad path - Required after optional",
			desc: Descriptor{Name: "ask", Description: "desc", Parameters: []Parameter{
				{Name: "a", Description: "d"},
				{Name: "b", Description: "d", Required: true},
			}},
			expErr: "follows an optional one",
		},
		{
			name: "Sad path - Too many choices",
			desc: Descriptor{Name: "ask", Description: "desc", Parameters: []Parameter{
				{Name: "a", Description: "d", Choices: tooManyChoices},
			}},
			expErr: "more than 25 choices",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.desc.Validate()

			if tt.expErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expErr)
			}
		})
	}
}

func Test_Descriptor_ApplicationCommand(t *testing.T) {
	d := Descriptor{
		Name:        "mode",
		Description: "Set mode",
		Parameters: []Parameter{
			{
				Name:        "value",
				Description: "Mode value",
				Type:        discordgo.ApplicationCommandOptionString,
				Required:    true,
				Choices:     []Choice{{Name: "Fast", Value: "fast"}},
			},
		},
		DefaultMemberPermissions: discordgo.PermissionAdministrator,
	}

	cmd := d.ApplicationCommand()

	assert.Equal(t, "mode", cmd.Name)
	assert.Equal(t, discordgo.ChatApplicationCommand, cmd.Type)
	require.NotNil(t, cmd.DefaultMemberPermissions)
	assert.Equal(t, int64(discordgo.PermissionAdministrator), *cmd.DefaultMemberPermissions)
	require.Len(t, cmd.Options, 1)
	assert.True(t, cmd.Options[0].Required)
	require.Len(t, cmd.Options[0].Choices, 1)
	assert.Equal(t, "fast", cmd.Options[0].Choices[0].Value)
}

func Test_ApplicationCommands_Empty(t *testing.T) {
	cmds := ApplicationCommands(nil)

	require.NotNil(t, cmds)
	assert.Empty(t, cmds)
}
