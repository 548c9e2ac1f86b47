package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
)

const (
	SessionApplicationCommandsMethod             = "ApplicationCommands"
	SessionApplicationCommandBulkOverwriteMethod = "ApplicationCommandBulkOverwrite"
	SessionApplicationMethod                     = "Application"
)

// Ensure MockDiscordSession implements SessionIFace
var _ SessionIFace = (*MockDiscordSession)(nil)

type MockDiscordSession struct {
	mock.Mock
}

func (m *MockDiscordSession) ApplicationCommands(appID string, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	args := m.Called(appID, guildID)
	if cmds := args.Get(0); cmds != nil {
		return cmds.([]*discordgo.ApplicationCommand), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDiscordSession) ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	args := m.Called(appID, guildID, commands)
	if cmds := args.Get(0); cmds != nil {
		return cmds.([]*discordgo.ApplicationCommand), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDiscordSession) Application(appID string) (*discordgo.Application, error) {
	args := m.Called(appID)
	if app := args.Get(0); app != nil {
		return app.(*discordgo.Application), args.Error(1)
	}
	return nil, args.Error(1)
}

// Ensure FakeCatalog implements SessionIFace
var _ SessionIFace = (*FakeCatalog)(nil)

// FakeCatalog keeps remote catalogs in memory with bulk overwrite semantics.
// The empty guild ID holds the global catalog.
type FakeCatalog struct {
	AppID    string
	Catalogs map[string][]*discordgo.ApplicationCommand

	// Every overwrite in call order
	Overwrites []FakeOverwrite
}

type FakeOverwrite struct {
	GuildID string
	Names   []string
}

func NewFakeCatalog(appID string) *FakeCatalog {
	return &FakeCatalog{
		AppID:    appID,
		Catalogs: make(map[string][]*discordgo.ApplicationCommand),
	}
}

func (f *FakeCatalog) ApplicationCommands(appID string, guildID string, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	return f.Catalogs[guildID], nil
}

func (f *FakeCatalog) ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	names := make([]string, len(commands))
	created := make([]*discordgo.ApplicationCommand, len(commands))
	for i, cmd := range commands {
		names[i] = cmd.Name
		c := *cmd
		c.ApplicationID = appID
		c.GuildID = guildID
		created[i] = &c
	}
	f.Catalogs[guildID] = created
	f.Overwrites = append(f.Overwrites, FakeOverwrite{GuildID: guildID, Names: names})
	return created, nil
}

func (f *FakeCatalog) Application(appID string) (*discordgo.Application, error) {
	return &discordgo.Application{ID: f.AppID}, nil
}

// Names lists the command names currently served for a guild, or globally.
func (f *FakeCatalog) Names(guildID string) []string {
	names := make([]string, 0, len(f.Catalogs[guildID]))
	for _, cmd := range f.Catalogs[guildID] {
		names = append(names, cmd.Name)
	}
	return names
}
