package cogs

import (
	"github.com/bwmarrin/discordgo"

	"cogsync/internal/discord/command"
	"cogsync/internal/plugin"
)

const (
	WelcomeName = "welcome"

	WelcomeCommand = "welcome"
)

// Ensure Welcome implements plugin.Plugin
var _ plugin.Plugin = (*Welcome)(nil)

type Welcome struct{}

func (w *Welcome) Name() string {
	return WelcomeName
}

func (w *Welcome) Setup(r plugin.Registrar) error {
	return r.Add(command.Descriptor{
		Name:                     WelcomeCommand,
		Description:              "Configure the welcome message for new members",
		DefaultMemberPermissions: discordgo.PermissionManageServer,
		Parameters: []command.Parameter{
			{
				Name:        "channel",
				Description: "Channel to greet new members in",
				Type:        discordgo.ApplicationCommandOptionChannel,
				Required:    true,
			},
			{
				Name:        "message",
				Description: "Greeting text, {user} is replaced by a mention",
				Type:        discordgo.ApplicationCommandOptionString,
			},
		},
	})
}
