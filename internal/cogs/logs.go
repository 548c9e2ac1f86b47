package cogs

import (
	"github.com/bwmarrin/discordgo"

	"cogsync/internal/discord/command"
	"cogsync/internal/plugin"
)

const (
	LogsName = "logs"

	LogsCommand = "logs"
)

// Ensure Logs implements plugin.Plugin
var _ plugin.Plugin = (*Logs)(nil)

type Logs struct{}

func (l *Logs) Name() string {
	return LogsName
}

func (l *Logs) Setup(r plugin.Registrar) error {
	return r.Add(command.Descriptor{
		Name:                     LogsCommand,
		Description:              "Choose where server events are logged",
		DefaultMemberPermissions: discordgo.PermissionViewAuditLogs,
		Parameters: []command.Parameter{
			{
				Name:        "channel",
				Description: "Channel receiving the logs",
				Type:        discordgo.ApplicationCommandOptionChannel,
				Required:    true,
			},
			{
				Name:        "events",
				Description: "Which events to log",
				Type:        discordgo.ApplicationCommandOptionString,
				Choices: []command.Choice{
					{Name: "All", Value: "all"},
					{Name: "Messages", Value: "messages"},
					{Name: "Members", Value: "members"},
					{Name: "Moderation", Value: "moderation"},
				},
			},
		},
	})
}
