package cogs

import (
	"github.com/bwmarrin/discordgo"

	"cogsync/internal/discord/command"
	"cogsync/internal/plugin"
)

const (
	ModerationName = "moderation"

	KickCommand  = "kick"
	BanCommand   = "ban"
	MuteCommand  = "mute"
	PurgeCommand = "purge"
)

// Ensure Moderation implements plugin.Plugin
var _ plugin.Plugin = (*Moderation)(nil)

type Moderation struct{}

func (m *Moderation) Name() string {
	return ModerationName
}

func (m *Moderation) Setup(r plugin.Registrar) error {
	return r.Add(
		command.Descriptor{
			Name:                     KickCommand,
			Description:              "Kick a member",
			DefaultMemberPermissions: discordgo.PermissionKickMembers,
			Parameters:               []command.Parameter{memberParameter, reasonParameter},
		},
		command.Descriptor{
			Name:                     BanCommand,
			Description:              "Ban a member",
			DefaultMemberPermissions: discordgo.PermissionBanMembers,
			Parameters:               []command.Parameter{memberParameter, reasonParameter},
		},
		command.Descriptor{
			Name:                     MuteCommand,
			Description:              "Time out a member",
			DefaultMemberPermissions: discordgo.PermissionModerateMembers,
			Parameters: []command.Parameter{
				memberParameter,
				{
					Name:        "minutes",
					Description: "Length of the timeout",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
				reasonParameter,
			},
		},
		command.Descriptor{
			Name:                     PurgeCommand,
			Description:              "Delete recent messages in this channel",
			DefaultMemberPermissions: discordgo.PermissionManageMessages,
			Parameters: []command.Parameter{
				{
					Name:        "count",
					Description: "How many messages",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
			},
		},
	)
}

var memberParameter = command.Parameter{
	Name:        "member",
	Description: "Member to act on",
	Type:        discordgo.ApplicationCommandOptionUser,
	Required:    true,
}

var reasonParameter = command.Parameter{
	Name:        "reason",
	Description: "Shown in the audit log",
	Type:        discordgo.ApplicationCommandOptionString,
}
