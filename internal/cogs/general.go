package cogs

import (
	"github.com/bwmarrin/discordgo"

	"cogsync/internal/discord/command"
	"cogsync/internal/plugin"
)

const (
	GeneralName = "general"

	PingCommand   = "ping"
	HelpCommand   = "help"
	RollCommand   = "roll"
	RemindCommand = "remind"
	AboutCommand  = "about"
)

// Ensure General implements plugin.Plugin
var _ plugin.Plugin = (*General)(nil)

type General struct{}

func (g *General) Name() string {
	return GeneralName
}

func (g *General) Setup(r plugin.Registrar) error {
	return r.Add(
		command.Descriptor{
			Name:        PingCommand,
			Description: "Check that the bot is responding",
		},
		command.Descriptor{
			Name:        HelpCommand,
			Description: "List the available commands",
			Parameters: []command.Parameter{
				{
					Name:        "command",
					Description: "Show help for a single command",
					Type:        discordgo.ApplicationCommandOptionString,
				},
			},
		},
		command.Descriptor{
			Name:        RollCommand,
			Description: "Roll dice",
			Parameters: []command.Parameter{
				{
					Name:        "sides",
					Description: "Sides per die",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
				{
					Name:        "count",
					Description: "Number of dice",
					Type:        discordgo.ApplicationCommandOptionInteger,
				},
			},
		},
		command.Descriptor{
			Name:        RemindCommand,
			Description: "Set a reminder",
			Parameters: []command.Parameter{
				{
					Name:        "minutes",
					Description: "Minutes from now",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
				{
					Name:        "message",
					Description: "What to be reminded of",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
			},
		},
		command.Descriptor{
			Name:        AboutCommand,
			Description: "Show information about the bot",
		},
	)
}
