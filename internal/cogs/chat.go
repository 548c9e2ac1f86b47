package cogs

import (
	"github.com/bwmarrin/discordgo"

	"cogsync/internal/discord/command"
	"cogsync/internal/plugin"
)

const (
	ChatName = "chat"

	ChatCommand      = "chat"
	ChatResetCommand = "chat-reset"
)

// Ensure Chat implements plugin.Plugin
var _ plugin.Plugin = (*Chat)(nil)

// Chat declares the AI conversation commands.
type Chat struct{}

func (c *Chat) Name() string {
	return ChatName
}

func (c *Chat) Setup(r plugin.Registrar) error {
	return r.Add(
		command.Descriptor{
			Name:        ChatCommand,
			Description: "Talk with the assistant",
			Parameters: []command.Parameter{
				{
					Name:        "prompt",
					Description: "Your message",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
				{
					Name:        "private",
					Description: "Only show the answer to you",
					Type:        discordgo.ApplicationCommandOptionBoolean,
				},
			},
		},
		command.Descriptor{
			Name:        ChatResetCommand,
			Description: "Forget the conversation so far",
		},
	)
}
