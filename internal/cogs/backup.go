package cogs

import (
	"github.com/bwmarrin/discordgo"

	"cogsync/internal/discord/command"
	"cogsync/internal/plugin"
)

const (
	BackupName = "backup"

	BackupCommand = "backup"
)

// Ensure Backup implements plugin.Plugin
var _ plugin.Plugin = (*Backup)(nil)

// Backup declares the database backup command. Only administrators see it.
type Backup struct{}

func (b *Backup) Name() string {
	return BackupName
}

func (b *Backup) Setup(r plugin.Registrar) error {
	return r.Add(command.Descriptor{
		Name:                     BackupCommand,
		Description:              "Back up the bot database",
		DefaultMemberPermissions: discordgo.PermissionAdministrator,
		Parameters: []command.Parameter{
			{
				Name:        "action",
				Description: "What to do",
				Type:        discordgo.ApplicationCommandOptionString,
				Required:    true,
				Choices: []command.Choice{
					{Name: "Create", Value: "create"},
					{Name: "List", Value: "list"},
					{Name: "Restore", Value: "restore"},
				},
			},
			{
				Name:        "name",
				Description: "Backup to restore",
				Type:        discordgo.ApplicationCommandOptionString,
			},
		},
	})
}
