// Package cogs holds the bot's built-in feature modules. Each cog only declares
// its slash commands; handling interactions is the bot's job.
package cogs

import "cogsync/internal/plugin"

// DefaultPlugins are loaded when no plugin list is configured.
var DefaultPlugins = []string{
	GeneralName,
	WelcomeName,
	LogsName,
	ChatName,
	BackupName,
	ModerationName,
}

// Registry returns a registry with every built-in cog.
func Registry() *plugin.Registry {
	registry := plugin.NewRegistry()
	registry.Register(GeneralName, func() plugin.Plugin { return &General{} })
	registry.Register(WelcomeName, func() plugin.Plugin { return &Welcome{} })
	registry.Register(LogsName, func() plugin.Plugin { return &Logs{} })
	registry.Register(ChatName, func() plugin.Plugin { return &Chat{} })
	registry.Register(BackupName, func() plugin.Plugin { return &Backup{} })
	registry.Register(ModerationName, func() plugin.Plugin { return &Moderation{} })
	return registry
}
