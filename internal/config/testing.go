package config

import (
	_ "embed"

	"go.uber.org/zap"
)

//go:embed testdata/plugins.json
var mockPluginConfigFile []byte

// Plugins listed in testdata/plugins.json
var MockPlugins = []string{"general", "chat", "moderation"}

const (
	MockBotToken = "mock-token"
	MockGuildID  = "123456789012345678"
	MockAppID    = "876543210987654321"
)

// NewTestConfig returns a config with a silent logger and mock settings.
func NewTestConfig() (*Config, error) {
	cfg := &Config{
		Logger:        zap.NewNop(),
		Token:         MockBotToken,
		GuildID:       MockGuildID,
		ApplicationID: MockAppID,
		Port:          DefaultPort,
	}
	if err := cfg.loadPluginConfigFile(mockPluginConfigFile); err != nil {
		return nil, err
	}
	return cfg, nil
}
