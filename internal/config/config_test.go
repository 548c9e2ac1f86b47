package config_test

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"cogsync/internal/config"
	customError "cogsync/pkg/errors"
)

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	for _, key := range []string{
		config.EnvBotToken,
		config.EnvGuildID,
		config.EnvApplicationID,
		config.EnvPlugins,
		config.EnvPluginConfig,
		config.EnvReportBucket,
		config.EnvPort,
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func Test_Load(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvBotToken, "token")
	t.Setenv(config.EnvGuildID, config.MockGuildID)
	t.Setenv(config.EnvPort, "9090")
	t.Setenv(config.EnvPluginConfig, "testdata/plugins.json")

	cfg := config.New()

	require.NoError(t, cfg.Load())
	assert.Equal(t, "token", cfg.Token)
	assert.Equal(t, config.MockGuildID, cfg.GuildID)
	assert.Empty(t, cfg.ApplicationID)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, config.MockPlugins, cfg.Plugins(nil, []string{"default"}))
	assert.NoError(t, cfg.RequireToken())
}

func Test_Load_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := config.New()

	require.NoError(t, cfg.Load())
	assert.Equal(t, config.DefaultPort, cfg.Port)
	assert.Equal(t, []string{"default"}, cfg.Plugins(nil, []string{"default"}))

	var missingErr customError.MissingEnvErr
	require.True(t, errors.As(cfg.RequireToken(), &missingErr))
	assert.Contains(t, missingErr.Error(), config.EnvBotToken)
}

func Test_Load_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		expErrs int
	}{
		{
			name:    "Sad path - Non-numeric guild",
			env:     map[string]string{config.EnvGuildID: "my-guild"},
			expErrs: 1,
		},
		{
			name: "Sad path - Every problem reported",
			env: map[string]string{
				config.EnvGuildID:       "my-guild",
				config.EnvApplicationID: "app",
				config.EnvPort:          "http",
			},
			expErrs: 3,
		},
		{
			name:    "Sad path - Duplicate plugin in env",
			env:     map[string]string{config.EnvPlugins: "general,chat,general"},
			expErrs: 1,
		},
		{
			name:    "Sad path - Duplicate plugin in file",
			env:     map[string]string{config.EnvPluginConfig: "testdata/duplicate.json"},
			expErrs: 1,
		},
		{
			name:    "Sad path - Invalid plugin file",
			env:     map[string]string{config.EnvPluginConfig: "testdata/invalid.json"},
			expErrs: 1,
		},
		{
			name:    "Sad path - Missing plugin file",
			env:     map[string]string{config.EnvPluginConfig: "testdata/missing.json"},
			expErrs: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, val := range tt.env {
				t.Setenv(key, val)
			}

			err := config.New().Load()

			require.Error(t, err)
			assert.Len(t, multierr.Errors(err), tt.expErrs)
		})
	}
}

func Test_Config_Plugins(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvPlugins, " general, ,chat ")
	t.Setenv(config.EnvPluginConfig, "testdata/plugins.json")

	cfg := config.New()
	require.NoError(t, cfg.Load())

	// Env list wins over the file
	assert.Equal(t, []string{"general", "chat"}, cfg.Plugins(nil, nil))
	// Explicit override wins over everything
	assert.Equal(t, []string{"logs"}, cfg.Plugins([]string{"logs"}, nil))
}

func Test_ParsePluginList(t *testing.T) {
	names, err := config.ParsePluginList("a, b,,c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)

	names, err = config.ParsePluginList("")
	require.NoError(t, err)
	assert.Empty(t, names)

	_, err = config.ParsePluginList("a,a")
	assert.Error(t, err)
}

func Test_LoadEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvGuildID, "999")

	require.NoError(t, config.LoadEnvFile("testdata/test.env"))

	// Values already set are kept
	assert.Equal(t, "file-token", os.Getenv(config.EnvBotToken))
	assert.Equal(t, "999", os.Getenv(config.EnvGuildID))

	assert.Error(t, config.LoadEnvFile("testdata/missing.env"))
	// No default file in the package directory
	assert.NoError(t, config.LoadEnvFile(""))
}

func Test_NewTestConfig(t *testing.T) {
	cfg, err := config.NewTestConfig()

	require.NoError(t, err)
	assert.Equal(t, config.MockPlugins, cfg.Plugins(nil, nil))
}
