package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	customError "cogsync/pkg/errors"
)

const (
	EnvBotToken      = "DISCORD_TOKEN"
	EnvGuildID       = "GUILD_ID"
	EnvApplicationID = "APPLICATION_ID"
	EnvPlugins       = "PLUGINS"
	EnvPluginConfig  = "PLUGIN_CONFIG_PATH"
	EnvReportBucket  = "REPORT_BUCKET"
	EnvPort          = "PORT"
	EnvLogLevel      = "LOG_LEVEL"

	DefaultEnvFile = ".env"
	DefaultPort    = "8080"

	pluginSeparator = ","
)

type Config struct {
	Logger *zap.Logger

	// Env variables
	Token         string
	GuildID       string
	ApplicationID string
	ReportBucket  string
	Port          string

	plugins []string
}

func New() *Config {
	return &Config{
		Logger: NewLogger(os.Getenv(EnvLogLevel)),
		Port:   DefaultPort,
	}
}

// NewLogger builds the production logger. Unknown levels fall back to info.
func NewLogger(level string) *zap.Logger {
	logCfg := zap.NewProductionConfig()
	logCfg.DisableStacktrace = true
	if level != "" {
		if lvl, err := zap.ParseAtomicLevel(level); err == nil {
			logCfg.Level = lvl
		}
	}
	logger, _ := logCfg.Build()
	return logger
}

// LoadEnvFile adds the variables of a dotenv file to the environment without
// overriding ones already set. An empty path loads .env when it exists.
func LoadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(DefaultEnvFile); errors.Is(err, os.ErrNotExist) {
			return nil
		}
		path = DefaultEnvFile
	}
	return godotenv.Load(path)
}

// Load reads every setting from the environment. All problems are reported at once.
func (c *Config) Load() error {
	var errs error

	c.Token = strings.TrimSpace(os.Getenv(EnvBotToken))
	c.ReportBucket = os.Getenv(EnvReportBucket)

	c.GuildID = strings.TrimSpace(os.Getenv(EnvGuildID))
	if err := checkSnowflake(EnvGuildID, c.GuildID); err != nil {
		errs = multierr.Append(errs, err)
	}
	c.ApplicationID = strings.TrimSpace(os.Getenv(EnvApplicationID))
	if err := checkSnowflake(EnvApplicationID, c.ApplicationID); err != nil {
		errs = multierr.Append(errs, err)
	}

	if port := os.Getenv(EnvPort); port != "" {
		if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
			errs = multierr.Append(errs, customError.InvalidEnvErr{Key: EnvPort, Value: port, Reason: "not a TCP port"})
		} else {
			c.Port = port
		}
	}

	if err := c.loadPlugins(); err != nil {
		errs = multierr.Append(errs, err)
	}

	return errs
}

// RequireToken fails when no bot token is configured.
func (c *Config) RequireToken() error {
	if c.Token == "" {
		return customError.MissingEnvErr{EnvMap: map[string]string{
			EnvBotToken: c.Token,
		}}
	}
	return nil
}

// Plugins returns the plugins to load: the override if given, else the
// configured list, else the defaults.
func (c *Config) Plugins(override []string, defaults []string) []string {
	switch {
	case len(override) > 0:
		return override
	case len(c.plugins) > 0:
		return c.plugins
	default:
		return defaults
	}
}

// ParsePluginList splits a comma separated list, dropping blanks. Repeated names
// are rejected.
func ParsePluginList(list string) ([]string, error) {
	var names []string
	for _, name := range strings.Split(list, pluginSeparator) {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names, checkDuplicates(names)
}

func (c *Config) loadPlugins() error {
	if list, ok := os.LookupEnv(EnvPlugins); ok && strings.TrimSpace(list) != "" {
		names, err := ParsePluginList(list)
		if err != nil {
			return customError.InvalidEnvErr{Key: EnvPlugins, Value: list, Reason: err.Error()}
		}
		c.plugins = names
		return nil
	}

	filePath, ok := os.LookupEnv(EnvPluginConfig)
	if !ok || filePath == "" {
		return nil
	}
	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return c.loadPluginConfigFile(fileData)
}

func (c *Config) loadPluginConfigFile(fileData []byte) error {
	var names []string
	if err := json.Unmarshal(fileData, &names); err != nil {
		return fmt.Errorf("invalid plugin config: %w", err)
	}
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	if err := checkDuplicates(names); err != nil {
		return err
	}
	c.plugins = names
	return nil
}

func checkDuplicates(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("plugin listed more than once: [%s]", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func checkSnowflake(key, value string) error {
	if value == "" {
		return nil
	}
	if _, err := strconv.ParseUint(value, 10, 64); err != nil {
		return customError.InvalidEnvErr{Key: key, Value: value, Reason: "not a numeric ID"}
	}
	return nil
}
