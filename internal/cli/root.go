package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cogsync/internal/cogs"
	"cogsync/internal/config"
	"cogsync/internal/discord/reconcile"
	"cogsync/internal/governor"
	"cogsync/internal/plugin"
	"cogsync/internal/report"
	"cogsync/pkg/discord"
)

const (
	flagPlugins     = "plugins"
	flagFormat      = "format"
	flagTimeout     = "timeout"
	flagSettleDelay = "settle-delay"
	flagEnvFile     = "env-file"
	flagGuild       = "guild"
	flagGlobal      = "global"
	flagClearFirst  = "clear-first"
)

// Archiver stores published reports.
type Archiver interface {
	Archive(r *report.Report) (string, error)
}

// Ensure report.Archiver implements Archiver
var _ Archiver = (*report.Archiver)(nil)

// Deps are the collaborators of the commands, replaced in tests.
type Deps struct {
	Stdout io.Writer
	Stderr io.Writer

	Registry    *plugin.Registry
	NewLogger   func(level string) *zap.Logger
	NewSession  func(token string) (discord.SessionIFace, error)
	NewArchiver func(logger *zap.Logger, bucket string) Archiver

	GovernorOptions  []governor.Option
	ReconcileOptions []reconcile.Option
}

func DefaultDeps() Deps {
	return Deps{
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Registry:  cogs.Registry(),
		NewLogger: config.NewLogger,
		NewSession: func(token string) (discord.SessionIFace, error) {
			return discord.NewSession(token)
		},
		NewArchiver: func(logger *zap.Logger, bucket string) Archiver {
			return report.NewArchiver(logger, bucket)
		},
	}
}

type options struct {
	plugins     []string
	format      string
	timeout     time.Duration
	settleDelay time.Duration
	envFile     string

	guild      string
	global     bool
	clearFirst bool
}

// app holds what every subcommand shares once flags and env are parsed.
type app struct {
	deps   Deps
	opts   *options
	cfg    *config.Config
	format report.Format
}

func NewRootCmd(deps Deps) *cobra.Command {
	a := &app{deps: deps, opts: &options{}}

	root := &cobra.Command{
		Use:           "cogsync",
		Short:         "Synchronize the bot's slash commands with Discord",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return configError(err)
	})

	flags := root.PersistentFlags()
	flags.StringSliceVar(&a.opts.plugins, flagPlugins, nil, "plugins to load, overrides "+config.EnvPlugins)
	flags.StringVar(&a.opts.format, flagFormat, string(report.FormatText), "report format: text or json")
	flags.DurationVar(&a.opts.timeout, flagTimeout, 0, "abort the run after this long, 0 for no limit")
	flags.DurationVar(&a.opts.settleDelay, flagSettleDelay, reconcile.DefaultSettleDelay, "pause between clear and push")
	flags.StringVar(&a.opts.envFile, flagEnvFile, "", "dotenv file to load, defaults to "+config.DefaultEnvFile+" when present")

	root.AddCommand(newSyncCmd(a), newTestCmd(a), newKeepaliveCmd(a))
	return root
}

func (a *app) setup() error {
	if err := config.LoadEnvFile(a.opts.envFile); err != nil {
		return configError(err)
	}

	a.cfg = config.New()
	a.cfg.Logger = a.deps.NewLogger(os.Getenv(config.EnvLogLevel))
	if err := a.cfg.Load(); err != nil {
		a.cfg.Logger.Error("invalid configuration", zap.Error(err))
		return configError(err)
	}

	format, err := report.ParseFormat(a.opts.format)
	if err != nil {
		return configError(err)
	}
	a.format = format

	if a.opts.settleDelay <= 0 || a.opts.settleDelay > reconcile.MaxSettleDelay {
		return configErrorf("invalid --%s [%s]: must be above 0 and at most %s", flagSettleDelay, a.opts.settleDelay, reconcile.MaxSettleDelay)
	}

	names, err := config.ParsePluginList(strings.Join(a.opts.plugins, ","))
	if err != nil {
		return configError(err)
	}
	a.opts.plugins = names
	return nil
}

func (a *app) plugins() []string {
	return a.cfg.Plugins(a.opts.plugins, cogs.DefaultPlugins)
}

// runContext applies the --timeout deadline.
func (a *app) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.opts.timeout > 0 {
		return context.WithTimeout(ctx, a.opts.timeout)
	}
	return context.WithCancel(ctx)
}

// Execute runs the CLI and returns the process exit code. SIGINT and SIGTERM
// cancel the run.
func Execute() int {
	deps := DefaultDeps()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd(deps).ExecuteContext(ctx)
	code := ExitCode(err)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "cogsync: %v (exit %d)\n", err, code)
	}
	return code
}
