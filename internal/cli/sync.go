package cli

import (
	"context"
	"errors"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cogsync/internal/controller"
	"cogsync/internal/discord/command"
	"cogsync/internal/discord/reconcile"
	"cogsync/internal/governor"
	"cogsync/internal/report"
	"cogsync/pkg/discord"
)

const opApplication = "application"

var errRunFailed = errors.New("no scope was synchronized")

func newSyncCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push the declared commands to Discord, guild before global",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.sync(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&a.opts.guild, flagGuild, "", "sync this guild only, unless --global is also given")
	cmd.Flags().BoolVar(&a.opts.global, flagGlobal, false, "sync the global catalog")
	cmd.Flags().BoolVar(&a.opts.clearFirst, flagClearFirst, false, "wipe each remote catalog before pushing")
	return cmd
}

func (a *app) sync(ctx context.Context) error {
	logger := a.cfg.Logger
	defer logger.Sync()

	if err := a.cfg.RequireToken(); err != nil {
		return configError(err)
	}
	scopes, err := a.scopes()
	if err != nil {
		return err
	}

	ctx, cancel := a.runContext(ctx)
	defer cancel()

	session, err := a.deps.NewSession(a.cfg.Token)
	if err != nil {
		return configError(err)
	}
	gov := governor.New(logger, a.deps.GovernorOptions...)

	appID := a.cfg.ApplicationID
	if appID == "" {
		if appID, err = resolveApplicationID(ctx, gov, session); err != nil {
			logger.Error("could not resolve application ID", zap.Error(err))
			return err
		}
		logger.Info("resolved application ID", zap.String("app_id", appID))
	}

	reconcileOpts := append([]reconcile.Option{
		reconcile.WithClearFirst(a.opts.clearFirst),
		reconcile.WithSettleDelay(a.opts.settleDelay),
	}, a.deps.ReconcileOptions...)
	reconciler := reconcile.New(logger, session, appID, gov, reconcileOpts...)

	ctrl := controller.New(logger, a.deps.Registry, reconciler)
	r, runErr := ctrl.Run(ctx, a.plugins(), scopes)

	if err := report.Write(a.deps.Stdout, r, a.format); err != nil {
		logger.Error("could not write report", zap.Error(err))
	}
	a.archive(r)

	if runErr != nil {
		return runErr
	}
	if r.Status == report.StatusFailed {
		return &ExitError{Code: ExitFailed, Err: errRunFailed}
	}
	return nil
}

// scopes picks the targets: --guild and/or --global when given, else the
// configured guild followed by global.
func (a *app) scopes() ([]command.Scope, error) {
	var scopes []command.Scope
	if a.opts.guild != "" {
		if _, err := strconv.ParseUint(a.opts.guild, 10, 64); err != nil {
			return nil, configErrorf("invalid --%s [%s]: not a numeric ID", flagGuild, a.opts.guild)
		}
		scopes = append(scopes, command.Guild(a.opts.guild))
		if a.opts.global {
			scopes = append(scopes, command.Global)
		}
		return scopes, nil
	}

	if !a.opts.global && a.cfg.GuildID != "" {
		scopes = append(scopes, command.Guild(a.cfg.GuildID))
	}
	return append(scopes, command.Global), nil
}

func (a *app) archive(r *report.Report) {
	if a.cfg.ReportBucket == "" {
		return
	}
	if _, err := a.deps.NewArchiver(a.cfg.Logger, a.cfg.ReportBucket).Archive(r); err != nil {
		a.cfg.Logger.Warn("could not archive report", zap.String("bucket", a.cfg.ReportBucket), zap.Error(err))
	}
}

func resolveApplicationID(ctx context.Context, gov *governor.Governor, session discord.SessionIFace) (string, error) {
	var app *discordgo.Application
	_, err := gov.Do(ctx, opApplication, func(context.Context) error {
		var callErr error
		app, callErr = session.Application(discord.CurrentApplication)
		return callErr
	})
	if err != nil {
		return "", err
	}
	return app.ID, nil
}
