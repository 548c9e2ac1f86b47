package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cogsync/internal/controller"
	"cogsync/internal/report"
)

var errPluginsFailed = errors.New("some plugins failed to load")

func newTestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Load the plugins and print the command tree without contacting Discord",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := a.cfg.Logger
			defer logger.Sync()

			ctx, cancel := a.runContext(cmd.Context())
			defer cancel()

			ctrl := controller.New(logger, a.deps.Registry, nil)
			r, err := ctrl.Plan(ctx, a.plugins())
			if err != nil {
				return err
			}

			if err := report.WriteTree(a.deps.Stdout, ctrl.Tree(), a.format); err != nil {
				logger.Error("could not write command tree", zap.Error(err))
			}
			if err := report.Write(a.deps.Stdout, r, a.format); err != nil {
				logger.Error("could not write report", zap.Error(err))
			}

			if _, failed := r.PluginCounts(); failed > 0 {
				return &ExitError{Code: ExitFailed, Err: errPluginsFailed}
			}
			return nil
		},
	}
}
