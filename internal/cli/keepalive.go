package cli

import (
	"github.com/spf13/cobra"

	"cogsync/httpserver"
)

func newKeepaliveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keepalive",
		Short: "Serve an HTTP endpoint for uptime monitors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.cfg.Logger.Sync()

			err := httpserver.New(a.cfg.Logger, a.cfg.Port).Run(cmd.Context())
			if cmd.Context().Err() != nil {
				return nil
			}
			return err
		},
	}
}
