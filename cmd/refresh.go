package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bz888/accbuddy/internal/logger"
	"github.com/bz888/accbuddy/internal/maintenance"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Ask the backend to refresh its upstream credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initLogger(); err != nil {
			return err
		}
		defer logger.Close()

		backend, err := newBackendClient(cfg)
		if err != nil {
			return err
		}
		res := maintenance.NewRefresher(backend).Refresh(cmd.Context())
		if !res.OK {
			return res.Err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Credentials refreshed successfully")
		return nil
	},
}
