package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/bz888/accbuddy/internal/conversation"
	"github.com/bz888/accbuddy/internal/health"
	"github.com/bz888/accbuddy/internal/logger"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check whether the backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initLogger(); err != nil {
			return err
		}
		defer logger.Close()

		backend, err := newBackendClient(cfg)
		if err != nil {
			return err
		}
		status := health.NewMonitor(backend).Check(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", cfg.BackendURL, status)
		if status == conversation.Error {
			return errors.New("backend is unreachable")
		}
		return nil
	},
}
