package cmd

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/bz888/accbuddy/internal/conversation"
	"github.com/bz888/accbuddy/internal/logger"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initLogger(); err != nil {
			return err
		}
		defer logger.Close()

		backend, err := newBackendClient(cfg)
		if err != nil {
			return err
		}
		session := newSession(cfg, backend)
		if session.Probe(cmd.Context()) == conversation.Error {
			return errors.Errorf("backend connection failed, make sure the backend server is running at %s", cfg.BackendURL)
		}

		question := strings.Join(args, " ")
		if !session.Submit(cmd.Context(), question) {
			return errors.New("question was not accepted")
		}
		reply, _ := session.Snapshot().History.Last()
		fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
		return nil
	},
}
