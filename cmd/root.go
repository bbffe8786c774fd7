package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bz888/accbuddy/internal/catalog"
	"github.com/bz888/accbuddy/internal/config"
	"github.com/bz888/accbuddy/internal/logger"
	"github.com/bz888/accbuddy/internal/maintenance"
	"github.com/bz888/accbuddy/internal/ui"
)

var (
	v   = viper.New()
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:          "accbuddy",
	Short:        "accbuddy is a terminal chat client for the accounting assistant",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFile, _ := cmd.Flags().GetString("config")
		if err := config.Setup(v, cmd.Flags(), configFile); err != nil {
			return err
		}
		loaded, err := config.Load(v)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
	RunE: runChat,
}

func init() {
	config.AddFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(askCmd, healthCmd, refreshCmd, serveCmd)
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// initLogger sets up logging for commands that write to the terminal directly.
func initLogger() error {
	return logger.InitLogger(logger.Options{
		Dev:     cfg.Dev,
		LogPath: cfg.LogPath,
		Level:   cfg.LogLevel,
	})
}

func runChat(cmd *cobra.Command, args []string) error {
	backend, err := newBackendClient(cfg)
	if err != nil {
		return err
	}
	session := newSession(cfg, backend)

	view := ui.New(session, ui.Options{
		Dev:        cfg.Dev,
		BackendURL: cfg.BackendURL,
		Catalog:    catalog.Default(),
		Refresher:  maintenance.NewRefresher(backend),
	})
	// the debug console only exists once the UI is built
	if err := logger.InitLogger(logger.Options{
		Dev:     cfg.Dev,
		LogPath: cfg.LogPath,
		Level:   cfg.LogLevel,
		Console: view.DebugConsole(),
	}); err != nil {
		return err
	}
	defer logger.Close()

	log := logger.NewLogger("main")
	log.Info("Starting session ", session.SessionID(), " against ", cfg.BackendURL)

	if err := view.Run(cmd.Context()); err != nil {
		return errors.Wrap(err, "chat session failed")
	}
	log.Info("Shutting down gracefully.")
	return nil
}
