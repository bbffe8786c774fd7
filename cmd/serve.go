package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bz888/accbuddy/internal/api/server"
	"github.com/bz888/accbuddy/internal/api/server/client"
	"github.com/bz888/accbuddy/internal/config"
	"github.com/bz888/accbuddy/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local backend speaking the chat protocol",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initLogger(); err != nil {
			return err
		}
		defer logger.Close()

		responder, err := newResponder(cfg)
		if err != nil {
			return err
		}
		logger.NewLogger("main").Info("Serving on ", cfg.Listen, " with the ", responder.Name(), " responder")
		return server.New(responder).Run(cmd.Context(), cfg.Listen)
	},
}

func newResponder(c *config.Config) (client.Responder, error) {
	switch c.Responder {
	case config.ResponderOpenAI:
		return client.NewOpenAIClient(client.OpenAIConfig{
			// read on every refresh so a rotated key is picked up
			KeyFunc: func() string { return v.GetString("openai-api-key") },
			Model:   c.OpenAIModel,
			BaseURL: c.OpenAIBaseURL,
		})
	case config.ResponderOllama:
		return client.NewOllamaClient(c.OllamaHost, c.OllamaModel), nil
	default:
		return client.EchoResponder{}, nil
	}
}
