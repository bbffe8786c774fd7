package cmd

import (
	"net/http"

	"github.com/bz888/accbuddy/internal/api"
	"github.com/bz888/accbuddy/internal/config"
	"github.com/bz888/accbuddy/internal/conversation"
	"github.com/bz888/accbuddy/internal/health"
)

func newBackendClient(c *config.Config) (*api.Client, error) {
	return api.NewClient(api.Config{
		BaseURL:     c.BackendURL,
		HTTPClient:  &http.Client{Timeout: c.RequestTimeout},
		ProbeClient: &http.Client{Timeout: c.HealthTimeout},
	})
}

func newSession(c *config.Config, backend *api.Client) *conversation.Controller {
	return conversation.New(backend,
		conversation.WithProber(health.NewMonitor(backend)),
		conversation.WithCurrentTurnInContext(c.IncludeCurrentTurn),
	)
}
