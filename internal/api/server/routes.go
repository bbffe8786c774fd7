package server

import (
	"github.com/go-chi/chi/v5"

	"github.com/bz888/accbuddy/internal/api"
	"github.com/bz888/accbuddy/internal/api/server/handlers"
)

func registerRoutes(r chi.Router, handler *handlers.Handler) {
	r.Get(api.DefaultHealthPath, handler.HealthHandler)
	r.Post(api.DefaultChatPath, handler.ChatHandler)
	r.Post(api.DefaultRefreshPath, handler.RefreshCredentialsHandler)
}
