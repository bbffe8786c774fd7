package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/bz888/accbuddy/internal/api/server/client"
	"github.com/bz888/accbuddy/internal/api/server/handlers"
	"github.com/bz888/accbuddy/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// Server is a local assistant backend speaking the chat wire contract. It backs the
// client during development and in tests.
type Server struct {
	router    chi.Router
	responder client.Responder
	log       *logger.Logger
}

func New(responder client.Responder) *Server {
	if responder == nil {
		responder = client.EchoResponder{}
	}
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	registerRoutes(r, handlers.NewHandler(responder))

	return &Server{
		router:    r,
		responder: responder,
		log:       logger.NewLogger("Server"),
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on address until ctx is cancelled.
func (s *Server) Run(ctx context.Context, address string) error {
	srv := &http.Server{
		Addr:              address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server started on http://", address, "/ using ", s.responder.Name(), " responder")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "error starting server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("Shutting down gracefully.")
	return srv.Shutdown(shutdownCtx)
}
