package maintenance

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/bz888/accbuddy/internal/logger"
)

// ErrRefreshInProgress is reported when a refresh is requested while one is running.
var ErrRefreshInProgress = errors.New("credential refresh already in progress")

// CredentialRefresher is the transport call behind a refresh.
type CredentialRefresher interface {
	RefreshCredentials(ctx context.Context) error
}

// Result is the outcome of one refresh.
type Result struct {
	OK  bool
	Err error
}

// Refresher asks the backend to renew its upstream credentials. It is independent of
// any conversation: its outcome is only reported, never written into history.
type Refresher struct {
	backend CredentialRefresher
	running atomic.Bool
	log     *logger.Logger
}

func NewRefresher(backend CredentialRefresher) *Refresher {
	return &Refresher{
		backend: backend,
		log:     logger.NewLogger("maintenance"),
	}
}

// Running reports whether a refresh is in flight.
func (r *Refresher) Running() bool {
	return r.running.Load()
}

func (r *Refresher) Refresh(ctx context.Context) Result {
	if !r.running.CompareAndSwap(false, true) {
		return Result{Err: ErrRefreshInProgress}
	}
	defer r.running.Store(false)

	if err := r.backend.RefreshCredentials(ctx); err != nil {
		r.log.Error("Failed to refresh credentials: ", err)
		return Result{Err: err}
	}
	r.log.Info("Credentials refreshed successfully")
	return Result{OK: true}
}
