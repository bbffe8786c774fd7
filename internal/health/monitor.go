package health

import (
	"context"

	"github.com/bz888/accbuddy/internal/conversation"
	"github.com/bz888/accbuddy/internal/logger"
)

// Pinger is the transport call behind a probe.
type Pinger interface {
	Health(ctx context.Context) error
}

// Monitor decides once whether the backend is reachable. Failures are reported as
// conversation.Error and never returned.
type Monitor struct {
	pinger Pinger
	log    *logger.Logger
}

func NewMonitor(pinger Pinger) *Monitor {
	return &Monitor{
		pinger: pinger,
		log:    logger.NewLogger("health"),
	}
}

func (m *Monitor) Check(ctx context.Context) conversation.ConnectionStatus {
	if err := m.pinger.Health(ctx); err != nil {
		m.log.Error("Backend connection error: ", err)
		return conversation.Error
	}
	m.log.Info("Backend connection established")
	return conversation.Connected
}
