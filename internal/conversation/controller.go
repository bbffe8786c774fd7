package conversation

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/bz888/accbuddy/internal/logger"
)

// Exchanger performs one exchange with the assistant backend.
type Exchanger interface {
	Exchange(ctx context.Context, message string, history History) (string, error)
}

// Prober reports whether the backend is reachable. It must not fail.
type Prober interface {
	Check(ctx context.Context) ConnectionStatus
}

type Option func(*Controller)

func WithProber(p Prober) Option {
	return func(c *Controller) {
		c.prober = p
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// WithCurrentTurnInContext makes the history sent with an exchange include the user
// turn being submitted. By default only the prior turns are sent, since the turn
// itself travels in the message field.
func WithCurrentTurnInContext(include bool) Option {
	return func(c *Controller) {
		c.includeCurrent = include
	}
}

type subscriber struct {
	id uint64
	fn func(State)
}

// Controller owns a session's state. Only Submit, ApplyPromptSuggestion and Probe
// change it, and at most one exchange is in flight at any time.
type Controller struct {
	exchanger      Exchanger
	prober         Prober
	includeCurrent bool
	sessionID      string
	log            *logger.Logger

	mu     sync.Mutex
	state  State
	subs   []subscriber
	nextID uint64

	// held while observers run so they see transitions in order
	notifyMu sync.Mutex
}

func New(exchanger Exchanger, opts ...Option) *Controller {
	c := &Controller{
		exchanger: exchanger,
		sessionID: uuid.NewString(),
		state:     NewState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.NewLogger("conversation")
	}
	c.log = c.log.With("session", c.sessionID)
	return c
}

func (c *Controller) SessionID() string {
	return c.sessionID
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to receive every new snapshot. Observers run synchronously
// after each transition and must not call Submit, ApplyPromptSuggestion or Probe
// from inside fn.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// transition applies fn under the lock and publishes the result if it changed.
func (c *Controller) transition(fn func(State) (State, bool)) (State, bool) {
	c.mu.Lock()
	next, changed := fn(c.state)
	if !changed {
		c.mu.Unlock()
		return next, false
	}
	c.state = next
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	c.notifyMu.Lock()
	c.mu.Unlock()

	defer c.notifyMu.Unlock()
	for _, s := range subs {
		s.fn(next)
	}
	return next, true
}

// Probe runs the health check once and records its result. Later calls return the
// recorded status without probing again.
func (c *Controller) Probe(ctx context.Context) ConnectionStatus {
	current := c.Snapshot().Connection
	if c.prober == nil || current != Checking {
		return current
	}

	status := c.prober.Check(ctx)
	next, changed := c.transition(func(s State) (State, bool) {
		return WithConnection(s, status)
	})
	if changed {
		c.log.Info("connection status: ", status)
	}
	return next.Connection
}

// ApplyPromptSuggestion stages text for a later submit. History and request state are
// not touched.
func (c *Controller) ApplyPromptSuggestion(text string) {
	c.transition(func(s State) (State, bool) {
		return Stage(s, text), s.Staged != text
	})
}

// SubmitStaged submits the staged buffer.
func (c *Controller) SubmitStaged(ctx context.Context) bool {
	return c.Submit(ctx, c.Snapshot().Staged)
}

// Submit runs one exchange for text and blocks until it settles. It returns false,
// with no effect, when text is blank, another exchange is pending or the backend was
// found unreachable. Failures never escape: they become an assistant turn.
func (c *Controller) Submit(ctx context.Context, text string) bool {
	var prior History
	accepted, ok := c.transition(func(s State) (State, bool) {
		prior = s.History
		return Accept(s, text)
	})
	if !ok {
		c.log.Debug("submit ignored: request=", accepted.Request, " connection=", accepted.Connection)
		return false
	}

	sent := prior.Clone()
	if c.includeCurrent {
		sent = accepted.History.Clone()
	}

	reply, err := c.exchange(ctx, text, sent)
	if err != nil {
		c.log.Warn("exchange failed: ", err)
		c.transition(func(s State) (State, bool) {
			return Fail(s, err), true
		})
		c.transition(func(s State) (State, bool) {
			return Settle(s), true
		})
		return true
	}

	c.transition(func(s State) (State, bool) {
		return Resolve(s, reply), true
	})
	return true
}

func (c *Controller) exchange(ctx context.Context, text string, history History) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("exchange aborted: %v", r)
		}
	}()
	return c.exchanger.Exchange(ctx, text, history)
}
