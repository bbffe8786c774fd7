package client

import (
	"context"
	"fmt"

	"github.com/bz888/accbuddy/internal/conversation"
)

// EchoResponder answers without any upstream model. It is the default for local
// development and tests.
type EchoResponder struct{}

func (EchoResponder) Name() string { return "echo" }

func (EchoResponder) Respond(_ context.Context, message string, history conversation.History) (string, error) {
	return fmt.Sprintf("Processed: %s (%d earlier turns)", message, len(history)), nil
}
