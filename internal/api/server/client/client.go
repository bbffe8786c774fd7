package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/bz888/accbuddy/internal/conversation"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Responder produces the assistant reply for one chat request.
type Responder interface {
	Name() string
	Respond(ctx context.Context, message string, history conversation.History) (string, error)
}

// Refresher is implemented by responders holding credentials that can be renewed.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Client is the HTTP base shared by upstream clients that have no SDK.
type Client struct {
	base    *url.URL
	http    *http.Client
	chatUrl *url.URL
}

// ClientConfig holds the configuration for the client
type ClientConfig struct {
	Scheme   string
	Host     string
	ChatPath string
}

// NewClient creates a new API client with configurable base URL and endpoints
func NewClient(config ClientConfig) *Client {
	baseURL := &url.URL{Scheme: config.Scheme, Host: config.Host}
	return &Client{
		base:    baseURL,
		http:    &http.Client{},
		chatUrl: baseURL.ResolveReference(&url.URL{Path: config.ChatPath}),
	}
}

func (c *Client) GetChatURL() string {
	return c.chatUrl.String()
}

// buildMessages lays out the upstream prompt: prior turns first, then the new message.
func buildMessages(message string, history conversation.History) []conversation.Message {
	messages := make([]conversation.Message, 0, len(history)+1)
	messages = append(messages, history...)
	return append(messages, conversation.Message{Role: conversation.RoleUser, Content: message})
}
