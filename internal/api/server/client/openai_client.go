package client

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/bz888/accbuddy/internal/conversation"
	"github.com/bz888/accbuddy/internal/logger"
)

const (
	DefaultOpenAIModel = openai.GPT3Dot5Turbo

	openAITemperature = 0.7
	openAIMaxTokens   = 1000
)

// OpenAIConfig configures the OpenAI responder. KeyFunc is consulted on every
// refresh so rotated keys are picked up.
type OpenAIConfig struct {
	KeyFunc func() string
	Model   string
	BaseURL string
}

// OpenAIClient relays chat requests to an OpenAI compatible completions API.
type OpenAIClient struct {
	config OpenAIConfig
	log    *logger.Logger

	mu     sync.RWMutex
	client *openai.Client
}

func NewOpenAIClient(config OpenAIConfig) (*OpenAIClient, error) {
	if config.Model == "" {
		config.Model = DefaultOpenAIModel
	}
	c := &OpenAIClient{
		config: config,
		log:    logger.NewLogger("openai client"),
	}
	if err := c.Refresh(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *OpenAIClient) Name() string { return "openai" }

// Refresh rebuilds the SDK client from the current key.
func (c *OpenAIClient) Refresh(_ context.Context) error {
	key := ""
	if c.config.KeyFunc != nil {
		key = c.config.KeyFunc()
	}
	if key == "" {
		return errors.New("Failed to retrieve OpenAI credentials")
	}

	cfg := openai.DefaultConfig(key)
	if c.config.BaseURL != "" {
		cfg.BaseURL = c.config.BaseURL
	}

	c.mu.Lock()
	c.client = openai.NewClientWithConfig(cfg)
	c.mu.Unlock()

	c.log.Info("OpenAI client initialized for model ", c.config.Model)
	return nil
}

func (c *OpenAIClient) Respond(ctx context.Context, message string, history conversation.History) (string, error) {
	c.mu.RLock()
	sdk := c.client
	c.mu.RUnlock()

	turns := buildMessages(message, history)
	messages := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(turn.Role),
			Content: turn.Content,
		})
	}

	resp, err := sdk.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: openAITemperature,
		MaxTokens:   openAIMaxTokens,
	})
	if err != nil {
		c.log.Error("chat completion failed: ", err)
		return "", errors.Wrap(err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
