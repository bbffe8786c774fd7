package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/bz888/accbuddy/internal/conversation"
	"github.com/bz888/accbuddy/internal/logger"
)

const DefaultOllamaHost = "localhost:11434"

// OllamaClient relays chat requests to a local Ollama server and joins the streamed
// chunks into one reply.
type OllamaClient struct {
	Client
	model string
	log   *logger.Logger
}

type OllamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []OllamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type OllamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OllamaAPIResponse struct {
	Message OllamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

// NewOllamaClient creates a new Ollama API client
func NewOllamaClient(host, model string) *OllamaClient {
	if host == "" {
		host = DefaultOllamaHost
	}
	return &OllamaClient{
		Client: *NewClient(ClientConfig{
			Scheme:   "http",
			Host:     host,
			ChatPath: "/api/chat",
		}),
		model: model,
		log:   logger.NewLogger("ollama client"),
	}
}

func (c *OllamaClient) Name() string { return "ollama" }

func (c *OllamaClient) Respond(ctx context.Context, message string, history conversation.History) (string, error) {
	turns := buildMessages(message, history)
	req := &OllamaChatRequest{
		Model:    c.model,
		Messages: make([]OllamaMessage, 0, len(turns)),
		Stream:   true,
	}
	for _, turn := range turns {
		req.Messages = append(req.Messages, OllamaMessage{Role: string(turn.Role), Content: turn.Content})
	}

	var reply strings.Builder
	err := c.stream(ctx, req, func(bts []byte) error {
		var apiResp OllamaAPIResponse
		if err := json.Unmarshal(bts, &apiResp); err != nil {
			c.log.Error("Raw response data: ", string(bts))
			return errors.Wrap(err, "could not decode ollama chunk")
		}
		if apiResp.Error != "" {
			return errors.New(apiResp.Error)
		}
		reply.WriteString(apiResp.Message.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return reply.String(), nil
}

func (c *OllamaClient) stream(ctx context.Context, data *OllamaChatRequest, fn func([]byte) error) error {
	bts, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "could not encode ollama request")
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.GetChatURL(), bytes.NewBuffer(bts))
	if err != nil {
		return errors.Wrap(err, "could not create ollama request")
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/x-ndjson")

	response, err := c.http.Do(request)
	if err != nil {
		return errors.Wrap(err, "ollama server not available")
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return errors.Errorf("ollama returned %s", response.Status)
	}

	scanner := bufio.NewScanner(response.Body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 512*1024)
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "scanner error")
	}
	return nil
}
