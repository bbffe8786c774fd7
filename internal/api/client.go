package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/bz888/accbuddy/internal/conversation"
	"github.com/bz888/accbuddy/internal/logger"
)

const (
	DefaultHealthPath  = "/health"
	DefaultChatPath    = "/chat"
	DefaultRefreshPath = "/refresh-credentials"

	// RequestIDHeader is read by the backend's request id middleware.
	RequestIDHeader = "X-Request-Id"

	maxErrorBody = 64 * 1024
)

// Config holds the configuration for the client
type Config struct {
	BaseURL     string
	HealthPath  string
	ChatPath    string
	RefreshPath string
	// HTTPClient is used for chat and refresh calls. Its Timeout is the only
	// deadline applied to an exchange.
	HTTPClient *http.Client
	// ProbeClient is used for the health probe. Defaults to HTTPClient.
	ProbeClient *http.Client
}

// Client talks to the assistant backend.
type Client struct {
	http       *http.Client
	probe      *http.Client
	healthURL  string
	chatURL    string
	refreshURL string
	log        *logger.Logger
}

func NewClient(config Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid backend url")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("invalid backend url %q: scheme and host are required", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	probeClient := config.ProbeClient
	if probeClient == nil {
		probeClient = httpClient
	}

	resolve := func(path, fallback string) string {
		if path == "" {
			path = fallback
		}
		return base.JoinPath(path).String()
	}

	return &Client{
		http:       httpClient,
		probe:      probeClient,
		healthURL:  resolve(config.HealthPath, DefaultHealthPath),
		chatURL:    resolve(config.ChatPath, DefaultChatPath),
		refreshURL: resolve(config.RefreshPath, DefaultRefreshPath),
		log:        logger.NewLogger("api client"),
	}, nil
}

func (c *Client) ChatURL() string {
	return c.chatURL
}

// Health probes the backend. Any 2xx response is healthy.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, c.probe, "health", http.MethodGet, c.healthURL, nil)
	if err != nil {
		return err
	}
	defer closeBody(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return &ServerError{Op: "health", StatusCode: resp.StatusCode, Cause: resp.Status}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Exchange implements conversation.Exchanger.
func (c *Client) Exchange(ctx context.Context, message string, history conversation.History) (string, error) {
	return c.Chat(ctx, ChatRequest{Message: message, History: history})
}

// Chat sends one message with its conversation context and returns the reply text.
func (c *Client) Chat(ctx context.Context, chatReq ChatRequest) (string, error) {
	if chatReq.History == nil {
		chatReq.History = conversation.History{}
	}
	requestData, err := json.Marshal(chatReq)
	if err != nil {
		return "", errors.Wrap(err, "could not encode chat request")
	}

	resp, err := c.do(ctx, c.http, "chat", http.MethodPost, c.chatURL, requestData)
	if err != nil {
		return "", err
	}
	defer closeBody(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return "", &ServerError{Op: "chat", StatusCode: resp.StatusCode, Cause: errorCause(resp.Body)}
	}

	var body struct {
		Response *string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &ProtocolError{Op: "chat", Reason: "malformed response body: " + err.Error()}
	}
	if body.Response == nil {
		return "", &ProtocolError{Op: "chat", Reason: `response body is missing the "response" field`}
	}
	return *body.Response, nil
}

// RefreshCredentials asks the backend to renew its upstream credentials.
func (c *Client) RefreshCredentials(ctx context.Context) error {
	resp, err := c.do(ctx, c.http, "refresh-credentials", http.MethodPost, c.refreshURL, nil)
	if err != nil {
		return err
	}
	defer closeBody(resp.Body)

	if !isSuccess(resp.StatusCode) {
		return &ServerError{Op: "refresh-credentials", StatusCode: resp.StatusCode, Cause: errorCause(resp.Body)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) do(ctx context.Context, hc *http.Client, op, method, target string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create %s request", op)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	log := c.log.With("request_id", requestID)
	log.Debug(method, " ", target)

	resp, err := hc.Do(req)
	if err != nil {
		log.Error("request failed: ", err)
		return nil, &ConnectivityError{Op: op, Err: err}
	}
	log.Debug("response status: ", resp.Status)
	return resp, nil
}

// errorCause extracts the error field of a failure body, falling back to a generic
// cause when the body is absent, not JSON or has no error field.
func errorCause(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return FallbackCause
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(data, &errResp); err != nil || errResp.Error == "" {
		return FallbackCause
	}
	return errResp.Error
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func closeBody(body io.ReadCloser) {
	_ = body.Close()
}
