package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bz888/accbuddy/internal/conversation"
)

var sampleHistory = conversation.History{
	{Role: conversation.RoleUser, Content: "Hello"},
	{Role: conversation.RoleAssistant, Content: "Hi there"},
}

func TestBuildMessagesAppendsCurrentTurn(t *testing.T) {
	messages := buildMessages("What is AP?", sampleHistory)

	require.Len(t, messages, 3)
	assert.Equal(t, conversation.Message{Role: conversation.RoleUser, Content: "What is AP?"}, messages[2])
	assert.Len(t, sampleHistory, 2)
}

func TestEchoResponder(t *testing.T) {
	reply, err := EchoResponder{}.Respond(context.Background(), "ping", sampleHistory)

	require.NoError(t, err)
	assert.Equal(t, "Processed: ping (2 earlier turns)", reply)
}

type completionRequest struct {
	Model       string                 `json:"model"`
	Messages    []conversation.Message `json:"messages"`
	Temperature float32                `json:"temperature"`
	MaxTokens   int                    `json:"max_tokens"`
}

func TestOpenAIClientRespond(t *testing.T) {
	requests := make(chan completionRequest, 1)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var req completionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests <- req

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo",`+
			`"choices":[{"index":0,"message":{"role":"assistant","content":"Debit the expense."},"finish_reason":"stop"}],`+
			`"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`)
	}))
	defer upstream.Close()

	c, err := NewOpenAIClient(OpenAIConfig{
		KeyFunc: func() string { return "test-key" },
		BaseURL: upstream.URL + "/v1",
	})
	require.NoError(t, err)

	reply, err := c.Respond(context.Background(), "How do I book this?", sampleHistory)
	require.NoError(t, err)
	assert.Equal(t, "Debit the expense.", reply)

	got := <-requests
	assert.Equal(t, DefaultOpenAIModel, got.Model)
	assert.Equal(t, openAIMaxTokens, got.MaxTokens)
	assert.InDelta(t, openAITemperature, got.Temperature, 0.001)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "How do I book this?", got.Messages[2].Content)
}

func TestOpenAIClientNeedsKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{KeyFunc: func() string { return "" }})

	assert.EqualError(t, err, "Failed to retrieve OpenAI credentials")
}

func TestOpenAIClientRefreshPicksUpRotatedKey(t *testing.T) {
	key := "first"
	seen := make(chan string, 2)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`)
	}))
	defer upstream.Close()

	c, err := NewOpenAIClient(OpenAIConfig{KeyFunc: func() string { return key }, BaseURL: upstream.URL})
	require.NoError(t, err)

	_, err = c.Respond(context.Background(), "one", nil)
	require.NoError(t, err)

	key = "second"
	require.NoError(t, c.Refresh(context.Background()))
	_, err = c.Respond(context.Background(), "two", nil)
	require.NoError(t, err)

	assert.Equal(t, "Bearer first", <-seen)
	assert.Equal(t, "Bearer second", <-seen)
}

func TestOllamaClientJoinsStreamedChunks(t *testing.T) {
	requests := make(chan OllamaChatRequest, 1)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var req OllamaChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests <- req

		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"Accrue "},"done":false}`)
		fmt.Fprintln(w, ``)
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"it monthly."},"done":true}`)
	}))
	defer upstream.Close()

	c := NewOllamaClient(strings.TrimPrefix(upstream.URL, "http://"), "llama3:latest")
	reply, err := c.Respond(context.Background(), "How do I treat rent?", sampleHistory)

	require.NoError(t, err)
	assert.Equal(t, "Accrue it monthly.", reply)
	got := <-requests
	assert.Equal(t, "llama3:latest", got.Model)
	assert.True(t, got.Stream)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, RoleUser, got.Messages[2].Role)
}

func TestOllamaClientReportsUpstreamErrors(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"error":"model 'nope' not found"}`)
	}))
	defer upstream.Close()

	c := NewOllamaClient(strings.TrimPrefix(upstream.URL, "http://"), "nope")
	_, err := c.Respond(context.Background(), "hi", nil)

	assert.EqualError(t, err, "model 'nope' not found")
}

func TestOllamaClientNon200(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	c := NewOllamaClient(strings.TrimPrefix(upstream.URL, "http://"), "llama3:latest")
	_, err := c.Respond(context.Background(), "hi", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
