package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bz888/accbuddy/internal/config"
)

func TestNewResponder(t *testing.T) {
	echo, err := newResponder(&config.Config{Responder: config.ResponderEcho})
	require.NoError(t, err)
	assert.Equal(t, "echo", echo.Name())

	ollama, err := newResponder(&config.Config{Responder: config.ResponderOllama, OllamaModel: "llama3:latest"})
	require.NoError(t, err)
	assert.Equal(t, "ollama", ollama.Name())
}

func TestNewSessionUsesConfiguredBackend(t *testing.T) {
	backend, err := newBackendClient(&config.Config{BackendURL: "http://backend.internal:9000"})
	require.NoError(t, err)
	assert.Equal(t, "http://backend.internal:9000/chat", backend.ChatURL())

	_, err = newBackendClient(&config.Config{BackendURL: "backend.internal"})
	assert.Error(t, err)
}
