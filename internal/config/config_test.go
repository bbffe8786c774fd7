package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, configFile string, args ...string) (*Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(args))

	v := viper.New()
	require.NoError(t, Setup(v, fs, configFile))
	return Load(v)
}

func TestDefaults(t *testing.T) {
	c, err := load(t, "")
	require.NoError(t, err)

	assert.Equal(t, DefaultBackendURL, c.BackendURL)
	assert.Equal(t, DefaultHealthTimeout, c.HealthTimeout)
	assert.Zero(t, c.RequestTimeout)
	assert.False(t, c.Dev)
	assert.False(t, c.IncludeCurrentTurn)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, DefaultListen, c.Listen)
	assert.Equal(t, ResponderEcho, c.Responder)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("ACCBUDDY_BACKEND_URL", "http://backend.internal:9000")
	t.Setenv("ACCBUDDY_HEALTH_TIMEOUT", "250ms")
	t.Setenv("ACCBUDDY_DEV", "true")

	c, err := load(t, "")
	require.NoError(t, err)

	assert.Equal(t, "http://backend.internal:9000", c.BackendURL)
	assert.Equal(t, 250*time.Millisecond, c.HealthTimeout)
	assert.True(t, c.Dev)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("ACCBUDDY_BACKEND_URL", "http://from-env:9000")

	c, err := load(t, "", "--backend-url", "http://from-flag:9000", "--request-timeout", "30s")
	require.NoError(t, err)

	assert.Equal(t, "http://from-flag:9000", c.BackendURL)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accbuddy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend-url: http://from-file:8000\nresponder: ollama\nollama-model: mistral\n"), 0o600))

	c, err := load(t, path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-file:8000", c.BackendURL)
	assert.Equal(t, ResponderOllama, c.Responder)
	assert.Equal(t, "mistral", c.OllamaModel)
}

func TestMissingExplicitConfigFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)

	err := Setup(viper.New(), fs, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"relative backend url", []string{"--backend-url", "localhost:8000"}},
		{"negative health timeout", []string{"--health-timeout=-1s"}},
		{"negative request timeout", []string{"--request-timeout=-1s"}},
		{"bad log level", []string{"--log-level", "loud"}},
		{"unknown responder", []string{"--responder", "magic"}},
		{"openai without key", []string{"--responder", "openai"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestOpenAIResponderWithKey(t *testing.T) {
	c, err := load(t, "", "--responder", "OpenAI", "--openai-api-key", "sk-test")
	require.NoError(t, err)

	assert.Equal(t, ResponderOpenAI, c.Responder)
	assert.Equal(t, "sk-test", c.OpenAIAPIKey)
}
