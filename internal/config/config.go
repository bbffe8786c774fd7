package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "accbuddy"
	configName = "accbuddy"
)

const (
	ResponderEcho   = "echo"
	ResponderOpenAI = "openai"
	ResponderOllama = "ollama"
)

const (
	DefaultBackendURL    = "http://localhost:8000"
	DefaultHealthTimeout = 5 * time.Second
	DefaultListen        = ":8000"
	DefaultOllamaHost    = "localhost:11434"
	DefaultOllamaModel   = "llama3:latest"
)

type Config struct {
	BackendURL         string
	Dev                bool
	LogPath            string
	LogLevel           string
	HealthTimeout      time.Duration
	RequestTimeout     time.Duration
	IncludeCurrentTurn bool

	Listen        string
	Responder     string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	OllamaHost    string
	OllamaModel   string
}

// AddFlags registers every configuration key on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "Path to a config file (default ./accbuddy.yaml)")
	fs.String("backend-url", DefaultBackendURL, "Base URL of the assistant backend")
	fs.Bool("dev", false, "Development mode")
	fs.String("log-path", "", "Directory to save log files in")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.Duration("health-timeout", DefaultHealthTimeout, "Timeout for the startup health check")
	fs.Duration("request-timeout", 0, "Timeout for a chat request (0 waits forever)")
	fs.Bool("history-includes-current", false, "Send the submitted turn as part of the history too")

	fs.String("listen", DefaultListen, "Address the stub backend listens on")
	fs.String("responder", ResponderEcho, "Stub backend responder (echo, openai, ollama)")
	fs.String("openai-api-key", "", "OpenAI API key")
	fs.String("openai-model", "", "OpenAI model")
	fs.String("openai-base-url", "", "OpenAI compatible base URL")
	fs.String("ollama-host", DefaultOllamaHost, "Ollama host")
	fs.String("ollama-model", DefaultOllamaModel, "Ollama model")
}

// Setup wires v to the environment, an optional config file and the flags in fs.
// Flags that were set explicitly win over the environment, which wins over the file.
func Setup(v *viper.Viper, fs *pflag.FlagSet, configFile string) error {
	// a missing .env is fine
	_ = godotenv.Load()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".accbuddy"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "could not read config file")
		}
	}

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return errors.Wrap(err, "could not bind flags")
		}
	}
	return nil
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	c := &Config{
		BackendURL:         v.GetString("backend-url"),
		Dev:                v.GetBool("dev"),
		LogPath:            v.GetString("log-path"),
		LogLevel:           v.GetString("log-level"),
		HealthTimeout:      v.GetDuration("health-timeout"),
		RequestTimeout:     v.GetDuration("request-timeout"),
		IncludeCurrentTurn: v.GetBool("history-includes-current"),
		Listen:             v.GetString("listen"),
		Responder:          strings.ToLower(v.GetString("responder")),
		OpenAIAPIKey:       v.GetString("openai-api-key"),
		OpenAIModel:        v.GetString("openai-model"),
		OpenAIBaseURL:      v.GetString("openai-base-url"),
		OllamaHost:         v.GetString("ollama-host"),
		OllamaModel:        v.GetString("ollama-model"),
	}
	if c.BackendURL == "" {
		c.BackendURL = DefaultBackendURL
	}
	if c.HealthTimeout == 0 {
		c.HealthTimeout = DefaultHealthTimeout
	}
	if c.Responder == "" {
		c.Responder = ResponderEcho
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Errorf("invalid backend-url %q", c.BackendURL)
	}
	if c.HealthTimeout < 0 {
		return errors.Errorf("health-timeout must not be negative, got %s", c.HealthTimeout)
	}
	if c.RequestTimeout < 0 {
		return errors.Errorf("request-timeout must not be negative, got %s", c.RequestTimeout)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "invalid log-level %q", c.LogLevel)
	}
	switch c.Responder {
	case ResponderEcho, ResponderOllama:
	case ResponderOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("responder openai needs openai-api-key")
		}
	default:
		return errors.Errorf("unknown responder %q", c.Responder)
	}
	return nil
}
