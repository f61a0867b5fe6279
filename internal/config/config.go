// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	SessionBackendMemory   = "memory"
	SessionBackendDynamoDB = "dynamodb"
)

type Config struct {
	CatalogBaseURL string `env:"CATALOG_BASE_URL" envDefault:"http://localhost:1337/api"`

	// One of GeminiAPIKey or GeminiAPIKeyParam (an SSM parameter name) is required.
	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	GeminiAPIKeyParam string        `env:"GEMINI_API_KEY_PARAM"`
	GeminiModel       string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash-lite"`
	SSMPrefix         string        `env:"SSM_PREFIX"`
	UpstreamTimeout   time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`

	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"memory"`
	SessionTable   string        `env:"SESSION_TABLE"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"30m"`

	MaxUtteranceLength int    `env:"MAX_UTTERANCE_LENGTH" envDefault:"500"`
	CORSAllowOrigin    string `env:"CORS_ALLOW_ORIGIN" envDefault:"http://localhost:5173"`
	ListenAddr         string `env:"LISTEN_ADDR" envDefault:":8001"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// Load reads an optional .env file from the working directory, then parses
// the environment. Variables already set in the environment take precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.GeminiAPIKey) == "" && strings.TrimSpace(c.GeminiAPIKeyParam) == "" {
		return errors.New("config: GEMINI_API_KEY or GEMINI_API_KEY_PARAM must be set")
	}
	switch c.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendDynamoDB:
		if strings.TrimSpace(c.SessionTable) == "" {
			return errors.New("config: SESSION_TABLE must be set for the dynamodb session backend")
		}
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("config: UPSTREAM_TIMEOUT must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: SESSION_TTL must be positive")
	}
	if c.MaxUtteranceLength <= 0 {
		return errors.New("config: MAX_UTTERANCE_LENGTH must be positive")
	}
	return nil
}

// NeedsAWS reports whether any configured component talks to AWS.
func (c Config) NeedsAWS() bool {
	return c.SessionBackend == SessionBackendDynamoDB || (c.GeminiAPIKey == "" && c.GeminiAPIKeyParam != "")
}
