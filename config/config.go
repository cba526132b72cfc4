// Package config loads runtime configuration from the environment, with
// optional .env file discovery for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Model provider names accepted in TUTOR_MODEL_PROVIDER.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Config holds everything the worker needs to start a session.
type Config struct {
	// RoomURL is the WebSocket URL of the room relay.
	RoomURL string
	// Identity announces the agent's participant identity.
	Identity string

	// ModelProvider selects the dialogue model backend.
	ModelProvider string
	// ModelName overrides the provider's default model id.
	ModelName string
	// OpenAIAPIKey / AnthropicAPIKey authenticate the provider SDKs. The
	// SDKs also read their own standard environment variables.
	OpenAIAPIKey    string
	AnthropicAPIKey string

	LogLevel  string
	LogFormat string

	// ConfirmFlips speaks a confirmation when the client flips a card.
	ConfirmFlips bool
}

// Load reads configuration from the environment. A .env file at envPath is
// merged in first when present; a missing file is not an error. Pass "" to
// use ./.env.
func Load(envPath string) (*Config, error) {
	if envPath == "" {
		envPath = ".env"
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", envPath, err)
		}
	}

	cfg := &Config{
		RoomURL:         getEnv("TUTOR_ROOM_URL", ""),
		Identity:        getEnv("TUTOR_IDENTITY", ""),
		ModelProvider:   getEnv("TUTOR_MODEL_PROVIDER", ProviderOpenAI),
		ModelName:       getEnv("TUTOR_MODEL_NAME", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		LogLevel:        getEnv("TUTOR_LOG_LEVEL", "info"),
		LogFormat:       getEnv("TUTOR_LOG_FORMAT", "json"),
		ConfirmFlips:    getEnvBool("TUTOR_CONFIRM_FLIPS", false),
	}

	switch cfg.ModelProvider {
	case ProviderOpenAI, ProviderAnthropic, ProviderMock:
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.ModelProvider)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
