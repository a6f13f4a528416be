// Package config loads the process configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/shopbot/assistant/internal/agent/model"
	"github.com/shopbot/assistant/internal/core"
	errx "github.com/shopbot/assistant/internal/core/error"
	pkgredis "github.com/shopbot/assistant/pkg/redis"
)

const DefaultEnvFile = ".env"

// AppConfig defines all configurable parameters of the assistant,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// Agent configs
	LLM          model.LLMConfig
	Prompt       model.PromptConfig
	Conversation model.ConversationConfig
	Catalog      model.CatalogConfig
}

// Load reads envFile (a missing file is not an error) and binds the
// environment. The returned warning is non-nil when the file could not be read.
func Load(envFile string) (cfg *AppConfig, warning error, err error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if loadErr := godotenv.Load(envFile); loadErr != nil {
		if !errors.Is(loadErr, fs.ErrNotExist) || envFile != DefaultEnvFile {
			warning = fmt.Errorf("could not load %s: %w", envFile, loadErr)
		}
	}

	var c AppConfig
	if err := envconfig.Process("", &c); err != nil {
		return nil, warning, errx.Configuration(fmt.Errorf("process environment config: %w", err))
	}
	if c.Conversation.MaxFunctionRounds <= 0 {
		c.Conversation.MaxFunctionRounds = 5
	}
	return &c, warning, nil
}
