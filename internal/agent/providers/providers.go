// Package providers implements the remote chat-completion endpoint for the
// supported LLM vendors.
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopbot/assistant/internal/agent/chat"
	"github.com/shopbot/assistant/internal/agent/model"
	errx "github.com/shopbot/assistant/internal/core/error"
	logx "github.com/shopbot/assistant/pkg/logger"
)

// New builds the completer selected by cfg.Provider. functions are bound up
// front for providers that support default tools.
func New(ctx context.Context, cfg model.LLMConfig, functions []model.FunctionSchema) (chat.Completer, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	logx.Info().
		Str("provider", provider).
		Str("model", cfg.ModelName()).
		Bool("custom_base_url", cfg.BaseURL != "").
		Msg("Creating completion provider")

	switch provider {
	case "", model.ProviderOpenAI:
		c, err := NewOpenAI(OpenAIConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.ModelName(),
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case model.ProviderGemini:
		c, err := NewGemini(ctx, GeminiConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.ModelName(),
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
		if err != nil {
			return nil, err
		}
		if err := c.BindFunctions(functions); err != nil {
			logx.Error().Err(err).Msg("Failed to bind functions to Gemini model")
			return nil, err
		}
		return c, nil
	default:
		return nil, errx.Configuration(fmt.Errorf("unknown LLM provider %q", cfg.Provider))
	}
}
