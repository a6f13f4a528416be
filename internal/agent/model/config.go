package model

import "time"

// ================ Config ================
type LLMConfig struct {
	Provider       string        `envconfig:"LLM_PROVIDER" default:"openai"`
	APIKey         string        `envconfig:"LLM_API_KEY" required:"true"`
	BaseURL        string        `envconfig:"LLM_BASE_URL"`
	Model          string        `envconfig:"LLM_MODEL"`
	MaxTokens      int           `envconfig:"LLM_MAX_TOKENS" default:"1024"`
	Temperature    float32       `envconfig:"LLM_TEMPERATURE" default:"0.3"`
	RequestTimeout time.Duration `envconfig:"LLM_REQUEST_TIMEOUT" default:"30s"`
}

// ModelName returns the configured model or the provider's default.
func (c LLMConfig) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case ProviderGemini:
		return "gemini-2.5-flash"
	default:
		return "gpt-4o"
	}
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type PromptConfig struct {
	BusinessName string `envconfig:"PROMPT_BUSINESS_NAME" default:"ShopBot"`
	BusinessType string `envconfig:"PROMPT_BUSINESS_TYPE" default:"online store"`
	Language     string `envconfig:"PROMPT_LANGUAGE" default:"the customer's language"`
}

type ConversationConfig struct {
	MaxFunctionRounds int      `envconfig:"CONVERSATION_MAX_FUNCTION_ROUNDS" default:"5"`
	ExitKeywords      []string `envconfig:"CONVERSATION_EXIT_KEYWORDS" default:"exit,quit,salir"`
}

const (
	CatalogEmbedded = "embedded"
	CatalogFile     = "file"
	CatalogSQLite   = "sqlite"
	CatalogRedis    = "redis"
)

type CatalogConfig struct {
	Source   string `envconfig:"CATALOG_SOURCE" default:"embedded"`
	Path     string `envconfig:"CATALOG_PATH"`
	RedisKey string `envconfig:"CATALOG_REDIS_KEY" default:"catalog:products"`
}
