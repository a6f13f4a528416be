package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopbot/assistant/internal/agent/model"
	"github.com/shopbot/assistant/internal/core"
	errx "github.com/shopbot/assistant/internal/core/error"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "sk-test")

	cfg, warning, err := Load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Error(t, warning)

	assert.Equal(t, core.Development, cfg.Environment)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, model.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.ModelName())
	assert.Equal(t, 30*time.Second, cfg.LLM.RequestTimeout)
	assert.Equal(t, 5, cfg.Conversation.MaxFunctionRounds)
	assert.Equal(t, []string{"exit", "quit", "salir"}, cfg.Conversation.ExitKeywords)
	assert.Equal(t, model.CatalogEmbedded, cfg.Catalog.Source)
	assert.Equal(t, "catalog:products", cfg.Catalog.RedisKey)
	assert.Equal(t, "ShopBot", cfg.Prompt.BusinessName)
	assert.Equal(t, 3, cfg.Redis.ReadTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("LLM_REQUEST_TIMEOUT", "5s")
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("CONVERSATION_MAX_FUNCTION_ROUNDS", "0")
	t.Setenv("CONVERSATION_EXIT_KEYWORDS", "bye,adios")
	t.Setenv("CATALOG_SOURCE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, _, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, core.Production, cfg.Environment)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.ModelName())
	assert.Equal(t, 5*time.Second, cfg.LLM.RequestTimeout)
	assert.Equal(t, 5, cfg.Conversation.MaxFunctionRounds)
	assert.Equal(t, []string{"bye", "adios"}, cfg.Conversation.ExitKeywords)
	assert.Equal(t, model.CatalogRedis, cfg.Catalog.Source)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LLM_API_KEY=from-file\nPROMPT_BUSINESS_NAME=Tienda\n"), 0o600))
	// godotenv does not override variables that are already set
	t.Setenv("LLM_API_KEY", "")
	os.Unsetenv("LLM_API_KEY")
	t.Setenv("PROMPT_BUSINESS_NAME", "")
	os.Unsetenv("PROMPT_BUSINESS_NAME")

	cfg, warning, err := Load(path)
	require.NoError(t, err)
	assert.NoError(t, warning)
	assert.Equal(t, "from-file", cfg.LLM.APIKey)
	assert.Equal(t, "Tienda", cfg.Prompt.BusinessName)
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	os.Unsetenv("LLM_API_KEY")

	_, _, err := Load(missingEnvFile(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, errx.ErrConfiguration)
}
