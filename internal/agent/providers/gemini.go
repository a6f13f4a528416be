package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"
	"google.golang.org/genai"

	"github.com/shopbot/assistant/internal/agent/model"
	errx "github.com/shopbot/assistant/internal/core/error"
	logx "github.com/shopbot/assistant/pkg/logger"
)

type GeminiConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Gemini adapts the eino gemini chat model to the Completer contract.
type Gemini struct {
	cm    *gemini.ChatModel
	model string
}

func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, errx.Configuration(errors.New("gemini: API key not set"))
	}
	if cfg.Model == "" {
		return nil, errx.Configuration(errors.New("gemini: model not set"))
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini chat model")
		return nil, fmt.Errorf("gemini: create chat model: %w", err)
	}

	logx.Debug().Str("model", cfg.Model).Msg("Gemini chat model created")
	return &Gemini{cm: cm, model: cfg.Model}, nil
}

// BindFunctions binds the schemas as the model's default tools. Complete still
// passes the per-call list, which takes precedence.
func (g *Gemini) BindFunctions(functions []model.FunctionSchema) error {
	if err := g.cm.BindTools(toolInfos(functions)); err != nil {
		return fmt.Errorf("gemini: bind tools: %w", err)
	}
	return nil
}

func (g *Gemini) Complete(ctx context.Context, transcript []*schema.Message, functions []model.FunctionSchema) (*schema.Message, error) {
	ctx = callbacks.ReuseHandlers(ctx, &callbacks.RunInfo{
		Name:      g.model,
		Type:      g.cm.GetType(),
		Component: components.ComponentOfChatModel,
	})

	var opts []einomodel.Option
	if len(functions) > 0 {
		opts = append(opts, einomodel.WithTools(toolInfos(functions)))
	}
	out, err := g.cm.Generate(ctx, geminiTranscript(transcript), opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate: %w", err)
	}
	return out, nil
}

// geminiTranscript pairs function responses by function name, which is how
// Gemini correlates them with its calls.
func geminiTranscript(transcript []*schema.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(transcript))
	for _, m := range transcript {
		if m == nil {
			continue
		}
		if m.Role == schema.Tool && m.ToolName != "" && m.ToolCallID != m.ToolName {
			cp := *m
			cp.ToolCallID = m.ToolName
			m = &cp
		}
		out = append(out, m)
	}
	return out
}

func toolInfos(functions []model.FunctionSchema) []*schema.ToolInfo {
	return lo.Map(functions, func(f model.FunctionSchema, _ int) *schema.ToolInfo {
		return f.ToolInfo()
	})
}
