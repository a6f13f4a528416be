package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/shopbot/assistant/internal/agent/model"
	errx "github.com/shopbot/assistant/internal/core/error"
)

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	HTTPClient  *http.Client
}

// OpenAI calls the chat completions endpoint with tool calling enabled.
type OpenAI struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errx.Configuration(errors.New("openai: API key not set"))
	}
	if cfg.Model == "" {
		return nil, errx.Configuration(errors.New("openai: model not set"))
	}

	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		c.HTTPClient = cfg.HTTPClient
	}

	return &OpenAI{
		client:      openai.NewClientWithConfig(c),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (o *OpenAI) Complete(ctx context.Context, transcript []*schema.Message, functions []model.FunctionSchema) (out *schema.Message, err error) {
	ctx = callbacks.ReuseHandlers(ctx, &callbacks.RunInfo{
		Name:      o.model,
		Type:      "OpenAI",
		Component: components.ComponentOfChatModel,
	})
	ctx = callbacks.OnStart(ctx, &einomodel.CallbackInput{
		Messages: transcript,
		Tools:    lo.Map(functions, func(f model.FunctionSchema, _ int) *schema.ToolInfo { return f.ToolInfo() }),
		Config:   &einomodel.Config{Model: o.model, MaxTokens: o.maxTokens, Temperature: o.temperature},
	})
	defer func() {
		if err != nil {
			callbacks.OnError(ctx, err)
			return
		}
		callbacks.OnEnd(ctx, &einomodel.CallbackOutput{Message: out, TokenUsage: tokenUsage(out)})
	}()

	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    toOpenAIMessages(transcript),
		MaxTokens:   o.maxTokens,
		Temperature: o.temperature,
	}
	if len(functions) > 0 {
		req.Tools = lo.Map(functions, func(f model.FunctionSchema, _ int) openai.Tool {
			def := functionDefinition(f)
			return openai.Tool{Type: openai.ToolTypeFunction, Function: &def}
		})
		req.ToolChoice = "auto"
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: no choices in response")
	}
	return fromOpenAIResponse(resp), nil
}

func toOpenAIMessages(transcript []*schema.Message) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(transcript))
	for _, m := range transcript {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.System:
			msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: m.Content})
		case schema.User:
			msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: m.Content})
		case schema.Assistant:
			msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.Content}
			for _, tc := range m.ToolCalls {
				msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				})
			}
			msgs = append(msgs, msg)
		case schema.Tool:
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    m.Content,
				ToolCallID: m.ToolCallID,
			})
		}
	}
	return msgs
}

func fromOpenAIResponse(resp openai.ChatCompletionResponse) *schema.Message {
	choice := resp.Choices[0]
	out := &schema.Message{
		Role:    schema.Assistant,
		Content: choice.Message.Content,
		ResponseMeta: &schema.ResponseMeta{
			FinishReason: string(choice.FinishReason),
			Usage: &schema.TokenUsage{
				PromptTokens:     resp.Usage.PromptTokens,
				CompletionTokens: resp.Usage.CompletionTokens,
				TotalTokens:      resp.Usage.TotalTokens,
			},
		},
	}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, schema.ToolCall{
			ID:   tc.ID,
			Type: string(tc.Type),
			Function: schema.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	// legacy function_call responses carry no id; the orchestrator assigns one
	if fc := choice.Message.FunctionCall; fc != nil && len(out.ToolCalls) == 0 {
		out.ToolCalls = append(out.ToolCalls, schema.ToolCall{
			Function: schema.FunctionCall{Name: fc.Name, Arguments: fc.Arguments},
		})
	}
	return out
}

func functionDefinition(f model.FunctionSchema) openai.FunctionDefinition {
	return openai.FunctionDefinition{
		Name:        f.Name,
		Description: f.Description,
		Parameters:  objectDefinition(f.Params),
	}
}

func objectDefinition(params map[string]*schema.ParameterInfo) jsonschema.Definition {
	def := jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: make(map[string]jsonschema.Definition, len(params)),
		Required:   model.FunctionSchema{Params: params}.RequiredParams(),
	}
	for name, p := range params {
		if p != nil {
			def.Properties[name] = parameterDefinition(p)
		}
	}
	return def
}

func parameterDefinition(p *schema.ParameterInfo) jsonschema.Definition {
	if p.Type == schema.Object {
		def := objectDefinition(p.SubParams)
		def.Description = p.Desc
		return def
	}
	def := jsonschema.Definition{
		Type:        jsonschema.DataType(p.Type),
		Description: p.Desc,
		Enum:        p.Enum,
	}
	if p.ElemInfo != nil {
		items := parameterDefinition(p.ElemInfo)
		def.Items = &items
	}
	return def
}

func tokenUsage(m *schema.Message) *einomodel.TokenUsage {
	if m == nil || m.ResponseMeta == nil || m.ResponseMeta.Usage == nil {
		return nil
	}
	u := m.ResponseMeta.Usage
	return &einomodel.TokenUsage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}
