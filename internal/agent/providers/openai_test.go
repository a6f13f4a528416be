package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopbot/assistant/internal/agent/model"
)

func stockSchema() model.FunctionSchema {
	return model.FunctionSchema{
		Name:        "check_stock",
		Description: "Check the stock of a product",
		Params: map[string]*schema.ParameterInfo{
			"product_name": {Type: schema.String, Desc: "product id or name", Required: true},
		},
	}
}

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewOpenAI(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
		Model:   "gpt-4o",
	})
	require.NoError(t, err)
	return c
}

func TestOpenAICompleteToolCall(t *testing.T) {
	var got openai.ChatCompletionRequest
	c := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o",
			"choices": [{
				"index": 0,
				"message": {
					"role": "assistant",
					"content": null,
					"tool_calls": [{
						"id": "call_9",
						"type": "function",
						"function": {"name": "check_stock", "arguments": "{\"product_name\":\"SKU-123\"}"}
					}]
				},
				"finish_reason": "tool_calls"
			}],
			"usage": {"prompt_tokens": 50, "completion_tokens": 10, "total_tokens": 60}
		}`))
	})

	transcript := []*schema.Message{
		schema.SystemMessage("You are ShopBot."),
		schema.UserMessage("Is SKU-123 in stock?"),
	}
	out, err := c.Complete(context.Background(), transcript, []model.FunctionSchema{stockSchema()})
	require.NoError(t, err)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[1].Role)
	assert.Equal(t, "gpt-4o", got.Model)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, openai.ToolTypeFunction, got.Tools[0].Type)
	require.NotNil(t, got.Tools[0].Function)
	assert.Equal(t, "check_stock", got.Tools[0].Function.Name)
	assert.Equal(t, "auto", got.ToolChoice)

	require.Len(t, out.ToolCalls, 1)
	assert.Equal(t, schema.Assistant, out.Role)
	assert.Equal(t, "call_9", out.ToolCalls[0].ID)
	assert.Equal(t, "check_stock", out.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"product_name":"SKU-123"}`, out.ToolCalls[0].Function.Arguments)
	require.NotNil(t, out.ResponseMeta)
	assert.Equal(t, "tool_calls", out.ResponseMeta.FinishReason)
	assert.Equal(t, 50, out.ResponseMeta.Usage.PromptTokens)
	assert.Equal(t, 60, out.ResponseMeta.Usage.TotalTokens)
}

func TestOpenAICompleteSendsFunctionResults(t *testing.T) {
	var got openai.ChatCompletionRequest
	c := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Sorry, it is out of stock."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 80, "completion_tokens": 8, "total_tokens": 88}
		}`))
	})

	transcript := []*schema.Message{
		schema.SystemMessage("You are ShopBot."),
		schema.UserMessage("Is SKU-123 in stock?"),
		{
			Role: schema.Assistant,
			ToolCalls: []schema.ToolCall{{
				ID:       "call_1",
				Function: schema.FunctionCall{Name: "check_stock", Arguments: `{"product_name":"SKU-123"}`},
			}},
		},
		{Role: schema.Tool, Content: `{"found":true,"stock_count":0}`, ToolCallID: "call_1", ToolName: "check_stock"},
	}
	out, err := c.Complete(context.Background(), transcript, nil)
	require.NoError(t, err)
	assert.Equal(t, "Sorry, it is out of stock.", out.Content)
	assert.Empty(t, out.ToolCalls)

	require.Len(t, got.Messages, 4)
	require.Len(t, got.Messages[2].ToolCalls, 1)
	assert.Equal(t, "call_1", got.Messages[2].ToolCalls[0].ID)
	assert.Equal(t, openai.ChatMessageRoleTool, got.Messages[3].Role)
	assert.Equal(t, "call_1", got.Messages[3].ToolCallID)
	assert.Empty(t, got.Tools)
}

func TestOpenAICompleteServerError(t *testing.T) {
	c := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "boom", "type": "server_error"}}`))
	})

	_, err := c.Complete(context.Background(), []*schema.Message{schema.UserMessage("hi")}, nil)
	require.Error(t, err)

	var apiErr *openai.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.HTTPStatusCode)
	assert.NotContains(t, err.Error(), "test-key")
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	c := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	_, err := c.Complete(context.Background(), []*schema.Message{schema.UserMessage("hi")}, nil)
	require.Error(t, err)
}

func TestFunctionDefinition(t *testing.T) {
	def := functionDefinition(stockSchema())
	assert.Equal(t, "check_stock", def.Name)

	params, ok := def.Parameters.(jsonschema.Definition)
	require.True(t, ok)
	assert.Equal(t, jsonschema.Object, params.Type)
	assert.Equal(t, []string{"product_name"}, params.Required)
	require.Contains(t, params.Properties, "product_name")
	assert.Equal(t, jsonschema.String, params.Properties["product_name"].Type)
	assert.Equal(t, "product id or name", params.Properties["product_name"].Description)
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(OpenAIConfig{Model: "gpt-4o"})
	require.Error(t, err)
}
