package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/shopbot/assistant/internal/agent/functions"
	"github.com/shopbot/assistant/internal/agent/model"
)

//go:embed template/system_prompt.txt
var systemPromptTemplate string

// RenderSystem renders the assistant system prompt through the eino prompt component,
// which also triggers prompt callbacks when ctx carries handlers.
func RenderSystem(ctx context.Context, cfg model.PromptConfig) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(systemPromptTemplate),
	)
	vars := map[string]any{
		"BusinessName":    cfg.BusinessName,
		"BusinessType":    cfg.BusinessType,
		"Language":        cfg.Language,
		"ProductInfoTool": functions.GetProductInfo,
		"StockTool":       functions.CheckStock,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("system prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("system prompt render: empty result")
	}
	return msgs[0].Content, nil
}
