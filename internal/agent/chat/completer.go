package chat

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/shopbot/assistant/internal/agent/model"
)

//go:generate mockgen -source=completer.go -destination=mocks/completer.go -package=mocks

// Completer is the remote chat-completion endpoint. It returns either a plain
// assistant message or one carrying function calls in ToolCalls.
type Completer interface {
	Complete(ctx context.Context, transcript []*schema.Message, functions []model.FunctionSchema) (*schema.Message, error)
}
