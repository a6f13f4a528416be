// Package chat runs one user turn against the remote model, dispatching the
// function calls it asks for until it produces a plain-text answer.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/shopbot/assistant/internal/agent/functions"
	"github.com/shopbot/assistant/internal/agent/model"
	errx "github.com/shopbot/assistant/internal/core/error"
	logx "github.com/shopbot/assistant/pkg/logger"
)

const (
	DefaultMaxFunctionRounds = 5
	DefaultRequestTimeout    = 30 * time.Second

	graphName = "ShopBotTurn"
)

type Config struct {
	// MaxFunctionRounds caps function-call round trips per turn; <= 0 means the default.
	MaxFunctionRounds int
	// RequestTimeout bounds each call to the completer; <= 0 means the default.
	RequestTimeout time.Duration
	// ModelName is used for cost accounting.
	ModelName string
	Callbacks []einocb.Handler
}

type Orchestrator struct {
	completer Completer
	registry  *functions.Registry
	cfg       Config
	runnable  compose.Runnable[*model.Transcript, *schema.Message]
}

// NewOrchestrator validates its inputs and compiles the turn graph:
//
//	START -> TranscriptLoader -> Completer -+-> END
//	                                 ^      |
//	                                 +-- FunctionExecutor
func NewOrchestrator(completer Completer, registry *functions.Registry, cfg Config) (*Orchestrator, error) {
	if completer == nil {
		return nil, fmt.Errorf("completer is nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("function registry is nil")
	}
	if cfg.MaxFunctionRounds <= 0 {
		cfg.MaxFunctionRounds = DefaultMaxFunctionRounds
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	o := &Orchestrator{completer: completer, registry: registry, cfg: cfg}
	runnable, err := o.buildGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.runnable = runnable
	return o, nil
}

// RunTurn resolves the user message already appended to t. Every model response
// and function result is appended to t; the final assistant message is returned.
func (o *Orchestrator) RunTurn(ctx context.Context, t *model.Transcript) (*schema.Message, error) {
	var opts []compose.Option
	if len(o.cfg.Callbacks) > 0 {
		opts = append(opts, compose.WithCallbacks(o.cfg.Callbacks...))
	}

	out, err := o.runnable.Invoke(ctx, t, opts...)
	if err != nil {
		var appErr *errx.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		logx.Error().Err(err).Str("session_id", t.ID()).Msg("turn graph failed")
		return nil, errx.RemoteService(err)
	}
	return out, nil
}

func (o *Orchestrator) buildGraph(ctx context.Context) (compose.Runnable[*model.Transcript, *schema.Message], error) {
	g := compose.NewGraph[*model.Transcript, *schema.Message](
		compose.WithGenLocalState(func(ctx context.Context) *turnState {
			return &turnState{}
		}),
	)

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               o.registry.Tools(),
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			logx.Warn().
				Str("function", name).
				Str("arguments", input).
				Msg("model requested an unknown function")
			return functions.ErrorResult(name, errx.UnknownFunction(name)), nil
		},
		ToolArgumentsHandler: func(ctx context.Context, name, arguments string) (string, error) {
			return o.registry.SanitizeArguments(name, arguments), nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create function executor: %w", err)
	}

	if err := g.AddLambdaNode(NodeTranscriptLoader,
		newTranscriptLoaderNode(),
		compose.WithStatePreHandler(newTranscriptLoaderPreHandler()),
	); err != nil {
		return nil, err
	}
	if err := g.AddLambdaNode(NodeCompleter,
		newCompleterNode(o.completer, o.registry.DescribeAll(), o.cfg.RequestTimeout),
		compose.WithStatePreHandler(newCompleterPreHandler()),
		compose.WithStatePostHandler(newCompleterPostHandler(o.cfg.ModelName)),
	); err != nil {
		return nil, err
	}
	if err := g.AddToolsNode(NodeFunctionExecutor, toolsNode,
		compose.WithStatePreHandler(newFunctionExecutorPreHandler(o.cfg.MaxFunctionRounds)),
		compose.WithStatePostHandler(newFunctionExecutorPostHandler()),
	); err != nil {
		return nil, err
	}

	edges := [][2]string{
		{compose.START, NodeTranscriptLoader},
		{NodeTranscriptLoader, NodeCompleter},
		{NodeFunctionExecutor, NodeCompleter},
	}
	for _, edge := range edges {
		if err := g.AddEdge(edge[0], edge[1]); err != nil {
			return nil, err
		}
	}

	decision := compose.NewGraphBranch(
		newFunctionExecutorCondition(),
		map[string]bool{
			NodeFunctionExecutor: true,
			compose.END:          true,
		},
	)
	if err := g.AddBranch(NodeCompleter, decision); err != nil {
		return nil, fmt.Errorf("error adding decision branch: %w", err)
	}

	// every round is a completer step plus an executor step
	maxSteps := 10 + o.cfg.MaxFunctionRounds*2
	if maxSteps < 20 {
		maxSteps = 20
	}
	runnable, err := g.Compile(ctx,
		compose.WithGraphName(graphName),
		compose.WithMaxRunSteps(maxSteps),
	)
	if err != nil {
		return nil, fmt.Errorf("error compiling turn graph: %w", err)
	}
	return runnable, nil
}
