package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/shopbot/assistant/internal/agent/model"
	errx "github.com/shopbot/assistant/internal/core/error"
	logx "github.com/shopbot/assistant/pkg/logger"
)

// Node names in the turn graph.
const (
	NodeTranscriptLoader = "TranscriptLoader"
	NodeCompleter        = "Completer"
	NodeFunctionExecutor = "FunctionExecutor"
)

// turnState is the graph-local state of one RunTurn call.
type turnState struct {
	transcript *model.Transcript
	rounds     int
	callIDSeq  int
	costUSD    float64
}

func newTranscriptLoaderPreHandler() func(context.Context, *model.Transcript, *turnState) (*model.Transcript, error) {
	return func(ctx context.Context, in *model.Transcript, state *turnState) (*model.Transcript, error) {
		if in == nil {
			return nil, fmt.Errorf("transcript is nil")
		}
		state.transcript = in
		return in, nil
	}
}

func newTranscriptLoaderNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t *model.Transcript) ([]*schema.Message, error) {
		return t.Messages(), nil
	})
}

// newCompleterPreHandler feeds the whole transcript to the completer, whichever node ran before it.
func newCompleterPreHandler() func(context.Context, []*schema.Message, *turnState) ([]*schema.Message, error) {
	return func(ctx context.Context, _ []*schema.Message, state *turnState) ([]*schema.Message, error) {
		return state.transcript.Messages(), nil
	}
}

func newCompleterNode(completer Completer, schemas []model.FunctionSchema, timeout time.Duration) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		msg, err := completer.Complete(reqCtx, messages, schemas)
		if err != nil {
			logx.Error().Err(err).Int("messages", len(messages)).Msg("completion request failed")
			return nil, errx.RemoteService(err)
		}
		if msg == nil {
			return nil, errx.RemoteService(errors.New("model returned no message"))
		}
		if len(msg.ToolCalls) == 0 && strings.TrimSpace(msg.Content) == "" {
			return nil, errx.RemoteService(errors.New("model returned an empty message"))
		}
		if msg.Role == "" {
			msg.Role = schema.Assistant
		}
		return msg, nil
	})
}

// newCompleterPostHandler accounts for usage, fills missing call ids and
// records a final answer in the transcript. Function-call messages are
// recorded by the executor once the round is admitted.
func newCompleterPostHandler(modelName string) func(context.Context, *schema.Message, *turnState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *turnState) (*schema.Message, error) {
		if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			usage := out.ResponseMeta.Usage
			inC, outC, totalC := model.ComputeCost(usage, model.ResolvePricing(modelName))
			state.costUSD += totalC
			logx.Debug().
				Str("session_id", state.transcript.ID()).
				Str("model", modelName).
				Int("round", state.rounds).
				Int("prompt_tokens", usage.PromptTokens).
				Int("completion_tokens", usage.CompletionTokens).
				Int("total_tokens", usage.TotalTokens).
				Float64("input_cost_usd", inC).
				Float64("output_cost_usd", outC).
				Float64("total_cost_usd", totalC).
				Msg("LLM usage")
		}

		if len(out.ToolCalls) > 0 {
			// some providers omit call ids; results must still reference their call
			for i := range out.ToolCalls {
				if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
					state.callIDSeq++
					out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.callIDSeq)
				}
			}
			return out, nil
		}

		if out.Extra == nil {
			out.Extra = map[string]any{}
		}
		out.Extra["usage_cost_total_usd"] = state.costUSD
		state.transcript.Append(out)
		logx.Debug().
			Str("session_id", state.transcript.ID()).
			Int("function_rounds", state.rounds).
			Float64("total_cost_usd", state.costUSD).
			Msg("turn complete")
		return out, nil
	}
}

func newFunctionExecutorCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, in *schema.Message) (string, error) {
		if len(in.ToolCalls) > 0 {
			return NodeFunctionExecutor, nil
		}
		return compose.END, nil
	}
}

// newFunctionExecutorPreHandler admits one more round or aborts the turn once
// maxRounds rounds have run. Parallel calls in one message share a round.
func newFunctionExecutorPreHandler(maxRounds int) func(context.Context, *schema.Message, *turnState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *turnState) (*schema.Message, error) {
		if state.rounds >= maxRounds {
			logx.Warn().
				Str("session_id", state.transcript.ID()).
				Int("max_function_rounds", maxRounds).
				Msg("function call limit reached, aborting turn")
			return nil, errx.LoopLimitExceeded(maxRounds)
		}
		state.rounds++
		state.transcript.Append(in)
		return in, nil
	}
}

func newFunctionExecutorPostHandler() func(context.Context, []*schema.Message, *turnState) ([]*schema.Message, error) {
	return func(ctx context.Context, out []*schema.Message, state *turnState) ([]*schema.Message, error) {
		for _, msg := range out {
			logx.Debug().
				Str("session_id", state.transcript.ID()).
				Int("round", state.rounds).
				Str("function", msg.ToolName).
				Msg("function executed")
			state.transcript.Append(msg)
		}
		return out, nil
	}
}
