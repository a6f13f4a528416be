package functions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"

	"github.com/shopbot/assistant/internal/agent/model"
	errx "github.com/shopbot/assistant/internal/core/error"
	logx "github.com/shopbot/assistant/pkg/logger"
)

const callbackType = "CatalogFunction"

// Function pairs the schema advertised to the model with its local handler.
type Function struct {
	Schema model.FunctionSchema
	Tool   tool.InvokableTool
}

// NewFunction wraps a typed handler. Arguments are decoded into T and the result D
// is encoded as JSON for the model.
func NewFunction[T, D any](fs model.FunctionSchema, fn func(ctx context.Context, in T) (D, error)) Function {
	return Function{
		Schema: fs,
		Tool:   utils.NewTool[T, D](fs.ToolInfo(), fn),
	}
}

// Registry is a flat name -> function mapping. It is built once and read-only afterwards.
type Registry struct {
	order []string
	funcs map[string]Function
}

func NewRegistry(fns ...Function) (*Registry, error) {
	r := &Registry{funcs: make(map[string]Function, len(fns))}
	for _, fn := range fns {
		name := fn.Schema.Name
		if name == "" {
			return nil, fmt.Errorf("function with empty name")
		}
		if fn.Tool == nil {
			return nil, fmt.Errorf("function %s has no handler", name)
		}
		if _, dup := r.funcs[name]; dup {
			return nil, fmt.Errorf("function %s registered twice", name)
		}
		r.funcs[name] = fn
		r.order = append(r.order, name)
	}
	return r, nil
}

// DescribeAll returns the schemas of every function in registration order.
func (r *Registry) DescribeAll() []model.FunctionSchema {
	return lo.Map(r.order, func(name string, _ int) model.FunctionSchema {
		return r.funcs[name].Schema
	})
}

// Names returns the registered function names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Tools returns the registered functions as tools for a compose.ToolsNode.
// A handler failure becomes an ErrorResult instead of failing the node.
func (r *Registry) Tools() []tool.BaseTool {
	return lo.Map(r.order, func(name string, _ int) tool.BaseTool {
		return &reportingTool{name: name, InvokableTool: r.funcs[name].Tool}
	})
}

// SanitizeArguments normalizes the model's JSON arguments for the named function.
// Unregistered names pass through untouched.
func (r *Registry) SanitizeArguments(name, arguments string) string {
	fn, ok := r.funcs[name]
	if !ok {
		return arguments
	}
	return sanitizeArguments(fn.Schema, arguments)
}

// Invoke runs the named function outside a graph. An unregistered name yields
// an ErrUnknownFunction error.
func (r *Registry) Invoke(ctx context.Context, name, arguments string) (string, error) {
	fn, ok := r.funcs[name]
	if !ok {
		return "", errx.UnknownFunction(name)
	}
	out, err := fn.Tool.InvokableRun(ctx, sanitizeArguments(fn.Schema, arguments))
	if err != nil {
		return "", fmt.Errorf("function %s: %w", name, err)
	}
	return out, nil
}

// ErrorResult is the structured result the model sees when a call cannot be served.
func ErrorResult(name string, err error) string {
	code := "function_failed"
	if errors.Is(err, errx.ErrUnknownFunction) {
		code = "unknown_function"
	}
	b, mErr := json.Marshal(map[string]string{
		"error":  code,
		"name":   name,
		"detail": err.Error(),
	})
	if mErr != nil {
		return fmt.Sprintf(`{"error":%q}`, code)
	}
	return string(b)
}

type reportingTool struct {
	name string
	tool.InvokableTool
}

func (t *reportingTool) GetType() string { return callbackType }

func (t *reportingTool) InvokableRun(ctx context.Context, arguments string, opts ...tool.Option) (string, error) {
	out, err := t.InvokableTool.InvokableRun(ctx, arguments, opts...)
	if err != nil {
		logx.Warn().Err(err).Str("function", t.name).Msg("function failed, reporting error to model")
		return ErrorResult(t.name, err), nil
	}
	return out, nil
}

// sanitizeArguments is best effort and never fails: non-JSON becomes "{}",
// undeclared keys are dropped and string parameters are trimmed or coerced.
func sanitizeArguments(fs model.FunctionSchema, arguments string) string {
	var m map[string]any
	if err := json.Unmarshal([]byte(arguments), &m); err != nil || m == nil {
		return "{}"
	}

	for key, v := range m {
		param, declared := fs.Params[key]
		if !declared || param == nil {
			delete(m, key)
			continue
		}
		if param.Type != schema.String {
			continue
		}
		switch vv := v.(type) {
		case string:
			m[key] = strings.TrimSpace(vv)
		case float64, bool:
			m[key] = fmt.Sprint(vv)
		default:
			delete(m, key)
		}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}
