package model

import (
	"sort"

	"github.com/cloudwego/eino/schema"
)

// FunctionSchema describes a callable function to the remote model.
type FunctionSchema struct {
	Name        string
	Description string
	Params      map[string]*schema.ParameterInfo
}

// ToolInfo converts the schema into eino's tool description.
func (f FunctionSchema) ToolInfo() *schema.ToolInfo {
	info := &schema.ToolInfo{
		Name: f.Name,
		Desc: f.Description,
	}
	if len(f.Params) > 0 {
		info.ParamsOneOf = schema.NewParamsOneOfByParams(f.Params)
	}
	return info
}

// RequiredParams lists the required argument names in a stable order.
func (f FunctionSchema) RequiredParams() []string {
	names := make([]string, 0, len(f.Params))
	for name, p := range f.Params {
		if p != nil && p.Required {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
