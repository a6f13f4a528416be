package model

import (
	"sort"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// Pricing is the USD price of 1M prompt and completion tokens.
type Pricing struct {
	InputPerM  float64
	OutputPerM float64
}

var pricingTable = map[string]Pricing{
	"gpt-4o":                {InputPerM: 2.50, OutputPerM: 10.00},
	"gpt-4o-mini":           {InputPerM: 0.15, OutputPerM: 0.60},
	"gpt-4.1":               {InputPerM: 2.00, OutputPerM: 8.00},
	"gpt-4.1-mini":          {InputPerM: 0.40, OutputPerM: 1.60},
	"gemini-2.5-pro":        {InputPerM: 1.25, OutputPerM: 10.00},
	"gemini-2.5-flash":      {InputPerM: 0.30, OutputPerM: 2.50},
	"gemini-2.5-flash-lite": {InputPerM: 0.10, OutputPerM: 0.40},
}

// pricedModels is sorted longest first so "gpt-4o-mini-2024-07-18" resolves to
// gpt-4o-mini rather than gpt-4o.
var pricedModels = func() []string {
	names := make([]string, 0, len(pricingTable))
	for name := range pricingTable {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	return names
}()

// ResolvePricing matches model exactly or as a dated snapshot of a known model
// (e.g. gpt-4o-2024-08-06). Unknown models cost zero.
func ResolvePricing(model string) Pricing {
	model = strings.ToLower(strings.TrimSpace(model))
	if p, ok := pricingTable[model]; ok {
		return p
	}
	for _, name := range pricedModels {
		if strings.HasPrefix(model, name+"-") {
			return pricingTable[name]
		}
	}
	return Pricing{}
}

// ComputeCost converts token usage into USD.
func ComputeCost(usage *schema.TokenUsage, p Pricing) (inputCost, outputCost, total float64) {
	if usage == nil {
		return 0, 0, 0
	}
	inputCost = p.InputPerM * float64(usage.PromptTokens) / 1e6
	outputCost = p.OutputPerM * float64(usage.CompletionTokens) / 1e6
	return inputCost, outputCost, inputCost + outputCost
}
