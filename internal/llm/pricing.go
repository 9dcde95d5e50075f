// Package llm – static per-model pricing.
package llm

import "math"

// ModelPricing holds USD prices per 1K tokens for one model.
type ModelPricing struct {
	PromptPer1K     float64
	CompletionPer1K float64
}

// pricingTable maps model identifiers to their per-1K-token USD prices.
// Unknown models fall back to defaultPricing (conservative, gpt-3.5 tier).
var pricingTable = map[string]ModelPricing{
	"gpt-3.5-turbo":     {PromptPer1K: 0.002, CompletionPer1K: 0.002},
	"gpt-3.5-turbo-16k": {PromptPer1K: 0.003, CompletionPer1K: 0.004},
	"gpt-4":             {PromptPer1K: 0.03, CompletionPer1K: 0.06},
	"gpt-4-turbo":       {PromptPer1K: 0.01, CompletionPer1K: 0.03},
	"gpt-4o":            {PromptPer1K: 0.005, CompletionPer1K: 0.015},
	"gpt-4o-mini":       {PromptPer1K: 0.00015, CompletionPer1K: 0.0006},
}

var defaultPricing = ModelPricing{PromptPer1K: 0.002, CompletionPer1K: 0.002}

// PricingFor returns the pricing entry for model, falling back to the
// default tier when the model is not in the table.
func PricingFor(model string) ModelPricing {
	if p, ok := pricingTable[model]; ok {
		return p
	}
	return defaultPricing
}

// EstimateCost computes the estimated USD cost of one completion call from
// the provider-reported token counts, rounded to 6 decimal places.
func EstimateCost(model string, promptTokens, completionTokens int) float64 {
	p := PricingFor(model)
	cost := float64(promptTokens)/1000.0*p.PromptPer1K +
		float64(completionTokens)/1000.0*p.CompletionPer1K
	return math.Round(cost*1e6) / 1e6
}
