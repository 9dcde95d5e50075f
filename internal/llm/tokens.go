// Package llm – token estimation and history budgeting.
//
// The estimator is a deliberate heuristic (≈4 bytes per token); exact
// tokenization differs per model and is not worth a tokenizer dependency for
// budget enforcement. Estimates are used only to bound prompt size, never for
// billing (billing uses the provider-reported usage counts).
package llm

// HistoryBudgetRatio is the fraction of a tenant's max_tokens reserved for
// conversation history. The remainder is left for the system prompt and the
// model's own completion.
const HistoryBudgetRatio = 0.4

// EstimateTokens returns a heuristic token count for a text fragment:
// ceil(len/4) with a minimum of 1 for non-empty input.
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	n := (len(s) + 3) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// EstimateMessagesTokens sums the estimated token counts of a message list.
func EstimateMessagesTokens(msgs []Message) int {
	total := 0
	for _, m := range msgs {
		total += EstimateTokens(m.Content)
	}
	return total
}

// HistoryBudget returns the token budget for conversation history given a
// tenant's configured max_tokens.
func HistoryBudget(maxTokens int) int {
	if maxTokens <= 0 {
		return 0
	}
	return int(float64(maxTokens) * HistoryBudgetRatio)
}

// TruncateHistory drops the oldest turns of history (which must be ordered
// oldest first) until the estimated token total of the remainder fits budget.
// It returns the retained suffix; a nil or empty result means no history fits.
func TruncateHistory(history []Message, budget int) []Message {
	if budget <= 0 {
		return nil
	}
	start := 0
	total := EstimateMessagesTokens(history)
	for start < len(history) && total > budget {
		total -= EstimateTokens(history[start].Content)
		start++
	}
	if start == 0 {
		return history
	}
	return history[start:]
}
