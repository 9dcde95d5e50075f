// Package llm wraps the external chat-completion provider behind a narrow
// client interface with a typed error taxonomy. This file defines the error
// types; the pipeline switches on these with errors.As instead of matching
// substrings of upstream error text.
package llm

import "fmt"

// TimeoutError indicates the completion call exceeded the client's hard
// deadline. The pipeline treats it as terminal for the invocation (the
// tenant's timeout fallback is returned); callers may retry the whole request.
type TimeoutError struct {
	Elapsed string
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("llm: request timed out after %s", e.Elapsed)
}

// RateLimitError indicates the provider rejected the call with a rate-limit
// or quota response (HTTP 429).
type RateLimitError struct {
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("llm: rate limited: %s", e.Message)
}

// APIError covers every other provider failure: transport faults, non-429
// HTTP errors, malformed responses, and empty completions.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm: api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("llm: api error: %s", e.Message)
}
