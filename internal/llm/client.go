// Package llm – chat-completion client wrapper.
//
// This file defines the narrow Client interface the AI pipeline depends on
// and its OpenAI-backed implementation. The wrapper owns the hard request
// deadline and converts provider failures into the typed taxonomy in
// errors.go, so callers never inspect upstream error strings.
package llm

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultTimeout is the hard deadline for one completion call. The pipeline
// performs no retries; a timeout is terminal for the invocation.
const DefaultTimeout = 30 * time.Second

// Message is one entry of the chat transcript sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one completion call.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Usage carries the provider-reported token accounting for one call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the successful result of one call. Content is guaranteed
// non-empty by the wrapper.
type Completion struct {
	Content string
	Usage   Usage
}

// Client is the contract the AI pipeline depends on. Implementations must
// return only *TimeoutError, *RateLimitError, or *APIError on failure.
type Client interface {
	ChatCompletion(ctx context.Context, req Request) (*Completion, error)
}

// OpenAIClient implements Client on top of the OpenAI chat-completion API
// (or any compatible endpoint via BaseURL).
type OpenAIClient struct {
	client  *openai.Client
	timeout time.Duration
}

// NewOpenAIClient constructs an OpenAIClient. baseURL may be empty for the
// default endpoint; timeout <= 0 falls back to DefaultTimeout.
func NewOpenAIClient(apiKey, baseURL string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(cfg),
		timeout: timeout,
	}
}

// ChatCompletion performs one completion call under the client's deadline.
//
// Error mapping:
//   - deadline exceeded          → *TimeoutError
//   - provider HTTP 429          → *RateLimitError
//   - any other failure          → *APIError
//   - empty completion content   → *APIError (treated as a provider fault)
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req Request) (*Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, classify(ctx, err, c.timeout)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, &APIError{Message: "empty completion content"}
	}

	return &Completion{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// classify converts an upstream error into the typed taxonomy.
func classify(ctx context.Context, err error, timeout time.Duration) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Elapsed: timeout.String()}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 {
			return &RateLimitError{Message: apiErr.Message}
		}
		return &APIError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == 429 {
			return &RateLimitError{Message: reqErr.Error()}
		}
		return &APIError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}

	return &APIError{Message: err.Error()}
}
