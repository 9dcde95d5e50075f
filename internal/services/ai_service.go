// Package services – AIService
//
// This file implements the AI auto-response pipeline: given a friend and an
// inbound message it assembles conversational context, calls the external
// language model under a token/cost budget, validates and sanitizes the
// result, and persists usage telemetry plus the conversation turn.
//
// One pass per invocation:
//
//	RECEIVED → CONTEXT_LOADED → {AI_DISABLED | LIMIT_EXCEEDED}
//	→ HISTORY_BUILT → LLM_CALLED → {TIMEOUT | RATE_LIMIT | ERROR}
//	→ RESPONSE_VALIDATED → {VALIDATION_FAILED | INAPPROPRIATE_CONTENT}
//	→ FORMATTED → LOGGED → SUCCESS
//
// The central property: every terminal fallback still yields a sendable,
// tenant-authored string with a machine-readable code — the end user never
// sees a raw error, while the usage log keeps full failure detail for
// monitoring. Only configuration errors (unknown friend, missing settings,
// empty input) surface as Go errors for the handler to map to 4xx.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/lineflow/go-crm-backend/internal/domain"
	"github.com/lineflow/go-crm-backend/internal/llm"
	"github.com/lineflow/go-crm-backend/internal/repo"
)

// Terminal codes carried by fallback results. A successful invocation has an
// empty code.
const (
	CodeAIDisabled       = "AI_DISABLED"
	CodeLimitExceeded    = "LIMIT_EXCEEDED"
	CodeTimeout          = "TIMEOUT"
	CodeRateLimit        = "RATE_LIMIT"
	CodeError            = "ERROR"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeInappropriate    = "INAPPROPRIATE_CONTENT"
)

// Built-in fallback strings used when a tenant has not authored one, plus
// the canned messages for branches that are not tenant-configurable.
const (
	builtinDefaultResponse = "Thank you for your message. A member of our team will get back to you shortly."
	builtinTimeoutResponse = "Sorry, it is taking longer than usual to reply. Please try again in a moment."
	builtinErrorResponse   = "Sorry, we could not process your message right now. Please try again later."
	overLimitMessage       = "The automatic assistant is unavailable right now. A member of our team will reply to you directly."
	rateLimitMessage       = "We are receiving a lot of messages right now. Please try again in a few minutes."
)

// AIRequest is the input of one pipeline invocation.
type AIRequest struct {
	FriendID    string
	MessageText string

	// History optionally overrides the stored conversation window
	// (oldest first). When empty, the last HistoryLimit turns are loaded.
	History []llm.Message

	// UserID optionally overrides the friend's owning user, for
	// cross-context invocation.
	UserID string
}

// AIUsage is the billing view of one successful invocation.
type AIUsage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	EstimatedCost    float64 `json:"estimated_cost"`
}

// AIResult is the outcome of one invocation. Code is empty on full success
// and one of the terminal codes on a fallback; Response is always a
// non-empty, sendable string either way.
type AIResult struct {
	Response  string
	Code      string
	Usage     *AIUsage
	Warnings  []string
	MessageID string // persisted assistant message id, success only
}

// AIService orchestrates the auto-response pipeline.
type AIService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// LLM is the chat-completion client wrapper.
	LLM llm.Client

	// HistoryLimit bounds the stored-history window; defaults to 10 turns.
	HistoryLimit int
	// Now is the clock seam; defaults to time.Now when nil.
	Now func() time.Time
}

// NewAIService constructs an AIService with default tunables.
func NewAIService(db *gorm.DB, client llm.Client) *AIService {
	return &AIService{DB: db, LLM: client, HistoryLimit: 10, Now: time.Now}
}

// Respond runs one pipeline invocation.
//
// Returned errors are limited to the configuration sentinels in errors.go;
// every other failure mode resolves to a fallback AIResult with nil error.
func (s *AIService) Respond(ctx context.Context, req AIRequest) (*AIResult, error) {
	tr := otel.Tracer("services/AIService")
	ctx, span := tr.Start(ctx, "Respond",
		trace.WithAttributes(attribute.String("friend.id", req.FriendID)),
	)
	defer span.End()

	started := s.now()
	defer func() { aiResponseSeconds.Observe(time.Since(started).Seconds()) }()

	messageText := strings.TrimSpace(req.MessageText)
	if messageText == "" {
		return nil, ErrEmptyMessage
	}

	// Load context: friend, owning tenant, settings.
	friend, err := repo.GetFriend(ctx, s.DB, req.FriendID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrFriendNotFound
		}
		return nil, err
	}

	userID := friend.UserID
	if req.UserID != "" {
		userID = req.UserID
	}

	settings, err := repo.GetAISettings(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAINotConfigured
		}
		return nil, err
	}

	// Gate checks, each short-circuiting to a sendable fallback.
	if !settings.IsEnabled {
		return s.fallback(CodeAIDisabled, fallbackOr(settings.DefaultResponse, builtinDefaultResponse)), nil
	}
	allowed, err := repo.CanUseAI(ctx, s.DB, userID, settings.MonthlyRequestLimit, s.now())
	if err != nil {
		// Quota bookkeeping must not block customer replies; fail open.
		log.Warn().Str("user_id", userID).Err(err).Msg("quota check failed, allowing request")
		allowed = true
	}
	if !allowed {
		return s.fallback(CodeLimitExceeded, overLimitMessage), nil
	}

	// Assemble friend context. Tag lookup failures degrade to no tags.
	tags, err := repo.ListFriendTagNames(ctx, s.DB, friend.ID)
	if err != nil {
		log.Warn().Str("friend_id", friend.ID).Err(err).Msg("tag lookup failed")
		tags = nil
	}
	fc := llm.FriendContext{
		ID:                friend.ID,
		DisplayName:       friend.DisplayName,
		CustomFields:      friend.CustomFields,
		Tags:              tags,
		LastInteractionAt: friend.LastInteractionAt,
	}

	// Resolve and budget conversation history.
	history := req.History
	if len(history) == 0 {
		stored, histErr := repo.ListRecentMessages(ctx, s.DB, friend.ID, s.historyLimit())
		if histErr != nil {
			log.Warn().Str("friend_id", friend.ID).Err(histErr).Msg("history load failed")
		}
		for _, m := range stored {
			history = append(history, llm.Message{Role: m.Role, Content: m.Content})
		}
	}
	var warnings []string
	budget := llm.HistoryBudget(settings.MaxTokens)
	truncated := llm.TruncateHistory(history, budget)
	if len(truncated) < len(history) {
		warnings = append(warnings, "conversation history truncated to fit token budget")
	}

	systemPrompt := llm.BuildSystemPrompt(settings.SystemPrompt, settings.CustomInstructions, fc)
	messages := llm.BuildMessages(systemPrompt, truncated, messageText)

	// External model call. No retries: a failure is terminal for this
	// invocation and the webhook may retry the whole request.
	completion, err := s.LLM.ChatCompletion(ctx, llm.Request{
		Model:       settings.Model,
		Messages:    messages,
		Temperature: settings.Temperature,
		MaxTokens:   settings.MaxTokens,
	})
	elapsedMS := time.Since(started).Milliseconds()
	if err != nil {
		return s.llmFailure(ctx, settings, friend, userID, err, elapsedMS), nil
	}

	// Validate: tenant policy first, then the built-in appropriateness
	// heuristic. Both always run — they are monitored as distinct
	// categories even though they share a fallback message.
	validationErr := ValidateResponse(completion.Content, settings.MaxResponseLength, settings.ProhibitedWords)
	appropriatenessErr := CheckAppropriateness(completion.Content)
	if validationErr != nil || appropriatenessErr != nil {
		code := CodeValidationFailed
		reason := validationErr
		if validationErr == nil {
			code = CodeInappropriate
			reason = appropriatenessErr
		}
		if validationErr != nil {
			log.Warn().Str("friend_id", friend.ID).Err(validationErr).Msg("response validation failed")
		}
		if appropriatenessErr != nil {
			log.Warn().Str("friend_id", friend.ID).Err(appropriatenessErr).Msg("response flagged inappropriate")
		}
		s.writeUsageLog(ctx, settings, friend, userID, completion.Usage, domain.UsageStatusError, elapsedMS, reason.Error())
		return s.fallback(code, fallbackOr(settings.ErrorResponse, builtinErrorResponse)), nil
	}

	response := FormatForTransport(completion.Content)
	cost := llm.EstimateCost(settings.Model, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)

	// Persist telemetry and the conversation turn. The usage log and the
	// two message inserts are independent, non-transactional writes: a
	// partial write here is an accepted, logged risk, not an invariant.
	s.writeUsageLog(ctx, settings, friend, userID, completion.Usage, domain.UsageStatusSuccess, elapsedMS, "")

	assistantMsg, err := repo.AppendConversationTurn(ctx, s.DB,
		friend.ID, messageText, response, settings.Model,
		llm.EstimateTokens(messageText), completion.Usage.CompletionTokens)
	if err != nil {
		log.Error().Str("friend_id", friend.ID).Err(err).Msg("conversation append failed")
	}
	if err := repo.TouchLastInteraction(ctx, s.DB, friend.ID, s.now()); err != nil {
		log.Warn().Str("friend_id", friend.ID).Err(err).Msg("last interaction update failed")
	}

	aiOutcomes.WithLabelValues("SUCCESS").Inc()
	result := &AIResult{
		Response: response,
		Usage: &AIUsage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
			TotalTokens:      completion.Usage.TotalTokens,
			EstimatedCost:    cost,
		},
		Warnings: warnings,
	}
	if assistantMsg != nil {
		result.MessageID = assistantMsg.ID
	}
	return result, nil
}

// llmFailure maps a typed client error onto its terminal fallback branch and
// records the usage log row for the failed call.
func (s *AIService) llmFailure(ctx context.Context, settings *domain.AISettings, friend *domain.Friend, userID string, err error, elapsedMS int64) *AIResult {
	var (
		timeoutErr   *llm.TimeoutError
		rateLimitErr *llm.RateLimitError
	)
	switch {
	case errors.As(err, &timeoutErr):
		s.writeUsageLog(ctx, settings, friend, userID, llm.Usage{}, domain.UsageStatusTimeout, elapsedMS, err.Error())
		return s.fallback(CodeTimeout, fallbackOr(settings.TimeoutResponse, builtinTimeoutResponse))
	case errors.As(err, &rateLimitErr):
		s.writeUsageLog(ctx, settings, friend, userID, llm.Usage{}, domain.UsageStatusRateLimit, elapsedMS, err.Error())
		return s.fallback(CodeRateLimit, rateLimitMessage)
	default:
		// *llm.APIError and anything unexpected.
		s.writeUsageLog(ctx, settings, friend, userID, llm.Usage{}, domain.UsageStatusError, elapsedMS, err.Error())
		return s.fallback(CodeError, fallbackOr(settings.ErrorResponse, builtinErrorResponse))
	}
}

// writeUsageLog persists one UsageLogEntry. Best effort: a failure is logged
// and never escalated — telemetry must not break the reply path.
func (s *AIService) writeUsageLog(ctx context.Context, settings *domain.AISettings, friend *domain.Friend, userID string, usage llm.Usage, status string, elapsedMS int64, errMsg string) {
	entry := &domain.UsageLogEntry{
		UserID:           userID,
		FriendID:         friend.ID,
		Model:            settings.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
		EstimatedCost:    llm.EstimateCost(settings.Model, usage.PromptTokens, usage.CompletionTokens),
		ResponseTimeMS:   elapsedMS,
		Status:           status,
	}
	if errMsg != "" {
		entry.ErrorMessage = &errMsg
	}
	if err := repo.CreateUsageLog(ctx, s.DB, entry); err != nil {
		log.Error().Str("user_id", userID).Str("status", status).Err(err).Msg("usage log write failed")
	}
}

// fallback builds a terminal fallback result and counts it.
func (s *AIService) fallback(code, message string) *AIResult {
	aiOutcomes.WithLabelValues(code).Inc()
	return &AIResult{Response: message, Code: code}
}

func (s *AIService) historyLimit() int {
	if s.HistoryLimit > 0 {
		return s.HistoryLimit
	}
	return 10
}

func (s *AIService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// fallbackOr returns the tenant-authored string when present, else the
// built-in default. Fallbacks must always be sendable.
func fallbackOr(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
