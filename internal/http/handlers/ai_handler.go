// AI response HTTP handler.
//
// This file exposes the AI auto-response pipeline trigger:
//   - POST /ai/response  (generate an assistant reply for a friend's message)
//
// The handler is transport-thin: it validates the request shape, delegates to
// the pipeline service, and translates the result into HTTP. The pipeline's
// contract is unusual on purpose: every downstream failure (model timeout,
// rate limit, content policy) still returns HTTP 200 with `success: true`, a
// sendable fallback string, and a diagnostic `code` — the chat webhook must
// always receive something it can forward to the end user. Only request-shape
// and configuration errors (missing fields, unknown friend, missing settings)
// return non-200.
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// result exists for (user, friend, key), the handler returns that recorded
// assistant message and sets `Idempotency-Replayed: true`.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lineflow/go-crm-backend/internal/llm"
	"github.com/lineflow/go-crm-backend/internal/repo"
	"github.com/lineflow/go-crm-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// AIResponder defines the AI pipeline operation consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AIResponder interface {
	// Respond runs one pipeline invocation for a friend's inbound message.
	Respond(ctx context.Context, req services.AIRequest) (*services.AIResult, error)
}

// Aggregator defines the daily aggregation operations consumed by HTTP
// handlers.
type Aggregator interface {
	// DefaultTargetDate returns the date aggregated when none is supplied.
	DefaultTargetDate() string
	// Run aggregates every active organization for the target date.
	Run(ctx context.Context, targetDate string) (*services.AggregationSummary, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for the AI pipeline, the aggregation job
// trigger, and the analytics read API. It depends on abstract service
// interfaces to keep transport concerns separate from business logic; the DB
// handle is used only for transport-level concerns (idempotency records, ETag
// stats, analytics paging).
type Handlers struct {
	aiSvc  AIResponder
	aggSvc Aggregator
	db     *gorm.DB

	// IdempotencyTTL bounds replay of recorded results; defaults to 24h.
	IdempotencyTTL time.Duration
}

// New constructs and returns a Handlers instance bound to the given services.
func New(aiSvc AIResponder, aggSvc Aggregator, db *gorm.DB) *Handlers {
	return &Handlers{aiSvc: aiSvc, aggSvc: aggSvc, db: db, IdempotencyTTL: 24 * time.Hour}
}

//
// DTOs
//

// HistoryMessage is one caller-supplied conversation turn.
type HistoryMessage struct {
	// Role is "user" or "assistant".
	Role string `json:"role" example:"user"`
	// Content is the turn's text.
	Content string `json:"content" example:"Do you have any openings tomorrow?"`
}

// AIResponseRequest is the JSON payload for requesting an assistant reply.
type AIResponseRequest struct {
	// FriendID identifies the chat friend the reply is for.
	FriendID string `json:"friend_id" binding:"required" example:"1f0b9a3e-9f2d-4c44-a8d1-2b6f5a3c9e11"`
	// MessageText is the friend's inbound message.
	MessageText string `json:"message_text" binding:"required,min=1" example:"What are your opening hours?"`
	// ConversationHistory optionally overrides the stored history window.
	ConversationHistory []HistoryMessage `json:"conversation_history"`
	// UserID optionally overrides the friend's owning user.
	UserID string `json:"user_id"`
}

// AIResponseBody is the 200 envelope for both success and fallback branches.
// Code is present only on fallbacks; Usage and Warnings only on full success.
type AIResponseBody struct {
	Success  bool              `json:"success"`
	Response string            `json:"response"`
	Code     string            `json:"code,omitempty"`
	Usage    *services.AIUsage `json:"usage,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

//
// Handlers
//

// PostAIResponse godoc
// @ID          postAIResponse
// @Summary     Generate an AI reply for a friend's message
// @Description Runs the auto-response pipeline. Downstream failures (model timeout, rate
// @Description limit, content policy) still return 200 with a sendable fallback string and
// @Description a diagnostic code. Supports idempotency via the Idempotency-Key header.
// @Tags        AI
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.AIResponseRequest  true  "Inbound message payload"
//
// @Success     200  {object}  handlers.AIResponseBody       "Reply or fallback"
// @Failure     400  {object}  handlers.ErrorResponse        "Bad request / AI not configured"
// @Failure     404  {object}  handlers.ErrorResponse        "Friend not found"
// @Failure     500  {object}  handlers.ErrorResponse        "Internal error"
// @Router      /ai/response [post]
func (h *Handlers) PostAIResponse(c *gin.Context) {
	ctx := c.Request.Context()

	var req AIResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "friend_id and message_text required")
		return
	}
	if strings.TrimSpace(req.MessageText) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message_text required")
		return
	}

	// Idempotency (replay path) – read validated key if present.
	idemKey := idempotencyKey(c)
	idemUser := h.resolveIdempotencyUser(ctx, &req)
	if idemKey != "" && idemUser != "" && h.db != nil {
		if rec, err := repo.GetIdempotency(ctx, h.db, idemUser, req.FriendID, idemKey, time.Now().UTC()); err == nil && rec != nil {
			if prev, err2 := repo.GetConversationMessage(ctx, h.db, rec.MessageID); err2 == nil {
				c.Header("Idempotency-Replayed", "true")
				ok(c, http.StatusOK, AIResponseBody{Success: true, Response: prev.Content})
				return
			}
		}
	}

	history := make([]llm.Message, 0, len(req.ConversationHistory))
	for _, m := range req.ConversationHistory {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	result, err := h.aiSvc.Respond(ctx, services.AIRequest{
		FriendID:    req.FriendID,
		MessageText: req.MessageText,
		History:     history,
		UserID:      req.UserID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message_text required")
		case errors.Is(err, services.ErrFriendNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "friend not found")
		case errors.Is(err, services.ErrAINotConfigured):
			fail(c, http.StatusBadRequest, ErrCodeAINotConfigured, "AI is not configured for this account")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeResponseFailed, err.Error())
		}
		return
	}

	// Idempotency (store path) – best effort, success branch only (fallbacks
	// carry no persisted message to replay).
	if idemKey != "" && idemUser != "" && h.db != nil && result.Code == "" && result.MessageID != "" {
		ttl := h.IdempotencyTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		_, _ = repo.CreateIdempotency(ctx, h.db, idemUser, req.FriendID, idemKey, result.MessageID, http.StatusOK, ttl)
	}

	ok(c, http.StatusOK, AIResponseBody{
		Success:  true,
		Response: result.Response,
		Code:     result.Code,
		Usage:    result.Usage,
		Warnings: result.Warnings,
	})
}

// resolveIdempotencyUser determines the user scope for idempotency records:
// the explicit override when supplied, else the friend's owner. Lookup
// failures return "" and disable idempotency for this request (the service
// will surface the 404 on the normal path).
func (h *Handlers) resolveIdempotencyUser(ctx context.Context, req *AIResponseRequest) string {
	if req.UserID != "" {
		return req.UserID
	}
	if h.db == nil {
		return ""
	}
	friend, err := repo.GetFriend(ctx, h.db, req.FriendID)
	if err != nil {
		return ""
	}
	return friend.UserID
}

// idempotencyKey extracts an idempotency key if an upstream middleware has
// already validated/stashed it. The fallback behavior reads the
// "Idempotency-Key" header directly when no dedicated middleware exists.
func idempotencyKey(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader("Idempotency-Key"))
}
