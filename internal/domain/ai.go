// Package domain defines the core persistence models for the application.
// This file covers AI auto-response configuration, conversation history, and
// per-invocation usage telemetry.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Conversation roles. History reconstruction relies on user turns preceding
// their assistant replies (see ConversationMessage).
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Usage log status values. One of these is persisted per AI pipeline
// invocation that reached the external model call.
const (
	UsageStatusSuccess   = "success"
	UsageStatusError     = "error"
	UsageStatusTimeout   = "timeout"
	UsageStatusRateLimit = "rate_limit"
)

// AISettings holds one tenant's AI auto-response configuration: model
// parameters, prompt customization, content policy, and the canned fallback
// strings returned when the pipeline cannot produce a model reply. Exactly
// one row exists per user; the settings UI owns all mutations and the
// pipeline treats the row as read-only.
type AISettings struct {
	ID     string `json:"id"      gorm:"type:char(36);primaryKey"`
	UserID string `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex"`

	IsEnabled   bool    `json:"is_enabled"  gorm:"not null;default:false"`
	Model       string  `json:"model"       gorm:"type:varchar(64);not null;default:'gpt-3.5-turbo'"`
	Temperature float64 `json:"temperature" gorm:"not null;default:0.7"`
	MaxTokens   int     `json:"max_tokens"  gorm:"not null;default:1000"`

	SystemPrompt       string     `json:"system_prompt"       gorm:"type:text"`
	CustomInstructions string     `json:"custom_instructions" gorm:"type:text"`
	ProhibitedWords    StringList `json:"prohibited_words"    gorm:"type:text"`
	MaxResponseLength  int        `json:"max_response_length" gorm:"not null;default:500"`

	// MonthlyRequestLimit caps successful AI invocations per calendar month.
	// Zero means unlimited.
	MonthlyRequestLimit int `json:"monthly_request_limit" gorm:"not null;default:0"`

	// Canned fallback strings, authored by the tenant.
	DefaultResponse string `json:"default_response" gorm:"type:text"`
	TimeoutResponse string `json:"timeout_response" gorm:"type:text"`
	ErrorResponse   string `json:"error_response"   gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for AISettings.
func (AISettings) TableName() string { return "ai_settings" }

// ConversationMessage is a single utterance in a friend's AI conversation,
// append-only. The pipeline appends exactly two rows per successful turn:
// the user input followed by the assistant reply, in that insertion order,
// so the next invocation reconstructs a coherent history window.
type ConversationMessage struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	FriendID  string    `json:"friend_id" gorm:"type:char(36);not null;index:idx_friend_msgs,priority:1"`
	Role      string    `json:"role"      gorm:"type:varchar(16);not null;check:role IN ('user','assistant')"`
	Content   string    `json:"content"   gorm:"type:text;not null"`
	Tokens    int       `json:"tokens"    gorm:"not null;default:0"`
	Model     string    `json:"model"     gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_friend_msgs,priority:2"`
}

// TableName returns the database table name for ConversationMessage.
func (ConversationMessage) TableName() string { return "conversation_messages" }

// UsageLogEntry records one AI pipeline invocation's token counts, estimated
// cost, latency, and outcome. Rows are write-once and feed billing/quota
// checks (see repo.CanUseAI) and offline failure monitoring.
type UsageLogEntry struct {
	ID       string `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID   string `json:"user_id"   gorm:"type:varchar(64);not null;index:idx_user_usage,priority:1"`
	FriendID string `json:"friend_id" gorm:"type:char(36);not null;index"`
	Model    string `json:"model"     gorm:"type:varchar(64);not null"`

	PromptTokens     int     `json:"prompt_tokens"     gorm:"not null;default:0"`
	CompletionTokens int     `json:"completion_tokens" gorm:"not null;default:0"`
	TotalTokens      int     `json:"total_tokens"      gorm:"not null;default:0"`
	EstimatedCost    float64 `json:"estimated_cost"    gorm:"not null;default:0"`
	ResponseTimeMS   int64   `json:"response_time_ms"  gorm:"not null;default:0"`

	Status       string  `json:"status" gorm:"type:varchar(16);not null;check:status IN ('success','error','timeout','rate_limit')"`
	ErrorMessage *string `json:"error_message,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"index:idx_user_usage,priority:2"`
}

// TableName returns the database table name for UsageLogEntry.
func (UsageLogEntry) TableName() string { return "usage_logs" }
