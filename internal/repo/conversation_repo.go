// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file is the conversation-history accessor for the AI
// pipeline: a bounded recent window on read, exactly two appended rows
// (user then assistant) per successful turn on write.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lineflow/go-crm-backend/internal/domain"
)

// ListRecentMessages returns the most recent `limit` conversation messages
// for a friend in chronological (oldest first) order, ready for prompt
// assembly.
func ListRecentMessages(ctx context.Context, db *gorm.DB, friendID string, limit int) ([]domain.ConversationMessage, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []domain.ConversationMessage
	err := db.WithContext(ctx).
		Where("friend_id = ?", friendID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	// Reverse newest-first into chronological order.
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// AppendConversationTurn appends the user input and the assistant reply as
// two rows, user first. The assistant row's timestamp is strictly after the
// user row's so that history reconstruction stays coherent.
//
// The two inserts are intentionally not wrapped in a transaction: both rows
// are append-only and the pipeline accepts an at-least-once risk here (a
// crash between inserts loses the assistant row, which the next turn
// tolerates). See also the usage log write in services.AIService.
func AppendConversationTurn(ctx context.Context, db *gorm.DB, friendID, userContent, assistantContent, model string, userTokens, assistantTokens int) (*domain.ConversationMessage, error) {
	now := time.Now().UTC()

	userRow := &domain.ConversationMessage{
		ID:        uuid.NewString(),
		FriendID:  friendID,
		Role:      domain.RoleUser,
		Content:   userContent,
		Tokens:    userTokens,
		Model:     model,
		CreatedAt: now,
	}
	if err := db.WithContext(ctx).Create(userRow).Error; err != nil {
		return nil, err
	}

	assistantRow := &domain.ConversationMessage{
		ID:        uuid.NewString(),
		FriendID:  friendID,
		Role:      domain.RoleAssistant,
		Content:   assistantContent,
		Tokens:    assistantTokens,
		Model:     model,
		CreatedAt: now.Add(time.Millisecond),
	}
	if err := db.WithContext(ctx).Create(assistantRow).Error; err != nil {
		return nil, err
	}
	return assistantRow, nil
}

// GetConversationMessage fetches one message by ID, or ErrNotFound. Used by
// the idempotent replay path of the AI response handler.
func GetConversationMessage(ctx context.Context, db *gorm.DB, id string) (*domain.ConversationMessage, error) {
	var m domain.ConversationMessage
	err := db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
