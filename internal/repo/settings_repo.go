// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides read access to tenant AI settings.
// Settings are mutated only through the settings UI (out of scope); the
// pipeline treats the row as a point-in-time snapshot.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lineflow/go-crm-backend/internal/domain"
)

// GetAISettings fetches the AISettings row for a user, or ErrNotFound when
// the tenant has never configured AI responses.
func GetAISettings(ctx context.Context, db *gorm.DB, userID string) (*domain.AISettings, error) {
	var s domain.AISettings
	err := db.WithContext(ctx).First(&s, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
