// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the write-once usage log and the
// monthly quota predicate consumed by the AI pipeline's gate checks.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lineflow/go-crm-backend/internal/domain"
)

// CreateUsageLog persists one invocation record. The entry's ID and
// CreatedAt are filled in when empty.
func CreateUsageLog(ctx context.Context, db *gorm.DB, entry *domain.UsageLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(entry).Error
}

// CanUseAI reports whether a user is under their monthly request quota.
// It counts successful invocations since the start of the current calendar
// month (UTC). A limit of zero or less means unlimited.
func CanUseAI(ctx context.Context, db *gorm.DB, userID string, monthlyLimit int, now time.Time) (bool, error) {
	if monthlyLimit <= 0 {
		return true, nil
	}
	monthStart := time.Date(now.UTC().Year(), now.UTC().Month(), 1, 0, 0, 0, 0, time.UTC)

	var n int64
	err := db.WithContext(ctx).
		Model(&domain.UsageLogEntry{}).
		Where("user_id = ? AND status = ? AND created_at >= ?",
			userID, domain.UsageStatusSuccess, monthStart).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n < int64(monthlyLimit), nil
}
