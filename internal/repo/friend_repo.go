// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Friend
// model and its tag associations.
//
// Error semantics:
//   - When a friend is not found, GetFriend returns gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/lineflow/go-crm-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetFriend fetches a single friend by ID, or ErrNotFound if missing.
func GetFriend(ctx context.Context, db *gorm.DB, id string) (*domain.Friend, error) {
	var f domain.Friend
	err := db.WithContext(ctx).First(&f, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListFriendTagNames returns the flattened tag names attached to a friend,
// dropping empty values. An unknown friend yields an empty slice, not an
// error; tag lookup failures must not block an AI reply.
func ListFriendTagNames(ctx context.Context, db *gorm.DB, friendID string) ([]string, error) {
	var names []string
	err := db.WithContext(ctx).
		Model(&domain.Tag{}).
		Joins("JOIN friend_tags ON friend_tags.tag_id = tags.id").
		Where("friend_tags.friend_id = ? AND tags.name <> ''", friendID).
		Order("tags.name ASC").
		Pluck("tags.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

// CountActiveFriends returns the current number of non-blocked, non-deleted
// friends for an organization. This is a point-in-time snapshot, not a
// time-windowed count; the aggregator stores it as friends_total.
func CountActiveFriends(ctx context.Context, db *gorm.DB, orgID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Friend{}).
		Where("organization_id = ? AND status = ?", orgID, domain.FriendStatusActive).
		Count(&n).Error
	return n, err
}

// TouchLastInteraction updates a friend's last_interaction_at to now.
// Best effort: callers log and continue on failure.
func TouchLastInteraction(ctx context.Context, db *gorm.DB, friendID string, now time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Friend{}).
		Where("id = ?", friendID).
		Update("last_interaction_at", now.UTC()).Error
}
