// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the read-side queries over the
// append-only event log used by the daily aggregator.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only query
// composition. Derived-metric math lives in services.AggregationService.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lineflow/go-crm-backend/internal/domain"
)

// CountEventsByType returns per-event-type counts for one organization over
// the closed window [from, to] (BETWEEN is inclusive on both ends). Event
// types with no rows are absent from the map; callers treat missing keys as
// zero.
func CountEventsByType(ctx context.Context, db *gorm.DB, orgID string, from, to time.Time) (map[string]int64, error) {
	type row struct {
		EventType string
		N         int64
	}
	var rows []row
	err := db.WithContext(ctx).
		Model(&domain.Event{}).
		Select("event_type, COUNT(*) AS n").
		Where("organization_id = ? AND created_at BETWEEN ? AND ?", orgID, from, to).
		Group("event_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.EventType] = r.N
	}
	return out, nil
}

// URLClickCounts returns the total number of url_clicked events and the
// distinct-friend cardinality for one organization in the window. Clicks
// without a friend attribution count toward total but not toward unique.
func URLClickCounts(ctx context.Context, db *gorm.DB, orgID string, from, to time.Time) (total, unique int64, err error) {
	base := db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("organization_id = ? AND event_type = ? AND created_at BETWEEN ? AND ?",
			orgID, domain.EventURLClicked, from, to)

	if err = base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = base.Session(&gorm.Session{}).
		Where("friend_id IS NOT NULL").
		Distinct("friend_id").
		Count(&unique).Error
	if err != nil {
		return 0, 0, err
	}
	return total, unique, nil
}
