// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides write and read access to the derived
// DailyStats table and the read-optimized summary rollup.
//
// Upsert semantics: one row per (organization_id, date), overwrite on
// conflict. Re-running the aggregator for a date replaces the row's values
// instead of accumulating, which is what makes the job idempotent.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lineflow/go-crm-backend/internal/domain"
)

// UpsertDailyStats inserts or overwrites the DailyStats row for the row's
// (organization_id, date) key. All metric columns are written together; a
// conflicting row is fully replaced, never partially patched.
func UpsertDailyStats(ctx context.Context, db *gorm.DB, row *domain.DailyStats) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "organization_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"messages_sent", "messages_delivered", "messages_read", "messages_failed",
				"friends_added", "friends_deleted", "friends_total",
				"reservations_created", "reservations_confirmed", "reservations_cancelled",
				"reservations_completed", "reservations_no_show",
				"forms_viewed", "forms_submitted", "forms_abandoned",
				"url_clicks_total", "unique_url_clicks",
				"open_rate", "click_rate", "response_rate", "form_completion_rate",
				"updated_at",
			}),
		}).
		Create(row).Error
}

// GetDailyStats fetches the row for one organization and date, or ErrNotFound.
func GetDailyStats(ctx context.Context, db *gorm.DB, orgID, date string) (*domain.DailyStats, error) {
	var row domain.DailyStats
	err := db.WithContext(ctx).
		First(&row, "organization_id = ? AND date = ?", orgID, date).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CountDailyStats returns the total DailyStats rows, optionally scoped to one
// organization (empty orgID means all).
func CountDailyStats(ctx context.Context, db *gorm.DB, orgID string) (int64, error) {
	var n int64
	err := scopeOrg(db.WithContext(ctx).Model(&domain.DailyStats{}), orgID).
		Count(&n).Error
	return n, err
}

// ListDailyStatsPage returns a page of DailyStats rows, most recent date
// first, optionally scoped to one organization (empty orgID means all).
func ListDailyStatsPage(ctx context.Context, db *gorm.DB, orgID string, offset, limit int) ([]domain.DailyStats, error) {
	var rows []domain.DailyStats
	err := scopeOrg(db.WithContext(ctx), orgID).
		Order("date DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// scopeOrg narrows a daily_stats query to one organization when orgID is set.
func scopeOrg(q *gorm.DB, orgID string) *gorm.DB {
	if orgID == "" {
		return q
	}
	return q.Where("organization_id = ?", orgID)
}

// DailyStatsStats returns aggregate metadata for DailyStats rows (optionally
// scoped to one organization): the total number of rows and the maximum
// UpdatedAt among them. Used for ETag generation on the analytics read
// endpoint. When there are no rows, count is 0 and maxUpdatedAt is nil.
func DailyStatsStats(ctx context.Context, db *gorm.DB, orgID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := scopeOrg(db.WithContext(ctx).Model(&domain.DailyStats{}), orgID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// RefreshDailyStatsSummary rebuilds the read-optimized per-organization
// rollup from daily_stats. The rebuild is wholesale (delete + insert-select)
// inside one transaction. Aggregation treats a failure here as non-critical:
// it is logged and swallowed, never failing the job.
func RefreshDailyStatsSummary(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM daily_stats_summary").Error; err != nil {
			return err
		}
		return tx.Exec(`
			INSERT INTO daily_stats_summary
				(organization_id, days_aggregated, messages_delivered, messages_read,
				 friends_added, forms_submitted, url_clicks_total, last_date, refreshed_at)
			SELECT organization_id,
			       COUNT(*),
			       SUM(messages_delivered),
			       SUM(messages_read),
			       SUM(friends_added),
			       SUM(forms_submitted),
			       SUM(url_clicks_total),
			       MAX(date),
			       ?
			FROM daily_stats
			GROUP BY organization_id`, time.Now().UTC()).Error
	})
}
