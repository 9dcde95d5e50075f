// Package domain defines the core persistence models for the application.
// This file covers the derived per-tenant daily analytics summary.
package domain

import "time"

// DailyStats is the derived analytics row produced by the daily aggregator:
// exactly one row per (organization_id, date), written with upsert semantics
// so re-running the job for the same date overwrites rather than accumulates.
//
// All counters are scoped to the target date except FriendsTotal, which is a
// current snapshot of non-blocked friends taken at aggregation time. Callers
// must not assume every field carries "as of that day" semantics.
//
// ClickRate and ResponseRate are nullable: the click-to-message and
// response-matching joins are not implemented yet, and persisting NULL keeps
// an honest "not yet computed" sentinel instead of a fake zero.
type DailyStats struct {
	ID             string `json:"id"              gorm:"type:char(36);primaryKey"`
	OrganizationID string `json:"organization_id" gorm:"type:char(36);not null;uniqueIndex:ux_org_date,priority:1"`
	Date           string `json:"date"            gorm:"type:char(10);not null;uniqueIndex:ux_org_date,priority:2"`

	// Messages family.
	MessagesSent      int64 `json:"messages_sent"      gorm:"not null;default:0"`
	MessagesDelivered int64 `json:"messages_delivered" gorm:"not null;default:0"`
	MessagesRead      int64 `json:"messages_read"      gorm:"not null;default:0"`
	MessagesFailed    int64 `json:"messages_failed"    gorm:"not null;default:0"`

	// Friends family. FriendsTotal is a snapshot count, not time-windowed.
	FriendsAdded   int64 `json:"friends_added"   gorm:"not null;default:0"`
	FriendsDeleted int64 `json:"friends_deleted" gorm:"not null;default:0"`
	FriendsTotal   int64 `json:"friends_total"   gorm:"not null;default:0"`

	// Reservations family.
	ReservationsCreated   int64 `json:"reservations_created"   gorm:"not null;default:0"`
	ReservationsConfirmed int64 `json:"reservations_confirmed" gorm:"not null;default:0"`
	ReservationsCancelled int64 `json:"reservations_cancelled" gorm:"not null;default:0"`
	ReservationsCompleted int64 `json:"reservations_completed" gorm:"not null;default:0"`
	ReservationsNoShow    int64 `json:"reservations_no_show"   gorm:"not null;default:0"`

	// Forms family.
	FormsViewed    int64 `json:"forms_viewed"    gorm:"not null;default:0"`
	FormsSubmitted int64 `json:"forms_submitted" gorm:"not null;default:0"`
	FormsAbandoned int64 `json:"forms_abandoned" gorm:"not null;default:0"`

	// URL clicks: total events and distinct friend cardinality.
	URLClicksTotal  int64 `json:"url_clicks_total"  gorm:"not null;default:0"`
	UniqueURLClicks int64 `json:"unique_url_clicks" gorm:"not null;default:0"`

	// Derived rates, rounded to 2 decimals; 0 when the denominator is 0.
	OpenRate           float64  `json:"open_rate"            gorm:"not null;default:0"`
	ClickRate          *float64 `json:"click_rate"`
	ResponseRate       *float64 `json:"response_rate"`
	FormCompletionRate float64  `json:"form_completion_rate" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for DailyStats.
func (DailyStats) TableName() string { return "daily_stats" }

// DailyStatsSummary is the read-optimized rollup consumed by dashboard list
// views: one row per organization covering its entire daily_stats range.
// It is rebuilt wholesale by repo.RefreshDailyStatsSummary after each
// aggregation run; a refresh failure is non-critical and never fails the job.
type DailyStatsSummary struct {
	OrganizationID    string    `json:"organization_id" gorm:"type:char(36);primaryKey"`
	DaysAggregated    int64     `json:"days_aggregated" gorm:"not null;default:0"`
	MessagesDelivered int64     `json:"messages_delivered" gorm:"not null;default:0"`
	MessagesRead      int64     `json:"messages_read"   gorm:"not null;default:0"`
	FriendsAdded      int64     `json:"friends_added"   gorm:"not null;default:0"`
	FormsSubmitted    int64     `json:"forms_submitted" gorm:"not null;default:0"`
	URLClicksTotal    int64     `json:"url_clicks_total" gorm:"not null;default:0"`
	LastDate          string    `json:"last_date"       gorm:"type:char(10);not null;default:''"`
	RefreshedAt       time.Time `json:"refreshed_at"`
}

// TableName returns the database table name for DailyStatsSummary.
func (DailyStatsSummary) TableName() string { return "daily_stats_summary" }
