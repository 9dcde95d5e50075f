// Package domain defines the core persistence models for the application.
// This file covers the append-only analytics event log.
package domain

import "time"

// Event types tracked by the application write path. The daily aggregator
// groups these into metric families (messages, friends, reservations, forms)
// plus URL clicks.
const (
	EventMessageSent      = "message_sent"
	EventMessageDelivered = "message_delivered"
	EventMessageRead      = "message_read"
	EventMessageFailed    = "message_failed"

	EventFriendAdded   = "friend_added"
	EventFriendDeleted = "friend_deleted"

	EventReservationCreated   = "reservation_created"
	EventReservationConfirmed = "reservation_confirmed"
	EventReservationCancelled = "reservation_cancelled"
	EventReservationCompleted = "reservation_completed"
	EventReservationNoShow    = "reservation_no_show"

	EventFormViewed    = "form_viewed"
	EventFormSubmitted = "form_submitted"
	EventFormAbandoned = "form_abandoned"

	EventURLClicked = "url_clicked"
)

// Event is one row of the append-only analytics event log. Rows are written
// by the CRM application (out of scope here) and are immutable; the daily
// aggregator only reads bounded time windows of this table.
//
// FriendID is optional: platform-level events (e.g., broadcast delivery
// receipts without attribution) may not reference a friend.
type Event struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	OrganizationID string    `json:"organization_id" gorm:"type:char(36);not null;index:idx_org_events,priority:1"`
	EventType      string    `json:"event_type"      gorm:"type:varchar(32);not null;index"`
	FriendID       *string   `json:"friend_id,omitempty" gorm:"type:char(36);index"`
	CreatedAt      time.Time `json:"created_at"      gorm:"index:idx_org_events,priority:2"`
}

// TableName returns the database table name for Event.
func (Event) TableName() string { return "events" }
