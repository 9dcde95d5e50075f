// Package domain defines the persistence models for organizations, friends,
// tags, events, analytics, and AI telemetry. These types are mapped with GORM
// and form the core data layer of the LINE CRM backend.
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// CustomFields is a tenant-defined key/value bag attached to a Friend.
// Known keys (e.g., "company", "birthday") are documented per tenant; any
// other key is an escape hatch for tenant-specific data. Stored as JSON.
type CustomFields map[string]string

// Value implements driver.Valuer so GORM can persist the map as JSON text.
func (f CustomFields) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	b, err := json.Marshal(f)
	return string(b), err
}

// Scan implements sql.Scanner for reading the JSON column back into a map.
func (f *CustomFields) Scan(v any) error {
	switch s := v.(type) {
	case nil:
		*f = CustomFields{}
		return nil
	case string:
		return json.Unmarshal([]byte(s), f)
	case []byte:
		return json.Unmarshal(s, f)
	default:
		return errors.New("custom_fields: unsupported column type")
	}
}

// StringList is a JSON-encoded list column (e.g., prohibited words).
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(v any) error {
	switch s := v.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		return json.Unmarshal([]byte(s), l)
	case []byte:
		return json.Unmarshal(s, l)
	default:
		return errors.New("string_list: unsupported column type")
	}
}

// Organization is the tenant boundary. All events, friends, and derived
// analytics are scoped to one organization; the daily aggregator iterates
// only organizations with IsActive set.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name: display name of the official account owner.
//   - OwnerUserID: identifier of the user that administers the tenant.
//   - IsActive: inactive tenants are skipped by batch jobs.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type Organization struct {
	ID          string         `json:"id"            gorm:"type:char(36);primaryKey"`
	Name        string         `json:"name"          gorm:"type:varchar(255);not null"`
	OwnerUserID string         `json:"owner_user_id" gorm:"type:varchar(64);not null;index"`
	IsActive    bool           `json:"is_active"     gorm:"not null;default:true;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"             gorm:"index"`
}

// TableName returns the database table name for Organization.
func (Organization) TableName() string { return "organizations" }

// Friend status values. A blocked friend stays in the table but is excluded
// from the friends_total snapshot and from outbound messaging.
const (
	FriendStatusActive  = "active"
	FriendStatusBlocked = "blocked"
	FriendStatusDeleted = "deleted"
)

// Friend is an end-user chat contact known to a tenant's LINE official
// account. It carries the CRM attributes the AI pipeline folds into its
// prompt context.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - OrganizationID: owning tenant (indexed).
//   - UserID: administering user; resolves the AISettings row for replies.
//   - LineUserID: opaque identifier assigned by the messaging platform.
//   - DisplayName: profile name as last synced from the platform.
//   - Status: active, blocked, or deleted (enforced by DB constraint).
//   - CustomFields: tenant-defined key/value attributes (JSON).
//   - Tags: many-to-many CRM labels.
//   - LastInteractionAt: last inbound or outbound message timestamp.
type Friend struct {
	ID                string         `json:"id"              gorm:"type:char(36);primaryKey"`
	OrganizationID    string         `json:"organization_id" gorm:"type:char(36);not null;index:idx_org_friends"`
	UserID            string         `json:"user_id"         gorm:"type:varchar(64);not null;index"`
	LineUserID        string         `json:"line_user_id"    gorm:"type:varchar(64);not null;index"`
	DisplayName       string         `json:"display_name"    gorm:"type:varchar(255);not null"`
	Status            string         `json:"status"          gorm:"type:varchar(16);not null;default:'active';check:status IN ('active','blocked','deleted')"`
	CustomFields      CustomFields   `json:"custom_fields"   gorm:"type:text"`
	Tags              []Tag          `json:"tags,omitempty"  gorm:"many2many:friend_tags"`
	LastInteractionAt *time.Time     `json:"last_interaction_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-"               gorm:"index"`
}

// TableName returns the database table name for Friend.
func (Friend) TableName() string { return "friends" }

// Tag is a CRM label applied to friends (many-to-many via friend_tags).
type Tag struct {
	ID        string         `json:"id"      gorm:"type:char(36);primaryKey"`
	UserID    string         `json:"user_id" gorm:"type:varchar(64);not null;index"`
	Name      string         `json:"name"    gorm:"type:varchar(100);not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"       gorm:"index"`
}

// TableName returns the database table name for Tag.
func (Tag) TableName() string { return "tags" }
