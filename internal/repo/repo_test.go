package repo

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lineflow/go-crm-backend/internal/domain"
)

// newTestDB opens a fresh in-memory SQLite database (pure-Go driver, no CGO)
// with the full schema migrated. Each call gets an isolated database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repodb_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// seedEvent inserts one event row; friendID may be empty for unattributed events.
func seedEvent(t *testing.T, db *gorm.DB, orgID, eventType, friendID string, at time.Time) {
	t.Helper()
	ev := &domain.Event{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		EventType:      eventType,
		CreatedAt:      at,
	}
	if friendID != "" {
		ev.FriendID = &friendID
	}
	if err := db.Create(ev).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
}
