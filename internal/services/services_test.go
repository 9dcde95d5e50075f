package services

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lineflow/go-crm-backend/internal/domain"
	"github.com/lineflow/go-crm-backend/internal/repo"
)

// newTestDB opens an isolated in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svcdb_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedOrg(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	org := &domain.Organization{ID: id, Name: id, OwnerUserID: "u-" + id, IsActive: true}
	if err := db.Create(org).Error; err != nil {
		t.Fatalf("seed org: %v", err)
	}
}

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
