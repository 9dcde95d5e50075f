package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lineflow/go-crm-backend/internal/domain"
	"github.com/lineflow/go-crm-backend/internal/repo"
	"github.com/lineflow/go-crm-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

// fakeAI is a canned AIResponder recording its invocations.
type fakeAI struct {
	result *services.AIResult
	err    error

	calls   int
	lastReq services.AIRequest
}

func (f *fakeAI) Respond(_ context.Context, req services.AIRequest) (*services.AIResult, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeAgg is a canned Aggregator recording the requested date.
type fakeAgg struct {
	summary *services.AggregationSummary
	err     error

	lastDate string
}

func (f *fakeAgg) DefaultTargetDate() string { return "2025-11-30" }

func (f *fakeAgg) Run(_ context.Context, targetDate string) (*services.AggregationSummary, error) {
	f.lastDate = targetDate
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:hdb_%s?mode=memory&cache=shared", uuid.NewString())
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

// newHandlerRouter mounts the three endpoints on a bare engine, without the
// full middleware chain; handler behavior is what is under test here.
func newHandlerRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.POST("/ai/response", h.PostAIResponse)
	r.POST("/jobs/daily-aggregation", h.PostDailyAggregation)
	r.GET("/analytics/daily", h.ListDailyStats)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

func seedHandlerFriend(t *testing.T, db *gorm.DB, userID string) *domain.Friend {
	t.Helper()
	f := &domain.Friend{
		ID:             uuid.NewString(),
		OrganizationID: "org-1",
		UserID:         userID,
		LineUserID:     "U" + uuid.NewString()[:8],
		DisplayName:    "Friend",
		Status:         domain.FriendStatusActive,
	}
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("seed friend: %v", err)
	}
	return f
}
