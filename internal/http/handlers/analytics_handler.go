// Analytics HTTP handlers.
//
// This file exposes the operator read endpoint over aggregated statistics:
//   - GET /analytics/daily  (list daily stats, paginated, ETag support)
//
// Handlers are transport-thin: they validate input, call the repository, and
// translate results into HTTP responses (including conditional responses).
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lineflow/go-crm-backend/internal/domain"
	"github.com/lineflow/go-crm-backend/internal/repo"
	"github.com/lineflow/go-crm-backend/internal/utils"
)

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListDailyStatsResponse wraps a page of daily stats and pagination metadata.
type ListDailyStatsResponse struct {
	Stats      []domain.DailyStats `json:"stats"`
	Pagination Pagination          `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPageSize = 20
		maxPageSize     = 100
	)
	return utils.PageWindow(c.Query("page"), c.Query("page_size"), defaultPageSize, maxPageSize)
}

//
// Handlers
//

// ListDailyStats godoc
// @ID          listDailyStats
// @Summary     List daily statistics (paginated)
// @Description Returns a page of aggregated daily stats, newest date first, optionally
// @Description filtered by organization. Supports weak ETag via If-None-Match and may
// @Description return 304.
// @Tags        Analytics
// @Produce     json
//
// @Param       organization_id  query   string  false "Filter by organization"      example(org-123)
// @Param       If-None-Match    header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page             query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size        query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListDailyStatsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /analytics/daily [get]
func (h *Handlers) ListDailyStats(c *gin.Context) {
	ctx := c.Request.Context()
	orgID := strings.TrimSpace(c.Query("organization_id"))
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if h.db != nil {
		count, maxTS, err := repo.DailyStatsStats(ctx, h.db, orgID)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"daily_stats:%s:%d:%d"`, orgID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	total, err := repo.CountDailyStats(ctx, h.db, orgID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	items, err := repo.ListDailyStatsPage(ctx, h.db, orgID, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListDailyStatsResponse{
		Stats: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
