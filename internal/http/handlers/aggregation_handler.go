// Daily aggregation HTTP trigger.
//
// This file exposes the scheduled-job entry point:
//   - POST /jobs/daily-aggregation  (aggregate one date for all organizations)
//
// The body is optional: `{"date": "YYYY-MM-DD"}` selects a backfill target,
// otherwise yesterday is aggregated. Partial per-tenant failure is still a
// 200 — the summary carries the per-organization error detail; only a total
// failure (bad date, cannot enumerate organizations) is a 4xx/5xx.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lineflow/go-crm-backend/internal/services"
)

// AggregationRequest is the optional JSON payload of the job trigger.
type AggregationRequest struct {
	// Date is the target date (YYYY-MM-DD); defaults to yesterday.
	Date string `json:"date" example:"2025-11-30"`
}

// PostDailyAggregation godoc
// @ID          postDailyAggregation
// @Summary     Run the daily analytics aggregation
// @Description Aggregates event counts into one DailyStats row per active organization
// @Description for the target date. Idempotent per (organization, date): safe to retry
// @Description and to backfill. Per-organization failures are reported in the summary,
// @Description not as an HTTP error.
// @Tags        Jobs
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.AggregationRequest  false  "Optional target date"
//
// @Success     200  {object}  services.AggregationSummary
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid date"
// @Failure     500  {object}  handlers.ErrorResponse  "Aggregation failed"
// @Router      /jobs/daily-aggregation [post]
func (h *Handlers) PostDailyAggregation(c *gin.Context) {
	var req AggregationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	targetDate := strings.TrimSpace(req.Date)
	if targetDate == "" {
		targetDate = h.aggSvc.DefaultTargetDate()
	}

	summary, err := h.aggSvc.Run(c.Request.Context(), targetDate)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDate) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeAggregationFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, summary)
}
