// Package services – AggregationService
//
// This file implements the daily analytics aggregator: for one target date it
// computes a DailyStats row per active organization from the append-only
// event log and upserts it, then refreshes the read-optimized summary rollup.
//
// The job is idempotent per (organization, date): the write is an
// overwrite-on-conflict upsert, so schedulers may retry and operators may
// manually backfill a date without double counting.
//
// Failure semantics: each organization is processed inside its own error
// boundary. One tenant's malformed or missing data never blocks aggregation
// for the others; failures are accumulated into the run summary instead.
// The summary refresh after the loop is a non-critical side effect — a
// failure there is logged and swallowed.
package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/lineflow/go-crm-backend/internal/domain"
	"github.com/lineflow/go-crm-backend/internal/repo"
)

// dateLayout is the date-only format used for DailyStats keys.
const dateLayout = "2006-01-02"

// AggregationSummary is the result of one aggregation run. It is returned to
// the HTTP trigger verbatim: operators see full per-tenant failure detail.
type AggregationSummary struct {
	Success        bool     `json:"success"`
	Date           string   `json:"date"`
	SuccessCount   int      `json:"successCount"`
	ErrorCount     int      `json:"errorCount"`
	TotalProcessed int      `json:"totalProcessed"`
	Errors         []string `json:"errors,omitempty"`
}

// AggregationService computes per-tenant daily statistics.
type AggregationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// Now is the clock seam; defaults to time.Now when nil. The target
	// date itself is injected by the caller (the HTTP trigger defaults it
	// to yesterday), so tests never need to manipulate system time.
	Now func() time.Time
}

// NewAggregationService constructs an AggregationService.
func NewAggregationService(db *gorm.DB) *AggregationService {
	return &AggregationService{DB: db, Now: time.Now}
}

// DefaultTargetDate returns yesterday in the service clock, date-only.
func (s *AggregationService) DefaultTargetDate() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return now().UTC().AddDate(0, 0, -1).Format(dateLayout)
}

// Run aggregates every active organization for targetDate (YYYY-MM-DD).
//
// A hard infrastructure fault (unparseable date, cannot enumerate
// organizations) returns an error; per-tenant failures never do — they are
// recorded in the summary and processing continues with the next tenant.
func (s *AggregationService) Run(ctx context.Context, targetDate string) (*AggregationSummary, error) {
	tr := otel.Tracer("services/AggregationService")
	ctx, span := tr.Start(ctx, "Run",
		trace.WithAttributes(attribute.String("aggregation.date", targetDate)),
	)
	defer span.End()

	day, err := time.ParseInLocation(dateLayout, targetDate, time.UTC)
	if err != nil {
		return nil, ErrInvalidDate
	}
	// Window [00:00:00.000, 23:59:59.999] of the target date.
	from := day
	to := day.Add(24*time.Hour - time.Millisecond)

	orgs, err := repo.ListActiveOrganizations(ctx, s.DB)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	summary := &AggregationSummary{Success: true, Date: targetDate}
	for _, org := range orgs {
		if aggErr := s.aggregateOrganization(ctx, org.ID, targetDate, from, to); aggErr != nil {
			summary.ErrorCount++
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("Organization %s: %s", org.ID, aggErr.Error()))
			aggregationOrgResults.WithLabelValues("error").Inc()
			log.Warn().
				Str("organization_id", org.ID).
				Str("date", targetDate).
				Err(aggErr).
				Msg("organization aggregation failed")
			continue
		}
		summary.SuccessCount++
		aggregationOrgResults.WithLabelValues("success").Inc()
	}
	summary.TotalProcessed = len(orgs)

	// Non-critical: refresh the read-optimized rollup.
	if refreshErr := repo.RefreshDailyStatsSummary(ctx, s.DB); refreshErr != nil {
		log.Warn().Err(refreshErr).Msg("daily stats summary refresh failed")
	}

	aggregationRuns.Inc()
	log.Info().
		Str("date", targetDate).
		Int("success_count", summary.SuccessCount).
		Int("error_count", summary.ErrorCount).
		Int("total", summary.TotalProcessed).
		Msg("daily aggregation completed")

	return summary, nil
}

// aggregateOrganization computes and upserts one tenant's row for the window.
// The row is assembled completely before the single upsert, so a failed query
// leaves any previously persisted row for the date untouched.
func (s *AggregationService) aggregateOrganization(ctx context.Context, orgID, date string, from, to time.Time) error {
	counts, err := repo.CountEventsByType(ctx, s.DB, orgID, from, to)
	if err != nil {
		return fmt.Errorf("count events: %w", err)
	}

	clicksTotal, clicksUnique, err := repo.URLClickCounts(ctx, s.DB, orgID, from, to)
	if err != nil {
		return fmt.Errorf("count url clicks: %w", err)
	}

	// Current snapshot, deliberately not scoped to the target date.
	friendsTotal, err := repo.CountActiveFriends(ctx, s.DB, orgID)
	if err != nil {
		return fmt.Errorf("count friends: %w", err)
	}

	row := &domain.DailyStats{
		OrganizationID: orgID,
		Date:           date,

		MessagesSent:      counts[domain.EventMessageSent],
		MessagesDelivered: counts[domain.EventMessageDelivered],
		MessagesRead:      counts[domain.EventMessageRead],
		MessagesFailed:    counts[domain.EventMessageFailed],

		FriendsAdded:   counts[domain.EventFriendAdded],
		FriendsDeleted: counts[domain.EventFriendDeleted],
		FriendsTotal:   friendsTotal,

		ReservationsCreated:   counts[domain.EventReservationCreated],
		ReservationsConfirmed: counts[domain.EventReservationConfirmed],
		ReservationsCancelled: counts[domain.EventReservationCancelled],
		ReservationsCompleted: counts[domain.EventReservationCompleted],
		ReservationsNoShow:    counts[domain.EventReservationNoShow],

		FormsViewed:    counts[domain.EventFormViewed],
		FormsSubmitted: counts[domain.EventFormSubmitted],
		FormsAbandoned: counts[domain.EventFormAbandoned],

		URLClicksTotal:  clicksTotal,
		UniqueURLClicks: clicksUnique,

		OpenRate:           safeRate(counts[domain.EventMessageRead], counts[domain.EventMessageDelivered]),
		FormCompletionRate: safeRate(counts[domain.EventFormSubmitted], counts[domain.EventFormViewed]),
		// ClickRate and ResponseRate stay NULL: the click-to-message and
		// response-matching joins are not implemented yet, and a NULL is
		// honest where a zero would be fake.
	}

	if err := repo.UpsertDailyStats(ctx, s.DB, row); err != nil {
		return fmt.Errorf("upsert daily stats: %w", err)
	}
	return nil
}

// safeRate returns num/den rounded to 2 decimals, or 0 when den is 0.
// Never NaN, never Inf.
func safeRate(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return math.Round(float64(num)/float64(den)*100) / 100
}
