package primary

import (
	"context"
	"time"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/access"
	"github.com/thiagorusso-10/contagemdeculto/internal/core/aggregate"
	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
)

// InsightService exposes read-only summaries computed from the cache.
type InsightService interface {
	// Dashboard returns the per-site tiles and the overall headline.
	Dashboard(ctx context.Context) aggregate.Dashboard

	// History returns reports grouped by year, month and date.
	History(ctx context.Context) []aggregate.YearGroup

	// Weeks returns reports grouped by ISO week.
	Weeks(ctx context.Context) []aggregate.WeekGroup

	// Analytics returns growth, trend and demographics for one site, or all
	// sites when req.SiteID is empty.
	Analytics(ctx context.Context, req AnalyticsRequest) aggregate.AnalyticsView

	// Reports lists reports, optionally restricted to one site.
	Reports(ctx context.Context, siteID string) []attendance.Report

	// Capabilities resolves what the acting user may do.
	Capabilities(ctx context.Context) (access.Capabilities, error)
}

// AnalyticsRequest contains parameters for an analytics view.
type AnalyticsRequest struct {
	SiteID   string
	Today    time.Time
	Selected *int
}
