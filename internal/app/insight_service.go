package app

import (
	"context"
	"time"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/access"
	"github.com/thiagorusso-10/contagemdeculto/internal/core/aggregate"
	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
	"github.com/thiagorusso-10/contagemdeculto/internal/ctxutil"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/primary"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/secondary"
)

// InsightServiceImpl implements the InsightService interface over the entity cache.
type InsightServiceImpl struct {
	cache  *EntityCache
	store  secondary.RemoteStore
	pinned string
	now    func() time.Time
}

var _ primary.InsightService = (*InsightServiceImpl)(nil)

// NewInsightService creates a new InsightService with injected dependencies.
func NewInsightService(cache *EntityCache, store secondary.RemoteStore, pinnedSite string) *InsightServiceImpl {
	return &InsightServiceImpl{
		cache:  cache,
		store:  store,
		pinned: pinnedSite,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Dashboard returns the per-site tiles and the overall headline.
func (s *InsightServiceImpl) Dashboard(ctx context.Context) aggregate.Dashboard {
	return aggregate.BuildDashboard(s.cache.Snapshot(), s.pinned)
}

// History returns reports grouped by year, month and date.
func (s *InsightServiceImpl) History(ctx context.Context) []aggregate.YearGroup {
	return aggregate.GroupHistory(s.cache.Snapshot(), s.pinned)
}

// Weeks returns reports grouped by ISO week.
func (s *InsightServiceImpl) Weeks(ctx context.Context) []aggregate.WeekGroup {
	return aggregate.GroupByWeek(s.cache.Snapshot(), s.pinned)
}

// Analytics returns growth, trend and demographics.
func (s *InsightServiceImpl) Analytics(ctx context.Context, req primary.AnalyticsRequest) aggregate.AnalyticsView {
	today := req.Today
	if today.IsZero() {
		today = s.now()
	}
	return aggregate.Analytics(s.cache.Snapshot().Reports, req.SiteID, today, req.Selected)
}

// Reports lists reports, newest first, optionally restricted to one site.
func (s *InsightServiceImpl) Reports(ctx context.Context, siteID string) []attendance.Report {
	snap := s.cache.Snapshot()
	if siteID != "" {
		return snap.ReportsForSite(siteID)
	}
	out := make([]attendance.Report, len(snap.Reports))
	for i, r := range snap.Reports {
		out[i] = r.Clone()
	}
	return out
}

// Capabilities resolves the role of the user carried by ctx.
func (s *InsightServiceImpl) Capabilities(ctx context.Context) (access.Capabilities, error) {
	userID := ctxutil.UserFromContext(ctx)
	if userID == "" {
		return access.For(access.RoleNone, ""), nil
	}
	rec, err := s.store.ResolveRole(ctx, userID)
	if err != nil {
		return access.For(access.RoleNone, ""), err
	}
	return access.For(access.ParseRole(rec.Role), rec.SiteID), nil
}
