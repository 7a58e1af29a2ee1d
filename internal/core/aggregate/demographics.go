package aggregate

import (
	"math"
	"time"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
)

// Demographics splits a head count into visitors and regulars.
type Demographics struct {
	Visitors       int     `json:"visitors"`
	Regulars       int     `json:"regulars"`
	VisitorPercent float64 `json:"visitorPercent"`
}

// Split computes the visitor/regular split of total. VisitorPercent is
// rounded to one decimal and is 0 when total is 0.
func Split(total, visitors int) Demographics {
	d := Demographics{Visitors: visitors, Regulars: total - visitors}
	if total > 0 {
		d.VisitorPercent = math.Round(float64(visitors)/float64(total)*1000) / 10
	}
	return d
}

// PointSplit is the demographic split of a single trend point.
type PointSplit struct {
	Point        *TrendPoint  `json:"point,omitempty"`
	Demographics Demographics `json:"demographics"`
}

// SplitForPoint returns the split for the selected trend point. Without a
// valid selection it falls back to the most recent point; with no points it
// returns an empty split.
func SplitForPoint(points []TrendPoint, selected *int) PointSplit {
	if len(points) == 0 {
		return PointSplit{}
	}
	p := points[len(points)-1]
	if selected != nil && *selected >= 0 && *selected < len(points) {
		p = points[*selected]
	}
	return PointSplit{Point: &p, Demographics: Split(p.Total, p.Visitors)}
}

// AnalyticsView bundles everything the analytics screen shows.
type AnalyticsView struct {
	Summary      GrowthSummary `json:"summary"`
	VisitorShare Demographics  `json:"visitorShare"`
	Trend        []TrendPoint  `json:"trend"`
	Selection    PointSplit    `json:"selection"`
}

// Analytics computes the analytics view over all reports, or over one site's
// reports when siteID is not empty. The presentation layer owns the selection
// state and calls this again with a different selected index; the result for
// the same inputs is always the same.
func Analytics(reports []attendance.Report, siteID string, today time.Time, selected *int) AnalyticsView {
	filtered := reports
	if siteID != "" {
		filtered = nil
		for _, r := range reports {
			if r.SiteID == siteID {
				filtered = append(filtered, r)
			}
		}
	}

	view := AnalyticsView{Trend: []TrendPoint{}}
	if len(filtered) == 0 {
		return view
	}

	view.Summary = Growth(filtered, today)
	view.VisitorShare = Split(view.Summary.ThisWeekTotal, view.Summary.ThisWeekVisitors)
	view.Trend = Trend(filtered)
	view.Selection = SplitForPoint(view.Trend, selected)
	return view
}
