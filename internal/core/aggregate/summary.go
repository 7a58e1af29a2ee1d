// Package aggregate is the pure computation layer that turns a flat,
// unordered collection of reports into dashboard figures, history groupings,
// rolling trends and comparative statistics.
//
// Every function here is deterministic for a given input and never mutates
// its arguments.
package aggregate

import (
	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
)

// DaySummary is the head count of every service held on one date.
type DaySummary struct {
	Date        string `json:"date"`
	DisplayDate string `json:"displayDate"`
	Total       int    `json:"total"`
}

// ReportTotal is adults + kids + visitors + teens + volunteers.
func ReportTotal(r attendance.Report) int {
	a := r.Attendance
	return a.Adults + a.Kids + a.Visitors + a.Teens + a.Volunteers
}

// LatestForSite sums the reports of a site on the site's most recent date.
// A site may hold several services on the same date.
func LatestForSite(reports []attendance.Report, siteID string) (DaySummary, bool) {
	var own []attendance.Report
	for _, r := range reports {
		if r.SiteID == siteID {
			own = append(own, r)
		}
	}
	return LatestOverall(own)
}

// LatestOverall sums every report on the most recent date across all sites.
// Dates are zero-padded ISO strings, so the lexical maximum is the latest.
func LatestOverall(reports []attendance.Report) (DaySummary, bool) {
	if len(reports) == 0 {
		return DaySummary{}, false
	}

	latest := reports[0].Date
	for _, r := range reports[1:] {
		if r.Date > latest {
			latest = r.Date
		}
	}

	total := 0
	for _, r := range reports {
		if r.Date == latest {
			total += ReportTotal(r)
		}
	}

	return DaySummary{Date: latest, DisplayDate: FormatDisplayDate(latest), Total: total}, true
}

// SiteTile is one dashboard tile.
type SiteTile struct {
	Site    attendance.Site `json:"site"`
	Latest  *DaySummary     `json:"latest,omitempty"`
	Reports int             `json:"reports"`
}

// Dashboard is the headline view: the global latest-day figure and one tile
// per site in display order.
type Dashboard struct {
	Headline *DaySummary `json:"headline,omitempty"`
	Tiles    []SiteTile  `json:"tiles"`
}

// BuildDashboard computes the dashboard view of a snapshot.
func BuildDashboard(snap attendance.Snapshot, pinnedSite string) Dashboard {
	var d Dashboard
	if latest, ok := LatestOverall(snap.Reports); ok {
		d.Headline = &latest
	}

	counts := make(map[string]int)
	for _, r := range snap.Reports {
		counts[r.SiteID]++
	}

	for _, site := range attendance.SortSites(snap.Sites, pinnedSite) {
		tile := SiteTile{Site: site, Reports: counts[site.ID]}
		if latest, ok := LatestForSite(snap.Reports, site.ID); ok {
			tile.Latest = &latest
		}
		d.Tiles = append(d.Tiles, tile)
	}
	return d
}
