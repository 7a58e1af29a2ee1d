package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
)

const isoLayout = "2006-01-02"

// TrendWindow is the number of most recent distinct dates kept by Trend.
const TrendWindow = 8

// TrendPoint is one bar of the rolling trend chart.
type TrendPoint struct {
	DisplayDate string `json:"displayDate"`
	ISODate     string `json:"isoDate"`
	Total       int    `json:"total"`
	Visitors    int    `json:"visitors"`
	Index       int    `json:"index"`
}

type dayTotals struct {
	total    int
	visitors int
}

func totalsByDate(reports []attendance.Report) (map[string]dayTotals, []string) {
	byDate := make(map[string]dayTotals)
	for _, r := range reports {
		d := byDate[r.Date]
		d.total += ReportTotal(r)
		d.visitors += r.Attendance.Visitors
		byDate[r.Date] = d
	}
	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return byDate, dates
}

// Trend groups reports by exact date, ascending, and keeps the most recent
// TrendWindow dates.
func Trend(reports []attendance.Report) []TrendPoint {
	byDate, dates := totalsByDate(reports)
	if len(dates) > TrendWindow {
		dates = dates[len(dates)-TrendWindow:]
	}

	points := make([]TrendPoint, len(dates))
	for i, date := range dates {
		points[i] = TrendPoint{
			DisplayDate: FormatDisplayDate(date),
			ISODate:     date,
			Total:       byDate[date].total,
			Visitors:    byDate[date].visitors,
			Index:       i,
		}
	}
	return points
}

// GrowthSummary compares this week against last week.
type GrowthSummary struct {
	ThisWeekTotal    int  `json:"thisWeekTotal"`
	LastWeekTotal    int  `json:"lastWeekTotal"`
	ThisWeekVisitors int  `json:"thisWeekVisitors"`
	LastWeekVisitors int  `json:"lastWeekVisitors"`
	GrowthPercent    int  `json:"growthPercent"`
	UsedFallback     bool `json:"usedFallback"`
}

// Growth partitions reports into this week (date >= today-7d) and last week
// (today-14d <= date < today-7d) by calendar date.
//
// When this week captures no reports at all, the most recent distinct date
// stands in for this week and the second most recent for last week. The
// relaxation is one-sided: an empty last week with a populated this week
// stays empty.
func Growth(reports []attendance.Report, today time.Time) GrowthSummary {
	var g GrowthSummary
	if len(reports) == 0 {
		return g
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := day.AddDate(0, 0, -7).Format(isoLayout)
	twoWeeksAgo := day.AddDate(0, 0, -14).Format(isoLayout)

	thisWeekReports := 0
	for _, r := range reports {
		switch {
		case r.Date >= weekAgo:
			thisWeekReports++
			g.ThisWeekTotal += ReportTotal(r)
			g.ThisWeekVisitors += r.Attendance.Visitors
		case r.Date >= twoWeeksAgo:
			g.LastWeekTotal += ReportTotal(r)
			g.LastWeekVisitors += r.Attendance.Visitors
		}
	}

	// TODO: decide whether an empty last week should get the same relaxation.
	if thisWeekReports == 0 {
		byDate, dates := totalsByDate(reports)
		latest := byDate[dates[len(dates)-1]]
		g.ThisWeekTotal = latest.total
		g.ThisWeekVisitors = latest.visitors
		if len(dates) >= 2 {
			prev := byDate[dates[len(dates)-2]]
			g.LastWeekTotal = prev.total
			g.LastWeekVisitors = prev.visitors
		}
		g.UsedFallback = true
	}

	g.GrowthPercent = GrowthPercent(g.ThisWeekTotal, g.LastWeekTotal)
	return g
}

// GrowthPercent is round((current-previous)/previous*100), or 0 when there is
// no previous figure. Halves round towards positive infinity.
func GrowthPercent(current, previous int) int {
	if previous == 0 {
		return 0
	}
	ratio := float64((current-previous)*100) / float64(previous)
	return int(math.Floor(ratio + 0.5))
}
