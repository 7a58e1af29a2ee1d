package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
)

// DayGroup holds the services of one exact date.
type DayGroup struct {
	Date    string              `json:"date"`
	Total   int                 `json:"total"`
	Reports []attendance.Report `json:"reports"`
}

// MonthGroup holds the dates of one calendar month ("01".."12").
type MonthGroup struct {
	Month string     `json:"month"`
	Total int        `json:"total"`
	Days  []DayGroup `json:"days"`
}

// YearGroup holds the months of one year.
type YearGroup struct {
	Year   string       `json:"year"`
	Total  int          `json:"total"`
	Months []MonthGroup `json:"months"`
}

// GroupHistory groups reports by year, month and exact date, newest first at
// every level. Each level's Total is the sum of its children. Within a date,
// reports are ordered by site name (pinnedSite first), then by time.
func GroupHistory(snap attendance.Snapshot, pinnedSite string) []YearGroup {
	byDate := make(map[string][]attendance.Report)
	for _, r := range snap.Reports {
		byDate[r.Date] = append(byDate[r.Date], r.Clone())
	}

	nameLess := attendance.NameOrder(pinnedSite)
	days := make([]DayGroup, 0, len(byDate))
	for date, reports := range byDate {
		sort.SliceStable(reports, func(i, j int) bool {
			ni, nj := snap.SiteName(reports[i].SiteID), snap.SiteName(reports[j].SiteID)
			if ni != nj {
				return nameLess(ni, nj)
			}
			return reports[i].Time < reports[j].Time
		})
		day := DayGroup{Date: date, Reports: reports}
		for _, r := range reports {
			day.Total += ReportTotal(r)
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })

	var years []YearGroup
	for _, day := range days {
		year, month := splitYearMonth(day.Date)

		if len(years) == 0 || years[len(years)-1].Year != year {
			years = append(years, YearGroup{Year: year})
		}
		y := &years[len(years)-1]

		if len(y.Months) == 0 || y.Months[len(y.Months)-1].Month != month {
			y.Months = append(y.Months, MonthGroup{Month: month})
		}
		m := &y.Months[len(y.Months)-1]

		m.Days = append(m.Days, day)
		m.Total += day.Total
		y.Total += day.Total
	}
	return years
}

func splitYearMonth(date string) (string, string) {
	if len(date) < 7 {
		return date, ""
	}
	return date[:4], date[5:7]
}

// WeekGroup holds the services of one ISO week.
type WeekGroup struct {
	Key   string     `json:"key"`   // e.g. "2024-W19"
	Start string     `json:"start"` // Monday of the week, ISO date
	Total int        `json:"total"`
	Days  []DayGroup `json:"days"`
}

// GroupByWeek groups reports into ISO weeks, newest first. Reports whose date
// does not parse are ignored.
func GroupByWeek(snap attendance.Snapshot, pinnedSite string) []WeekGroup {
	index := make(map[string]int)
	var weeks []WeekGroup

	for _, year := range GroupHistory(snap, pinnedSite) {
		for _, month := range year.Months {
			for _, day := range month.Days {
				t, err := time.Parse(isoLayout, day.Date)
				if err != nil {
					continue
				}
				y, w := t.ISOWeek()
				key := fmt.Sprintf("%04d-W%02d", y, w)
				i, ok := index[key]
				if !ok {
					offset := (int(t.Weekday()) + 6) % 7
					weeks = append(weeks, WeekGroup{
						Key:   key,
						Start: t.AddDate(0, 0, -offset).Format(isoLayout),
					})
					i = len(weeks) - 1
					index[key] = i
				}
				weeks[i].Days = append(weeks[i].Days, day)
				weeks[i].Total += day.Total
			}
		}
	}
	return weeks
}
