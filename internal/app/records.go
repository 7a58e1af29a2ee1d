package app

import (
	"time"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/secondary"
)

func siteFromRecord(r *secondary.SiteRecord) attendance.Site {
	return attendance.Site{ID: r.ID, Name: r.Name, Color: r.Color}
}

func presenterFromRecord(r *secondary.PresenterRecord) attendance.Presenter {
	return attendance.Presenter{ID: r.ID, Name: r.Name}
}

func areaFromRecord(r *secondary.AreaRecord) attendance.VolunteerArea {
	return attendance.VolunteerArea{ID: r.ID, Name: r.Name}
}

// reportFromRecord converts a stored row and normalizes the volunteer count
// against the breakdown.
func reportFromRecord(r *secondary.ReportRecord) attendance.Report {
	var createdAt int64
	if !r.CreatedAt.IsZero() {
		createdAt = r.CreatedAt.UnixMilli()
	}
	var breakdown map[string]int
	if len(r.VolunteerData) > 0 {
		breakdown = make(map[string]int, len(r.VolunteerData))
		for k, v := range r.VolunteerData {
			breakdown[k] = v
		}
	}
	return attendance.Report{
		ID:          r.ID,
		SiteID:      r.SiteID,
		Date:        r.Date,
		Time:        r.Time,
		PresenterID: r.PresenterID,
		Notes:       r.Notes,
		Attendance: attendance.Attendance{
			Adults:     r.AttendanceAdults,
			Kids:       r.AttendanceKids,
			Visitors:   r.AttendanceVisitors,
			Teens:      r.AttendanceTeens,
			Volunteers: r.AttendanceVolunteers,
		},
		VolunteerBreakdown: breakdown,
		CreatedAt:          createdAt,
	}.Normalize()
}

func reportToRecord(r attendance.Report) *secondary.ReportRecord {
	r = r.Normalize()
	rec := &secondary.ReportRecord{
		ID:                   r.ID,
		SiteID:               r.SiteID,
		Date:                 r.Date,
		Time:                 r.Time,
		PresenterID:          r.PresenterID,
		AttendanceAdults:     r.Attendance.Adults,
		AttendanceKids:       r.Attendance.Kids,
		AttendanceVisitors:   r.Attendance.Visitors,
		AttendanceTeens:      r.Attendance.Teens,
		AttendanceVolunteers: r.Attendance.Volunteers,
		VolunteerData:        r.VolunteerBreakdown,
		Notes:                r.Notes,
	}
	if rec.VolunteerData == nil {
		rec.VolunteerData = map[string]int{}
	}
	if r.CreatedAt != 0 {
		rec.CreatedAt = time.UnixMilli(r.CreatedAt).UTC()
	}
	return rec
}
