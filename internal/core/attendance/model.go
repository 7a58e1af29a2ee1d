// Package attendance contains the pure domain model for service attendance:
// sites, presenters, volunteer areas, reports and the immutable Snapshot that
// the entity cache holds. Nothing in this package performs I/O.
package attendance

// Site is a location that holds services and produces reports.
type Site struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Presenter is the person who led a service.
type Presenter struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VolunteerArea is a ministry area volunteers serve in.
// Reports reference areas only by key inside their breakdown.
type VolunteerArea struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Attendance holds the per-category head counts of a single service.
// Volunteers is derived from the report's VolunteerBreakdown.
type Attendance struct {
	Adults     int `json:"adults" validate:"gte=0"`
	Kids       int `json:"kids" validate:"gte=0"`
	Visitors   int `json:"visitors" validate:"gte=0"`
	Teens      int `json:"teens" validate:"gte=0"`
	Volunteers int `json:"volunteers" validate:"gte=0"`
}

// ImportedAreaKey is the breakdown key used for volunteer counts that arrive
// without a per-area split (bulk import).
const ImportedAreaKey = "imported"

// Report is one recorded service.
type Report struct {
	ID                 string         `json:"id"`
	SiteID             string         `json:"siteId" validate:"required"`
	Date               string         `json:"date" validate:"required,datetime=2006-01-02"`
	Time               string         `json:"time" validate:"required,datetime=15:04"`
	PresenterID        string         `json:"presenterId" validate:"required"`
	Notes              string         `json:"notes"`
	Attendance         Attendance     `json:"attendance"`
	VolunteerBreakdown map[string]int `json:"volunteerBreakdown" validate:"dive,gte=0"`
	CreatedAt          int64          `json:"createdAt"`
}

// VolunteerSum returns the sum of the volunteer breakdown.
func (r Report) VolunteerSum() int {
	sum := 0
	for _, n := range r.VolunteerBreakdown {
		sum += n
	}
	return sum
}

// Total is the grand total head count of the report.
func (r Report) Total() int {
	a := r.Attendance
	return a.Adults + a.Kids + a.Visitors + a.Teens + r.VolunteerSum()
}

// Normalize returns a copy of r whose Attendance.Volunteers is recomputed
// from the breakdown. The breakdown map is copied.
func (r Report) Normalize() Report {
	out := r.Clone()
	out.Attendance.Volunteers = out.VolunteerSum()
	return out
}

// Clone returns a deep copy of r.
func (r Report) Clone() Report {
	out := r
	if r.VolunteerBreakdown != nil {
		out.VolunteerBreakdown = make(map[string]int, len(r.VolunteerBreakdown))
		for k, v := range r.VolunteerBreakdown {
			out.VolunteerBreakdown[k] = v
		}
	}
	return out
}

// Equal reports whether two reports carry identical field values.
func (r Report) Equal(o Report) bool {
	if r.ID != o.ID || r.SiteID != o.SiteID || r.Date != o.Date || r.Time != o.Time ||
		r.PresenterID != o.PresenterID || r.Notes != o.Notes ||
		r.Attendance != o.Attendance || r.CreatedAt != o.CreatedAt {
		return false
	}
	if len(r.VolunteerBreakdown) != len(o.VolunteerBreakdown) {
		return false
	}
	for k, v := range r.VolunteerBreakdown {
		if ov, ok := o.VolunteerBreakdown[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
