package attendance

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Snapshot is the complete view of all cached entities at one point in time.
//
// Snapshots are values: every transform below returns a new Snapshot and
// never writes through to the receiver's slices or maps, so a reader holding
// an older Snapshot keeps a consistent view.
type Snapshot struct {
	Sites          []Site          `json:"sites"`
	Presenters     []Presenter     `json:"presenters"`
	VolunteerAreas []VolunteerArea `json:"volunteerAreas"`
	Reports        []Report        `json:"reports"`
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Sites:          append([]Site(nil), s.Sites...),
		Presenters:     append([]Presenter(nil), s.Presenters...),
		VolunteerAreas: append([]VolunteerArea(nil), s.VolunteerAreas...),
		Reports:        make([]Report, len(s.Reports)),
	}
	for i, r := range s.Reports {
		out.Reports[i] = r.Clone()
	}
	return out
}

// --- reports ---

// FindReport returns the report with the given id.
func (s Snapshot) FindReport(id string) (Report, bool) {
	for _, r := range s.Reports {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return Report{}, false
}

// WithReport returns a snapshot with r prepended to the report list.
func (s Snapshot) WithReport(r Report) Snapshot {
	out := s
	out.Reports = make([]Report, 0, len(s.Reports)+1)
	out.Reports = append(out.Reports, r.Clone())
	out.Reports = append(out.Reports, s.Reports...)
	return out
}

// WithoutReport returns a snapshot with the report id removed.
func (s Snapshot) WithoutReport(id string) Snapshot {
	out := s
	out.Reports = make([]Report, 0, len(s.Reports))
	for _, r := range s.Reports {
		if r.ID != id {
			out.Reports = append(out.Reports, r)
		}
	}
	return out
}

// ReplaceReport returns a snapshot where the report sharing r.ID is replaced
// by r. If no such report exists, r is prepended (restoring a removed record).
func (s Snapshot) ReplaceReport(r Report) Snapshot {
	out := s
	out.Reports = make([]Report, len(s.Reports))
	copy(out.Reports, s.Reports)
	for i := range out.Reports {
		if out.Reports[i].ID == r.ID {
			out.Reports[i] = r.Clone()
			return out
		}
	}
	return s.WithReport(r)
}

// RenameReport swaps a report's id in place, leaving every other field intact.
func (s Snapshot) RenameReport(fromID, toID string) Snapshot {
	out := s
	out.Reports = make([]Report, len(s.Reports))
	copy(out.Reports, s.Reports)
	for i := range out.Reports {
		if out.Reports[i].ID == fromID {
			out.Reports[i].ID = toID
		}
	}
	return out
}

// ReportsForSite returns the site's reports ordered by date and time, newest first.
func (s Snapshot) ReportsForSite(siteID string) []Report {
	var out []Report
	for _, r := range s.Reports {
		if r.SiteID == siteID {
			out = append(out, r.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date+"T"+out[i].Time > out[j].Date+"T"+out[j].Time
	})
	return out
}

// --- presenters ---

// WithPresenter returns a snapshot with p appended.
func (s Snapshot) WithPresenter(p Presenter) Snapshot {
	out := s
	out.Presenters = append(append([]Presenter(nil), s.Presenters...), p)
	return out
}

// WithoutPresenter returns a snapshot with the presenter id removed.
// Reports referencing the presenter are left untouched.
func (s Snapshot) WithoutPresenter(id string) Snapshot {
	out := s
	out.Presenters = nil
	for _, p := range s.Presenters {
		if p.ID != id {
			out.Presenters = append(out.Presenters, p)
		}
	}
	return out
}

// RenamePresenter swaps a presenter id, including references held by reports.
func (s Snapshot) RenamePresenter(fromID, toID string) Snapshot {
	out := s
	out.Presenters = append([]Presenter(nil), s.Presenters...)
	for i := range out.Presenters {
		if out.Presenters[i].ID == fromID {
			out.Presenters[i].ID = toID
		}
	}
	out.Reports = retarget(s.Reports, func(r *Report) bool {
		if r.PresenterID != fromID {
			return false
		}
		r.PresenterID = toID
		return true
	})
	return out
}

// FindPresenter returns the presenter with the given id.
func (s Snapshot) FindPresenter(id string) (Presenter, bool) {
	for _, p := range s.Presenters {
		if p.ID == id {
			return p, true
		}
	}
	return Presenter{}, false
}

// --- volunteer areas ---

// WithArea returns a snapshot with a appended.
func (s Snapshot) WithArea(a VolunteerArea) Snapshot {
	out := s
	out.VolunteerAreas = append(append([]VolunteerArea(nil), s.VolunteerAreas...), a)
	return out
}

// WithoutArea returns a snapshot with the area id removed. Historical
// breakdown counts keyed by that id are kept.
func (s Snapshot) WithoutArea(id string) Snapshot {
	out := s
	out.VolunteerAreas = nil
	for _, a := range s.VolunteerAreas {
		if a.ID != id {
			out.VolunteerAreas = append(out.VolunteerAreas, a)
		}
	}
	return out
}

// RenameArea swaps a volunteer area id.
func (s Snapshot) RenameArea(fromID, toID string) Snapshot {
	out := s
	out.VolunteerAreas = append([]VolunteerArea(nil), s.VolunteerAreas...)
	for i := range out.VolunteerAreas {
		if out.VolunteerAreas[i].ID == fromID {
			out.VolunteerAreas[i].ID = toID
		}
	}
	return out
}

// FindArea returns the area with the given id.
func (s Snapshot) FindArea(id string) (VolunteerArea, bool) {
	for _, a := range s.VolunteerAreas {
		if a.ID == id {
			return a, true
		}
	}
	return VolunteerArea{}, false
}

// --- sites ---

// WithSite returns a snapshot with site appended.
func (s Snapshot) WithSite(site Site) Snapshot {
	out := s
	out.Sites = append(append([]Site(nil), s.Sites...), site)
	return out
}

// WithoutSite returns a snapshot with the site id removed.
func (s Snapshot) WithoutSite(id string) Snapshot {
	out := s
	out.Sites = nil
	for _, site := range s.Sites {
		if site.ID != id {
			out.Sites = append(out.Sites, site)
		}
	}
	return out
}

// RenameSite swaps a site id, including references held by reports.
func (s Snapshot) RenameSite(fromID, toID string) Snapshot {
	out := s
	out.Sites = append([]Site(nil), s.Sites...)
	for i := range out.Sites {
		if out.Sites[i].ID == fromID {
			out.Sites[i].ID = toID
		}
	}
	out.Reports = retarget(s.Reports, func(r *Report) bool {
		if r.SiteID != fromID {
			return false
		}
		r.SiteID = toID
		return true
	})
	return out
}

// retarget returns reports with fn applied to each one. The input slice is
// returned as is when fn changes nothing.
func retarget(reports []Report, fn func(*Report) bool) []Report {
	var out []Report
	for i := range reports {
		r := reports[i]
		if !fn(&r) {
			continue
		}
		if out == nil {
			out = make([]Report, len(reports))
			copy(out, reports)
		}
		out[i] = r
	}
	if out == nil {
		return reports
	}
	return out
}

// FindSite returns the site with the given id.
func (s Snapshot) FindSite(id string) (Site, bool) {
	for _, site := range s.Sites {
		if site.ID == id {
			return site, true
		}
	}
	return Site{}, false
}

// SiteName resolves a site id to its display name.
func (s Snapshot) SiteName(id string) string {
	if site, ok := s.FindSite(id); ok {
		return site.Name
	}
	return ""
}

// PresenterName resolves a presenter id to its display name.
func (s Snapshot) PresenterName(id string) string {
	if p, ok := s.FindPresenter(id); ok {
		return p.Name
	}
	return ""
}

// SortSites orders sites by name, with the pinned name (if any) first.
func SortSites(sites []Site, pinned string) []Site {
	out := append([]Site(nil), sites...)
	less := NameOrder(pinned)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i].Name, out[j].Name)
	})
	return out
}

// NameOrder returns a comparison that orders names with Portuguese collation
// rules (accents sort next to their base letter), except that pinned always
// sorts first. The returned func is not safe for concurrent use.
func NameOrder(pinned string) func(a, b string) bool {
	col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
	return func(a, b string) bool {
		if pinned != "" {
			if a == pinned && b != pinned {
				return true
			}
			if b == pinned && a != pinned {
				return false
			}
		}
		return col.CompareString(a, b) < 0
	}
}
