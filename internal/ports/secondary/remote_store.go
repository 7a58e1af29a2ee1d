// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"
)

// RemoteStore is the gateway to the authoritative store of sites, presenters,
// volunteer areas and reports. Every call is atomic at single-record
// granularity and may fail independently; write failures are reported as
// *RemoteWriteError, listing failures as *RemoteReadError.
type RemoteStore interface {
	// ListSites returns all sites ordered by name.
	ListSites(ctx context.Context) ([]*SiteRecord, error)

	// ListPresenters returns all presenters ordered by name.
	ListPresenters(ctx context.Context) ([]*PresenterRecord, error)

	// ListVolunteerAreas returns all volunteer areas ordered by name.
	ListVolunteerAreas(ctx context.Context) ([]*AreaRecord, error)

	// ListReports returns all reports ordered by date, newest first.
	ListReports(ctx context.Context) ([]*ReportRecord, error)

	// CreateSite persists a site and returns it with its authoritative ID.
	CreateSite(ctx context.Context, site *SiteRecord) (*SiteRecord, error)

	// CreatePresenter persists a presenter and returns it with its authoritative ID.
	CreatePresenter(ctx context.Context, presenter *PresenterRecord) (*PresenterRecord, error)

	// CreateVolunteerArea persists an area and returns it with its authoritative ID.
	CreateVolunteerArea(ctx context.Context, area *AreaRecord) (*AreaRecord, error)

	// CreateReport persists a report and returns it with its authoritative ID
	// and creation timestamp.
	CreateReport(ctx context.Context, report *ReportRecord) (*ReportRecord, error)

	// UpdateReport overwrites the report with the same ID.
	UpdateReport(ctx context.Context, report *ReportRecord) error

	// DeleteReport removes a report.
	DeleteReport(ctx context.Context, id string) error

	// DeletePresenter removes a presenter. Reports keep their reference.
	DeletePresenter(ctx context.Context, id string) error

	// DeleteVolunteerArea removes an area. Historical breakdown counts are kept.
	DeleteVolunteerArea(ctx context.Context, id string) error

	// ResolveRole looks up the role assigned to a user. A user without an
	// assignment gets a record with an empty role. Failures are *RoleLookupError.
	ResolveRole(ctx context.Context, userID string) (*RoleRecord, error)
}

// SiteRecord represents a site as stored remotely.
type SiteRecord struct {
	ID    string
	Name  string
	Color string
}

// PresenterRecord represents a presenter as stored remotely.
type PresenterRecord struct {
	ID   string
	Name string
}

// AreaRecord represents a volunteer area as stored remotely.
type AreaRecord struct {
	ID   string
	Name string
}

// ReportRecord represents a report row (reports table) as stored remotely.
type ReportRecord struct {
	ID                   string
	SiteID               string
	Date                 string // YYYY-MM-DD
	Time                 string // HH:MM
	PresenterID          string
	AttendanceAdults     int
	AttendanceKids       int
	AttendanceVisitors   int
	AttendanceTeens      int
	AttendanceVolunteers int
	VolunteerData        map[string]int
	Notes                string
	CreatedAt            time.Time
}

// RoleAssigner grants roles. Role administration is an operator task and is
// not part of RemoteStore; both store implementations provide it.
type RoleAssigner interface {
	AssignRole(ctx context.Context, userID, role, siteID string) error
}

// RoleRecord is the outcome of a role lookup.
type RoleRecord struct {
	Role   string // "admin", "global_viewer", "campus_leader" or ""
	SiteID string // only set for campus_leader
}
