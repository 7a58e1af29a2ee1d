// Package sqlite contains the SQLite implementation of the remote store gateway.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thiagorusso-10/contagemdeculto/internal/ports/secondary"
)

// Store implements secondary.RemoteStore with SQLite.
// Every method runs a single statement, so each call is atomic.
type Store struct {
	db    *sql.DB
	newID func() string
	now   func() time.Time
}

var (
	_ secondary.RemoteStore  = (*Store)(nil)
	_ secondary.RoleAssigner = (*Store)(nil)
)

// NewStore creates a new SQLite store.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:    db,
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ListSites returns all sites ordered by name.
func (s *Store) ListSites(ctx context.Context) ([]*secondary.SiteRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, color FROM sites ORDER BY name")
	if err != nil {
		return nil, secondary.ReadError("sites", err)
	}
	defer rows.Close()

	var out []*secondary.SiteRecord
	for rows.Next() {
		rec := &secondary.SiteRecord{}
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Color); err != nil {
			return nil, secondary.ReadError("sites", fmt.Errorf("failed to scan site: %w", err))
		}
		out = append(out, rec)
	}
	return out, secondary.ReadError("sites", rows.Err())
}

// ListPresenters returns all presenters ordered by name.
func (s *Store) ListPresenters(ctx context.Context) ([]*secondary.PresenterRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM presenters ORDER BY name")
	if err != nil {
		return nil, secondary.ReadError("presenters", err)
	}
	defer rows.Close()

	var out []*secondary.PresenterRecord
	for rows.Next() {
		rec := &secondary.PresenterRecord{}
		if err := rows.Scan(&rec.ID, &rec.Name); err != nil {
			return nil, secondary.ReadError("presenters", fmt.Errorf("failed to scan presenter: %w", err))
		}
		out = append(out, rec)
	}
	return out, secondary.ReadError("presenters", rows.Err())
}

// ListVolunteerAreas returns all volunteer areas ordered by name.
func (s *Store) ListVolunteerAreas(ctx context.Context) ([]*secondary.AreaRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM volunteer_areas ORDER BY name")
	if err != nil {
		return nil, secondary.ReadError("volunteer_areas", err)
	}
	defer rows.Close()

	var out []*secondary.AreaRecord
	for rows.Next() {
		rec := &secondary.AreaRecord{}
		if err := rows.Scan(&rec.ID, &rec.Name); err != nil {
			return nil, secondary.ReadError("volunteer_areas", fmt.Errorf("failed to scan area: %w", err))
		}
		out = append(out, rec)
	}
	return out, secondary.ReadError("volunteer_areas", rows.Err())
}

const reportColumns = `id, site_id, date, time, presenter_id,
	attendance_adults, attendance_kids, attendance_visitors, attendance_teens, attendance_volunteers,
	volunteer_data, notes, created_at`

// ListReports returns all reports, newest date first.
func (s *Store) ListReports(ctx context.Context) ([]*secondary.ReportRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+reportColumns+" FROM reports ORDER BY date DESC, time DESC, created_at DESC")
	if err != nil {
		return nil, secondary.ReadError("reports", err)
	}
	defer rows.Close()

	var out []*secondary.ReportRecord
	for rows.Next() {
		rec, err := scanReport(rows)
		if err != nil {
			return nil, secondary.ReadError("reports", err)
		}
		out = append(out, rec)
	}
	return out, secondary.ReadError("reports", rows.Err())
}

func scanReport(rows *sql.Rows) (*secondary.ReportRecord, error) {
	var (
		rec       secondary.ReportRecord
		data      string
		createdAt sql.NullTime
	)
	err := rows.Scan(&rec.ID, &rec.SiteID, &rec.Date, &rec.Time, &rec.PresenterID,
		&rec.AttendanceAdults, &rec.AttendanceKids, &rec.AttendanceVisitors, &rec.AttendanceTeens,
		&rec.AttendanceVolunteers, &data, &rec.Notes, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan report: %w", err)
	}
	if data != "" {
		if err := json.Unmarshal([]byte(data), &rec.VolunteerData); err != nil {
			return nil, fmt.Errorf("failed to decode volunteer data of report %s: %w", rec.ID, err)
		}
	}
	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time
	}
	return &rec, nil
}

// CreateSite persists a new site.
func (s *Store) CreateSite(ctx context.Context, site *secondary.SiteRecord) (*secondary.SiteRecord, error) {
	out := *site
	out.ID = s.newID()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sites (id, name, color, created_at) VALUES (?, ?, ?, ?)",
		out.ID, out.Name, out.Color, s.now(),
	)
	if err != nil {
		return nil, secondary.WriteError("create", "site", "", err)
	}
	return &out, nil
}

// CreatePresenter persists a new presenter.
func (s *Store) CreatePresenter(ctx context.Context, presenter *secondary.PresenterRecord) (*secondary.PresenterRecord, error) {
	out := *presenter
	out.ID = s.newID()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO presenters (id, name, created_at) VALUES (?, ?, ?)",
		out.ID, out.Name, s.now(),
	)
	if err != nil {
		return nil, secondary.WriteError("create", "presenter", "", err)
	}
	return &out, nil
}

// CreateVolunteerArea persists a new volunteer area.
func (s *Store) CreateVolunteerArea(ctx context.Context, area *secondary.AreaRecord) (*secondary.AreaRecord, error) {
	out := *area
	out.ID = s.newID()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO volunteer_areas (id, name, created_at) VALUES (?, ?, ?)",
		out.ID, out.Name, s.now(),
	)
	if err != nil {
		return nil, secondary.WriteError("create", "volunteer_area", "", err)
	}
	return &out, nil
}

// CreateReport persists a new report and stamps its creation time.
func (s *Store) CreateReport(ctx context.Context, report *secondary.ReportRecord) (*secondary.ReportRecord, error) {
	out := *report
	out.ID = s.newID()
	out.CreatedAt = s.now()

	data, err := encodeVolunteerData(out.VolunteerData)
	if err != nil {
		return nil, secondary.WriteError("create", "report", "", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO reports ("+reportColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		out.ID, out.SiteID, out.Date, out.Time, out.PresenterID,
		out.AttendanceAdults, out.AttendanceKids, out.AttendanceVisitors, out.AttendanceTeens,
		out.AttendanceVolunteers, data, out.Notes, out.CreatedAt,
	)
	if err != nil {
		return nil, secondary.WriteError("create", "report", "", err)
	}
	return &out, nil
}

// UpdateReport overwrites every column except id and created_at.
func (s *Store) UpdateReport(ctx context.Context, report *secondary.ReportRecord) error {
	data, err := encodeVolunteerData(report.VolunteerData)
	if err != nil {
		return secondary.WriteError("update", "report", report.ID, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE reports SET site_id = ?, date = ?, time = ?, presenter_id = ?,
			attendance_adults = ?, attendance_kids = ?, attendance_visitors = ?,
			attendance_teens = ?, attendance_volunteers = ?, volunteer_data = ?, notes = ?
		WHERE id = ?`,
		report.SiteID, report.Date, report.Time, report.PresenterID,
		report.AttendanceAdults, report.AttendanceKids, report.AttendanceVisitors,
		report.AttendanceTeens, report.AttendanceVolunteers, data, report.Notes,
		report.ID,
	)
	if err != nil {
		return secondary.WriteError("update", "report", report.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return secondary.WriteError("update", "report", report.ID, err)
	}
	if rowsAffected == 0 {
		return secondary.WriteError("update", "report", report.ID, secondary.ErrNotFound)
	}
	return nil
}

// DeleteReport removes a report. Deleting a missing report is not an error.
func (s *Store) DeleteReport(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "reports", "report", id)
}

// DeletePresenter removes a presenter.
func (s *Store) DeletePresenter(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "presenters", "presenter", id)
}

// DeleteVolunteerArea removes a volunteer area.
func (s *Store) DeleteVolunteerArea(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "volunteer_areas", "volunteer_area", id)
}

func (s *Store) deleteByID(ctx context.Context, table, entity, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id); err != nil {
		return secondary.WriteError("delete", entity, id, err)
	}
	return nil
}

// ResolveRole looks up the role assigned to userID.
func (s *Store) ResolveRole(ctx context.Context, userID string) (*secondary.RoleRecord, error) {
	var (
		rec    secondary.RoleRecord
		campus sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT role, campus_id FROM user_roles WHERE id = ?", userID,
	).Scan(&rec.Role, &campus)
	if errors.Is(err, sql.ErrNoRows) {
		return &secondary.RoleRecord{}, nil
	}
	if err != nil {
		return nil, &secondary.RoleLookupError{UserID: userID, Err: err}
	}
	rec.SiteID = campus.String
	return &rec, nil
}

// AssignRole upserts the role of userID. siteID only applies to campus leaders.
func (s *Store) AssignRole(ctx context.Context, userID, role, siteID string) error {
	var campus sql.NullString
	if siteID != "" {
		campus = sql.NullString{String: siteID, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_roles (id, role, campus_id) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET role = excluded.role, campus_id = excluded.campus_id`,
		userID, role, campus,
	)
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

func encodeVolunteerData(data map[string]int) (string, error) {
	if data == nil {
		return "{}", nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode volunteer data: %w", err)
	}
	return string(b), nil
}
