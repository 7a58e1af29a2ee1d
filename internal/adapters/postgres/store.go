// Package postgres contains the hosted Postgres implementation of the remote
// store gateway, built on gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thiagorusso-10/contagemdeculto/internal/ports/secondary"
)

var (
	// ErrConflict is a unique-key violation.
	ErrConflict = errors.New("record already exists")
	// ErrReference is a foreign-key violation.
	ErrReference = errors.New("referenced record does not exist")
	// ErrConstraint is a check-constraint violation, e.g. a negative count.
	ErrConstraint = errors.New("value violates a constraint")
)

// Store implements secondary.RemoteStore against Postgres.
type Store struct {
	db    *gorm.DB
	newID func() string
	now   func() time.Time
}

var (
	_ secondary.RemoteStore  = (*Store)(nil)
	_ secondary.RoleAssigner = (*Store)(nil)
)

// Open connects to dsn and migrates the ledger tables.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: NewGormLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.AutoMigrate(&SiteModel{}, &PresenterModel{}, &AreaModel{}, &ReportModel{}, &UserRoleModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate postgres schema: %w", err)
	}
	return NewStore(db), nil
}

// NewStore wraps an open gorm connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:    db,
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ListSites returns all sites ordered by name.
func (s *Store) ListSites(ctx context.Context) ([]*secondary.SiteRecord, error) {
	var rows []SiteModel
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, secondary.ReadError("sites", classify(err))
	}
	out := make([]*secondary.SiteRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, &secondary.SiteRecord{ID: m.ID, Name: m.Name, Color: m.Color})
	}
	return out, nil
}

// ListPresenters returns all presenters ordered by name.
func (s *Store) ListPresenters(ctx context.Context) ([]*secondary.PresenterRecord, error) {
	var rows []PresenterModel
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, secondary.ReadError("presenters", classify(err))
	}
	out := make([]*secondary.PresenterRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, &secondary.PresenterRecord{ID: m.ID, Name: m.Name})
	}
	return out, nil
}

// ListVolunteerAreas returns all volunteer areas ordered by name.
func (s *Store) ListVolunteerAreas(ctx context.Context) ([]*secondary.AreaRecord, error) {
	var rows []AreaModel
	if err := s.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, secondary.ReadError("volunteer_areas", classify(err))
	}
	out := make([]*secondary.AreaRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, &secondary.AreaRecord{ID: m.ID, Name: m.Name})
	}
	return out, nil
}

// ListReports returns all reports, newest date and time first.
func (s *Store) ListReports(ctx context.Context) ([]*secondary.ReportRecord, error) {
	var rows []ReportModel
	err := s.db.WithContext(ctx).
		Order("date DESC").Order("time DESC").Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, secondary.ReadError("reports", classify(err))
	}
	out := make([]*secondary.ReportRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.record())
	}
	return out, nil
}

// CreateSite persists a new site under a generated UUID.
func (s *Store) CreateSite(ctx context.Context, site *secondary.SiteRecord) (*secondary.SiteRecord, error) {
	m := SiteModel{ID: s.newID(), Name: site.Name, Color: site.Color, CreatedAt: s.now()}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, secondary.WriteError("create", "site", "", classify(err))
	}
	return &secondary.SiteRecord{ID: m.ID, Name: m.Name, Color: m.Color}, nil
}

// CreatePresenter persists a new presenter under a generated UUID.
func (s *Store) CreatePresenter(ctx context.Context, presenter *secondary.PresenterRecord) (*secondary.PresenterRecord, error) {
	m := PresenterModel{ID: s.newID(), Name: presenter.Name, CreatedAt: s.now()}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, secondary.WriteError("create", "presenter", "", classify(err))
	}
	return &secondary.PresenterRecord{ID: m.ID, Name: m.Name}, nil
}

// CreateVolunteerArea persists a new volunteer area under a generated UUID.
func (s *Store) CreateVolunteerArea(ctx context.Context, area *secondary.AreaRecord) (*secondary.AreaRecord, error) {
	m := AreaModel{ID: s.newID(), Name: area.Name, CreatedAt: s.now()}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, secondary.WriteError("create", "volunteer_area", "", classify(err))
	}
	return &secondary.AreaRecord{ID: m.ID, Name: m.Name}, nil
}

// CreateReport persists a new report and stamps its creation time.
func (s *Store) CreateReport(ctx context.Context, report *secondary.ReportRecord) (*secondary.ReportRecord, error) {
	m := reportModelFromRecord(report)
	m.ID = s.newID()
	m.CreatedAt = s.now()
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, secondary.WriteError("create", "report", "", classify(err))
	}
	return m.record(), nil
}

// UpdateReport overwrites every column except id and created_at.
func (s *Store) UpdateReport(ctx context.Context, report *secondary.ReportRecord) error {
	m := reportModelFromRecord(report)
	result := s.db.WithContext(ctx).
		Model(&ReportModel{}).
		Where("id = ?", report.ID).
		Select("*").Omit("id", "created_at").
		Updates(&m)
	if result.Error != nil {
		return secondary.WriteError("update", "report", report.ID, classify(result.Error))
	}
	if result.RowsAffected == 0 {
		return secondary.WriteError("update", "report", report.ID, secondary.ErrNotFound)
	}
	return nil
}

// DeleteReport removes a report. Deleting a missing report is not an error.
func (s *Store) DeleteReport(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&ReportModel{}, "id = ?", id).Error; err != nil {
		return secondary.WriteError("delete", "report", id, classify(err))
	}
	return nil
}

// DeletePresenter removes a presenter.
func (s *Store) DeletePresenter(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&PresenterModel{}, "id = ?", id).Error; err != nil {
		return secondary.WriteError("delete", "presenter", id, classify(err))
	}
	return nil
}

// DeleteVolunteerArea removes a volunteer area.
func (s *Store) DeleteVolunteerArea(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&AreaModel{}, "id = ?", id).Error; err != nil {
		return secondary.WriteError("delete", "volunteer_area", id, classify(err))
	}
	return nil
}

// ResolveRole looks up the role assigned to userID. An unknown user has no
// role rather than an error.
func (s *Store) ResolveRole(ctx context.Context, userID string) (*secondary.RoleRecord, error) {
	var m UserRoleModel
	err := s.db.WithContext(ctx).Where("id = ?", userID).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &secondary.RoleRecord{}, nil
	}
	if err != nil {
		return nil, &secondary.RoleLookupError{UserID: userID, Err: classify(err)}
	}
	rec := &secondary.RoleRecord{Role: m.Role}
	if m.CampusID != nil {
		rec.SiteID = *m.CampusID
	}
	return rec, nil
}

// AssignRole upserts the role of userID. siteID only applies to campus leaders.
func (s *Store) AssignRole(ctx context.Context, userID, role, siteID string) error {
	m := UserRoleModel{ID: userID, Role: role}
	if siteID != "" {
		m.CampusID = &siteID
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "campus_id"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", classify(err))
	}
	return nil
}

// classify maps Postgres error codes onto the package's sentinel errors,
// keeping the driver error in the chain.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case "23503":
		return fmt.Errorf("%w: %w", ErrReference, err)
	case "23514":
		return fmt.Errorf("%w: %w", ErrConstraint, err)
	default:
		return err
	}
}
