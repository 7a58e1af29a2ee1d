package postgres

import (
	"time"

	"gorm.io/datatypes"

	"github.com/thiagorusso-10/contagemdeculto/internal/ports/secondary"
)

// SiteModel is the row shape of the sites table.
type SiteModel struct {
	ID        string    `gorm:"column:id;type:text;primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null"`
	Color     string    `gorm:"column:color;type:text;not null;default:''"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

func (SiteModel) TableName() string { return "sites" }

type PresenterModel struct {
	ID        string    `gorm:"column:id;type:text;primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

func (PresenterModel) TableName() string { return "presenters" }

type AreaModel struct {
	ID        string    `gorm:"column:id;type:text;primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now()"`
}

func (AreaModel) TableName() string { return "volunteer_areas" }

// ReportModel is the row shape of the reports table. The per-area volunteer
// breakdown lives in a jsonb column keyed by area ID.
type ReportModel struct {
	ID                   string                             `gorm:"column:id;type:text;primaryKey"`
	SiteID               string                             `gorm:"column:site_id;type:text;not null;index"`
	Date                 string                             `gorm:"column:date;type:text;not null;index"`
	Time                 string                             `gorm:"column:time;type:text;not null"`
	PresenterID          string                             `gorm:"column:presenter_id;type:text;not null"`
	AttendanceAdults     int                                `gorm:"column:attendance_adults;not null;default:0;check:attendance_adults >= 0"`
	AttendanceKids       int                                `gorm:"column:attendance_kids;not null;default:0;check:attendance_kids >= 0"`
	AttendanceVisitors   int                                `gorm:"column:attendance_visitors;not null;default:0;check:attendance_visitors >= 0"`
	AttendanceTeens      int                                `gorm:"column:attendance_teens;not null;default:0;check:attendance_teens >= 0"`
	AttendanceVolunteers int                                `gorm:"column:attendance_volunteers;not null;default:0;check:attendance_volunteers >= 0"`
	VolunteerData        datatypes.JSONType[map[string]int] `gorm:"column:volunteer_data;type:jsonb;not null"`
	Notes                string                             `gorm:"column:notes;type:text;not null;default:''"`
	CreatedAt            time.Time                          `gorm:"column:created_at;not null;default:now()"`
}

func (ReportModel) TableName() string { return "reports" }

type UserRoleModel struct {
	ID       string  `gorm:"column:id;type:text;primaryKey"`
	Role     string  `gorm:"column:role;type:text;not null"`
	CampusID *string `gorm:"column:campus_id;type:text"`
}

func (UserRoleModel) TableName() string { return "user_roles" }

func reportModelFromRecord(r *secondary.ReportRecord) ReportModel {
	data := r.VolunteerData
	if data == nil {
		data = map[string]int{}
	}
	return ReportModel{
		ID:                   r.ID,
		SiteID:               r.SiteID,
		Date:                 r.Date,
		Time:                 r.Time,
		PresenterID:          r.PresenterID,
		AttendanceAdults:     r.AttendanceAdults,
		AttendanceKids:       r.AttendanceKids,
		AttendanceVisitors:   r.AttendanceVisitors,
		AttendanceTeens:      r.AttendanceTeens,
		AttendanceVolunteers: r.AttendanceVolunteers,
		VolunteerData:        datatypes.NewJSONType(data),
		Notes:                r.Notes,
		CreatedAt:            r.CreatedAt,
	}
}

func (m ReportModel) record() *secondary.ReportRecord {
	return &secondary.ReportRecord{
		ID:                   m.ID,
		SiteID:               m.SiteID,
		Date:                 m.Date,
		Time:                 m.Time,
		PresenterID:          m.PresenterID,
		AttendanceAdults:     m.AttendanceAdults,
		AttendanceKids:       m.AttendanceKids,
		AttendanceVisitors:   m.AttendanceVisitors,
		AttendanceTeens:      m.AttendanceTeens,
		AttendanceVolunteers: m.AttendanceVolunteers,
		VolunteerData:        m.VolunteerData.Data(),
		Notes:                m.Notes,
		CreatedAt:            m.CreatedAt,
	}
}
