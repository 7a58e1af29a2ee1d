package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
)

// SeedFixtures populates the database with development fixtures: the
// default sites and areas, two presenters, an admin role and a few weeks of
// reports.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC()

	siteIDs := make([]string, 0, 4)
	for i, s := range attendance.DefaultSites() {
		id := fmt.Sprintf("SITE-%03d", i+1)
		if _, err := database.Exec(
			"INSERT INTO sites (id, name, color, created_at) VALUES (?, ?, ?, ?)",
			id, s.Name, s.Color, now,
		); err != nil {
			return fmt.Errorf("seed sites: %w", err)
		}
		siteIDs = append(siteIDs, id)
	}

	for i, a := range attendance.DefaultAreas() {
		if _, err := database.Exec(
			"INSERT INTO volunteer_areas (id, name, created_at) VALUES (?, ?, ?)",
			fmt.Sprintf("AREA-%03d", i+1), a.Name, now,
		); err != nil {
			return fmt.Errorf("seed volunteer areas: %w", err)
		}
	}

	presenters := []struct{ id, name string }{
		{"PRES-001", "Pr. João Silva"},
		{"PRES-002", "Pra. Marta Souza"},
	}
	for _, p := range presenters {
		if _, err := database.Exec(
			"INSERT INTO presenters (id, name, created_at) VALUES (?, ?, ?)",
			p.id, p.name, now,
		); err != nil {
			return fmt.Errorf("seed presenters: %w", err)
		}
	}

	if _, err := database.Exec(
		"INSERT INTO user_roles (id, role, campus_id) VALUES (?, ?, ?)",
		"dev-admin", "admin", nil,
	); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	// Three Sundays per site, evening services, counts growing week over week.
	sunday := now.AddDate(0, 0, -int(now.Weekday()))
	n := 0
	for week := 0; week < 3; week++ {
		date := sunday.AddDate(0, 0, -7*week).Format("2006-01-02")
		for i, siteID := range siteIDs {
			n++
			adults := 120 - 10*week + 15*i
			if _, err := database.Exec(`
				INSERT INTO reports (id, site_id, date, time, presenter_id,
					attendance_adults, attendance_kids, attendance_visitors, attendance_teens,
					attendance_volunteers, volunteer_data, notes, created_at)
				VALUES (?, ?, ?, '19:30', ?, ?, ?, ?, ?, ?, ?, '', ?)`,
				fmt.Sprintf("REP-%03d", n), siteID, date, presenters[n%2].id,
				adults, adults/5, adults/12, adults/10,
				8, `{"AREA-001":3,"AREA-002":5}`, now,
			); err != nil {
				return fmt.Errorf("seed reports: %w", err)
			}
		}
	}

	return nil
}
