package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Migration is one schema upgrade step.
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_ledger_tables",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_report_indexes",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_user_roles",
		Up:      migrationV3,
	},
}

func createVersionTable(database *sql.DB) error {
	_, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// RunMigrations executes all pending migrations
func RunMigrations(database *sql.DB) error {
	if err := createVersionTable(database); err != nil {
		return err
	}

	var currentVersion int
	err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("running migration", "version", migration.Version, "name", migration.Name)

		if err := migration.Up(database); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 creates the four ledger collections.
func migrationV1(database *sql.DB) error {
	_, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS sites (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS presenters (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS volunteer_areas (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			site_id TEXT NOT NULL,
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			presenter_id TEXT NOT NULL,
			attendance_adults INTEGER NOT NULL DEFAULT 0 CHECK(attendance_adults >= 0),
			attendance_kids INTEGER NOT NULL DEFAULT 0 CHECK(attendance_kids >= 0),
			attendance_visitors INTEGER NOT NULL DEFAULT 0 CHECK(attendance_visitors >= 0),
			attendance_teens INTEGER NOT NULL DEFAULT 0 CHECK(attendance_teens >= 0),
			attendance_volunteers INTEGER NOT NULL DEFAULT 0 CHECK(attendance_volunteers >= 0),
			volunteer_data TEXT NOT NULL DEFAULT '{}',
			notes TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`)
	return err
}

// migrationV2 indexes reports by date and site for the history views.
func migrationV2(database *sql.DB) error {
	_, err := database.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reports_date ON reports(date);
		CREATE INDEX IF NOT EXISTS idx_reports_site ON reports(site_id);
	`)
	return err
}

// migrationV3 adds role assignments.
func migrationV3(database *sql.DB) error {
	_, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS user_roles (
			id TEXT PRIMARY KEY,
			role TEXT NOT NULL CHECK(role IN ('admin', 'global_viewer', 'campus_leader')),
			campus_id TEXT
		);
	`)
	return err
}
