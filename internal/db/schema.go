package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// This is the single source of truth for the local database schema. Tests
// use it via GetSchemaSQL() instead of hardcoding their own tables, so a
// repository query referencing a missing column fails immediately.
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Sites (campuses)
CREATE TABLE IF NOT EXISTS sites (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	color TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Presenters (preachers)
CREATE TABLE IF NOT EXISTS presenters (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Volunteer areas (ministries)
CREATE TABLE IF NOT EXISTS volunteer_areas (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Reports (one per service). Presenters and areas may be deleted while
-- reports keep referencing them, so there are no foreign keys.
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

CREATE INDEX IF NOT EXISTS idx_reports_date ON reports(date);
CREATE INDEX IF NOT EXISTS idx_reports_site ON reports(site_id);

-- User roles (id is the user id)
CREATE TABLE IF NOT EXISTS user_roles (
	id TEXT PRIMARY KEY,
	role TEXT NOT NULL CHECK(role IN ('admin', 'global_viewer', 'campus_leader')),
	campus_id TEXT
);
`

// InitSchema brings database up to date. Fresh databases get SchemaSQL and
// are marked as fully migrated; existing ones run pending migrations.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}
	if tableCount > 0 {
		return RunMigrations(database)
	}

	if _, err := database.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := createVersionTable(database); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
