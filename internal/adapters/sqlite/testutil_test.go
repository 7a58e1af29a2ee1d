// Package sqlite_test contains integration tests for the SQLite store.
//
// Tests load the schema through db.GetSchemaSQL() so they always run against
// the same tables production uses. Do not hardcode CREATE TABLE statements in
// test files; use setupTestDB() and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/thiagorusso-10/contagemdeculto/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedSite inserts a test site and returns its ID.
func seedSite(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "SITE-001"
	}
	if name == "" {
		name = "INA Centro"
	}
	_, err := db.Exec("INSERT INTO sites (id, name, color) VALUES (?, ?, 'bg-neo-yellow')", id, name)
	if err != nil {
		t.Fatalf("failed to seed site: %v", err)
	}
	return id
}

// seedPresenter inserts a test presenter and returns its ID.
func seedPresenter(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "PRES-001"
	}
	if name == "" {
		name = "Pr. João"
	}
	_, err := db.Exec("INSERT INTO presenters (id, name) VALUES (?, ?)", id, name)
	if err != nil {
		t.Fatalf("failed to seed presenter: %v", err)
	}
	return id
}

// seedReport inserts a report with only adult attendance set.
func seedReport(t *testing.T, db *sql.DB, id, siteID, date string, adults int) string {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO reports (id, site_id, date, time, presenter_id, attendance_adults)
		VALUES (?, ?, ?, '19:30', 'PRES-001', ?)`,
		id, siteID, date, adults,
	)
	if err != nil {
		t.Fatalf("failed to seed report: %v", err)
	}
	return id
}
