// Package tabular maps reports to and from spreadsheet-shaped rows.
package tabular

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
)

// UnknownName is rendered for references that no longer resolve.
const UnknownName = "Unknown"

// ExportHeader is the fixed column order of exported tables.
var ExportHeader = []string{
	"Date", "Time", "Site", "Presenter",
	"Adults", "Kids", "Visitors", "Teens", "Volunteers", "Total", "Notes",
}

const notesColumn = 10

// ExportRow is one report flattened for export.
type ExportRow struct {
	Date       string
	Time       string
	Site       string
	Presenter  string
	Adults     int
	Kids       int
	Visitors   int
	Teens      int
	Volunteers int
	Total      int
	Notes      string
}

// BuildExport flattens every report of snap, in snapshot order.
func BuildExport(snap attendance.Snapshot) []ExportRow {
	rows := make([]ExportRow, 0, len(snap.Reports))
	for _, r := range snap.Reports {
		r = r.Normalize()
		row := ExportRow{
			Date:       r.Date,
			Time:       r.Time,
			Site:       snap.SiteName(r.SiteID),
			Presenter:  snap.PresenterName(r.PresenterID),
			Adults:     r.Attendance.Adults,
			Kids:       r.Attendance.Kids,
			Visitors:   r.Attendance.Visitors,
			Teens:      r.Attendance.Teens,
			Volunteers: r.Attendance.Volunteers,
			Total:      r.Total(),
			Notes:      r.Notes,
		}
		if row.Site == "" {
			row.Site = UnknownName
		}
		if row.Presenter == "" {
			row.Presenter = UnknownName
		}
		rows = append(rows, row)
	}
	return rows
}

func (r ExportRow) cells() []string {
	return []string{
		r.Date, r.Time, r.Site, r.Presenter,
		strconv.Itoa(r.Adults), strconv.Itoa(r.Kids), strconv.Itoa(r.Visitors),
		strconv.Itoa(r.Teens), strconv.Itoa(r.Volunteers), strconv.Itoa(r.Total),
		r.Notes,
	}
}

// WriteCSV writes the header and rows as CSV. The Notes column is always
// double-quoted; other cells are quoted only when they need it.
func WriteCSV(w io.Writer, rows []ExportRow) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(ExportHeader, ",") + "\n"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		cells := row.cells()
		for i, c := range cells {
			if i == notesColumn {
				cells[i] = quote(c)
			} else if strings.ContainsAny(c, ",\"\r\n") {
				cells[i] = quote(c)
			}
		}
		if _, err := bw.WriteString(strings.Join(cells, ",") + "\n"); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// SheetName is the worksheet exported reports are written to.
const SheetName = "Relatorios"

// WriteXLSX writes the header and rows as an .xlsx workbook with numeric
// cells for the counts.
func WriteXLSX(w io.Writer, rows []ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			r.Date, r.Time, r.Site, r.Presenter,
			r.Adults, r.Kids, r.Visitors, r.Teens, r.Volunteers, r.Total,
			r.Notes,
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
