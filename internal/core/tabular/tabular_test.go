package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
)

func exportSnapshot() attendance.Snapshot {
	return attendance.Snapshot{
		Sites:      []attendance.Site{{ID: "s1", Name: "INA Centro"}},
		Presenters: []attendance.Presenter{{ID: "p1", Name: "Pr. João"}},
		Reports: []attendance.Report{
			{
				ID: "r1", SiteID: "s1", Date: "2024-05-12", Time: "19:30", PresenterID: "p1",
				Attendance:         attendance.Attendance{Adults: 100, Kids: 20, Visitors: 10, Teens: 5},
				VolunteerBreakdown: map[string]int{"a1": 4, "a2": 1},
				Notes:              `culto "especial", com ceia`,
			},
			{
				ID: "r2", SiteID: "gone", Date: "2024-05-05", Time: "10:00", PresenterID: "gone",
				Attendance: attendance.Attendance{Adults: 1},
			},
		},
	}
}

func TestBuildExport(t *testing.T) {
	rows := BuildExport(exportSnapshot())
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Volunteers != 5 || rows[0].Total != 140 {
		t.Errorf("expected volunteers 5 total 140, got %d %d", rows[0].Volunteers, rows[0].Total)
	}
	if rows[1].Site != UnknownName || rows[1].Presenter != UnknownName {
		t.Errorf("expected unresolved names to be Unknown, got %q %q", rows[1].Site, rows[1].Presenter)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, BuildExport(exportSnapshot())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "Date,Time,Site,Presenter,Adults,Kids,Visitors,Teens,Volunteers,Total,Notes" {
		t.Errorf("unexpected header %q", lines[0])
	}
	want := `2024-05-12,19:30,INA Centro,Pr. João,100,20,10,5,5,140,"culto ""especial"", com ceia"`
	if lines[1] != want {
		t.Errorf("unexpected row:\n got %s\nwant %s", lines[1], want)
	}
	if !strings.HasSuffix(lines[2], `,""`) {
		t.Errorf("expected empty notes to be quoted, got %s", lines[2])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, BuildExport(exportSnapshot())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1][9] != "140" {
		t.Errorf("expected total 140, got %q", rows[1][9])
	}
}

func TestFold(t *testing.T) {
	tests := map[string]string{
		"Horário":          "horario",
		" Crianças ":       "criancas",
		"Pré-Adolescentes": "pre-adolescentes",
		"Observações":      "observacoes",
		"VOLUNTÁRIOS":      "voluntarios",
	}
	for in, want := range tests {
		if got := Fold(in); got != want {
			t.Errorf("Fold(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseRows_BilingualHeaders(t *testing.T) {
	rows := [][]string{
		{"Data", "Horario", "Campus", "Preletor", "Adultos", "Crianças", "Visitantes", "Pre-Adolescentes", "Voluntários", "Observações"},
		{"12/05/2024", "9:00", "INA Centro", "Ana", "10", "2", "1", "3", "4", "ok"},
	}
	parsed, skipped := ParseRows(rows)
	if skipped != 0 || len(parsed) != 1 {
		t.Fatalf("expected 1 row and 0 skipped, got %d and %d", len(parsed), skipped)
	}
	got := parsed[0]
	want := Row{Line: 2, Date: "2024-05-12", Time: "09:00", Site: "INA Centro", Presenter: "Ana",
		Adults: 10, Kids: 2, Visitors: 1, Teens: 3, Volunteers: 4, Notes: "ok"}
	if got != want {
		t.Errorf("unexpected row:\n got %+v\nwant %+v", got, want)
	}
}

func TestParseRows_SkipsAndDefaults(t *testing.T) {
	rows := [][]string{
		{"Date", "Site", "Adults"},
		{"2024-05-12", "Norte", "x"},
		{"", "Norte", "5"},
		{"2024-05-13", "", "5"},
		{"", "", ""},
	}
	parsed, skipped := ParseRows(rows)
	if len(parsed) != 1 {
		t.Fatalf("expected 1 row, got %d", len(parsed))
	}
	if skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", skipped)
	}
	if parsed[0].Time != DefaultTime {
		t.Errorf("expected default time, got %q", parsed[0].Time)
	}
	if parsed[0].Adults != 0 {
		t.Errorf("expected unparsable count to be 0, got %d", parsed[0].Adults)
	}
}

func TestPartialImportError(t *testing.T) {
	err := &PartialImportError{Imported: 3, Skipped: 1}
	if err.Error() != "imported 3 rows, skipped 1" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2024-05-12", "2024-05-12"},
		{"12/05/2024", "2024-05-12"},
		{"1/5/2024", "2024-05-01"},
		{"45424", "2024-05-12"},
		{"150", "150"},
		{"ontem", "ontem"},
	}
	for _, tt := range tests {
		if got := NormalizeDate(tt.in); got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
