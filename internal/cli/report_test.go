package cli

import (
	"testing"

	"github.com/spf13/cobra"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
)

func testSnapshot() attendance.Snapshot {
	return attendance.Snapshot{
		Sites: []attendance.Site{
			{ID: "s1", Name: "INA Centro"},
			{ID: "s2", Name: "INA Campus Cambé"},
		},
		Presenters:     []attendance.Presenter{{ID: "p1", Name: "Pr. João"}},
		VolunteerAreas: []attendance.VolunteerArea{{ID: "a1", Name: "Louvor"}, {ID: "a2", Name: "Recepção"}},
	}
}

func parseReportFlags(t *testing.T, args ...string) (*cobra.Command, *reportFlags) {
	t.Helper()
	var flags reportFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd, &flags
}

func TestReportFlags_ApplyNew(t *testing.T) {
	cmd, flags := parseReportFlags(t,
		"--site", "ina centro",
		"--presenter", "Pr. João",
		"--date", "2024-05-12",
		"--adults", "100",
		"--kids", "20",
		"--volunteer", "Louvor=6",
		"--volunteer", "a2=4",
		"--notes", "Santa Ceia",
	)

	var r attendance.Report
	if err := flags.apply(cmd, testSnapshot(), &r); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if r.SiteID != "s1" || r.PresenterID != "p1" {
		t.Errorf("names not resolved: site=%q presenter=%q", r.SiteID, r.PresenterID)
	}
	if r.Date != "2024-05-12" || r.Time != defaultServiceTime {
		t.Errorf("unexpected date/time %s %s", r.Date, r.Time)
	}
	if r.Attendance.Adults != 100 || r.Attendance.Kids != 20 {
		t.Errorf("unexpected attendance %+v", r.Attendance)
	}
	if r.VolunteerBreakdown["a1"] != 6 || r.VolunteerBreakdown["a2"] != 4 {
		t.Errorf("unexpected breakdown %v", r.VolunteerBreakdown)
	}
	if r.Notes != "Santa Ceia" {
		t.Errorf("unexpected notes %q", r.Notes)
	}
}

func TestReportFlags_ApplyKeepsUnchangedFields(t *testing.T) {
	cmd, flags := parseReportFlags(t, "--teens", "12")

	r := attendance.Report{
		ID:                 "r1",
		SiteID:             "s2",
		Date:               "2024-05-05",
		Time:               "10:00",
		PresenterID:        "p1",
		Attendance:         attendance.Attendance{Adults: 80, Volunteers: 3},
		VolunteerBreakdown: map[string]int{"a1": 3},
	}
	if err := flags.apply(cmd, testSnapshot(), &r); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	if r.Attendance.Teens != 12 {
		t.Errorf("expected teens 12, got %d", r.Attendance.Teens)
	}
	if r.SiteID != "s2" || r.Date != "2024-05-05" || r.Time != "10:00" || r.Attendance.Adults != 80 {
		t.Errorf("unchanged fields were overwritten: %+v", r)
	}
	if r.VolunteerBreakdown["a1"] != 3 {
		t.Errorf("breakdown should be untouched, got %v", r.VolunteerBreakdown)
	}
}

func TestReportFlags_ApplyUnknownReference(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown site", []string{"--site", "Londrina"}},
		{"unknown presenter", []string{"--presenter", "Ninguém"}},
		{"unknown area", []string{"--volunteer", "Cozinha=2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, flags := parseReportFlags(t, tt.args...)
			var r attendance.Report
			if err := flags.apply(cmd, testSnapshot(), &r); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestResolveArea_ImportedKey(t *testing.T) {
	area, err := resolveArea(testSnapshot(), attendance.ImportedAreaKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if area.ID != attendance.ImportedAreaKey {
		t.Errorf("expected %q, got %q", attendance.ImportedAreaKey, area.ID)
	}
}

func TestReportCmdStructure(t *testing.T) {
	want := map[string]bool{"add": false, "edit": false, "delete": false, "list": false, "show": false}
	for _, sub := range ReportCmd().Commands() {
		name := sub.Name()
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("report %s not registered", name)
		}
	}
}

func TestHistoryCmd_DefaultGrouping(t *testing.T) {
	cmd := HistoryCmd()
	if got := cmd.Flags().Lookup("by").DefValue; got != "month" {
		t.Errorf("expected default grouping month, got %q", got)
	}
}
