package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
	"github.com/thiagorusso-10/contagemdeculto/internal/core/tabular"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/secondary"
)

// mockRowSource implements secondary.RowSource for testing.
type mockRowSource struct {
	rows [][]string
	err  error
	path string
}

func (m *mockRowSource) ReadRows(ctx context.Context, path string) ([][]string, error) {
	m.path = path
	return m.rows, m.err
}

// mockUploader implements secondary.BlobUploader for testing.
type mockUploader struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (m *mockUploader) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.key, m.contentType, m.body = key, contentType, body
	return "s3://exports/" + key, nil
}

var (
	_ secondary.RowSource    = (*mockRowSource)(nil)
	_ secondary.BlobUploader = (*mockUploader)(nil)
)

func TestImportRows_UnknownSiteAndNoPresenters(t *testing.T) {
	store := newMockRemoteStore()
	store.sites = []*secondary.SiteRecord{
		{ID: "s1", Name: "INA Centro"},
		{ID: "s2", Name: "INA Campus Cambé"},
	}
	r, _ := newTestReconciler(t, store)
	firstSite := r.Snapshot().Sites[0].ID
	svc := NewImportService(r, nil, nil)

	rows := [][]string{
		{"Data", "Campus", "Adultos", "Voluntários"},
		{"2024-05-12", "Campus Inexistente", "10", "3"},
		{"2024-05-19", "Campus Inexistente", "12", "0"},
	}
	res, err := svc.ImportRows(waitCtx(t), rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 0 {
		t.Errorf("expected 2 imported, got %+v", res)
	}

	snap := r.Snapshot()
	if len(snap.Presenters) != 1 || snap.Presenters[0].Name != tabular.UnknownName {
		t.Fatalf("expected one synthetic presenter, got %+v", snap.Presenters)
	}
	if store.callCount("create presenter") != 1 {
		t.Errorf("expected exactly one presenter created, got %d", store.callCount("create presenter"))
	}
	presenterID := snap.Presenters[0].ID
	for _, rep := range snap.Reports {
		if rep.SiteID != firstSite {
			t.Errorf("expected fallback site %s, got %s", firstSite, rep.SiteID)
		}
		if rep.PresenterID != presenterID {
			t.Errorf("expected presenter %s, got %s", presenterID, rep.PresenterID)
		}
		if rep.Attendance.Volunteers != rep.VolunteerSum() {
			t.Errorf("volunteer invariant broken: %+v", rep)
		}
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	for _, rec := range store.reports {
		if rec.Date == "2024-05-12" && rec.VolunteerData[attendance.ImportedAreaKey] != 3 {
			t.Errorf("expected imported volunteers under %q, got %+v", attendance.ImportedAreaKey, rec.VolunteerData)
		}
	}
}

func TestImportRows_MatchesNamesIgnoringCaseAndAccents(t *testing.T) {
	store := newMockRemoteStore()
	seedStore(store)
	r, _ := newTestReconciler(t, store)
	svc := NewImportService(r, nil, nil)

	rows := [][]string{
		{"Date", "Site", "Presenter", "Adults"},
		{"2024-06-02", "ina campus cambe", "PR. JOAO", "40"},
		{"2024-06-09", "INA Centro", "Pra. Marta", "50"},
		{"2024-06-16", "INA Centro", "pra. marta", "55"},
	}
	res, err := svc.ImportRows(waitCtx(t), rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Imported != 3 {
		t.Errorf("expected 3 imported, got %+v", res)
	}
	if n := store.callCount("create presenter"); n != 1 {
		t.Errorf("expected one new presenter for Marta, got %d", n)
	}

	reports := r.Snapshot().Reports
	var cambe int
	for _, rep := range reports {
		if rep.SiteID == "s2" && rep.PresenterID == "p1" && rep.Date == "2024-06-02" {
			cambe++
		}
	}
	if cambe != 1 {
		t.Error("expected the Cambé row matched to s2 and p1")
	}
}

func TestImportRows_PartialWhenRowsSkipped(t *testing.T) {
	store := newMockRemoteStore()
	seedStore(store)
	r, _ := newTestReconciler(t, store)
	svc := NewImportService(r, nil, nil)

	rows := [][]string{
		{"Data", "Campus"},
		{"2024-05-12", "INA Centro"},
		{"", "INA Centro"},
		{"not a date", "INA Centro"},
	}
	res, err := svc.ImportRows(waitCtx(t), rows)

	var perr *tabular.PartialImportError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PartialImportError, got %v", err)
	}
	if perr.Imported != 1 || perr.Skipped != 2 {
		t.Errorf("unexpected counts %+v", perr)
	}
	if res.Imported != 1 {
		t.Errorf("expected 1 imported, got %d", res.Imported)
	}
}

func TestImportFile_UsesRowSource(t *testing.T) {
	store := newMockRemoteStore()
	seedStore(store)
	r, _ := newTestReconciler(t, store)
	source := &mockRowSource{rows: [][]string{{"Data", "Campus"}, {"2024-05-12", "INA Centro"}}}
	svc := NewImportService(r, source, nil)

	res, err := svc.ImportFile(waitCtx(t), "cultos.xlsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.path != "cultos.xlsx" || res.Imported != 1 {
		t.Errorf("unexpected result %+v for path %q", res, source.path)
	}

	source.err = errors.New("corrupt file")
	if _, err := svc.ImportFile(waitCtx(t), "bad.xls"); err == nil {
		t.Error("expected read error")
	}
}

func TestExport_CSVAndUpload(t *testing.T) {
	store := newMockRemoteStore()
	seedStore(store)
	r, _ := newTestReconciler(t, store)
	uploader := &mockUploader{}
	svc := NewExportService(r.cache, uploader)
	svc.now = func() time.Time { return time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC) }

	var buf bytes.Buffer
	if err := svc.Export(context.Background(), FormatCSV, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "INA Centro,Pr. João,100,20,10,0,5,135,\"culto de domingo\"") {
		t.Errorf("unexpected csv:\n%s", buf.String())
	}

	loc, err := svc.Upload(context.Background(), FormatXLSX)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc != "s3://exports/relatorio_cultos_2024-05-20.xlsx" {
		t.Errorf("unexpected location %q", loc)
	}
	if len(uploader.body) == 0 || !strings.Contains(uploader.contentType, "spreadsheetml") {
		t.Errorf("unexpected upload %q with %d bytes", uploader.contentType, len(uploader.body))
	}

	if err := svc.Export(context.Background(), "pdf", &buf); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestExport_UploadWithoutBucket(t *testing.T) {
	svc := NewExportService(NewEntityCache(), nil)
	if _, err := svc.Upload(context.Background(), FormatCSV); err == nil {
		t.Error("expected error without uploader")
	}
}
