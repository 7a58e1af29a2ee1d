package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/thiagorusso-10/contagemdeculto/internal/ports/secondary"
)

// Ensure mockRemoteStore implements the interface
var _ secondary.RemoteStore = (*mockRemoteStore)(nil)

// mockRemoteStore implements secondary.RemoteStore in memory for testing.
// Writes are safe to call from the reconciler's goroutines.
type mockRemoteStore struct {
	mu         sync.Mutex
	nextID     int
	sites      []*secondary.SiteRecord
	presenters []*secondary.PresenterRecord
	areas      []*secondary.AreaRecord
	reports    []*secondary.ReportRecord
	roles      map[string]*secondary.RoleRecord

	createReportErr    error
	updateReportErr    error
	deleteReportErr    error
	createPresenterErr error
	deletePresenterErr error
	createAreaErr      error
	listErr            error
	roleErr            error

	// reportGate, when set, blocks CreateReport until a value is received.
	reportGate chan struct{}
	calls      []string
}

func newMockRemoteStore() *mockRemoteStore {
	return &mockRemoteStore{
		nextID: 41,
		roles:  make(map[string]*secondary.RoleRecord),
	}
}

func (m *mockRemoteStore) id() string {
	m.nextID++
	return fmt.Sprintf("%d", m.nextID)
}

func (m *mockRemoteStore) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *mockRemoteStore) ListSites(ctx context.Context) ([]*secondary.SiteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*secondary.SiteRecord, 0, len(m.sites))
	for _, s := range m.sites {
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockRemoteStore) ListPresenters(ctx context.Context) ([]*secondary.PresenterRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*secondary.PresenterRecord, 0, len(m.presenters))
	for _, p := range m.presenters {
		c := *p
		out = append(out, &c)
	}
	return out, nil
}

func (m *mockRemoteStore) ListVolunteerAreas(ctx context.Context) ([]*secondary.AreaRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*secondary.AreaRecord, 0, len(m.areas))
	for _, a := range m.areas {
		c := *a
		out = append(out, &c)
	}
	return out, nil
}

func (m *mockRemoteStore) ListReports(ctx context.Context) ([]*secondary.ReportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*secondary.ReportRecord, 0, len(m.reports))
	for _, r := range m.reports {
		c := *r
		c.VolunteerData = copyCounts(r.VolunteerData)
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *mockRemoteStore) CreateSite(ctx context.Context, site *secondary.SiteRecord) (*secondary.SiteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("create site " + site.Name)
	c := *site
	c.ID = m.id()
	m.sites = append(m.sites, &c)
	out := c
	return &out, nil
}

func (m *mockRemoteStore) CreatePresenter(ctx context.Context, p *secondary.PresenterRecord) (*secondary.PresenterRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("create presenter " + p.Name)
	if m.createPresenterErr != nil {
		return nil, m.createPresenterErr
	}
	c := *p
	c.ID = m.id()
	m.presenters = append(m.presenters, &c)
	out := c
	return &out, nil
}

func (m *mockRemoteStore) CreateVolunteerArea(ctx context.Context, a *secondary.AreaRecord) (*secondary.AreaRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("create area " + a.Name)
	if m.createAreaErr != nil {
		return nil, m.createAreaErr
	}
	c := *a
	c.ID = m.id()
	m.areas = append(m.areas, &c)
	out := c
	return &out, nil
}

func (m *mockRemoteStore) CreateReport(ctx context.Context, r *secondary.ReportRecord) (*secondary.ReportRecord, error) {
	if m.reportGate != nil {
		<-m.reportGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("create report " + r.Date)
	if m.createReportErr != nil {
		return nil, m.createReportErr
	}
	c := *r
	c.ID = m.id()
	c.VolunteerData = copyCounts(r.VolunteerData)
	c.CreatedAt = time.UnixMilli(1715536800000).UTC()
	m.reports = append(m.reports, &c)
	out := c
	return &out, nil
}

func (m *mockRemoteStore) UpdateReport(ctx context.Context, r *secondary.ReportRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("update report " + r.ID)
	if m.updateReportErr != nil {
		return m.updateReportErr
	}
	for i, existing := range m.reports {
		if existing.ID == r.ID {
			c := *r
			c.VolunteerData = copyCounts(r.VolunteerData)
			m.reports[i] = &c
			return nil
		}
	}
	return secondary.ErrNotFound
}

func (m *mockRemoteStore) DeleteReport(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("delete report " + id)
	if m.deleteReportErr != nil {
		return m.deleteReportErr
	}
	for i, r := range m.reports {
		if r.ID == id {
			m.reports = append(m.reports[:i], m.reports[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockRemoteStore) DeletePresenter(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("delete presenter " + id)
	if m.deletePresenterErr != nil {
		return m.deletePresenterErr
	}
	for i, p := range m.presenters {
		if p.ID == id {
			m.presenters = append(m.presenters[:i], m.presenters[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockRemoteStore) DeleteVolunteerArea(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("delete area " + id)
	for i, a := range m.areas {
		if a.ID == id {
			m.areas = append(m.areas[:i], m.areas[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockRemoteStore) ResolveRole(ctx context.Context, userID string) (*secondary.RoleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.roleErr != nil {
		return nil, &secondary.RoleLookupError{UserID: userID, Err: m.roleErr}
	}
	if r, ok := m.roles[userID]; ok {
		c := *r
		return &c, nil
	}
	return &secondary.RoleRecord{}, nil
}

func (m *mockRemoteStore) callCount(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func copyCounts(in map[string]int) map[string]int {
	if in == nil {
		return nil
	}
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// mockNotifier records notices.
type mockNotifier struct {
	mu      sync.Mutex
	notices []secondary.Notice
}

func (n *mockNotifier) Notify(ctx context.Context, notice secondary.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *mockNotifier) errors() []secondary.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []secondary.Notice
	for _, notice := range n.notices {
		if notice.Level == secondary.NoticeError {
			out = append(out, notice)
		}
	}
	return out
}

var errNetwork = errors.New("network unreachable")

// seedStore fills a store with two sites, one presenter, one area and two reports.
func seedStore(m *mockRemoteStore) {
	m.sites = []*secondary.SiteRecord{
		{ID: "s1", Name: "INA Centro", Color: "bg-neo-yellow"},
		{ID: "s2", Name: "INA Campus Cambé", Color: "bg-neo-cyan"},
	}
	m.presenters = []*secondary.PresenterRecord{{ID: "p1", Name: "Pr. João"}}
	m.areas = []*secondary.AreaRecord{{ID: "a1", Name: "Kids"}}
	m.reports = []*secondary.ReportRecord{
		{ID: "r1", SiteID: "s1", Date: "2024-05-12", Time: "19:30", PresenterID: "p1",
			AttendanceAdults: 100, AttendanceKids: 20, AttendanceVisitors: 10, AttendanceVolunteers: 99,
			VolunteerData: map[string]int{"a1": 5}, Notes: "culto de domingo",
			CreatedAt: time.UnixMilli(1715500000000).UTC()},
		{ID: "r2", SiteID: "s2", Date: "2024-05-05", Time: "10:00", PresenterID: "p1",
			AttendanceAdults: 50, VolunteerData: map[string]int{}},
	}
}
