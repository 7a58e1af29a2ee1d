package reconcile

import (
	"errors"
	"sync"
	"testing"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
	"github.com/thiagorusso-10/contagemdeculto/internal/core/effects"
)

// apply runs every patch effect in effs against s, in order.
func apply(s attendance.Snapshot, effs []effects.Effect) attendance.Snapshot {
	for _, e := range effs {
		if p, ok := e.(effects.PatchEffect); ok {
			s = p.Fn(s)
		}
	}
	return s
}

func report(id string, adults int) attendance.Report {
	return attendance.Report{
		ID:                 id,
		SiteID:             "s1",
		Date:               "2024-05-12",
		Time:               "19:30",
		PresenterID:        "p1",
		Attendance:         attendance.Attendance{Adults: adults},
		VolunteerBreakdown: map[string]int{"a1": 2},
	}
}

func TestTempIDs_Sequential(t *testing.T) {
	var ids TempIDs
	if got := ids.Next(); got != "tmp-1" {
		t.Errorf("expected tmp-1, got %q", got)
	}
	if got := ids.Next(); got != "tmp-2" {
		t.Errorf("expected tmp-2, got %q", got)
	}
	if !IsTemp("tmp-7") || IsTemp("42") {
		t.Error("IsTemp misclassified ids")
	}
}

func TestTempIDs_ConcurrentUnique(t *testing.T) {
	var ids TempIDs
	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := ids.Next()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(seen) != 50 {
		t.Errorf("expected 50 unique ids, got %d", len(seen))
	}
}

func TestCreateReport_ConfirmSwapsTempID(t *testing.T) {
	m := &Mutation{Op: OpCreate, Entity: EntityReport, ID: "tmp-1", Report: report("", 10)}

	s := apply(attendance.Snapshot{}, Begin(m))
	if len(s.Reports) != 1 || s.Reports[0].ID != "tmp-1" {
		t.Fatalf("expected optimistic tmp-1, got %+v", s.Reports)
	}
	if s.Reports[0].Attendance.Volunteers != 2 {
		t.Errorf("expected normalized volunteers 2, got %d", s.Reports[0].Attendance.Volunteers)
	}

	s = apply(s, Confirm(m, Result{ID: "42", CreatedAt: 1000}))
	if len(s.Reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(s.Reports))
	}
	got := s.Reports[0]
	if got.ID != "42" || got.CreatedAt != 1000 {
		t.Errorf("expected id 42 created 1000, got %q %d", got.ID, got.CreatedAt)
	}
	if got.Attendance.Adults != 10 {
		t.Errorf("expected fields intact, got adults %d", got.Attendance.Adults)
	}
}

func TestConfirm_LocatesByTempIDNotPosition(t *testing.T) {
	m1 := &Mutation{Op: OpCreate, Entity: EntityReport, ID: "tmp-1", Report: report("", 1)}
	m2 := &Mutation{Op: OpCreate, Entity: EntityReport, ID: "tmp-2", Report: report("", 2)}

	s := apply(attendance.Snapshot{}, Begin(m1))
	s = apply(s, Begin(m2))
	// tmp-2 now sits at index 0; confirm tmp-1 first.
	s = apply(s, Confirm(m1, Result{ID: "100"}))
	s = apply(s, Confirm(m2, Result{ID: "200"}))

	r100, ok := s.FindReport("100")
	if !ok || r100.Attendance.Adults != 1 {
		t.Errorf("expected report 100 with adults 1, got %+v ok=%v", r100, ok)
	}
	r200, ok := s.FindReport("200")
	if !ok || r200.Attendance.Adults != 2 {
		t.Errorf("expected report 200 with adults 2, got %+v ok=%v", r200, ok)
	}
}

func TestDeleteReport_RollbackRestoresExactRecord(t *testing.T) {
	original := report("r1", 30)
	original.Notes = "chuva"
	original.CreatedAt = 99
	start := attendance.Snapshot{Reports: []attendance.Report{original, report("r2", 5)}}

	m := &Mutation{Op: OpDelete, Entity: EntityReport, ID: "r1"}
	s := apply(start, Begin(m))
	if _, ok := s.FindReport("r1"); ok {
		t.Fatal("expected r1 removed optimistically")
	}

	effs := Rollback(m, errors.New("network down"))
	s = apply(s, effs)
	got, ok := s.FindReport("r1")
	if !ok {
		t.Fatal("expected r1 restored")
	}
	if !got.Equal(original) {
		t.Errorf("restored record differs:\n got %+v\nwant %+v", got, original)
	}

	var notice, refresh bool
	for _, e := range effs {
		switch e.(type) {
		case effects.NoticeEffect:
			notice = true
		case effects.RefreshEffect:
			refresh = true
		}
	}
	if !notice || !refresh {
		t.Errorf("expected notice and refresh effects, got notice=%v refresh=%v", notice, refresh)
	}
}

func TestUpdateReport_RollbackRestoresPrevious(t *testing.T) {
	original := report("r1", 30)
	start := attendance.Snapshot{Reports: []attendance.Report{original}}

	edited := report("r1", 45)
	m := &Mutation{Op: OpUpdate, Entity: EntityReport, ID: "r1", Report: edited}
	s := apply(start, Begin(m))
	if got, _ := s.FindReport("r1"); got.Attendance.Adults != 45 {
		t.Fatalf("expected optimistic update to 45, got %d", got.Attendance.Adults)
	}

	prev, ok := m.Previous()
	if !ok || !prev.Equal(original) {
		t.Errorf("expected previous captured, got %+v ok=%v", prev, ok)
	}

	s = apply(s, Rollback(m, errors.New("boom")))
	if got, _ := s.FindReport("r1"); !got.Equal(original) {
		t.Errorf("expected original restored, got %+v", got)
	}
}

func TestCreateRollback_RemovesOptimisticRecord(t *testing.T) {
	tests := []struct {
		name  string
		m     *Mutation
		count func(attendance.Snapshot) int
	}{
		{"report", &Mutation{Op: OpCreate, Entity: EntityReport, ID: "tmp-1", Report: report("", 1)},
			func(s attendance.Snapshot) int { return len(s.Reports) }},
		{"presenter", &Mutation{Op: OpCreate, Entity: EntityPresenter, ID: "tmp-1", Presenter: attendance.Presenter{Name: "Ana"}},
			func(s attendance.Snapshot) int { return len(s.Presenters) }},
		{"area", &Mutation{Op: OpCreate, Entity: EntityArea, ID: "tmp-1", Area: attendance.VolunteerArea{Name: "Kids"}},
			func(s attendance.Snapshot) int { return len(s.VolunteerAreas) }},
		{"site", &Mutation{Op: OpCreate, Entity: EntitySite, ID: "tmp-1", Site: attendance.Site{Name: "Norte"}},
			func(s attendance.Snapshot) int { return len(s.Sites) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := apply(attendance.Snapshot{}, Begin(tt.m))
			if tt.count(s) != 1 {
				t.Fatalf("expected optimistic record, got %d", tt.count(s))
			}
			s = apply(s, Rollback(tt.m, errors.New("fail")))
			if tt.count(s) != 0 {
				t.Errorf("expected record removed, got %d", tt.count(s))
			}
		})
	}
}

func TestDeleteArea_RollbackRestores(t *testing.T) {
	start := attendance.Snapshot{VolunteerAreas: []attendance.VolunteerArea{{ID: "a1", Name: "Kids"}}}
	m := &Mutation{Op: OpDelete, Entity: EntityArea, ID: "a1"}

	s := apply(start, Begin(m))
	if len(s.VolunteerAreas) != 0 {
		t.Fatal("expected area removed")
	}
	s = apply(s, Rollback(m, errors.New("fail")))
	if a, ok := s.FindArea("a1"); !ok || a.Name != "Kids" {
		t.Errorf("expected area restored, got %+v ok=%v", a, ok)
	}
}

func TestBegin_DoesNotMutateInput(t *testing.T) {
	start := attendance.Snapshot{Reports: []attendance.Report{report("r1", 30)}}
	m := &Mutation{Op: OpDelete, Entity: EntityReport, ID: "r1"}
	_ = apply(start, Begin(m))
	if len(start.Reports) != 1 || start.Reports[0].ID != "r1" {
		t.Errorf("input snapshot was mutated: %+v", start.Reports)
	}
}

func TestConcurrentPatches_Compose(t *testing.T) {
	// Two independent deletes planned against the same snapshot both take
	// effect because each patch reads whatever is current.
	start := attendance.Snapshot{Reports: []attendance.Report{report("r1", 1), report("r2", 2)}}
	m1 := &Mutation{Op: OpDelete, Entity: EntityReport, ID: "r1"}
	m2 := &Mutation{Op: OpDelete, Entity: EntityReport, ID: "r2"}
	e1, e2 := Begin(m1), Begin(m2)

	s := apply(apply(start, e1), e2)
	if len(s.Reports) != 0 {
		t.Errorf("expected both removed, got %d", len(s.Reports))
	}

	// Rolling back only the first brings back only r1.
	s = apply(s, Rollback(m1, errors.New("fail")))
	if len(s.Reports) != 1 || s.Reports[0].ID != "r1" {
		t.Errorf("expected only r1 restored, got %+v", s.Reports)
	}
}

func TestConfirm_DropsTempCopyWhenAlreadyLoaded(t *testing.T) {
	m := &Mutation{Op: OpCreate, Entity: EntityReport, ID: "tmp-1", Report: report("", 10)}

	// A refresh listed the saved row while the create was still in flight.
	s := attendance.Snapshot{Reports: []attendance.Report{report("42", 10)}}
	s = apply(s, Begin(m))
	s = apply(s, Confirm(m, Result{ID: "42"}))

	if len(s.Reports) != 1 || s.Reports[0].ID != "42" {
		t.Errorf("expected only report 42, got %+v", s.Reports)
	}
}

func TestConfirmPresenter_AlreadyLoadedRetargetsReports(t *testing.T) {
	m := &Mutation{Op: OpCreate, Entity: EntityPresenter, ID: "tmp-1", Presenter: attendance.Presenter{Name: "Pra. Ana"}}
	rep := report("r1", 10)
	rep.PresenterID = "tmp-1"

	s := attendance.Snapshot{
		Presenters: []attendance.Presenter{{ID: "42", Name: "Pra. Ana"}},
		Reports:    []attendance.Report{rep},
	}
	s = apply(s, Begin(m))
	s = apply(s, Confirm(m, Result{ID: "42"}))

	if len(s.Presenters) != 1 || s.Presenters[0].ID != "42" {
		t.Errorf("expected only presenter 42, got %+v", s.Presenters)
	}
	if s.Reports[0].PresenterID != "42" {
		t.Errorf("expected report retargeted to 42, got %q", s.Reports[0].PresenterID)
	}
}

func TestReplay(t *testing.T) {
	confirmed := map[string]string{"tmp-1": "42"}
	mapID := func(id string) string {
		if final, ok := confirmed[id]; ok {
			return final
		}
		return id
	}
	listed := func() attendance.Snapshot {
		return attendance.Snapshot{Reports: []attendance.Report{report("r1", 10)}}
	}

	tests := []struct {
		name  string
		m     *Mutation
		check func(t *testing.T, s attendance.Snapshot)
	}{
		{
			name: "in-flight create is restored under its temp id",
			m:    &Mutation{Op: OpCreate, Entity: EntityReport, ID: "tmp-2", Report: report("", 7)},
			check: func(t *testing.T, s attendance.Snapshot) {
				if _, ok := s.FindReport("tmp-2"); !ok || len(s.Reports) != 2 {
					t.Errorf("expected r1 and tmp-2, got %+v", s.Reports)
				}
			},
		},
		{
			name: "confirmed create is inserted under its final id",
			m:    &Mutation{Op: OpCreate, Entity: EntityReport, ID: "tmp-1", Report: report("", 7)},
			check: func(t *testing.T, s attendance.Snapshot) {
				if _, ok := s.FindReport("42"); !ok || len(s.Reports) != 2 {
					t.Errorf("expected r1 and 42, got %+v", s.Reports)
				}
			},
		},
		{
			name: "create already listed is left alone",
			m:    &Mutation{Op: OpCreate, Entity: EntityReport, ID: "r1", Report: report("", 7)},
			check: func(t *testing.T, s attendance.Snapshot) {
				got, _ := s.FindReport("r1")
				if len(s.Reports) != 1 || got.Attendance.Adults != 10 {
					t.Errorf("expected listed r1 untouched, got %+v", s.Reports)
				}
			},
		},
		{
			name: "update overwrites the listed values",
			m:    &Mutation{Op: OpUpdate, Entity: EntityReport, ID: "r1", Report: report("r1", 55)},
			check: func(t *testing.T, s attendance.Snapshot) {
				got, _ := s.FindReport("r1")
				if len(s.Reports) != 1 || got.Attendance.Adults != 55 {
					t.Errorf("expected r1 with adults 55, got %+v", s.Reports)
				}
			},
		},
		{
			name: "delete removes the listed record",
			m:    &Mutation{Op: OpDelete, Entity: EntityReport, ID: "r1"},
			check: func(t *testing.T, s attendance.Snapshot) {
				if len(s.Reports) != 0 {
					t.Errorf("expected no reports, got %+v", s.Reports)
				}
			},
		},
		{
			name: "references to confirmed creates are mapped",
			m: &Mutation{Op: OpCreate, Entity: EntityReport, ID: "tmp-3", Report: func() attendance.Report {
				r := report("", 7)
				r.PresenterID = "tmp-1"
				return r
			}()},
			check: func(t *testing.T, s attendance.Snapshot) {
				got, ok := s.FindReport("tmp-3")
				if !ok || got.PresenterID != "42" {
					t.Errorf("expected presenter 42, got %+v ok=%v", got, ok)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Replay(tt.m, mapID)(listed()))
			if _, ok := tt.m.previous(); ok {
				t.Error("replay must not record a previous value")
			}
		})
	}
}
