package app

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
	"github.com/thiagorusso-10/contagemdeculto/internal/core/effects"
	"github.com/thiagorusso-10/contagemdeculto/internal/core/reconcile"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/primary"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/secondary"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "culto_mutations_total",
		Help: "Optimistic mutations by entity, operation and final state",
	}, []string{"entity", "op", "state"})

	mutationsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "culto_mutations_in_flight",
		Help: "Mutations applied optimistically and not yet settled",
	})

	refreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "culto_refresh_total",
		Help: "Full reloads from the remote store by result",
	}, []string{"result"})

	gatewayDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "culto_gateway_call_duration_seconds",
		Help:    "Duration of remote store calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"call"})
)

const tracerName = "culto"

// ReconcilerOptions configures a Reconciler.
type ReconcilerOptions struct {
	// PinnedSite is the site name listed first.
	PinnedSite string
	// SeedDefaults creates the default sites and volunteer areas when a
	// refresh finds no sites.
	SeedDefaults bool
	Logger       *slog.Logger
}

// Reconciler applies mutations to the cache optimistically and settles them
// against the remote store in the background.
type Reconciler struct {
	store  secondary.RemoteStore
	cache  *EntityCache
	exec   EffectExecutor
	ids    reconcile.TempIDs
	pinned string
	seed   bool
	logger *slog.Logger

	// mu also orders optimistic patches, confirmations and refreshes so
	// none of them lands between another's id mapping and its patch.
	mu        sync.Mutex
	seq       uint64
	pending   map[string]*Pending   // in-flight creates by temp id
	active    map[*Pending]struct{} // every unsettled mutation
	confirmed map[string]string     // temp id -> authoritative id
	inflight  sync.WaitGroup
}

var _ primary.LedgerService = (*Reconciler)(nil)

// NewReconciler creates a Reconciler over cache, writing through store.
func NewReconciler(store secondary.RemoteStore, cache *EntityCache, notifier secondary.Notifier, opts ReconcilerOptions) *Reconciler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	exec := NewEffectExecutor(cache, notifier, logger)
	r := &Reconciler{
		store:     store,
		cache:     cache,
		exec:      exec,
		pinned:    opts.PinnedSite,
		seed:      opts.SeedDefaults,
		logger:    logger.With(slog.String("component", "reconciler")),
		pending:   make(map[string]*Pending),
		active:    make(map[*Pending]struct{}),
		confirmed: make(map[string]string),
	}
	exec.SetRefresh(r.Refresh)
	return r
}

// Pending is the handle of one in-flight mutation.
type Pending struct {
	m      *reconcile.Mutation
	tempID string
	seq    uint64
	// settledID is the authoritative id once confirmed. Guarded by the
	// reconciler's mu.
	settledID string

	done    chan struct{}
	outcome primary.Outcome
	err     error
}

var _ primary.Handle = (*Pending)(nil)

func newPending(m *reconcile.Mutation) *Pending {
	var tempID string
	if m.Op == reconcile.OpCreate {
		tempID = m.ID
	}
	return &Pending{
		m:       m,
		tempID:  tempID,
		done:    make(chan struct{}),
		outcome: primary.Outcome{State: reconcile.StateOptimistic, TempID: tempID},
	}
}

// TempID returns the temporary id of a create, or "" for other mutations.
func (p *Pending) TempID() string { return p.tempID }

// Wait blocks until the mutation settles or ctx is done.
func (p *Pending) Wait(ctx context.Context) (primary.Outcome, error) {
	select {
	case <-p.done:
		return p.outcome, p.err
	case <-ctx.Done():
		return primary.Outcome{State: reconcile.StateOptimistic, TempID: p.tempID}, ctx.Err()
	}
}

func (p *Pending) finish(out primary.Outcome, err error) {
	p.outcome = out
	p.err = err
	close(p.done)
}

// Snapshot returns the current cached view.
func (r *Reconciler) Snapshot() attendance.Snapshot {
	return r.cache.Snapshot()
}

// AddReport records a new report.
func (r *Reconciler) AddReport(ctx context.Context, report attendance.Report) (primary.Handle, error) {
	report = report.Normalize()
	if err := attendance.ValidateReport(report); err != nil {
		return nil, err
	}

	m := &reconcile.Mutation{Op: reconcile.OpCreate, Entity: reconcile.EntityReport, ID: r.ids.Next(), Report: report}
	return r.submit(ctx, m, func(ctx context.Context) (reconcile.Result, error) {
		rec := reportToRecord(report)
		rec.ID = ""
		var err error
		if rec.SiteID, err = r.resolve(ctx, rec.SiteID); err != nil {
			return reconcile.Result{}, secondary.WriteError("create", "report", "", err)
		}
		if rec.PresenterID, err = r.resolve(ctx, rec.PresenterID); err != nil {
			return reconcile.Result{}, secondary.WriteError("create", "report", "", err)
		}
		created, err := r.store.CreateReport(ctx, rec)
		if err != nil {
			return reconcile.Result{}, secondary.WriteError("create", "report", "", err)
		}
		var createdAt int64
		if !created.CreatedAt.IsZero() {
			createdAt = created.CreatedAt.UnixMilli()
		}
		return reconcile.Result{ID: created.ID, CreatedAt: createdAt}, nil
	})
}

// UpdateReport overwrites an existing report.
func (r *Reconciler) UpdateReport(ctx context.Context, report attendance.Report) (primary.Handle, error) {
	if report.ID == "" {
		return nil, &attendance.ValidationError{Field: "id", Reason: "is required"}
	}
	report = report.Normalize()
	if err := attendance.ValidateReport(report); err != nil {
		return nil, err
	}

	m := &reconcile.Mutation{Op: reconcile.OpUpdate, Entity: reconcile.EntityReport, ID: report.ID, Report: report}
	return r.submit(ctx, m, func(ctx context.Context) (reconcile.Result, error) {
		rec := reportToRecord(report)
		if prev, ok := m.Previous(); ok && prev.CreatedAt != 0 {
			rec.CreatedAt = time.UnixMilli(prev.CreatedAt).UTC()
		}
		var err error
		for _, ref := range []*string{&rec.ID, &rec.SiteID, &rec.PresenterID} {
			if *ref, err = r.resolve(ctx, *ref); err != nil {
				return reconcile.Result{}, secondary.WriteError("update", "report", report.ID, err)
			}
		}
		if err := r.store.UpdateReport(ctx, rec); err != nil {
			return reconcile.Result{}, secondary.WriteError("update", "report", rec.ID, err)
		}
		return reconcile.Result{ID: rec.ID}, nil
	})
}

// DeleteReport removes a report.
func (r *Reconciler) DeleteReport(ctx context.Context, reportID string) (primary.Handle, error) {
	m := &reconcile.Mutation{Op: reconcile.OpDelete, Entity: reconcile.EntityReport, ID: reportID}
	return r.submit(ctx, m, r.deleteCall(m, r.store.DeleteReport))
}

// AddPresenter registers a presenter.
func (r *Reconciler) AddPresenter(ctx context.Context, name string) (primary.Handle, error) {
	name = strings.TrimSpace(name)
	if err := attendance.ValidateName("presenter", name); err != nil {
		return nil, err
	}

	m := &reconcile.Mutation{Op: reconcile.OpCreate, Entity: reconcile.EntityPresenter, ID: r.ids.Next(),
		Presenter: attendance.Presenter{Name: name}}
	return r.submit(ctx, m, func(ctx context.Context) (reconcile.Result, error) {
		created, err := r.store.CreatePresenter(ctx, &secondary.PresenterRecord{Name: name})
		if err != nil {
			return reconcile.Result{}, secondary.WriteError("create", "presenter", "", err)
		}
		return reconcile.Result{ID: created.ID}, nil
	})
}

// DeletePresenter removes a presenter.
func (r *Reconciler) DeletePresenter(ctx context.Context, presenterID string) (primary.Handle, error) {
	m := &reconcile.Mutation{Op: reconcile.OpDelete, Entity: reconcile.EntityPresenter, ID: presenterID}
	return r.submit(ctx, m, r.deleteCall(m, r.store.DeletePresenter))
}

// AddVolunteerArea registers a volunteer area.
func (r *Reconciler) AddVolunteerArea(ctx context.Context, name string) (primary.Handle, error) {
	name = strings.TrimSpace(name)
	if err := attendance.ValidateName("volunteer area", name); err != nil {
		return nil, err
	}

	m := &reconcile.Mutation{Op: reconcile.OpCreate, Entity: reconcile.EntityArea, ID: r.ids.Next(),
		Area: attendance.VolunteerArea{Name: name}}
	return r.submit(ctx, m, func(ctx context.Context) (reconcile.Result, error) {
		created, err := r.store.CreateVolunteerArea(ctx, &secondary.AreaRecord{Name: name})
		if err != nil {
			return reconcile.Result{}, secondary.WriteError("create", "volunteer_area", "", err)
		}
		return reconcile.Result{ID: created.ID}, nil
	})
}

// DeleteVolunteerArea removes a volunteer area.
func (r *Reconciler) DeleteVolunteerArea(ctx context.Context, areaID string) (primary.Handle, error) {
	m := &reconcile.Mutation{Op: reconcile.OpDelete, Entity: reconcile.EntityArea, ID: areaID}
	return r.submit(ctx, m, r.deleteCall(m, r.store.DeleteVolunteerArea))
}

// AddSite registers a site.
func (r *Reconciler) AddSite(ctx context.Context, name, color string) (primary.Handle, error) {
	name = strings.TrimSpace(name)
	if err := attendance.ValidateName("site", name); err != nil {
		return nil, err
	}

	site := attendance.Site{Name: name, Color: color}
	m := &reconcile.Mutation{Op: reconcile.OpCreate, Entity: reconcile.EntitySite, ID: r.ids.Next(), Site: site}
	return r.submit(ctx, m, func(ctx context.Context) (reconcile.Result, error) {
		created, err := r.store.CreateSite(ctx, &secondary.SiteRecord{Name: name, Color: color})
		if err != nil {
			return reconcile.Result{}, secondary.WriteError("create", "site", "", err)
		}
		return reconcile.Result{ID: created.ID}, nil
	})
}

func (r *Reconciler) deleteCall(m *reconcile.Mutation, del func(context.Context, string) error) func(context.Context) (reconcile.Result, error) {
	return func(ctx context.Context) (reconcile.Result, error) {
		id, err := r.resolve(ctx, m.ID)
		if err != nil {
			return reconcile.Result{}, secondary.WriteError("delete", string(m.Entity), m.ID, err)
		}
		if err := del(ctx, id); err != nil {
			return reconcile.Result{}, secondary.WriteError("delete", string(m.Entity), id, err)
		}
		return reconcile.Result{ID: id}, nil
	}
}

// submit applies the optimistic patch and settles m in the background.
// Temporary ids whose creates are already confirmed are swapped for their
// authoritative ids first, so the patch never reintroduces a stale one.
func (r *Reconciler) submit(ctx context.Context, m *reconcile.Mutation, call func(context.Context) (reconcile.Result, error)) (primary.Handle, error) {
	r.mu.Lock()
	if m.Op != reconcile.OpCreate {
		m.ID = r.settledID(m.ID)
	}
	m.Report.SiteID = r.settledID(m.Report.SiteID)
	m.Report.PresenterID = r.settledID(m.Report.PresenterID)

	p := newPending(m)
	r.seq++
	p.seq = r.seq
	if p.tempID != "" {
		r.pending[p.tempID] = p
	}
	r.active[p] = struct{}{}
	r.inflight.Add(1)

	err := r.exec.Execute(ctx, reconcile.Begin(m))
	if err != nil {
		r.forget(p, "")
	}
	r.mu.Unlock()

	if err != nil {
		r.inflight.Done()
		return nil, fmt.Errorf("failed to apply %s: %w", m.Describe(), err)
	}
	mutationsInFlight.Inc()

	// Writes outlive the caller's cancellation; the mutation always settles.
	go r.settle(context.WithoutCancel(ctx), m, p, call)
	return p, nil
}

func (r *Reconciler) settle(ctx context.Context, m *reconcile.Mutation, p *Pending, call func(context.Context) (reconcile.Result, error)) {
	defer r.inflight.Done()
	defer mutationsInFlight.Dec()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "culto.Reconciler.settle",
		trace.WithAttributes(
			attribute.String("op", string(m.Op)),
			attribute.String("entity", string(m.Entity)),
			attribute.String("id", m.ID),
		),
	)
	defer span.End()

	timer := prometheus.NewTimer(gatewayDuration.WithLabelValues(string(m.Op) + "_" + string(m.Entity)))
	res, err := call(ctx)
	timer.ObserveDuration()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		mutationsTotal.WithLabelValues(string(m.Entity), string(m.Op), string(reconcile.StateRolledBack)).Inc()
		r.logger.Warn("mutation rolled back", "mutation", m.Describe(), "error", err)

		// Settled before the rollback refresh runs, which must not replay m.
		r.mu.Lock()
		r.forget(p, "")
		r.mu.Unlock()
		if execErr := r.exec.Execute(ctx, reconcile.Rollback(m, err)); execErr != nil {
			r.logger.Error("rollback incomplete", "mutation", m.Describe(), "error", execErr)
		}
		p.finish(primary.Outcome{State: reconcile.StateRolledBack, TempID: p.tempID}, err)
		return
	}

	r.mu.Lock()
	execErr := r.exec.Execute(ctx, reconcile.Confirm(m, res))
	r.forget(p, res.ID)
	r.mu.Unlock()
	if execErr != nil {
		r.logger.Error("confirmation patch failed", "mutation", m.Describe(), "error", execErr)
	}
	mutationsTotal.WithLabelValues(string(m.Entity), string(m.Op), string(reconcile.StateConfirmed)).Inc()
	p.finish(primary.Outcome{State: reconcile.StateConfirmed, TempID: p.tempID, ID: res.ID}, nil)
}

// forget marks p settled, remembering the authoritative id of a confirmed
// create. Callers hold r.mu.
func (r *Reconciler) forget(p *Pending, finalID string) {
	delete(r.active, p)
	p.settledID = finalID
	if p.tempID == "" {
		return
	}
	delete(r.pending, p.tempID)
	if finalID != "" {
		r.confirmed[p.tempID] = finalID
	}
}

// settledID maps a temporary id whose create is already confirmed to its
// authoritative id. Any other id is returned unchanged. Callers hold r.mu.
func (r *Reconciler) settledID(id string) string {
	if final, ok := r.confirmed[id]; ok {
		return final
	}
	return id
}

// unsettled returns the mutations still in flight.
func (r *Reconciler) unsettled() []*Pending {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Pending, 0, len(r.active))
	for p := range r.active {
		out = append(out, p)
	}
	return out
}

// replay reapplies, in submission order, the mutations a fresh listing may
// miss: those still in flight and those in started that were confirmed while
// the listing loaded. Callers hold r.mu.
func (r *Reconciler) replay(snap attendance.Snapshot, started []*Pending) attendance.Snapshot {
	queue := slices.Clone(started)
	for p := range r.active {
		if !slices.Contains(queue, p) {
			queue = append(queue, p)
		}
	}
	slices.SortFunc(queue, func(a, b *Pending) int { return cmp.Compare(a.seq, b.seq) })

	for _, p := range queue {
		if _, ok := r.active[p]; !ok && p.settledID == "" {
			continue
		}
		snap = reconcile.Replay(p.m, r.settledID)(snap)
	}
	return snap
}

// Lookup returns the in-flight create carrying tempID.
func (r *Reconciler) Lookup(tempID string) (*Pending, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pending[tempID]
	return p, ok
}

// resolve maps a temporary id to its authoritative id, waiting for the
// create that owns it when it is still in flight.
func (r *Reconciler) resolve(ctx context.Context, id string) (string, error) {
	if !reconcile.IsTemp(id) {
		return id, nil
	}

	r.mu.Lock()
	if final, ok := r.confirmed[id]; ok {
		r.mu.Unlock()
		return final, nil
	}
	p, ok := r.pending[id]
	r.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("unknown temporary id %s", id)
	}

	out, err := p.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("dependency %s was not saved: %w", id, err)
	}
	return out.ID, nil
}

// Wait blocks until every in-flight mutation has settled.
func (r *Reconciler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Refresh reloads every collection and replaces the cache. Mutations still in
// flight, and those that settled during the load, are reapplied on top of the
// listing. On failure the cache keeps its previous contents and the user is
// notified.
func (r *Reconciler) Refresh(ctx context.Context) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "culto.Reconciler.Refresh")
	defer span.End()

	r.cache.SetLoading(true)
	defer r.cache.SetLoading(false)

	started := r.unsettled()
	snap, err := r.load(ctx)
	if err == nil && r.seed && len(snap.Sites) == 0 {
		if err = r.seedDefaults(ctx, snap); err == nil {
			snap, err = r.load(ctx)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		refreshTotal.WithLabelValues("error").Inc()
		r.logger.Error("refresh failed", "error", err)
		_ = r.exec.Execute(ctx, []effects.Effect{effects.NoticeEffect{
			Level:   "error",
			Message: "Could not load data from the server.",
			Err:     err,
		}})
		return err
	}

	r.mu.Lock()
	snap = r.replay(snap, started)
	snap.Sites = attendance.SortSites(snap.Sites, r.pinned)
	r.cache.Replace(snap)
	r.mu.Unlock()
	refreshTotal.WithLabelValues("ok").Inc()
	span.SetAttributes(attribute.Int("reports", len(snap.Reports)))
	return nil
}

func (r *Reconciler) load(ctx context.Context) (attendance.Snapshot, error) {
	var snap attendance.Snapshot

	sites, err := timed(ctx, "list_sites", r.store.ListSites)
	if err != nil {
		return snap, secondary.ReadError("sites", err)
	}
	presenters, err := timed(ctx, "list_presenters", r.store.ListPresenters)
	if err != nil {
		return snap, secondary.ReadError("presenters", err)
	}
	areas, err := timed(ctx, "list_volunteer_areas", r.store.ListVolunteerAreas)
	if err != nil {
		return snap, secondary.ReadError("volunteer_areas", err)
	}
	reports, err := timed(ctx, "list_reports", r.store.ListReports)
	if err != nil {
		return snap, secondary.ReadError("reports", err)
	}

	for _, s := range sites {
		snap.Sites = append(snap.Sites, siteFromRecord(s))
	}
	for _, p := range presenters {
		snap.Presenters = append(snap.Presenters, presenterFromRecord(p))
	}
	for _, a := range areas {
		snap.VolunteerAreas = append(snap.VolunteerAreas, areaFromRecord(a))
	}
	for _, rep := range reports {
		snap.Reports = append(snap.Reports, reportFromRecord(rep))
	}
	return snap, nil
}

func timed[T any](ctx context.Context, call string, fn func(context.Context) (T, error)) (T, error) {
	timer := prometheus.NewTimer(gatewayDuration.WithLabelValues(call))
	defer timer.ObserveDuration()
	return fn(ctx)
}

// seedDefaults writes the default sites, and the default volunteer areas when
// there are none either.
func (r *Reconciler) seedDefaults(ctx context.Context, current attendance.Snapshot) error {
	r.logger.Info("no sites found, seeding defaults")
	for _, site := range attendance.DefaultSites() {
		if _, err := r.store.CreateSite(ctx, &secondary.SiteRecord{Name: site.Name, Color: site.Color}); err != nil {
			return secondary.WriteError("create", "site", "", err)
		}
	}
	if len(current.VolunteerAreas) > 0 {
		return nil
	}
	for _, area := range attendance.DefaultAreas() {
		if _, err := r.store.CreateVolunteerArea(ctx, &secondary.AreaRecord{Name: area.Name}); err != nil {
			return secondary.WriteError("create", "volunteer_area", "", err)
		}
	}
	return nil
}
