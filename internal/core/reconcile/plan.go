package reconcile

import (
	"fmt"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
	"github.com/thiagorusso-10/contagemdeculto/internal/core/effects"
)

// Begin returns the optimistic patch for m. Update and delete patches
// remember the record they displace so Rollback can restore it verbatim.
func Begin(m *Mutation) []effects.Effect {
	patch := effects.PatchEffect{Name: m.Describe()}

	switch m.Entity {
	case EntityReport:
		patch.Fn = beginReport(m)
	case EntityPresenter:
		patch.Fn = beginPresenter(m)
	case EntityArea:
		patch.Fn = beginArea(m)
	case EntitySite:
		patch.Fn = beginSite(m)
	default:
		return []effects.Effect{effects.NoEffect{}}
	}

	return []effects.Effect{
		patch,
		effects.LogEffect{Level: "debug", Message: "optimistic " + m.Describe()},
	}
}

func beginReport(m *Mutation) func(attendance.Snapshot) attendance.Snapshot {
	switch m.Op {
	case OpCreate:
		r := m.Report.Normalize()
		r.ID = m.ID
		return func(s attendance.Snapshot) attendance.Snapshot { return s.WithReport(r) }
	case OpUpdate:
		r := m.Report.Normalize()
		r.ID = m.ID
		return func(s attendance.Snapshot) attendance.Snapshot {
			if prev, ok := s.FindReport(m.ID); ok {
				m.save(saved{report: prev})
				r.CreatedAt = prev.CreatedAt
			}
			return s.ReplaceReport(r)
		}
	default:
		return func(s attendance.Snapshot) attendance.Snapshot {
			if prev, ok := s.FindReport(m.ID); ok {
				m.save(saved{report: prev})
			}
			return s.WithoutReport(m.ID)
		}
	}
}

func beginPresenter(m *Mutation) func(attendance.Snapshot) attendance.Snapshot {
	if m.Op == OpCreate {
		p := m.Presenter
		p.ID = m.ID
		return func(s attendance.Snapshot) attendance.Snapshot { return s.WithPresenter(p) }
	}
	return func(s attendance.Snapshot) attendance.Snapshot {
		if prev, ok := s.FindPresenter(m.ID); ok {
			m.save(saved{presenter: prev})
		}
		return s.WithoutPresenter(m.ID)
	}
}

func beginArea(m *Mutation) func(attendance.Snapshot) attendance.Snapshot {
	if m.Op == OpCreate {
		a := m.Area
		a.ID = m.ID
		return func(s attendance.Snapshot) attendance.Snapshot { return s.WithArea(a) }
	}
	return func(s attendance.Snapshot) attendance.Snapshot {
		if prev, ok := s.FindArea(m.ID); ok {
			m.save(saved{area: prev})
		}
		return s.WithoutArea(m.ID)
	}
}

func beginSite(m *Mutation) func(attendance.Snapshot) attendance.Snapshot {
	if m.Op == OpCreate {
		site := m.Site
		site.ID = m.ID
		return func(s attendance.Snapshot) attendance.Snapshot { return s.WithSite(site) }
	}
	return func(s attendance.Snapshot) attendance.Snapshot {
		if prev, ok := s.FindSite(m.ID); ok {
			m.save(saved{site: prev})
		}
		return s.WithoutSite(m.ID)
	}
}

// Confirm returns the effects that settle a successful mutation. A confirmed
// create swaps its temporary id for the authoritative one wherever the record
// sits now, or drops the temporary copy when a refresh already loaded the
// saved record. Updates and deletes are already in their final shape.
func Confirm(m *Mutation, res Result) []effects.Effect {
	logEff := effects.LogEffect{
		Level:   "debug",
		Message: "confirmed " + m.Describe(),
		Fields:  map[string]any{"id": res.ID},
	}
	if m.Op != OpCreate || res.ID == "" {
		return []effects.Effect{logEff}
	}

	tempID, finalID := m.ID, res.ID
	var fn func(attendance.Snapshot) attendance.Snapshot
	switch m.Entity {
	case EntityReport:
		fn = func(s attendance.Snapshot) attendance.Snapshot {
			r, ok := s.FindReport(tempID)
			if !ok {
				return s
			}
			if _, loaded := s.FindReport(finalID); loaded {
				return s.WithoutReport(tempID)
			}
			if res.CreatedAt != 0 {
				r.CreatedAt = res.CreatedAt
				s = s.ReplaceReport(r)
			}
			return s.RenameReport(tempID, finalID)
		}
	case EntityPresenter:
		fn = func(s attendance.Snapshot) attendance.Snapshot {
			if _, loaded := s.FindPresenter(finalID); loaded {
				s = s.WithoutPresenter(tempID)
			}
			return s.RenamePresenter(tempID, finalID)
		}
	case EntityArea:
		fn = func(s attendance.Snapshot) attendance.Snapshot {
			if _, loaded := s.FindArea(finalID); loaded {
				s = s.WithoutArea(tempID)
			}
			return s.RenameArea(tempID, finalID)
		}
	case EntitySite:
		fn = func(s attendance.Snapshot) attendance.Snapshot {
			if _, loaded := s.FindSite(finalID); loaded {
				s = s.WithoutSite(tempID)
			}
			return s.RenameSite(tempID, finalID)
		}
	default:
		return []effects.Effect{logEff}
	}

	return []effects.Effect{
		effects.PatchEffect{Name: fmt.Sprintf("confirm %s %s -> %s", m.Entity, tempID, finalID), Fn: fn},
		logEff,
	}
}

// Replay returns a patch that reapplies m to a freshly loaded snapshot that
// may not reflect it yet. mapID maps temporary ids whose creates are already
// confirmed to their authoritative ids and returns any other id unchanged.
// Replay never records a previous value, so a later Rollback still restores
// what Begin displaced.
func Replay(m *Mutation, mapID func(string) string) func(attendance.Snapshot) attendance.Snapshot {
	id := mapID(m.ID)
	switch m.Entity {
	case EntityReport:
		r := m.Report.Normalize()
		r.ID = id
		r.SiteID = mapID(r.SiteID)
		r.PresenterID = mapID(r.PresenterID)
		switch m.Op {
		case OpCreate:
			return func(s attendance.Snapshot) attendance.Snapshot {
				if _, ok := s.FindReport(id); ok {
					return s
				}
				return s.WithReport(r)
			}
		case OpUpdate:
			return func(s attendance.Snapshot) attendance.Snapshot {
				next := r.Clone()
				if cur, ok := s.FindReport(id); ok {
					next.CreatedAt = cur.CreatedAt
				}
				return s.ReplaceReport(next)
			}
		default:
			return func(s attendance.Snapshot) attendance.Snapshot { return s.WithoutReport(id) }
		}
	case EntityPresenter:
		if m.Op != OpCreate {
			return func(s attendance.Snapshot) attendance.Snapshot { return s.WithoutPresenter(id) }
		}
		p := m.Presenter
		p.ID = id
		return func(s attendance.Snapshot) attendance.Snapshot {
			if _, ok := s.FindPresenter(id); ok {
				return s
			}
			return s.WithPresenter(p)
		}
	case EntityArea:
		if m.Op != OpCreate {
			return func(s attendance.Snapshot) attendance.Snapshot { return s.WithoutArea(id) }
		}
		a := m.Area
		a.ID = id
		return func(s attendance.Snapshot) attendance.Snapshot {
			if _, ok := s.FindArea(id); ok {
				return s
			}
			return s.WithArea(a)
		}
	case EntitySite:
		if m.Op != OpCreate {
			return func(s attendance.Snapshot) attendance.Snapshot { return s.WithoutSite(id) }
		}
		site := m.Site
		site.ID = id
		return func(s attendance.Snapshot) attendance.Snapshot {
			if _, ok := s.FindSite(id); ok {
				return s
			}
			return s.WithSite(site)
		}
	}
	return func(s attendance.Snapshot) attendance.Snapshot { return s }
}

// Rollback returns the effects that undo a failed mutation: the inverse
// patch, a user-visible notice and a full refresh. The sequence is the same
// for every entity kind.
func Rollback(m *Mutation, cause error) []effects.Effect {
	return []effects.Effect{
		effects.PatchEffect{Name: "rollback " + m.Describe(), Fn: undo(m)},
		effects.NoticeEffect{
			Level:   "error",
			Message: fmt.Sprintf("Could not %s %s. Your change was reverted.", m.Op, noun(m.Entity)),
			Err:     cause,
		},
		effects.LogEffect{
			Level:   "warn",
			Message: "rolled back " + m.Describe(),
			Fields:  map[string]any{"error": errString(cause)},
		},
		effects.RefreshEffect{Reason: "rollback " + m.Describe()},
	}
}

func undo(m *Mutation) func(attendance.Snapshot) attendance.Snapshot {
	if m.Op == OpCreate {
		id := m.ID
		switch m.Entity {
		case EntityReport:
			return func(s attendance.Snapshot) attendance.Snapshot { return s.WithoutReport(id) }
		case EntityPresenter:
			return func(s attendance.Snapshot) attendance.Snapshot { return s.WithoutPresenter(id) }
		case EntityArea:
			return func(s attendance.Snapshot) attendance.Snapshot { return s.WithoutArea(id) }
		case EntitySite:
			return func(s attendance.Snapshot) attendance.Snapshot { return s.WithoutSite(id) }
		}
	}

	prev, ok := m.previous()
	if !ok {
		return func(s attendance.Snapshot) attendance.Snapshot { return s }
	}

	switch m.Entity {
	case EntityReport:
		return func(s attendance.Snapshot) attendance.Snapshot { return s.ReplaceReport(prev.report) }
	case EntityPresenter:
		return func(s attendance.Snapshot) attendance.Snapshot {
			if _, ok := s.FindPresenter(prev.presenter.ID); ok {
				return s
			}
			return s.WithPresenter(prev.presenter)
		}
	case EntityArea:
		return func(s attendance.Snapshot) attendance.Snapshot {
			if _, ok := s.FindArea(prev.area.ID); ok {
				return s
			}
			return s.WithArea(prev.area)
		}
	case EntitySite:
		return func(s attendance.Snapshot) attendance.Snapshot {
			if _, ok := s.FindSite(prev.site.ID); ok {
				return s
			}
			return s.WithSite(prev.site)
		}
	}
	return func(s attendance.Snapshot) attendance.Snapshot { return s }
}

func noun(e Entity) string {
	if e == EntityArea {
		return "volunteer area"
	}
	return string(e)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
