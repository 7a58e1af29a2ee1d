// Package reconcile plans optimistic mutations of the entity cache.
//
// A mutation starts Optimistic: Begin yields the patch that makes it visible
// at once. When the remote store answers, Confirm or Rollback yields the
// effects that settle it. The package performs no I/O; the application shell
// interprets the returned effects.
package reconcile

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
)

// State is the lifecycle position of a mutation.
type State string

const (
	StateOptimistic State = "optimistic"
	StateConfirmed  State = "confirmed"
	StateRolledBack State = "rolled_back"
)

// Op is the kind of write a mutation performs.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Entity names the collection a mutation touches.
type Entity string

const (
	EntityReport    Entity = "report"
	EntityPresenter Entity = "presenter"
	EntityArea      Entity = "volunteer_area"
	EntitySite      Entity = "site"
)

// Mutation describes one optimistic change. Exactly one payload field is
// meaningful, selected by Entity. For creates, ID is the temporary id.
type Mutation struct {
	Op     Op
	Entity Entity
	ID     string

	Report    attendance.Report
	Presenter attendance.Presenter
	Area      attendance.VolunteerArea
	Site      attendance.Site

	// saved holds the record an update or delete displaced, captured when
	// the optimistic patch runs.
	mu    sync.Mutex
	saved *saved
}

type saved struct {
	report    attendance.Report
	presenter attendance.Presenter
	area      attendance.VolunteerArea
	site      attendance.Site
}

// Describe returns a short human label such as "delete report r1".
func (m *Mutation) Describe() string {
	return fmt.Sprintf("%s %s %s", m.Op, m.Entity, m.ID)
}

func (m *Mutation) save(s saved) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = &s
}

func (m *Mutation) previous() (saved, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return saved{}, false
	}
	return *m.saved, true
}

// Previous returns the report displaced by an update or delete, if the
// optimistic patch found one.
func (m *Mutation) Previous() (attendance.Report, bool) {
	s, ok := m.previous()
	if !ok || m.Entity != EntityReport {
		return attendance.Report{}, false
	}
	return s.report.Clone(), true
}

// Result is the remote store's answer to a confirmed create.
type Result struct {
	ID        string
	CreatedAt int64
}

// TempIDs allocates process-unique temporary ids of the form "tmp-N".
type TempIDs struct {
	next atomic.Uint64
}

// Next returns the next temporary id.
func (t *TempIDs) Next() string {
	return fmt.Sprintf("%s%d", TempPrefix, t.next.Add(1))
}

// TempPrefix marks ids not yet confirmed by the remote store.
const TempPrefix = "tmp-"

// IsTemp reports whether id is a temporary id.
func IsTemp(id string) bool {
	return strings.HasPrefix(id, TempPrefix)
}
