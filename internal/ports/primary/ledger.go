// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which the CLI and HTTP API drive the application.
package primary

import (
	"context"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"
	"github.com/thiagorusso-10/contagemdeculto/internal/core/reconcile"
)

// LedgerService applies optimistic mutations to the cached ledger.
//
// Every write method returns as soon as the change is visible in the cache.
// The remote write continues in the background; callers that need the final
// outcome wait on the returned Handle. Validation failures are returned
// synchronously and nothing is applied.
type LedgerService interface {
	// AddReport records a new service report.
	AddReport(ctx context.Context, report attendance.Report) (Handle, error)

	// UpdateReport overwrites an existing report.
	UpdateReport(ctx context.Context, report attendance.Report) (Handle, error)

	// DeleteReport removes a report.
	DeleteReport(ctx context.Context, reportID string) (Handle, error)

	// AddPresenter registers a presenter.
	AddPresenter(ctx context.Context, name string) (Handle, error)

	// DeletePresenter removes a presenter.
	DeletePresenter(ctx context.Context, presenterID string) (Handle, error)

	// AddVolunteerArea registers a volunteer area.
	AddVolunteerArea(ctx context.Context, name string) (Handle, error)

	// DeleteVolunteerArea removes a volunteer area.
	DeleteVolunteerArea(ctx context.Context, areaID string) (Handle, error)

	// AddSite registers a site.
	AddSite(ctx context.Context, name, color string) (Handle, error)

	// Refresh reloads every collection from the remote store.
	Refresh(ctx context.Context) error

	// Snapshot returns the current cached view.
	Snapshot() attendance.Snapshot

	// Wait blocks until every in-flight mutation has settled.
	Wait(ctx context.Context) error
}

// Handle tracks one in-flight mutation.
type Handle interface {
	// TempID is the id the record carries until confirmation. Empty for
	// updates and deletes.
	TempID() string

	// Wait blocks until the mutation is confirmed or rolled back. A rolled
	// back mutation returns the remote error.
	Wait(ctx context.Context) (Outcome, error)
}

// Outcome is the settled state of a mutation.
type Outcome struct {
	State  reconcile.State
	TempID string
	ID     string
}
