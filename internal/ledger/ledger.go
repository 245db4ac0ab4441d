// Package ledger recomputes the financial summary of an event.  Every
// mutator of financial inputs (movement CRUD, allocation saves, manual
// cost edits, confirmation toggles) funnels through Recompute, which
// re-derives the full summary from the source collections rather than
// incrementing cached totals.  Running it twice with no intervening
// mutation yields identical output, so callers may safely retry after a
// failed write.
package ledger

import (
	"context"
	"time"

	"github.com/iliyamo/show-booking/internal/model"
)

// Store is the persistence surface the engine reads inputs from and
// writes the summary to.  GetSummary returns (nil, nil) when no summary
// row exists yet.  PutSummary must persist the full row in one atomic
// write so concurrent readers never observe a summary whose derived
// fields disagree with its inputs.
type Store interface {
	// EventExists returns nil when the event exists and the repository's
	// not-found sentinel otherwise.
	EventExists(ctx context.Context, eventID uint64) error
	GetSummary(ctx context.Context, eventID uint64) (*model.FinanceSummary, error)
	PutSummary(ctx context.Context, s *model.FinanceSummary) error
	ListMovements(ctx context.Context, eventID uint64) ([]model.Movement, error)
	ListAssignments(ctx context.Context, eventID uint64) ([]model.CrewAssignment, error)
	ListAllocations(ctx context.Context, eventID uint64) ([]model.EquipmentAllocation, error)
}

// Engine derives finance summaries.  Now is injectable for tests and
// defaults to time.Now.
type Engine struct {
	Store Store
	Now   func() time.Time
}

// NewEngine constructs a ledger engine and panics if the store is nil.
func NewEngine(store Store) *Engine {
	if store == nil {
		panic("nil store passed to ledger.NewEngine")
	}
	return &Engine{Store: store, Now: time.Now}
}

// Recompute folds the event's movements and allocations into a fresh
// finance summary and persists it.  Crew cost counts confirmed
// assignments only; equipment cost counts every allocation.  The manual
// food, transport and other fields are carried over from the stored
// summary (zero when none exists yet).  When the event itself does not
// exist the store's not-found error is returned and nothing is written.
func (e *Engine) Recompute(ctx context.Context, eventID uint64) (*model.FinanceSummary, error) {
	if err := e.Store.EventExists(ctx, eventID); err != nil {
		return nil, err
	}

	current, err := e.Store.GetSummary(ctx, eventID)
	if err != nil {
		return nil, err
	}
	summary := model.FinanceSummary{EventID: eventID}
	if current != nil {
		summary.FoodCostCents = current.FoodCostCents
		summary.TransportCostCents = current.TransportCostCents
		summary.OtherCostCents = current.OtherCostCents
	}

	movements, err := e.Store.ListMovements(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for _, m := range movements {
		summary.TotalPaidCents += m.AmountCents
	}

	assignments, err := e.Store.ListAssignments(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for _, a := range assignments {
		if a.Confirmed {
			summary.CrewCostCents += a.CacheCents
		}
	}

	allocations, err := e.Store.ListAllocations(ctx, eventID)
	if err != nil {
		return nil, err
	}
	for _, a := range allocations {
		summary.EquipmentCostCents += a.ValueCents
	}

	summary.ContractValueCents = summary.CrewCostCents + summary.EquipmentCostCents +
		summary.FoodCostCents + summary.TransportCostCents + summary.OtherCostCents
	summary.PendingBalanceCents = summary.ContractValueCents - summary.TotalPaidCents
	if summary.PendingBalanceCents < 0 {
		summary.PendingBalanceCents = 0
	}
	if summary.PendingBalanceCents == 0 {
		summary.PaymentStatus = model.PaymentSettled
	} else {
		summary.PaymentStatus = model.PaymentOpen
	}
	summary.UpdatedAt = e.Now().UTC()

	if err := e.Store.PutSummary(ctx, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
