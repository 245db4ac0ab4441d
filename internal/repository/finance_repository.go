package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/show-booking/internal/model"
)

// FinanceRepo provides persistence for finance summaries and movements
// and reads the allocation tables the ledger folds over.  It is the SQL
// implementation of the ledger engine's store.
type FinanceRepo struct{ db *sql.DB }

// NewFinanceRepo returns a new FinanceRepo bound to the given database.
func NewFinanceRepo(db *sql.DB) *FinanceRepo { return &FinanceRepo{db: db} }

// EventExists returns nil when the event exists and ErrEventNotFound
// otherwise.
func (r *FinanceRepo) EventExists(ctx context.Context, eventID uint64) error {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM events WHERE id=? LIMIT 1", eventID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrEventNotFound
	}
	return err
}

const summaryColumns = `event_id, crew_cost_cents, equipment_cost_cents, food_cost_cents,
	   transport_cost_cents, other_cost_cents, contract_value_cents, total_paid_cents,
	   pending_balance_cents, payment_status, updated_at`

// GetSummary fetches the finance summary of an event.  It returns
// (nil, nil) when no summary row exists yet; the ledger creates one
// lazily on the first financial write.
func (r *FinanceRepo) GetSummary(ctx context.Context, eventID uint64) (*model.FinanceSummary, error) {
	var s model.FinanceSummary
	err := r.db.QueryRowContext(ctx,
		"SELECT "+summaryColumns+" FROM finance_summaries WHERE event_id=?", eventID).Scan(
		&s.EventID, &s.CrewCostCents, &s.EquipmentCostCents, &s.FoodCostCents,
		&s.TransportCostCents, &s.OtherCostCents, &s.ContractValueCents, &s.TotalPaidCents,
		&s.PendingBalanceCents, &s.PaymentStatus, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// PutSummary persists the full summary row in a single upsert statement
// so readers never observe a partially updated summary.
func (r *FinanceRepo) PutSummary(ctx context.Context, s *model.FinanceSummary) error {
	const q = `INSERT INTO finance_summaries
			   (event_id, crew_cost_cents, equipment_cost_cents, food_cost_cents,
				transport_cost_cents, other_cost_cents, contract_value_cents,
				total_paid_cents, pending_balance_cents, payment_status, updated_at)
			   VALUES (?,?,?,?,?,?,?,?,?,?,?)
			   ON DUPLICATE KEY UPDATE
				crew_cost_cents=VALUES(crew_cost_cents),
				equipment_cost_cents=VALUES(equipment_cost_cents),
				food_cost_cents=VALUES(food_cost_cents),
				transport_cost_cents=VALUES(transport_cost_cents),
				other_cost_cents=VALUES(other_cost_cents),
				contract_value_cents=VALUES(contract_value_cents),
				total_paid_cents=VALUES(total_paid_cents),
				pending_balance_cents=VALUES(pending_balance_cents),
				payment_status=VALUES(payment_status),
				updated_at=VALUES(updated_at)`
	_, err := r.db.ExecContext(ctx, q,
		s.EventID, s.CrewCostCents, s.EquipmentCostCents, s.FoodCostCents,
		s.TransportCostCents, s.OtherCostCents, s.ContractValueCents,
		s.TotalPaidCents, s.PendingBalanceCents, s.PaymentStatus, s.UpdatedAt.UTC())
	return err
}

// UpdateManualCosts writes the three operator-entered cost fields.  The
// derived fields are refreshed by the recompute that every caller runs
// right after; a summary row is created first when none exists.
func (r *FinanceRepo) UpdateManualCosts(ctx context.Context, eventID uint64, food, transport, other int64) error {
	const q = `INSERT INTO finance_summaries
			   (event_id, food_cost_cents, transport_cost_cents, other_cost_cents, payment_status)
			   VALUES (?,?,?,?,?)
			   ON DUPLICATE KEY UPDATE
				food_cost_cents=VALUES(food_cost_cents),
				transport_cost_cents=VALUES(transport_cost_cents),
				other_cost_cents=VALUES(other_cost_cents)`
	_, err := r.db.ExecContext(ctx, q, eventID, food, transport, other, model.PaymentOpen)
	return err
}

// ContractValueCents returns the event's current contract value, or 0
// when no summary exists.  It backs the lifecycle engine's budget
// issuance precondition.
func (r *FinanceRepo) ContractValueCents(ctx context.Context, eventID uint64) (int64, error) {
	var v int64
	err := r.db.QueryRowContext(ctx,
		"SELECT contract_value_cents FROM finance_summaries WHERE event_id=?", eventID).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}

const movementColumns = "id, event_id, paid_on, amount_cents, method, created_at"

// ListMovements returns the event's movements ordered by payment date.
func (r *FinanceRepo) ListMovements(ctx context.Context, eventID uint64) ([]model.Movement, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+movementColumns+" FROM movements WHERE event_id=? ORDER BY paid_on, id", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movements := make([]model.Movement, 0)
	for rows.Next() {
		var m model.Movement
		if err := rows.Scan(&m.ID, &m.EventID, &m.PaidOn, &m.AmountCents, &m.Method, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return movements, nil
}

// CreateMovement inserts a movement and populates its generated ID.
// Amount validation (> 0) happens at the handler boundary.
func (r *FinanceRepo) CreateMovement(ctx context.Context, m *model.Movement) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO movements (event_id, paid_on, amount_cents, method) VALUES (?,?,?,?)",
		m.EventID, m.PaidOn.UTC(), m.AmountCents, m.Method)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		"SELECT "+movementColumns+" FROM movements WHERE id=?", m.ID).Scan(
		&m.ID, &m.EventID, &m.PaidOn, &m.AmountCents, &m.Method, &m.CreatedAt)
}

// UpdateMovement writes a movement's mutable fields.  The movement must
// belong to the given event; otherwise ErrMovementNotFound is returned.
func (r *FinanceRepo) UpdateMovement(ctx context.Context, m *model.Movement) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE movements SET paid_on=?, amount_cents=?, method=? WHERE id=? AND event_id=?",
		m.PaidOn.UTC(), m.AmountCents, m.Method, m.ID, m.EventID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var one int
		scanErr := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM movements WHERE id=? AND event_id=? LIMIT 1", m.ID, m.EventID).Scan(&one)
		if errors.Is(scanErr, sql.ErrNoRows) {
			return ErrMovementNotFound
		}
		return scanErr
	}
	return nil
}

// DeleteMovement removes a movement scoped to its event.
func (r *FinanceRepo) DeleteMovement(ctx context.Context, eventID, movementID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM movements WHERE id=? AND event_id=?", movementID, eventID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrMovementNotFound
	}
	return err
}

// ListAssignments returns the event's crew assignments for the ledger fold.
func (r *FinanceRepo) ListAssignments(ctx context.Context, eventID uint64) ([]model.CrewAssignment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+assignmentColumns+" FROM crew_assignments WHERE event_id=? ORDER BY id", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

// ListAllocations returns the event's equipment allocations for the ledger fold.
func (r *FinanceRepo) ListAllocations(ctx context.Context, eventID uint64) ([]model.EquipmentAllocation, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+allocationColumns+" FROM equipment_allocations WHERE event_id=? ORDER BY id", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAllocations(rows)
}
