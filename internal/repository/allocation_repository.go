package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/show-booking/internal/model"
	"github.com/iliyamo/show-booking/internal/registry"
)

// AllocationRepo provides persistence for crew assignments and equipment
// allocations.  It is the SQL implementation of the allocation registry's
// store: reconciliation batches computed by the registry are applied in a
// single transaction so that partial application is never observable.
type AllocationRepo struct{ db *sql.DB }

// NewAllocationRepo returns a new AllocationRepo bound to the given database.
func NewAllocationRepo(db *sql.DB) *AllocationRepo { return &AllocationRepo{db: db} }

const assignmentColumns = "id, event_id, member_id, cache_cents, confirmed, payment_received, note, created_at, updated_at"
const allocationColumns = "id, event_id, equipment_id, value_cents, note, created_at, updated_at"

func scanAssignments(rows *sql.Rows) ([]model.CrewAssignment, error) {
	out := make([]model.CrewAssignment, 0)
	for rows.Next() {
		var a model.CrewAssignment
		if err := rows.Scan(&a.ID, &a.EventID, &a.MemberID, &a.CacheCents, &a.Confirmed,
			&a.PaymentReceived, &a.Note, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanAllocations(rows *sql.Rows) ([]model.EquipmentAllocation, error) {
	out := make([]model.EquipmentAllocation, 0)
	for rows.Next() {
		var a model.EquipmentAllocation
		if err := rows.Scan(&a.ID, &a.EventID, &a.EquipmentID, &a.ValueCents, &a.Note,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAssignments returns the event's crew assignments.
func (r *AllocationRepo) ListAssignments(ctx context.Context, eventID uint64) ([]model.CrewAssignment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+assignmentColumns+" FROM crew_assignments WHERE event_id=? ORDER BY id", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

// ListAllocations returns the event's equipment allocations.
func (r *AllocationRepo) ListAllocations(ctx context.Context, eventID uint64) ([]model.EquipmentAllocation, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+allocationColumns+" FROM equipment_allocations WHERE event_id=? ORDER BY id", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAllocations(rows)
}

// ApplyBatch executes every write of a reconciliation batch inside one
// transaction.  Deletes run first, then updates, then inserts, for both
// tables; any failure rolls the whole batch back.
func (r *AllocationRepo) ApplyBatch(ctx context.Context, eventID uint64, b registry.Batch) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, id := range b.DeleteAssignmentIDs {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM crew_assignments WHERE id=? AND event_id=?", id, eventID); err != nil {
			return err
		}
	}
	for _, a := range b.UpdateAssignments {
		if _, err := tx.ExecContext(ctx,
			"UPDATE crew_assignments SET cache_cents=?, confirmed=?, payment_received=?, note=? WHERE id=? AND event_id=?",
			a.CacheCents, a.Confirmed, a.PaymentReceived, a.Note, a.ID, eventID); err != nil {
			return err
		}
	}
	for _, a := range b.InsertAssignments {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO crew_assignments (event_id, member_id, cache_cents, confirmed, payment_received, note) VALUES (?,?,?,?,?,?)",
			eventID, a.MemberID, a.CacheCents, a.Confirmed, a.PaymentReceived, a.Note); err != nil {
			return err
		}
	}

	for _, id := range b.DeleteAllocationIDs {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM equipment_allocations WHERE id=? AND event_id=?", id, eventID); err != nil {
			return err
		}
	}
	for _, a := range b.UpdateAllocations {
		if _, err := tx.ExecContext(ctx,
			"UPDATE equipment_allocations SET value_cents=?, note=? WHERE id=? AND event_id=?",
			a.ValueCents, a.Note, a.ID, eventID); err != nil {
			return err
		}
	}
	for _, a := range b.InsertAllocations {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO equipment_allocations (event_id, equipment_id, value_cents, note) VALUES (?,?,?,?)",
			eventID, a.EquipmentID, a.ValueCents, a.Note); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetAssignmentByMember fetches the assignment linking a member to an
// event, mapping sql.ErrNoRows to ErrAssignmentNotFound.
func (r *AllocationRepo) GetAssignmentByMember(ctx context.Context, eventID, memberID uint64) (*model.CrewAssignment, error) {
	var a model.CrewAssignment
	err := r.db.QueryRowContext(ctx,
		"SELECT "+assignmentColumns+" FROM crew_assignments WHERE event_id=? AND member_id=? LIMIT 1",
		eventID, memberID).Scan(&a.ID, &a.EventID, &a.MemberID, &a.CacheCents, &a.Confirmed,
		&a.PaymentReceived, &a.Note, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAssignmentFlags writes the member-owned flags of an assignment.
func (r *AllocationRepo) UpdateAssignmentFlags(ctx context.Context, assignmentID uint64, confirmed, paymentReceived bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE crew_assignments SET confirmed=?, payment_received=? WHERE id=?",
		confirmed, paymentReceived, assignmentID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var one int
		scanErr := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM crew_assignments WHERE id=? LIMIT 1", assignmentID).Scan(&one)
		if errors.Is(scanErr, sql.ErrNoRows) {
			return ErrAssignmentNotFound
		}
		return scanErr
	}
	return nil
}
