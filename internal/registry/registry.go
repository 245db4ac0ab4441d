// Package registry manages the crew assignments and equipment allocations
// of an event.  Callers submit the desired end state, not a delta; the
// registry diffs it against what is persisted and applies the resulting
// inserts, updates and deletes as one atomic batch.  Its outputs are the
// cost inputs the ledger engine folds over.
package registry

import (
	"context"
	"errors"

	"github.com/iliyamo/show-booking/internal/model"
	"github.com/iliyamo/show-booking/internal/policy"
)

// ErrDuplicateAllocation is returned when a desired list contains two
// entries sharing the same (event, member) or (event, equipment) key.
// Handlers should translate this into an HTTP 409 response.
var ErrDuplicateAllocation = errors.New("duplicate allocation")

// ErrUnknownAssignment and ErrUnknownAllocation are returned when a
// desired entry carries an id that is not persisted under the event, or
// names a member/equipment other than the persisted row's.  The desired
// list is rejected as a whole; nothing is written.
var (
	ErrUnknownAssignment = errors.New("unknown assignment id")
	ErrUnknownAllocation = errors.New("unknown allocation id")
)

// DesiredAssignment describes one crew assignment in the desired end
// state.  ID zero means insert; a non-zero ID updates the existing row's
// mutable fields (cachê, confirmation, payment flag, note).  MemberID is
// immutable on update: it may be omitted, and when set it must match the
// persisted row.
type DesiredAssignment struct {
	ID              uint64 `json:"id"`
	MemberID        uint64 `json:"member_id"`
	CacheCents      int64  `json:"cache_cents"`
	Confirmed       bool   `json:"confirmed"`
	PaymentReceived bool   `json:"payment_received"`
	Note            string `json:"note"`
}

// DesiredAllocation describes one equipment allocation in the desired end
// state.  Semantics mirror DesiredAssignment.
type DesiredAllocation struct {
	ID          uint64 `json:"id"`
	EquipmentID uint64 `json:"equipment_id"`
	ValueCents  int64  `json:"value_cents"`
	Note        string `json:"note"`
}

// Batch is the outcome of diffing desired state against persisted state.
// Stores must apply the whole batch in a single transaction; partial
// application must never be observable.
type Batch struct {
	InsertAssignments   []model.CrewAssignment
	UpdateAssignments   []model.CrewAssignment
	DeleteAssignmentIDs []uint64
	InsertAllocations   []model.EquipmentAllocation
	UpdateAllocations   []model.EquipmentAllocation
	DeleteAllocationIDs []uint64
}

// Empty reports whether the batch contains no writes.
func (b Batch) Empty() bool {
	return len(b.InsertAssignments) == 0 && len(b.UpdateAssignments) == 0 &&
		len(b.DeleteAssignmentIDs) == 0 && len(b.InsertAllocations) == 0 &&
		len(b.UpdateAllocations) == 0 && len(b.DeleteAllocationIDs) == 0
}

// Store is the persistence surface the registry drives.
type Store interface {
	ListAssignments(ctx context.Context, eventID uint64) ([]model.CrewAssignment, error)
	ListAllocations(ctx context.Context, eventID uint64) ([]model.EquipmentAllocation, error)
	// ApplyBatch executes every write in the batch inside one transaction.
	ApplyBatch(ctx context.Context, eventID uint64, b Batch) error
	GetAssignmentByMember(ctx context.Context, eventID, memberID uint64) (*model.CrewAssignment, error)
	UpdateAssignmentFlags(ctx context.Context, assignmentID uint64, confirmed, paymentReceived bool) error
}

// Registry reconciles desired allocation state for events.
type Registry struct {
	Store Store
}

// NewRegistry constructs a registry and panics if the store is nil.
func NewRegistry(store Store) *Registry {
	if store == nil {
		panic("nil store passed to registry.NewRegistry")
	}
	return &Registry{Store: store}
}

// Save reconciles the event's assignments and allocations to the desired
// lists on behalf of the actor.  Only admins may call it.  The desired
// lists are validated before any write and the computed batch is applied
// atomically.  Entries carrying an id that is not persisted under the
// event, or whose member/equipment disagrees with the persisted row, are
// rejected with ErrUnknownAssignment or ErrUnknownAllocation.
func (r *Registry) Save(ctx context.Context, eventID uint64, actor policy.Actor, assignments []DesiredAssignment, allocations []DesiredAllocation) error {
	if !policy.Can(actor, policy.RelNone, policy.ActionSaveAllocations, policy.Context{}) {
		return policy.ErrUnauthorized
	}

	currentAssignments, err := r.Store.ListAssignments(ctx, eventID)
	if err != nil {
		return err
	}
	currentAllocations, err := r.Store.ListAllocations(ctx, eventID)
	if err != nil {
		return err
	}

	// Duplicate detection runs on effective keys.  The member and
	// equipment of id-carrying entries are immutable on update, so the
	// key comes from the persisted row, never the request body; a body
	// that names a different member/equipment is rejected outright.
	asgByID := make(map[uint64]model.CrewAssignment, len(currentAssignments))
	for _, a := range currentAssignments {
		asgByID[a.ID] = a
	}
	seenMembers := make(map[uint64]struct{}, len(assignments))
	for _, d := range assignments {
		member := d.MemberID
		if d.ID != 0 {
			cur, ok := asgByID[d.ID]
			if !ok {
				return ErrUnknownAssignment
			}
			if d.MemberID != 0 && d.MemberID != cur.MemberID {
				return ErrUnknownAssignment
			}
			member = cur.MemberID
		}
		if _, dup := seenMembers[member]; dup {
			return ErrDuplicateAllocation
		}
		seenMembers[member] = struct{}{}
	}

	allocByID := make(map[uint64]model.EquipmentAllocation, len(currentAllocations))
	for _, a := range currentAllocations {
		allocByID[a.ID] = a
	}
	seenEquipment := make(map[uint64]struct{}, len(allocations))
	for _, d := range allocations {
		equipment := d.EquipmentID
		if d.ID != 0 {
			cur, ok := allocByID[d.ID]
			if !ok {
				return ErrUnknownAllocation
			}
			if d.EquipmentID != 0 && d.EquipmentID != cur.EquipmentID {
				return ErrUnknownAllocation
			}
			equipment = cur.EquipmentID
		}
		if _, dup := seenEquipment[equipment]; dup {
			return ErrDuplicateAllocation
		}
		seenEquipment[equipment] = struct{}{}
	}

	batch, err := diff(eventID, currentAssignments, currentAllocations, assignments, allocations)
	if err != nil {
		return err
	}
	if batch.Empty() {
		return nil
	}
	return r.Store.ApplyBatch(ctx, eventID, batch)
}

// diff computes the three-way reconciliation between persisted and
// desired state: rows absent from desired are deleted, desired entries
// with an id update the persisted row's mutable fields, and entries
// without an id are inserted.
func diff(eventID uint64, curAsg []model.CrewAssignment, curAlloc []model.EquipmentAllocation, desAsg []DesiredAssignment, desAlloc []DesiredAllocation) (Batch, error) {
	var b Batch

	asgByID := make(map[uint64]model.CrewAssignment, len(curAsg))
	for _, a := range curAsg {
		asgByID[a.ID] = a
	}
	keepAsg := make(map[uint64]struct{}, len(desAsg))
	for _, d := range desAsg {
		if d.ID == 0 {
			b.InsertAssignments = append(b.InsertAssignments, model.CrewAssignment{
				EventID:         eventID,
				MemberID:        d.MemberID,
				CacheCents:      d.CacheCents,
				Confirmed:       d.Confirmed,
				PaymentReceived: d.PaymentReceived,
				Note:            d.Note,
			})
			continue
		}
		cur, ok := asgByID[d.ID]
		if !ok {
			return Batch{}, ErrUnknownAssignment
		}
		keepAsg[d.ID] = struct{}{}
		updated := cur
		updated.CacheCents = d.CacheCents
		updated.Confirmed = d.Confirmed
		updated.PaymentReceived = d.PaymentReceived
		updated.Note = d.Note
		if updated != cur {
			b.UpdateAssignments = append(b.UpdateAssignments, updated)
		}
	}
	for _, cur := range curAsg {
		if _, keep := keepAsg[cur.ID]; !keep {
			b.DeleteAssignmentIDs = append(b.DeleteAssignmentIDs, cur.ID)
		}
	}

	allocByID := make(map[uint64]model.EquipmentAllocation, len(curAlloc))
	for _, a := range curAlloc {
		allocByID[a.ID] = a
	}
	keepAlloc := make(map[uint64]struct{}, len(desAlloc))
	for _, d := range desAlloc {
		if d.ID == 0 {
			b.InsertAllocations = append(b.InsertAllocations, model.EquipmentAllocation{
				EventID:     eventID,
				EquipmentID: d.EquipmentID,
				ValueCents:  d.ValueCents,
				Note:        d.Note,
			})
			continue
		}
		cur, ok := allocByID[d.ID]
		if !ok {
			return Batch{}, ErrUnknownAllocation
		}
		keepAlloc[d.ID] = struct{}{}
		updated := cur
		updated.ValueCents = d.ValueCents
		updated.Note = d.Note
		if updated != cur {
			b.UpdateAllocations = append(b.UpdateAllocations, updated)
		}
	}
	for _, cur := range curAlloc {
		if _, keep := keepAlloc[cur.ID]; !keep {
			b.DeleteAllocationIDs = append(b.DeleteAllocationIDs, cur.ID)
		}
	}

	return b, nil
}

// SetMemberFlags lets a member toggle the confirmation and
// payment-received flags on their own assignment.  Admins may toggle the
// flags of any member.  Nil pointers leave the corresponding flag
// unchanged.  The updated assignment is returned so callers can trigger
// a ledger recompute and publish the new state.
func (r *Registry) SetMemberFlags(ctx context.Context, eventID, memberID uint64, actor policy.Actor, confirmed, paymentReceived *bool) (*model.CrewAssignment, error) {
	asg, err := r.Store.GetAssignmentByMember(ctx, eventID, memberID)
	if err != nil {
		return nil, err
	}
	if confirmed == nil && paymentReceived == nil {
		return asg, nil
	}

	rel := policy.RelNone
	if actor.Role == model.RoleMember && asg.MemberID == actor.ID {
		rel = policy.RelAssignedMember
	}
	if confirmed != nil && !policy.Can(actor, rel, policy.ActionToggleConfirmation, policy.Context{}) {
		return nil, policy.ErrUnauthorized
	}
	if paymentReceived != nil && !policy.Can(actor, rel, policy.ActionTogglePaymentFlag, policy.Context{}) {
		return nil, policy.ErrUnauthorized
	}

	if confirmed != nil {
		asg.Confirmed = *confirmed
	}
	if paymentReceived != nil {
		asg.PaymentReceived = *paymentReceived
	}
	if err := r.Store.UpdateAssignmentFlags(ctx, asg.ID, asg.Confirmed, asg.PaymentReceived); err != nil {
		return nil, err
	}
	return asg, nil
}
