package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/show-booking/internal/model"
	"github.com/iliyamo/show-booking/internal/policy"
)

var errAssignmentMissing = errors.New("assignment not found")

// memStore is an in-memory registry.Store.  ApplyBatch applies all writes
// or, when failApply is set, none of them, mirroring the transactional
// contract of the SQL store.
type memStore struct {
	assignments []model.CrewAssignment
	allocations []model.EquipmentAllocation
	nextID      uint64
	applied     []Batch
	failApply   bool
}

func (m *memStore) ListAssignments(_ context.Context, eventID uint64) ([]model.CrewAssignment, error) {
	out := []model.CrewAssignment{}
	for _, a := range m.assignments {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) ListAllocations(_ context.Context, eventID uint64) ([]model.EquipmentAllocation, error) {
	out := []model.EquipmentAllocation{}
	for _, a := range m.allocations {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memStore) ApplyBatch(_ context.Context, _ uint64, b Batch) error {
	if m.failApply {
		return errors.New("batch failed")
	}
	m.applied = append(m.applied, b)

	deleted := make(map[uint64]struct{})
	for _, id := range b.DeleteAssignmentIDs {
		deleted[id] = struct{}{}
	}
	kept := m.assignments[:0]
	for _, a := range m.assignments {
		if _, gone := deleted[a.ID]; !gone {
			kept = append(kept, a)
		}
	}
	m.assignments = kept
	for _, u := range b.UpdateAssignments {
		for i := range m.assignments {
			if m.assignments[i].ID == u.ID {
				m.assignments[i] = u
			}
		}
	}
	for _, ins := range b.InsertAssignments {
		m.nextID++
		ins.ID = m.nextID
		m.assignments = append(m.assignments, ins)
	}

	deleted = make(map[uint64]struct{})
	for _, id := range b.DeleteAllocationIDs {
		deleted[id] = struct{}{}
	}
	keptAlloc := m.allocations[:0]
	for _, a := range m.allocations {
		if _, gone := deleted[a.ID]; !gone {
			keptAlloc = append(keptAlloc, a)
		}
	}
	m.allocations = keptAlloc
	for _, u := range b.UpdateAllocations {
		for i := range m.allocations {
			if m.allocations[i].ID == u.ID {
				m.allocations[i] = u
			}
		}
	}
	for _, ins := range b.InsertAllocations {
		m.nextID++
		ins.ID = m.nextID
		m.allocations = append(m.allocations, ins)
	}
	return nil
}

func (m *memStore) GetAssignmentByMember(_ context.Context, eventID, memberID uint64) (*model.CrewAssignment, error) {
	for i := range m.assignments {
		if m.assignments[i].EventID == eventID && m.assignments[i].MemberID == memberID {
			copy := m.assignments[i]
			return &copy, nil
		}
	}
	return nil, errAssignmentMissing
}

func (m *memStore) UpdateAssignmentFlags(_ context.Context, assignmentID uint64, confirmed, paymentReceived bool) error {
	for i := range m.assignments {
		if m.assignments[i].ID == assignmentID {
			m.assignments[i].Confirmed = confirmed
			m.assignments[i].PaymentReceived = paymentReceived
			return nil
		}
	}
	return errAssignmentMissing
}

var admin = policy.Actor{ID: 1, Role: model.RoleAdmin}

func TestSaveThreeWayDiff(t *testing.T) {
	store := &memStore{
		nextID: 100,
		assignments: []model.CrewAssignment{
			{ID: 1, EventID: 9, MemberID: 10, CacheCents: 50000, Confirmed: true},
			{ID: 2, EventID: 9, MemberID: 11, CacheCents: 30000},
		},
		allocations: []model.EquipmentAllocation{
			{ID: 3, EventID: 9, EquipmentID: 70, ValueCents: 20000},
		},
	}
	reg := NewRegistry(store)

	// Keep member 10 with a raised cachê, drop member 11, add member 12;
	// drop the only allocation and add a new one.
	err := reg.Save(context.Background(), 9, admin,
		[]DesiredAssignment{
			{ID: 1, MemberID: 10, CacheCents: 60000, Confirmed: true},
			{MemberID: 12, CacheCents: 45000},
		},
		[]DesiredAllocation{
			{EquipmentID: 71, ValueCents: 35000},
		},
	)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if len(store.applied) != 1 {
		t.Fatalf("expected one batch, got %d", len(store.applied))
	}
	b := store.applied[0]
	if len(b.InsertAssignments) != 1 || b.InsertAssignments[0].MemberID != 12 {
		t.Fatalf("unexpected inserts: %+v", b.InsertAssignments)
	}
	if len(b.UpdateAssignments) != 1 || b.UpdateAssignments[0].CacheCents != 60000 {
		t.Fatalf("unexpected updates: %+v", b.UpdateAssignments)
	}
	if len(b.DeleteAssignmentIDs) != 1 || b.DeleteAssignmentIDs[0] != 2 {
		t.Fatalf("unexpected deletes: %v", b.DeleteAssignmentIDs)
	}
	if len(b.InsertAllocations) != 1 || len(b.DeleteAllocationIDs) != 1 || b.DeleteAllocationIDs[0] != 3 {
		t.Fatalf("unexpected allocation diff: %+v", b)
	}

	final, _ := store.ListAssignments(context.Background(), 9)
	if len(final) != 2 {
		t.Fatalf("expected 2 assignments after save, got %d", len(final))
	}
}

func TestSaveNoopWhenDesiredMatchesCurrent(t *testing.T) {
	store := &memStore{
		assignments: []model.CrewAssignment{
			{ID: 1, EventID: 9, MemberID: 10, CacheCents: 50000, Confirmed: true},
		},
	}
	reg := NewRegistry(store)

	err := reg.Save(context.Background(), 9, admin,
		[]DesiredAssignment{{ID: 1, MemberID: 10, CacheCents: 50000, Confirmed: true}},
		nil,
	)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(store.applied) != 0 {
		t.Fatalf("expected no batch for identical state, got %d", len(store.applied))
	}
}

func TestSaveRejectsDuplicateKeys(t *testing.T) {
	store := &memStore{}
	reg := NewRegistry(store)

	err := reg.Save(context.Background(), 9, admin,
		[]DesiredAssignment{
			{MemberID: 10, CacheCents: 1000},
			{MemberID: 10, CacheCents: 2000},
		}, nil)
	if !errors.Is(err, ErrDuplicateAllocation) {
		t.Fatalf("expected ErrDuplicateAllocation, got %v", err)
	}
	if len(store.applied) != 0 {
		t.Fatalf("expected no writes after duplicate rejection")
	}

	err = reg.Save(context.Background(), 9, admin, nil,
		[]DesiredAllocation{
			{EquipmentID: 70, ValueCents: 1000},
			{EquipmentID: 70, ValueCents: 2000},
		})
	if !errors.Is(err, ErrDuplicateAllocation) {
		t.Fatalf("expected ErrDuplicateAllocation for equipment, got %v", err)
	}
}

func TestSaveDuplicateMemberThroughUpdatePath(t *testing.T) {
	// Member 5 already holds assignment 1.  The member on an update is
	// immutable, so an update of row 1 combined with a fresh insert for
	// member 5 would put two rows on the same (event, member) pair.
	store := &memStore{
		assignments: []model.CrewAssignment{
			{ID: 1, EventID: 9, MemberID: 5, CacheCents: 50000},
		},
	}
	reg := NewRegistry(store)

	err := reg.Save(context.Background(), 9, admin,
		[]DesiredAssignment{
			{ID: 1, CacheCents: 60000},
			{MemberID: 5, CacheCents: 45000},
		}, nil)
	if !errors.Is(err, ErrDuplicateAllocation) {
		t.Fatalf("expected ErrDuplicateAllocation, got %v", err)
	}
	if len(store.applied) != 0 {
		t.Fatalf("expected no writes, got %d batches", len(store.applied))
	}

	// Naming a bogus member on the update does not smuggle the insert
	// past duplicate detection either.
	err = reg.Save(context.Background(), 9, admin,
		[]DesiredAssignment{
			{ID: 1, MemberID: 999, CacheCents: 60000},
			{MemberID: 5, CacheCents: 45000},
		}, nil)
	if !errors.Is(err, ErrUnknownAssignment) {
		t.Fatalf("expected ErrUnknownAssignment for mismatched member, got %v", err)
	}
	if len(store.applied) != 0 {
		t.Fatalf("expected no writes, got %d batches", len(store.applied))
	}
}

func TestSaveDuplicateEquipmentThroughUpdatePath(t *testing.T) {
	store := &memStore{
		allocations: []model.EquipmentAllocation{
			{ID: 3, EventID: 9, EquipmentID: 70, ValueCents: 20000},
		},
	}
	reg := NewRegistry(store)

	err := reg.Save(context.Background(), 9, admin, nil,
		[]DesiredAllocation{
			{ID: 3, EquipmentID: 71, ValueCents: 25000},
		})
	if !errors.Is(err, ErrUnknownAllocation) {
		t.Fatalf("expected ErrUnknownAllocation for mismatched equipment, got %v", err)
	}

	err = reg.Save(context.Background(), 9, admin, nil,
		[]DesiredAllocation{
			{ID: 3, ValueCents: 25000},
			{EquipmentID: 70, ValueCents: 30000},
		})
	if !errors.Is(err, ErrDuplicateAllocation) {
		t.Fatalf("expected ErrDuplicateAllocation, got %v", err)
	}
}

func TestSaveRejectsUnknownUpdateID(t *testing.T) {
	store := &memStore{}
	reg := NewRegistry(store)

	err := reg.Save(context.Background(), 9, admin,
		[]DesiredAssignment{{ID: 55, MemberID: 10, CacheCents: 1000}}, nil)
	if !errors.Is(err, ErrUnknownAssignment) {
		t.Fatalf("expected ErrUnknownAssignment, got %v", err)
	}
}

func TestSaveRequiresAdmin(t *testing.T) {
	store := &memStore{}
	reg := NewRegistry(store)

	for _, actor := range []policy.Actor{
		{ID: 2, Role: model.RoleClient},
		{ID: 3, Role: model.RoleMember},
	} {
		err := reg.Save(context.Background(), 9, actor, nil, nil)
		if !errors.Is(err, policy.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for %s, got %v", actor.Role, err)
		}
	}
}

func TestSetMemberFlags(t *testing.T) {
	yes := true
	no := false

	store := &memStore{
		assignments: []model.CrewAssignment{
			{ID: 1, EventID: 9, MemberID: 30, CacheCents: 50000},
		},
	}
	reg := NewRegistry(store)
	member := policy.Actor{ID: 30, Role: model.RoleMember}

	asg, err := reg.SetMemberFlags(context.Background(), 9, 30, member, &yes, nil)
	if err != nil {
		t.Fatalf("set flags: %v", err)
	}
	if !asg.Confirmed || asg.PaymentReceived {
		t.Fatalf("expected confirmed only, got %+v", asg)
	}

	asg, err = reg.SetMemberFlags(context.Background(), 9, 30, member, nil, &yes)
	if err != nil {
		t.Fatalf("set payment flag: %v", err)
	}
	if !asg.Confirmed || !asg.PaymentReceived {
		t.Fatalf("expected both flags set, got %+v", asg)
	}

	// Another member cannot touch this assignment.
	other := policy.Actor{ID: 31, Role: model.RoleMember}
	if _, err := reg.SetMemberFlags(context.Background(), 9, 30, other, &no, nil); !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for other member, got %v", err)
	}

	// Admins can.
	if _, err := reg.SetMemberFlags(context.Background(), 9, 30, admin, &no, nil); err != nil {
		t.Fatalf("admin toggle: %v", err)
	}

	// Missing assignment surfaces the store error.
	if _, err := reg.SetMemberFlags(context.Background(), 9, 99, member, &yes, nil); !errors.Is(err, errAssignmentMissing) {
		t.Fatalf("expected errAssignmentMissing, got %v", err)
	}
}
