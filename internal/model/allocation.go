package model

import "time"

// CrewAssignment links a member to an event with an agreed cachê, stored in
// the `crew_assignments` table.  At most one assignment may exist per
// (event, member) pair; the registry enforces this before any write.  Only
// confirmed assignments count toward the event's crew cost.
//
// Fields:
//  ID              – primary key identifier.
//  EventID         – event the member is assigned to.
//  MemberID        – actor profile of the performer.
//  CacheCents      – cachê (fee) in cents for this show.
//  Confirmed       – whether the member confirmed attendance.
//  PaymentReceived – member-toggled flag that their cachê was paid.
//  Note            – free-text note.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type CrewAssignment struct {
	ID              uint64    // crew_assignments.id
	EventID         uint64    // crew_assignments.event_id
	MemberID        uint64    // crew_assignments.member_id
	CacheCents      int64     // crew_assignments.cache_cents
	Confirmed       bool      // crew_assignments.confirmed
	PaymentReceived bool      // crew_assignments.payment_received
	Note            string    // crew_assignments.note
	CreatedAt       time.Time // crew_assignments.created_at
	UpdatedAt       time.Time // crew_assignments.updated_at
}

// EquipmentAllocation links a piece of equipment to an event with its
// allocation value, stored in the `equipment_allocations` table.  Unlike
// crew assignments there is no confirmation concept: every allocation
// counts toward the equipment cost.  At most one allocation may exist per
// (event, equipment) pair.
//
// Fields:
//  ID          – primary key identifier.
//  EventID     – event the equipment is allocated to.
//  EquipmentID – equipment record being allocated.
//  ValueCents  – allocation value in cents.
//  Note        – free-text note.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type EquipmentAllocation struct {
	ID          uint64    // equipment_allocations.id
	EventID     uint64    // equipment_allocations.event_id
	EquipmentID uint64    // equipment_allocations.equipment_id
	ValueCents  int64     // equipment_allocations.value_cents
	Note        string    // equipment_allocations.note
	CreatedAt   time.Time // equipment_allocations.created_at
	UpdatedAt   time.Time // equipment_allocations.updated_at
}
