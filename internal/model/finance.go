package model

import "time"

// Payment statuses for a finance summary.  A summary is SETTLED exactly
// when its pending balance is zero; both values are derived during
// recomputation and never edited directly.
const (
	PaymentOpen    = "OPEN"
	PaymentSettled = "SETTLED"
)

// FinanceSummary is the financial roll-up of a single event, stored in the
// `finance_summaries` table keyed by the event id.  The five cost fields
// feed ContractValueCents; food, transport and other are the only fields an
// operator edits directly, while crew and equipment costs are derived from
// the allocation tables.  All monetary values are integer cents.
//
// Fields:
//  EventID             – owning event (primary key).
//  CrewCostCents       – sum of cachês for confirmed crew assignments.
//  EquipmentCostCents  – sum of all equipment allocation values.
//  FoodCostCents       – manually entered food budget.
//  TransportCostCents  – manually entered transport budget.
//  OtherCostCents      – manually entered miscellaneous budget.
//  ContractValueCents  – sum of the five cost fields (derived).
//  TotalPaidCents      – fold over the event's movements (derived).
//  PendingBalanceCents – max(0, contract value − total paid) (derived).
//  PaymentStatus       – OPEN or SETTLED (derived).
//  UpdatedAt           – last recomputation timestamp.
type FinanceSummary struct {
	EventID             uint64    // finance_summaries.event_id
	CrewCostCents       int64     // finance_summaries.crew_cost_cents
	EquipmentCostCents  int64     // finance_summaries.equipment_cost_cents
	FoodCostCents       int64     // finance_summaries.food_cost_cents
	TransportCostCents  int64     // finance_summaries.transport_cost_cents
	OtherCostCents      int64     // finance_summaries.other_cost_cents
	ContractValueCents  int64     // finance_summaries.contract_value_cents
	TotalPaidCents      int64     // finance_summaries.total_paid_cents
	PendingBalanceCents int64     // finance_summaries.pending_balance_cents
	PaymentStatus       string    // finance_summaries.payment_status
	UpdatedAt           time.Time // finance_summaries.updated_at
}

// Movement records one incoming payment against an event's contract value,
// stored in the `movements` table.  The collection of movements is the
// source of truth for TotalPaidCents; totals are always re-derived by
// folding over this collection, never incremented in place.
//
// Fields:
//  ID          – primary key identifier.
//  EventID     – event the payment applies to.
//  PaidOn      – date the payment was received.
//  AmountCents – positive amount in cents (validated at write time).
//  Method      – payment method (PIX, cash, transfer...).
//  CreatedAt   – creation timestamp.
type Movement struct {
	ID          uint64    // movements.id
	EventID     uint64    // movements.event_id
	PaidOn      time.Time // movements.paid_on
	AmountCents int64     // movements.amount_cents
	Method      string    // movements.method
	CreatedAt   time.Time // movements.created_at
}
