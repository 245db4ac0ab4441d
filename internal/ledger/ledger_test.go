package ledger

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/iliyamo/show-booking/internal/model"
	"github.com/iliyamo/show-booking/internal/repository"
)

// memStore is an in-memory ledger.Store for tests.
type memStore struct {
	events      map[uint64]bool
	summary     *model.FinanceSummary
	movements   []model.Movement
	assignments []model.CrewAssignment
	allocations []model.EquipmentAllocation
	puts        int
}

func (m *memStore) EventExists(_ context.Context, eventID uint64) error {
	if !m.events[eventID] {
		return repository.ErrEventNotFound
	}
	return nil
}

func (m *memStore) GetSummary(_ context.Context, _ uint64) (*model.FinanceSummary, error) {
	if m.summary == nil {
		return nil, nil
	}
	copy := *m.summary
	return &copy, nil
}

func (m *memStore) PutSummary(_ context.Context, s *model.FinanceSummary) error {
	copy := *s
	m.summary = &copy
	m.puts++
	return nil
}

func (m *memStore) ListMovements(_ context.Context, _ uint64) ([]model.Movement, error) {
	return m.movements, nil
}

func (m *memStore) ListAssignments(_ context.Context, _ uint64) ([]model.CrewAssignment, error) {
	return m.assignments, nil
}

func (m *memStore) ListAllocations(_ context.Context, _ uint64) ([]model.EquipmentAllocation, error) {
	return m.allocations, nil
}

func testEngine(store *memStore) *Engine {
	eng := NewEngine(store)
	eng.Now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	return eng
}

func TestRecomputeContractValueAndSettlement(t *testing.T) {
	// Two confirmed members at R$500 each, one unconfirmed member that must
	// not count, equipment at R$300 and a manual food budget of R$100 give
	// a contract value of R$1400.
	store := &memStore{
		events: map[uint64]bool{1: true},
		summary: &model.FinanceSummary{
			EventID: 1, FoodCostCents: 10000,
		},
		assignments: []model.CrewAssignment{
			{EventID: 1, MemberID: 10, CacheCents: 50000, Confirmed: true},
			{EventID: 1, MemberID: 11, CacheCents: 50000, Confirmed: true},
			{EventID: 1, MemberID: 12, CacheCents: 80000, Confirmed: false},
		},
		allocations: []model.EquipmentAllocation{
			{EventID: 1, EquipmentID: 5, ValueCents: 30000},
		},
	}
	eng := testEngine(store)

	s, err := eng.Recompute(context.Background(), 1)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if s.CrewCostCents != 100000 {
		t.Fatalf("crew cost = %d, want 100000", s.CrewCostCents)
	}
	if s.EquipmentCostCents != 30000 {
		t.Fatalf("equipment cost = %d, want 30000", s.EquipmentCostCents)
	}
	if s.ContractValueCents != 140000 {
		t.Fatalf("contract value = %d, want 140000", s.ContractValueCents)
	}
	if s.PaymentStatus != model.PaymentOpen || s.PendingBalanceCents != 140000 {
		t.Fatalf("expected OPEN with pending 140000, got %s/%d", s.PaymentStatus, s.PendingBalanceCents)
	}

	// A single R$1400 movement settles the event.
	store.movements = []model.Movement{{EventID: 1, AmountCents: 140000}}
	s, err = eng.Recompute(context.Background(), 1)
	if err != nil {
		t.Fatalf("recompute after payment: %v", err)
	}
	if s.PaymentStatus != model.PaymentSettled || s.PendingBalanceCents != 0 {
		t.Fatalf("expected SETTLED with pending 0, got %s/%d", s.PaymentStatus, s.PendingBalanceCents)
	}
}

func TestRecomputeTotalPaidTracksMovements(t *testing.T) {
	store := &memStore{
		events:  map[uint64]bool{1: true},
		summary: &model.FinanceSummary{EventID: 1, OtherCostCents: 90000},
	}
	eng := testEngine(store)

	add := func(id uint64, amount int64) {
		store.movements = append(store.movements, model.Movement{ID: id, EventID: 1, AmountCents: amount})
	}
	remove := func(id uint64) {
		out := store.movements[:0]
		for _, m := range store.movements {
			if m.ID != id {
				out = append(out, m)
			}
		}
		store.movements = out
	}
	edit := func(id uint64, amount int64) {
		for i := range store.movements {
			if store.movements[i].ID == id {
				store.movements[i].AmountCents = amount
			}
		}
	}

	add(1, 20000)
	add(2, 30000)
	edit(1, 25000)
	remove(2)
	add(3, 10000)

	s, err := eng.Recompute(context.Background(), 1)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if s.TotalPaidCents != 35000 {
		t.Fatalf("total paid = %d, want 35000", s.TotalPaidCents)
	}
	if s.PendingBalanceCents != 55000 {
		t.Fatalf("pending = %d, want 55000", s.PendingBalanceCents)
	}
}

func TestRecomputePendingNeverNegative(t *testing.T) {
	// Overpayment clamps pending to zero and marks the summary settled.
	store := &memStore{
		events:    map[uint64]bool{1: true},
		movements: []model.Movement{{EventID: 1, AmountCents: 99999}},
	}
	eng := testEngine(store)

	s, err := eng.Recompute(context.Background(), 1)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if s.PendingBalanceCents != 0 {
		t.Fatalf("pending = %d, want 0", s.PendingBalanceCents)
	}
	if s.PaymentStatus != model.PaymentSettled {
		t.Fatalf("expected SETTLED, got %s", s.PaymentStatus)
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	store := &memStore{
		events:  map[uint64]bool{1: true},
		summary: &model.FinanceSummary{EventID: 1, TransportCostCents: 15000},
		movements: []model.Movement{
			{ID: 1, EventID: 1, AmountCents: 5000},
			{ID: 2, EventID: 1, AmountCents: 2500},
		},
		assignments: []model.CrewAssignment{
			{EventID: 1, MemberID: 4, CacheCents: 40000, Confirmed: true},
		},
	}
	eng := testEngine(store)

	first, err := eng.Recompute(context.Background(), 1)
	if err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	second, err := eng.Recompute(context.Background(), 1)
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("recompute not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestRecomputeDeletingMovementReopensSettledEvent(t *testing.T) {
	store := &memStore{
		events:  map[uint64]bool{1: true},
		summary: &model.FinanceSummary{EventID: 1, FoodCostCents: 60000},
		movements: []model.Movement{
			{ID: 1, EventID: 1, AmountCents: 40000},
			{ID: 2, EventID: 1, AmountCents: 20000},
		},
	}
	eng := testEngine(store)

	s, err := eng.Recompute(context.Background(), 1)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if s.PaymentStatus != model.PaymentSettled {
		t.Fatalf("expected SETTLED before deletion, got %s", s.PaymentStatus)
	}

	store.movements = store.movements[:1] // drop the R$200 movement
	s, err = eng.Recompute(context.Background(), 1)
	if err != nil {
		t.Fatalf("recompute after delete: %v", err)
	}
	if s.PaymentStatus != model.PaymentOpen {
		t.Fatalf("expected OPEN after deletion, got %s", s.PaymentStatus)
	}
	if s.PendingBalanceCents != 20000 {
		t.Fatalf("pending = %d, want 20000", s.PendingBalanceCents)
	}
}

func TestRecomputeMissingEvent(t *testing.T) {
	store := &memStore{events: map[uint64]bool{}}
	eng := testEngine(store)

	_, err := eng.Recompute(context.Background(), 42)
	if !errors.Is(err, repository.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
	if store.puts != 0 {
		t.Fatalf("expected no summary write, got %d", store.puts)
	}
}

func TestRecomputeCreatesZeroSummaryLazily(t *testing.T) {
	store := &memStore{events: map[uint64]bool{1: true}}
	eng := testEngine(store)

	s, err := eng.Recompute(context.Background(), 1)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if s.ContractValueCents != 0 || s.TotalPaidCents != 0 {
		t.Fatalf("expected all-zero summary, got %+v", s)
	}
	if s.PaymentStatus != model.PaymentSettled {
		t.Fatalf("zero balance must read SETTLED, got %s", s.PaymentStatus)
	}
	if store.puts != 1 {
		t.Fatalf("expected summary to be persisted, got %d writes", store.puts)
	}
}
