package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/show-booking/internal/model"
	"github.com/iliyamo/show-booking/internal/policy"
	"github.com/iliyamo/show-booking/internal/repository"
)

// fakeStore keeps a single event in memory and records status writes.
type fakeStore struct {
	event   *model.Event
	updates []string
}

func (f *fakeStore) GetEvent(_ context.Context, id uint64) (*model.Event, error) {
	if f.event == nil || f.event.ID != id {
		return nil, repository.ErrEventNotFound
	}
	copy := *f.event
	return &copy, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id uint64, status string) error {
	if f.event == nil || f.event.ID != id {
		return repository.ErrEventNotFound
	}
	f.event.Status = status
	f.updates = append(f.updates, status)
	return nil
}

type fakeFinance struct {
	value int64
}

func (f *fakeFinance) ContractValueCents(_ context.Context, _ uint64) (int64, error) {
	return f.value, nil
}

func newEngine(status string, value int64) (*Engine, *fakeStore) {
	store := &fakeStore{event: &model.Event{ID: 7, ClientID: 20, Status: status}}
	return NewEngine(store, &fakeFinance{value: value}), store
}

func TestReachable(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{model.StatusRequested, model.StatusUnderReview, true},
		{model.StatusUnderReview, model.StatusBudgetIssued, true},
		{model.StatusBudgetIssued, model.StatusAccepted, true},
		{model.StatusBudgetIssued, model.StatusDeclined, true},
		{model.StatusAccepted, model.StatusConfirmed, true},
		{model.StatusConfirmed, model.StatusCompleted, true},
		{model.StatusRequested, model.StatusConfirmed, false},
		{model.StatusRequested, model.StatusBudgetIssued, false},
		{model.StatusUnderReview, model.StatusRequested, false},
		{model.StatusDeclined, model.StatusConfirmed, false},
		{model.StatusRequested, model.StatusCancelled, true},
		{model.StatusConfirmed, model.StatusCancelled, true},
		{model.StatusCompleted, model.StatusCancelled, false},
		{model.StatusCancelled, model.StatusCancelled, false},
		{"BOGUS", model.StatusCancelled, false},
		{model.StatusRequested, "BOGUS", false},
	}
	for _, tt := range tests {
		if got := Reachable(tt.from, tt.to); got != tt.want {
			t.Fatalf("Reachable(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTransitionSkippingStepFails(t *testing.T) {
	admin := policy.Actor{ID: 1, Role: model.RoleAdmin}
	eng, store := newEngine(model.StatusRequested, 0)

	_, err := eng.Transition(context.Background(), 7, model.StatusConfirmed, admin)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(store.updates) != 0 {
		t.Fatalf("expected no status write, got %v", store.updates)
	}
}

func TestTransitionBudgetIssuanceRequiresContractValue(t *testing.T) {
	admin := policy.Actor{ID: 1, Role: model.RoleAdmin}

	eng, store := newEngine(model.StatusUnderReview, 0)
	_, err := eng.Transition(context.Background(), 7, model.StatusBudgetIssued, admin)
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("expected ErrPreconditionFailed, got %v", err)
	}
	if len(store.updates) != 0 {
		t.Fatalf("expected no status write, got %v", store.updates)
	}

	eng, store = newEngine(model.StatusUnderReview, 140000)
	ev, err := eng.Transition(context.Background(), 7, model.StatusBudgetIssued, admin)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if ev.Status != model.StatusBudgetIssued {
		t.Fatalf("expected BUDGET_ISSUED, got %s", ev.Status)
	}
	if len(store.updates) != 1 || store.updates[0] != model.StatusBudgetIssued {
		t.Fatalf("expected one status write, got %v", store.updates)
	}
}

func TestTransitionClientAnswersOwnBudgetOnly(t *testing.T) {
	owner := policy.Actor{ID: 20, Role: model.RoleClient}
	stranger := policy.Actor{ID: 99, Role: model.RoleClient}

	eng, _ := newEngine(model.StatusBudgetIssued, 50000)
	ev, err := eng.Transition(context.Background(), 7, model.StatusAccepted, owner)
	if err != nil {
		t.Fatalf("owner accept: %v", err)
	}
	if ev.Status != model.StatusAccepted {
		t.Fatalf("expected ACCEPTED, got %s", ev.Status)
	}

	eng, store := newEngine(model.StatusBudgetIssued, 50000)
	_, err = eng.Transition(context.Background(), 7, model.StatusAccepted, stranger)
	if !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if len(store.updates) != 0 {
		t.Fatalf("expected no status write, got %v", store.updates)
	}
}

func TestTransitionMemberDenied(t *testing.T) {
	member := policy.Actor{ID: 3, Role: model.RoleMember}
	eng, _ := newEngine(model.StatusRequested, 0)

	_, err := eng.Transition(context.Background(), 7, model.StatusUnderReview, member)
	if !errors.Is(err, policy.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTransitionCancelFromAnywhere(t *testing.T) {
	admin := policy.Actor{ID: 1, Role: model.RoleAdmin}
	for _, status := range []string{
		model.StatusRequested, model.StatusUnderReview, model.StatusBudgetIssued,
		model.StatusAccepted, model.StatusDeclined, model.StatusConfirmed,
	} {
		eng, _ := newEngine(status, 10000)
		ev, err := eng.Transition(context.Background(), 7, model.StatusCancelled, admin)
		if err != nil {
			t.Fatalf("cancel from %s: %v", status, err)
		}
		if ev.Status != model.StatusCancelled {
			t.Fatalf("expected CANCELLED from %s, got %s", status, ev.Status)
		}
	}

	eng, _ := newEngine(model.StatusCompleted, 10000)
	if _, err := eng.Transition(context.Background(), 7, model.StatusCancelled, admin); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition cancelling a completed event, got %v", err)
	}
}

func TestTransitionMissingEvent(t *testing.T) {
	admin := policy.Actor{ID: 1, Role: model.RoleAdmin}
	eng := NewEngine(&fakeStore{}, &fakeFinance{})

	_, err := eng.Transition(context.Background(), 404, model.StatusUnderReview, admin)
	if !errors.Is(err, repository.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}
