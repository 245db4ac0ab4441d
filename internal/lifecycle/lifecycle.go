// Package lifecycle implements the event status state machine.  A
// transition request is authorized against the access policy, checked for
// one-step reachability in the status graph, and for budget issuance
// gated on the event having a computed contract value.  Guards run before
// any write, so a rejected transition leaves the event untouched.
package lifecycle

import (
	"context"
	"errors"

	"github.com/iliyamo/show-booking/internal/model"
	"github.com/iliyamo/show-booking/internal/policy"
)

// ErrInvalidTransition is returned when the target status is not directly
// reachable from the event's current status.  Handlers should translate
// this into an HTTP 409 response.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrPreconditionFailed is returned when a transition's cross-component
// precondition does not hold, e.g. issuing a budget while the contract
// value is still zero.  Handlers should translate this into 412.
var ErrPreconditionFailed = errors.New("precondition failed")

// forward lists the one-step transitions of the status graph.  CANCELLED
// is handled separately: it is reachable from every status except
// COMPLETED and CANCELLED itself.  DECLINED deliberately has no forward
// edge; a declined budget can only be cancelled.
var forward = map[string][]string{
	model.StatusRequested:    {model.StatusUnderReview},
	model.StatusUnderReview:  {model.StatusBudgetIssued},
	model.StatusBudgetIssued: {model.StatusAccepted, model.StatusDeclined},
	model.StatusAccepted:     {model.StatusConfirmed},
	model.StatusConfirmed:    {model.StatusCompleted},
}

// Reachable reports whether to is one step away from from in the status
// graph.  Unknown statuses are never reachable.
func Reachable(from, to string) bool {
	if !model.KnownStatus(from) || !model.KnownStatus(to) {
		return false
	}
	if to == model.StatusCancelled {
		return from != model.StatusCompleted && from != model.StatusCancelled
	}
	for _, next := range forward[from] {
		if next == to {
			return true
		}
	}
	return false
}

// EventStore is the persistence surface the engine drives.  UpdateStatus
// must be a single status write; the engine never performs partial
// multi-field updates.
type EventStore interface {
	GetEvent(ctx context.Context, id uint64) (*model.Event, error)
	UpdateStatus(ctx context.Context, id uint64, status string) error
}

// SummaryReader exposes the one financial fact the state machine needs:
// the current contract value of an event.  Implementations return 0 when
// no finance summary exists yet.
type SummaryReader interface {
	ContractValueCents(ctx context.Context, eventID uint64) (int64, error)
}

// Engine guards and applies lifecycle transitions.
type Engine struct {
	Events  EventStore
	Finance SummaryReader
}

// NewEngine constructs a lifecycle engine and panics if a dependency is nil.
func NewEngine(events EventStore, finance SummaryReader) *Engine {
	if events == nil || finance == nil {
		panic("nil dependency passed to lifecycle.NewEngine")
	}
	return &Engine{Events: events, Finance: finance}
}

// Transition moves the event to the target status on behalf of the actor.
// Guards are checked in order: policy authorization, graph reachability,
// then the budget-issuance precondition.  On success the updated event is
// returned; on failure the event state is untouched and one of
// policy.ErrUnauthorized, ErrInvalidTransition or ErrPreconditionFailed
// is returned (or a store error).
func (e *Engine) Transition(ctx context.Context, eventID uint64, target string, actor policy.Actor) (*model.Event, error) {
	ev, err := e.Events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	rel := policy.RelNone
	if actor.Role == model.RoleClient && ev.ClientID == actor.ID {
		rel = policy.RelClientOwner
	}
	if !policy.CanTransition(actor, rel, ev.Status, target) {
		return nil, policy.ErrUnauthorized
	}
	if !Reachable(ev.Status, target) {
		return nil, ErrInvalidTransition
	}
	if ev.Status == model.StatusUnderReview && target == model.StatusBudgetIssued {
		value, err := e.Finance.ContractValueCents(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if value <= 0 {
			return nil, ErrPreconditionFailed
		}
	}

	if err := e.Events.UpdateStatus(ctx, eventID, target); err != nil {
		return nil, err
	}
	ev.Status = target
	return ev, nil
}
