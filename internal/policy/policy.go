// Package policy decides what an actor may do to an event and its
// financial records.  It is a pure capability table keyed by the actor's
// role, their relationship to the event and the event's current state; it
// holds no mutable state of its own.  Every other component consults this
// package before mutating anything, and any operation not explicitly
// granted here is denied.
package policy

import (
	"errors"

	"github.com/iliyamo/show-booking/internal/model"
)

// ErrUnauthorized is returned by components when the acting user lacks
// the capability for an operation.  Handlers should translate this into
// an HTTP 403 response.
var ErrUnauthorized = errors.New("unauthorized")

// Actor identifies the authenticated user performing an operation.  It is
// passed explicitly into every core operation; there is no ambient
// session state inside the core.
type Actor struct {
	ID   uint64
	Role string
}

// Relationship describes how the actor relates to the event under
// consideration.  Handlers derive it from loaded records before asking
// the policy for a decision.
type Relationship int

const (
	// RelNone means the actor has no ownership link to the event.
	RelNone Relationship = iota
	// RelClientOwner means the actor is the client that requested the event.
	RelClientOwner
	// RelAssignedMember means the actor has a crew assignment on the event.
	RelAssignedMember
)

// Action enumerates the guarded operations on events and their finances.
type Action int

const (
	ActionViewEvent Action = iota + 1
	ActionCreateEvent
	ActionEditEvent
	ActionSaveAllocations
	ActionEditManualCosts
	ActionViewFinance
	ActionAddMovement
	ActionEditMovement
	ActionDeleteMovement
	ActionToggleConfirmation
	ActionTogglePaymentFlag
)

// Context carries the pieces of event state that capability rules depend
// on: the lifecycle status and the payment status of the event's finance
// summary.  PaymentStatus may be empty when no summary exists yet, which
// is treated as OPEN.
type Context struct {
	EventStatus   string
	PaymentStatus string
}

// Can reports whether the actor may perform the action on an event they
// have the given relationship with.  Admins hold every capability.
// Clients are limited to their own events: they may create events, edit
// fields only while the event is still REQUESTED, and manage movements
// while the balance is not settled.  Members may only view events they
// are assigned to and toggle their own confirmation and payment flags.
func Can(actor Actor, rel Relationship, action Action, rc Context) bool {
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleClient:
		return clientCan(rel, action, rc)
	case model.RoleMember:
		return memberCan(rel, action)
	}
	return false
}

func clientCan(rel Relationship, action Action, rc Context) bool {
	if action == ActionCreateEvent {
		return true
	}
	if rel != RelClientOwner {
		return false
	}
	switch action {
	case ActionViewEvent, ActionViewFinance:
		return true
	case ActionEditEvent:
		return rc.EventStatus == model.StatusRequested
	case ActionAddMovement, ActionEditMovement, ActionDeleteMovement:
		return rc.PaymentStatus != model.PaymentSettled
	}
	return false
}

func memberCan(rel Relationship, action Action) bool {
	if rel != RelAssignedMember {
		return false
	}
	switch action {
	case ActionViewEvent, ActionToggleConfirmation, ActionTogglePaymentFlag:
		return true
	}
	return false
}

// CanTransition reports whether the actor may drive the event from one
// lifecycle status to another.  Admins drive every transition.  Clients
// may only answer a budget on their own events, moving BUDGET_ISSUED to
// ACCEPTED or DECLINED.  Members have no transition rights.  Graph
// reachability is not checked here; that is the lifecycle engine's job.
func CanTransition(actor Actor, rel Relationship, from, to string) bool {
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleClient:
		if rel != RelClientOwner || from != model.StatusBudgetIssued {
			return false
		}
		return to == model.StatusAccepted || to == model.StatusDeclined
	}
	return false
}
