package policy

import (
	"testing"

	"github.com/iliyamo/show-booking/internal/model"
)

func TestCanCapabilityMatrix(t *testing.T) {
	admin := Actor{ID: 1, Role: model.RoleAdmin}
	client := Actor{ID: 2, Role: model.RoleClient}
	member := Actor{ID: 3, Role: model.RoleMember}

	tests := []struct {
		name   string
		actor  Actor
		rel    Relationship
		action Action
		rc     Context
		want   bool
	}{
		{"admin edits manual costs", admin, RelNone, ActionEditManualCosts, Context{EventStatus: model.StatusConfirmed}, true},
		{"admin saves allocations", admin, RelNone, ActionSaveAllocations, Context{}, true},
		{"client creates event", client, RelNone, ActionCreateEvent, Context{}, true},
		{"client views own event", client, RelClientOwner, ActionViewEvent, Context{EventStatus: model.StatusRequested}, true},
		{"client views foreign event", client, RelNone, ActionViewEvent, Context{EventStatus: model.StatusRequested}, false},
		{"client edits while requested", client, RelClientOwner, ActionEditEvent, Context{EventStatus: model.StatusRequested}, true},
		{"client edits while confirmed", client, RelClientOwner, ActionEditEvent, Context{EventStatus: model.StatusConfirmed}, false},
		{"client adds movement while open", client, RelClientOwner, ActionAddMovement, Context{EventStatus: model.StatusConfirmed, PaymentStatus: model.PaymentOpen}, true},
		{"client adds movement while settled", client, RelClientOwner, ActionAddMovement, Context{EventStatus: model.StatusConfirmed, PaymentStatus: model.PaymentSettled}, false},
		{"client deletes movement with no summary yet", client, RelClientOwner, ActionDeleteMovement, Context{EventStatus: model.StatusConfirmed}, true},
		{"client saves allocations", client, RelClientOwner, ActionSaveAllocations, Context{}, false},
		{"member views assigned event", member, RelAssignedMember, ActionViewEvent, Context{}, true},
		{"member views foreign event", member, RelNone, ActionViewEvent, Context{}, false},
		{"member toggles own confirmation", member, RelAssignedMember, ActionToggleConfirmation, Context{}, true},
		{"member toggles payment flag", member, RelAssignedMember, ActionTogglePaymentFlag, Context{}, true},
		{"member adds movement", member, RelAssignedMember, ActionAddMovement, Context{}, false},
		{"member views finance", member, RelAssignedMember, ActionViewFinance, Context{}, false},
		{"unknown role denied", Actor{ID: 9, Role: "GUEST"}, RelNone, ActionViewEvent, Context{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Can(tt.actor, tt.rel, tt.action, tt.rc); got != tt.want {
				t.Fatalf("Can() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	admin := Actor{ID: 1, Role: model.RoleAdmin}
	client := Actor{ID: 2, Role: model.RoleClient}
	member := Actor{ID: 3, Role: model.RoleMember}

	tests := []struct {
		name     string
		actor    Actor
		rel      Relationship
		from, to string
		want     bool
	}{
		{"admin drives review", admin, RelNone, model.StatusRequested, model.StatusUnderReview, true},
		{"admin cancels", admin, RelNone, model.StatusConfirmed, model.StatusCancelled, true},
		{"client accepts own budget", client, RelClientOwner, model.StatusBudgetIssued, model.StatusAccepted, true},
		{"client declines own budget", client, RelClientOwner, model.StatusBudgetIssued, model.StatusDeclined, true},
		{"client accepts foreign budget", client, RelNone, model.StatusBudgetIssued, model.StatusAccepted, false},
		{"client drives review", client, RelClientOwner, model.StatusRequested, model.StatusUnderReview, false},
		{"client confirms", client, RelClientOwner, model.StatusAccepted, model.StatusConfirmed, false},
		{"member has no transitions", member, RelAssignedMember, model.StatusBudgetIssued, model.StatusAccepted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.actor, tt.rel, tt.from, tt.to); got != tt.want {
				t.Fatalf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
