package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/show-booking/internal/ledger"
	"github.com/iliyamo/show-booking/internal/model"
	"github.com/iliyamo/show-booking/internal/policy"
	"github.com/iliyamo/show-booking/internal/registry"
	"github.com/iliyamo/show-booking/internal/repository"
	"github.com/iliyamo/show-booking/internal/stream"
)

// AllocationHandler serves the crew and equipment allocation endpoints.
type AllocationHandler struct {
	Events   *repository.EventRepo
	Finance  *repository.FinanceRepo
	Registry *registry.Registry
	Ledger   *ledger.Engine
	Hub      *stream.Hub
}

func NewAllocationHandler(events *repository.EventRepo, finance *repository.FinanceRepo, reg *registry.Registry, led *ledger.Engine, hub *stream.Hub) *AllocationHandler {
	if events == nil || finance == nil || reg == nil || led == nil {
		panic("nil dependency passed to NewAllocationHandler")
	}
	return &AllocationHandler{Events: events, Finance: finance, Registry: reg, Ledger: led, Hub: hub}
}

type allocationsReq struct {
	Assignments []registry.DesiredAssignment `json:"assignments"`
	Allocations []registry.DesiredAllocation `json:"allocations"`
}

type allocationsResp struct {
	Assignments []model.CrewAssignment      `json:"assignments"`
	Allocations []model.EquipmentAllocation `json:"allocations"`
}

// Save replaces the crew and equipment allocations of an event with the
// desired end state in one atomic batch, then recomputes the summary.
func (h *AllocationHandler) Save(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req allocationsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	for _, a := range req.Assignments {
		// member_id is required on inserts only; updates resolve it from
		// the persisted row.
		if (a.ID == 0 && a.MemberID == 0) || a.CacheCents < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid assignment entry"})
		}
	}
	for _, a := range req.Allocations {
		if (a.ID == 0 && a.EquipmentID == 0) || a.ValueCents < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid allocation entry"})
		}
	}

	ctx, cancel := reqctx(c)
	defer cancel()

	ev, err := h.Events.GetEvent(ctx, id)
	if err != nil {
		return writeDomainError(c, err, "load event failed")
	}
	if err := h.Registry.Save(ctx, id, actor, req.Assignments, req.Allocations); err != nil {
		return writeDomainError(c, err, "save allocations failed")
	}
	if _, err := h.Ledger.Recompute(ctx, id); err != nil {
		return writeDomainError(c, err, "recompute failed")
	}
	publishSnapshot(h.Hub, h.Finance, ev)
	return h.respondCurrent(c, ctx, id)
}

// Get lists the current crew and equipment allocations of an event.
func (h *AllocationHandler) Get(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := reqctx(c)
	defer cancel()

	ev, err := h.Events.GetEvent(ctx, id)
	if err != nil {
		return writeDomainError(c, err, "load event failed")
	}
	rel, err := relationshipFor(ctx, h.Events, actor, ev)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	if !policy.Can(actor, rel, policy.ActionViewEvent, policy.Context{EventStatus: ev.Status}) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return h.respondCurrent(c, ctx, id)
}

type memberFlagsReq struct {
	Confirmed       *bool `json:"confirmed"`
	PaymentReceived *bool `json:"payment_received"`
}

// PatchMyAssignment lets an assigned member toggle their own
// confirmation and payment-received flags.  Confirmation changes affect
// the crew cost, so the summary is recomputed afterwards.
func (h *AllocationHandler) PatchMyAssignment(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req memberFlagsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Confirmed == nil && req.PaymentReceived == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	ctx, cancel := reqctx(c)
	defer cancel()

	ev, err := h.Events.GetEvent(ctx, id)
	if err != nil {
		return writeDomainError(c, err, "load event failed")
	}
	asg, err := h.Registry.SetMemberFlags(ctx, id, actor.ID, actor, req.Confirmed, req.PaymentReceived)
	if err != nil {
		return writeDomainError(c, err, "update assignment failed")
	}
	if _, err := h.Ledger.Recompute(ctx, id); err != nil {
		return writeDomainError(c, err, "recompute failed")
	}
	publishSnapshot(h.Hub, h.Finance, ev)
	return c.JSON(http.StatusOK, asg)
}

func (h *AllocationHandler) respondCurrent(c echo.Context, ctx context.Context, eventID uint64) error {
	assignments, err := h.Finance.ListAssignments(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list assignments failed"})
	}
	allocations, err := h.Finance.ListAllocations(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list allocations failed"})
	}
	if assignments == nil {
		assignments = []model.CrewAssignment{}
	}
	if allocations == nil {
		allocations = []model.EquipmentAllocation{}
	}
	return c.JSON(http.StatusOK, allocationsResp{Assignments: assignments, Allocations: allocations})
}
