package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/show-booking/internal/ledger"
	"github.com/iliyamo/show-booking/internal/model"
	"github.com/iliyamo/show-booking/internal/policy"
	"github.com/iliyamo/show-booking/internal/repository"
	"github.com/iliyamo/show-booking/internal/stream"
)

// MovementHandler serves the payment movement endpoints.
type MovementHandler struct {
	Events  *repository.EventRepo
	Finance *repository.FinanceRepo
	Ledger  *ledger.Engine
	Hub     *stream.Hub
}

func NewMovementHandler(events *repository.EventRepo, finance *repository.FinanceRepo, led *ledger.Engine, hub *stream.Hub) *MovementHandler {
	if events == nil || finance == nil || led == nil {
		panic("nil dependency passed to NewMovementHandler")
	}
	return &MovementHandler{Events: events, Finance: finance, Ledger: led, Hub: hub}
}

type movementReq struct {
	PaidOn      string `json:"paid_on"` // YYYY-MM-DD
	AmountCents int64  `json:"amount_cents"`
	Method      string `json:"method"`
}

func (r *movementReq) parse() (time.Time, string) {
	if r.AmountCents <= 0 {
		return time.Time{}, "amount_cents must be positive"
	}
	if strings.TrimSpace(r.Method) == "" {
		return time.Time{}, "method required"
	}
	paidOn, err := time.Parse("2006-01-02", r.PaidOn)
	if err != nil {
		return time.Time{}, "paid_on must be YYYY-MM-DD"
	}
	return paidOn, ""
}

// guard loads the event, derives the relationship and checks the given
// movement action against the current payment status.  Movement writes
// by the client are frozen once the event is SETTLED.
func (h *MovementHandler) guard(c echo.Context, action policy.Action) (*model.Event, policy.Actor, error) {
	actor, err := getActor(c)
	if err != nil {
		return nil, actor, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return nil, actor, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := reqctx(c)
	defer cancel()

	ev, err := h.Events.GetEvent(ctx, id)
	if err != nil {
		return nil, actor, writeDomainError(c, err, "load event failed")
	}
	rel, err := relationshipFor(ctx, h.Events, actor, ev)
	if err != nil {
		return nil, actor, c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	payment := model.PaymentOpen
	if sum, err := h.Finance.GetSummary(ctx, id); err == nil && sum != nil {
		payment = sum.PaymentStatus
	}
	if !policy.Can(actor, rel, action, policy.Context{EventStatus: ev.Status, PaymentStatus: payment}) {
		return nil, actor, c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return ev, actor, nil
}

// List returns the movements of an event for anyone who may view its
// finances.
func (h *MovementHandler) List(c echo.Context) error {
	ev, _, guardErr := h.guard(c, policy.ActionViewFinance)
	if ev == nil {
		return guardErr
	}

	ctx, cancel := reqctx(c)
	defer cancel()

	movements, err := h.Finance.ListMovements(ctx, ev.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list movements failed"})
	}
	if movements == nil {
		movements = []model.Movement{}
	}
	return c.JSON(http.StatusOK, movements)
}

// Create records a payment movement and recomputes the summary.
func (h *MovementHandler) Create(c echo.Context) error {
	var req movementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	paidOn, msg := req.parse()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ev, _, guardErr := h.guard(c, policy.ActionAddMovement)
	if ev == nil {
		return guardErr
	}

	ctx, cancel := reqctx(c)
	defer cancel()

	m := &model.Movement{
		EventID:     ev.ID,
		PaidOn:      paidOn,
		AmountCents: req.AmountCents,
		Method:      strings.TrimSpace(req.Method),
	}
	if err := h.Finance.CreateMovement(ctx, m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create movement failed"})
	}
	if _, err := h.Ledger.Recompute(ctx, ev.ID); err != nil {
		return writeDomainError(c, err, "recompute failed")
	}
	publishSnapshot(h.Hub, h.Finance, ev)
	return c.JSON(http.StatusCreated, m)
}

// Update edits one movement and recomputes the summary.
func (h *MovementHandler) Update(c echo.Context) error {
	movementID, err := pathID(c, "movementId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movement id"})
	}
	var req movementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	paidOn, msg := req.parse()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ev, _, guardErr := h.guard(c, policy.ActionEditMovement)
	if ev == nil {
		return guardErr
	}

	ctx, cancel := reqctx(c)
	defer cancel()

	m := &model.Movement{
		ID:          movementID,
		EventID:     ev.ID,
		PaidOn:      paidOn,
		AmountCents: req.AmountCents,
		Method:      strings.TrimSpace(req.Method),
	}
	if err := h.Finance.UpdateMovement(ctx, m); err != nil {
		return writeDomainError(c, err, "update movement failed")
	}
	if _, err := h.Ledger.Recompute(ctx, ev.ID); err != nil {
		return writeDomainError(c, err, "recompute failed")
	}
	publishSnapshot(h.Hub, h.Finance, ev)
	return c.JSON(http.StatusOK, m)
}

// Delete removes one movement and recomputes the summary.  Removing a
// movement from a settled event reopens it.
func (h *MovementHandler) Delete(c echo.Context) error {
	movementID, err := pathID(c, "movementId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movement id"})
	}

	ev, _, guardErr := h.guard(c, policy.ActionDeleteMovement)
	if ev == nil {
		return guardErr
	}

	ctx, cancel := reqctx(c)
	defer cancel()

	if err := h.Finance.DeleteMovement(ctx, ev.ID, movementID); err != nil {
		return writeDomainError(c, err, "delete movement failed")
	}
	if _, err := h.Ledger.Recompute(ctx, ev.ID); err != nil {
		return writeDomainError(c, err, "recompute failed")
	}
	publishSnapshot(h.Hub, h.Finance, ev)
	return c.NoContent(http.StatusNoContent)
}
