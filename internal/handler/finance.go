package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/show-booking/internal/ledger"
	"github.com/iliyamo/show-booking/internal/policy"
	"github.com/iliyamo/show-booking/internal/repository"
	"github.com/iliyamo/show-booking/internal/stream"
)

// FinanceHandler serves the finance summary and manual cost endpoints.
type FinanceHandler struct {
	Events  *repository.EventRepo
	Finance *repository.FinanceRepo
	Ledger  *ledger.Engine
	Hub     *stream.Hub
}

func NewFinanceHandler(events *repository.EventRepo, finance *repository.FinanceRepo, led *ledger.Engine, hub *stream.Hub) *FinanceHandler {
	if events == nil || finance == nil || led == nil {
		panic("nil dependency passed to NewFinanceHandler")
	}
	return &FinanceHandler{Events: events, Finance: finance, Ledger: led, Hub: hub}
}

// GetSummary returns the derived finance summary of an event.  The
// summary is recomputed on read so stale rows never leak out.
func (h *FinanceHandler) GetSummary(c echo.Context) error {
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
	if !policy.Can(actor, rel, policy.ActionViewFinance, policy.Context{EventStatus: ev.Status}) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	sum, err := h.Ledger.Recompute(ctx, id)
	if err != nil {
		return writeDomainError(c, err, "recompute failed")
	}
	return c.JSON(http.StatusOK, sum)
}

type manualCostsReq struct {
	FoodCents      int64 `json:"food_cents"`
	TransportCents int64 `json:"transport_cents"`
	OtherCents     int64 `json:"other_cents"`
}

// UpdateManualCosts sets the three manually entered cost fields and
// recomputes everything derived from them.  Admin only.
func (h *FinanceHandler) UpdateManualCosts(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !policy.Can(actor, policy.RelNone, policy.ActionEditManualCosts, policy.Context{}) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req manualCostsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.FoodCents < 0 || req.TransportCents < 0 || req.OtherCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "costs must not be negative"})
	}

	ctx, cancel := reqctx(c)
	defer cancel()

	ev, err := h.Events.GetEvent(ctx, id)
	if err != nil {
		return writeDomainError(c, err, "load event failed")
	}
	if err := h.Finance.UpdateManualCosts(ctx, id, req.FoodCents, req.TransportCents, req.OtherCents); err != nil {
		return writeDomainError(c, err, "update costs failed")
	}
	sum, err := h.Ledger.Recompute(ctx, id)
	if err != nil {
		return writeDomainError(c, err, "recompute failed")
	}
	publishSnapshot(h.Hub, h.Finance, ev)
	return c.JSON(http.StatusOK, sum)
}
