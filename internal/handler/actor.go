package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/show-booking/internal/model"
	"github.com/iliyamo/show-booking/internal/repository"
)

// ActorHandler serves admin operations on actor profiles.
type ActorHandler struct {
	Actors *repository.ActorRepo
}

func NewActorHandler(actors *repository.ActorRepo) *ActorHandler {
	if actors == nil {
		panic("nil repository passed to NewActorHandler")
	}
	return &ActorHandler{Actors: actors}
}

type roleReq struct {
	Role string `json:"role"`
}

// UpdateRole grants a profile the ADMIN, CLIENT or MEMBER role.  The
// route is gated to admins by middleware; the handler validates the
// target role and profile.
func (h *ActorHandler) UpdateRole(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid actor id"})
	}
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if !model.KnownRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	ctx, cancel := reqctx(c)
	defer cancel()

	if err := h.Actors.UpdateRole(ctx, id, role); err != nil {
		return writeDomainError(c, err, "update role failed")
	}
	a, err := h.Actors.GetByID(ctx, id)
	if err != nil {
		return writeDomainError(c, err, "load actor failed")
	}
	return c.JSON(http.StatusOK, actorPart{ID: a.ID, Email: a.Email, DisplayName: a.DisplayName, Role: a.Role})
}
