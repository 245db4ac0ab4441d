package handler // handler defines the HTTP surface of the booking API

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/show-booking/internal/lifecycle"
	"github.com/iliyamo/show-booking/internal/model"
	"github.com/iliyamo/show-booking/internal/policy"
	"github.com/iliyamo/show-booking/internal/registry"
	"github.com/iliyamo/show-booking/internal/repository"
	"github.com/iliyamo/show-booking/internal/stream"
)

// getActorID extracts the authenticated actor id from the echo context.
// JWT numeric claims arrive as float64; other shapes are normalized too.
func getActorID(c echo.Context) (uint64, error) {
	v := c.Get("actor_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid actor_id in context")
}

// getActor builds the policy actor from the JWT claims in context.
func getActor(c echo.Context) (policy.Actor, error) {
	id, err := getActorID(c)
	if err != nil {
		return policy.Actor{}, err
	}
	role, _ := c.Get("role").(string)
	if !model.KnownRole(role) {
		return policy.Actor{}, errors.New("invalid role in context")
	}
	return policy.Actor{ID: id, Role: role}, nil
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// reqctx bounds a handler's database work the way every handler in this
// API does.
func reqctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// relationshipFor derives how the actor relates to the event for policy
// checks.  Admins never need one; for members an assignment lookup is
// required, so the event repo is consulted.
func relationshipFor(ctx context.Context, events *repository.EventRepo, actor policy.Actor, ev *model.Event) (policy.Relationship, error) {
	switch actor.Role {
	case model.RoleClient:
		if ev.ClientID == actor.ID {
			return policy.RelClientOwner, nil
		}
	case model.RoleMember:
		ok, err := events.HasAssignment(ctx, ev.ID, actor.ID)
		if err != nil {
			return policy.RelNone, err
		}
		if ok {
			return policy.RelAssignedMember, nil
		}
	}
	return policy.RelNone, nil
}

// publishSnapshot pushes the current event and summary to stream
// subscribers.  It runs with its own context so a finished request does
// not cancel the fan-out.
func publishSnapshot(hub *stream.Hub, finance *repository.FinanceRepo, ev *model.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	sum, err := finance.GetSummary(ctx, ev.ID)
	if err != nil {
		sum = nil
	}
	hub.Publish(ctx, ev.ID, stream.Snapshot{Event: *ev, Summary: sum})
}

// writeDomainError translates domain sentinels into the API's error
// vocabulary.  Anything unrecognized is reported as a 500 with the given
// fallback message.
func writeDomainError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, policy.ErrUnauthorized):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrMovementNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movement not found"})
	case errors.Is(err, repository.ErrAssignmentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "assignment not found"})
	case errors.Is(err, repository.ErrActorNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "actor not found"})
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid transition"})
	case errors.Is(err, lifecycle.ErrPreconditionFailed):
		return c.JSON(http.StatusPreconditionFailed, echo.Map{"error": "precondition failed"})
	case errors.Is(err, registry.ErrDuplicateAllocation):
		return c.JSON(http.StatusConflict, echo.Map{"error": "duplicate allocation"})
	case errors.Is(err, registry.ErrUnknownAssignment), errors.Is(err, registry.ErrUnknownAllocation):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown allocation id"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}
