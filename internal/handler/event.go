package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/show-booking/internal/ledger"
	"github.com/iliyamo/show-booking/internal/lifecycle"
	"github.com/iliyamo/show-booking/internal/model"
	"github.com/iliyamo/show-booking/internal/policy"
	"github.com/iliyamo/show-booking/internal/queue"
	"github.com/iliyamo/show-booking/internal/repository"
	queue_publisher "github.com/iliyamo/show-booking/internal/service"
	"github.com/iliyamo/show-booking/internal/stream"
	"github.com/iliyamo/show-booking/internal/webhook"
)

// EventHandler serves the event lifecycle endpoints.
type EventHandler struct {
	Events    *repository.EventRepo
	Finance   *repository.FinanceRepo
	Actors    *repository.ActorRepo
	Lifecycle *lifecycle.Engine
	Ledger    *ledger.Engine
	Hub       *stream.Hub
}

func NewEventHandler(events *repository.EventRepo, finance *repository.FinanceRepo, actors *repository.ActorRepo, lc *lifecycle.Engine, led *ledger.Engine, hub *stream.Hub) *EventHandler {
	if events == nil || finance == nil || actors == nil || lc == nil || led == nil {
		panic("nil dependency passed to NewEventHandler")
	}
	return &EventHandler{Events: events, Finance: finance, Actors: actors, Lifecycle: lc, Ledger: led, Hub: hub}
}

type eventReq struct {
	Title            string    `json:"title"`
	EventType        string    `json:"event_type"`
	StartsAt         time.Time `json:"starts_at"`
	DurationMin      uint32    `json:"duration_min"`
	Venue            string    `json:"venue"`
	VenueAddress     string    `json:"venue_address"`
	AudienceEstimate uint32    `json:"audience_estimate"`
	IncludesSound    bool      `json:"includes_sound"`
	IncludesCatering bool      `json:"includes_catering"`
	Notes            string    `json:"notes"`
	ClientID         uint64    `json:"client_id"` // admin only, ignored otherwise
}

func (r *eventReq) validate() string {
	if strings.TrimSpace(r.Title) == "" {
		return "title required"
	}
	if strings.TrimSpace(r.EventType) == "" {
		return "event_type required"
	}
	if r.StartsAt.IsZero() {
		return "starts_at required"
	}
	if r.DurationMin == 0 {
		return "duration_min must be positive"
	}
	return ""
}

// apply copies the writable fields onto the event.  Status, client and
// contract reference are never touched here.
func (r *eventReq) apply(ev *model.Event) {
	ev.Title = strings.TrimSpace(r.Title)
	ev.EventType = strings.TrimSpace(r.EventType)
	ev.StartsAt = r.StartsAt.UTC()
	ev.DurationMin = r.DurationMin
	ev.Venue = strings.TrimSpace(r.Venue)
	ev.VenueAddress = strings.TrimSpace(r.VenueAddress)
	ev.AudienceEstimate = r.AudienceEstimate
	ev.IncludesSound = r.IncludesSound
	ev.IncludesCatering = r.IncludesCatering
	ev.Notes = r.Notes
}

// Create registers a new booking request.  New events always enter the
// graph at REQUESTED.  Admins may create on behalf of a client via
// client_id; clients always own what they create.
func (h *EventHandler) Create(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if !policy.Can(actor, policy.RelNone, policy.ActionCreateEvent, policy.Context{}) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	clientID := actor.ID
	if actor.Role == model.RoleAdmin && req.ClientID != 0 {
		clientID = req.ClientID
	}

	ctx, cancel := reqctx(c)
	defer cancel()

	ev := &model.Event{ClientID: clientID, Status: model.StatusRequested}
	req.apply(ev)
	if err := h.Events.Create(ctx, ev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}

	// Seed the zero-cost summary so finance reads never 404.
	if _, err := h.Ledger.Recompute(ctx, ev.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "recompute failed"})
	}
	publishSnapshot(h.Hub, h.Finance, ev)

	return c.JSON(http.StatusCreated, ev)
}

// List returns the events the actor may see: all for admins, owned for
// clients, assigned for members.
func (h *EventHandler) List(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqctx(c)
	defer cancel()

	var events []model.Event
	switch actor.Role {
	case model.RoleAdmin:
		events, err = h.Events.ListAll(ctx)
	case model.RoleClient:
		events, err = h.Events.ListByClient(ctx, actor.ID)
	default:
		events, err = h.Events.ListByMember(ctx, actor.ID)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
	}
	if events == nil {
		events = []model.Event{}
	}
	return c.JSON(http.StatusOK, events)
}

// Get returns one event when the actor is allowed to view it.
func (h *EventHandler) Get(c echo.Context) error {
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
	return c.JSON(http.StatusOK, ev)
}

// Update edits the descriptive fields of an event.  Clients may touch
// their own events only while still REQUESTED; admins edit at any stage.
// Status, client and contract reference are never writable here.
func (h *EventHandler) Update(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
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
	if !policy.Can(actor, rel, policy.ActionEditEvent, policy.Context{EventStatus: ev.Status}) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	req.apply(ev)

	if err := h.Events.UpdateFields(ctx, ev); err != nil {
		return writeDomainError(c, err, "update event failed")
	}
	publishSnapshot(h.Hub, h.Finance, ev)
	return c.JSON(http.StatusOK, ev)
}

type transitionReq struct {
	Target         string `json:"target"`
	SignatureImage string `json:"signature_image"` // base64, only meaningful on acceptance
}

// Transition moves an event along the status graph.  Reaching ACCEPTED
// queues the contract notification; a publish failure is reported in the
// response but never rolls the transition back.
func (h *EventHandler) Transition(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req transitionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	target := strings.ToUpper(strings.TrimSpace(req.Target))
	if !model.KnownStatus(target) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown target status"})
	}

	ctx, cancel := reqctx(c)
	defer cancel()

	ev, err := h.Lifecycle.Transition(ctx, id, target, actor)
	if err != nil {
		return writeDomainError(c, err, "transition failed")
	}

	resp := echo.Map{"event": ev}
	if target == model.StatusAccepted {
		if err := h.queueContract(ctx, ev, req.SignatureImage); err != nil {
			resp["contract_webhook"] = "failed"
		} else {
			resp["contract_webhook"] = "queued"
		}
	}

	publishSnapshot(h.Hub, h.Finance, ev)
	return c.JSON(http.StatusOK, resp)
}

// queueContract builds the contract payload and publishes it to the
// broker for asynchronous delivery.
func (h *EventHandler) queueContract(ctx context.Context, ev *model.Event, signatureImage string) error {
	client, err := h.Actors.GetByID(ctx, ev.ClientID)
	if err != nil {
		return err
	}
	value, err := h.Finance.ContractValueCents(ctx, ev.ID)
	if err != nil {
		return err
	}
	crew, err := h.Finance.ListAssignments(ctx, ev.ID)
	if err != nil {
		return err
	}
	names := make(map[uint64]string, len(crew))
	for _, a := range crew {
		if !a.Confirmed {
			continue
		}
		if p, err := h.Actors.GetByID(ctx, a.MemberID); err == nil {
			names[a.MemberID] = p.DisplayName
		}
	}
	payload := webhook.BuildContractPayload(ev, &client, value, crew, names, signatureImage)
	return queue_publisher.PublishContractAccepted(ctx, queue.ContractAcceptedEvent{
		EventID:    ev.ID,
		AcceptedAt: payload.AcceptedAt.Format(time.RFC3339),
		Payload:    payload,
	})
}

