package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/show-booking/internal/policy"
	"github.com/iliyamo/show-booking/internal/repository"
	"github.com/iliyamo/show-booking/internal/stream"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Auth happens through the JWT middleware, not the Origin header.
		return true
	},
}

// StreamHandler upgrades viewers to a websocket fed with finance
// snapshots of one event.
type StreamHandler struct {
	Events *repository.EventRepo
	Hub    *stream.Hub
}

func NewStreamHandler(events *repository.EventRepo, hub *stream.Hub) *StreamHandler {
	if events == nil {
		panic("nil repository passed to NewStreamHandler")
	}
	return &StreamHandler{Events: events, Hub: hub}
}

// Stream subscribes the caller to an event's snapshot channel.  Each
// successful mutation of the event is pushed as one JSON message.  The
// same view policy as GET /v1/events/:id applies.
func (h *StreamHandler) Stream(c echo.Context) error {
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

	sub := h.Hub.Subscribe(c.Request().Context(), id)
	if sub == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "streaming unavailable"})
	}
	defer func() { _ = sub.Close() }()

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil // Upgrade already wrote the error response
	}
	defer conn.Close()

	// Drain client frames so the connection notices a close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-sub.Channel():
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return nil
			}
		case <-done:
			return nil
		}
	}
}
