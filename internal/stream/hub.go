// Package stream fans finance snapshots out to websocket subscribers.
// Snapshots travel through redis pub/sub so every API instance sees
// mutations made on any other instance.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/show-booking/internal/model"
)

// Snapshot is the message pushed to subscribers after every successful
// mutation of an event's finances.
type Snapshot struct {
	Event   model.Event           `json:"event"`
	Summary *model.FinanceSummary `json:"summary,omitempty"`
}

// Hub publishes and subscribes snapshots over redis.  A Hub with a nil
// client is valid and turns both operations into no-ops so the API keeps
// working without redis.
type Hub struct {
	rdb *redis.Client
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{rdb: rdb}
}

func channelFor(eventID uint64) string {
	return fmt.Sprintf("finance:event:%d", eventID)
}

// Publish pushes a snapshot to the event's channel.  Failures are logged
// and swallowed; fan-out must never fail a mutation.
func (h *Hub) Publish(ctx context.Context, eventID uint64, snap Snapshot) {
	if h == nil || h.rdb == nil {
		return
	}
	body, err := json.Marshal(snap)
	if err != nil {
		log.Printf("stream: marshal snapshot failed: %v", err)
		return
	}
	if err := h.rdb.Publish(ctx, channelFor(eventID), body).Err(); err != nil {
		log.Printf("stream: publish to %s failed: %v", channelFor(eventID), err)
	}
}

// Subscribe opens a redis subscription for one event.  The returned
// PubSub must be closed by the caller; its Channel() yields raw snapshot
// JSON.  Returns nil when no redis client is configured.
func (h *Hub) Subscribe(ctx context.Context, eventID uint64) *redis.PubSub {
	if h == nil || h.rdb == nil {
		return nil
	}
	return h.rdb.Subscribe(ctx, channelFor(eventID))
}
