// Package queue defines message payloads exchanged over the message broker
// and the background dispatcher that delivers contract notifications.
package queue

import "github.com/iliyamo/show-booking/internal/webhook"

// ContractAcceptedEvent is published when a client accepts an issued
// budget.  It wraps the full contract payload so the dispatcher can POST
// it to the contract service without querying the primary database.
type ContractAcceptedEvent struct {
	EventID    uint64                  `json:"event_id"`
	AcceptedAt string                  `json:"accepted_at"`
	Payload    webhook.ContractPayload `json:"payload"`
}
