package model

import "time"

// Event lifecycle statuses.  An event starts as REQUESTED when a client
// solicits a show and advances through review, budgeting, acceptance and
// execution.  CANCELLED is reachable from every status except COMPLETED;
// cancellation is a status change, never a row deletion.
const (
	StatusRequested    = "REQUESTED"
	StatusUnderReview  = "UNDER_REVIEW"
	StatusBudgetIssued = "BUDGET_ISSUED"
	StatusAccepted     = "ACCEPTED"
	StatusDeclined     = "DECLINED"
	StatusConfirmed    = "CONFIRMED"
	StatusCompleted    = "COMPLETED"
	StatusCancelled    = "CANCELLED"
)

// Event represents one booked performance engagement ("show") as stored in
// the `events` table.  Each event carries its own lifecycle status and owns
// a finance summary with the same id.  The client that requested the show
// is referenced by ClientID; crew members are linked through the
// crew_assignments table rather than a column here.
//
// Fields:
//  ID               – primary key identifier.
//  Title            – name of the show.
//  EventType        – free classification (wedding, festival, corporate...).
//  StartsAt         – scheduled date and time of the performance.
//  DurationMin      – planned duration in minutes.
//  Venue            – venue name.
//  VenueAddress     – venue street address.
//  AudienceEstimate – expected audience head count.
//  IncludesSound    – whether sound equipment is part of the deal.
//  IncludesCatering – whether catering is part of the deal.
//  Notes            – free-text notes.
//  ClientID         – actor profile that requested the show.
//  Status           – lifecycle status (see constants above).
//  ContractRef      – reference to the signed contract document (nullable).
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Event struct {
	ID               uint64     // events.id
	Title            string     // events.title
	EventType        string     // events.event_type
	StartsAt         time.Time  // events.starts_at
	DurationMin      uint32     // events.duration_min
	Venue            string     // events.venue
	VenueAddress     string     // events.venue_address
	AudienceEstimate uint32     // events.audience_estimate
	IncludesSound    bool       // events.includes_sound
	IncludesCatering bool       // events.includes_catering
	Notes            string     // events.notes
	ClientID         uint64     // events.client_id
	Status           string     // events.status
	ContractRef      *string    // events.contract_ref (nullable)
	CreatedAt        time.Time  // events.created_at
	UpdatedAt        time.Time  // events.updated_at
}

// KnownStatus reports whether s is one of the defined lifecycle statuses.
func KnownStatus(s string) bool {
	switch s {
	case StatusRequested, StatusUnderReview, StatusBudgetIssued, StatusAccepted,
		StatusDeclined, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
