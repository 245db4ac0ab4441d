package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/show-booking/internal/model"
)

// EventRepo provides CRUD operations for events.  Events are never hard
// deleted in the normal flow; cancellation happens through a status
// write driven by the lifecycle engine.  All timestamp columns are
// stored in UTC.
type EventRepo struct{ db *sql.DB }

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying handle for handler-scoped transactions.
func (r *EventRepo) DB() *sql.DB { return r.db }

const eventColumns = `id, title, event_type, starts_at, duration_min, venue, venue_address,
	   audience_estimate, includes_sound, includes_catering, notes, client_id, status,
	   contract_ref, created_at, updated_at`

// eventColumnsQualified is the same list prefixed for joins against
// tables that share column names with events.
const eventColumnsQualified = `e.id, e.title, e.event_type, e.starts_at, e.duration_min, e.venue,
	   e.venue_address, e.audience_estimate, e.includes_sound, e.includes_catering, e.notes,
	   e.client_id, e.status, e.contract_ref, e.created_at, e.updated_at`

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	var ev model.Event
	var contractRef sql.NullString
	err := row.Scan(
		&ev.ID, &ev.Title, &ev.EventType, &ev.StartsAt, &ev.DurationMin,
		&ev.Venue, &ev.VenueAddress, &ev.AudienceEstimate, &ev.IncludesSound,
		&ev.IncludesCatering, &ev.Notes, &ev.ClientID, &ev.Status,
		&contractRef, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if contractRef.Valid {
		ref := contractRef.String
		ev.ContractRef = &ref
	}
	return &ev, nil
}

// Create inserts an event in REQUESTED status and populates the generated
// ID and timestamps on the provided record.
func (r *EventRepo) Create(ctx context.Context, ev *model.Event) error {
	const q = `INSERT INTO events (title, event_type, starts_at, duration_min, venue, venue_address,
			   audience_estimate, includes_sound, includes_catering, notes, client_id, status)
			   VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`
	res, err := r.db.ExecContext(ctx, q,
		ev.Title, ev.EventType, ev.StartsAt.UTC(), ev.DurationMin, ev.Venue, ev.VenueAddress,
		ev.AudienceEstimate, ev.IncludesSound, ev.IncludesCatering, ev.Notes, ev.ClientID,
		model.StatusRequested)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	// Query back the full row to populate timestamps and defaults.
	stored, err := r.GetEvent(ctx, ev.ID)
	if err != nil {
		return err
	}
	*ev = *stored
	return nil
}

// GetEvent fetches an event by id, mapping sql.ErrNoRows to ErrEventNotFound.
func (r *EventRepo) GetEvent(ctx context.Context, id uint64) (*model.Event, error) {
	ev, err := scanEvent(r.db.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	return ev, err
}

// ListAll returns every event ordered by start time descending.  Used by
// admins, who may read all events.
func (r *EventRepo) ListAll(ctx context.Context) ([]model.Event, error) {
	return r.list(ctx, "SELECT "+eventColumns+" FROM events ORDER BY starts_at DESC")
}

// ListByClient returns the events requested by the given client.
func (r *EventRepo) ListByClient(ctx context.Context, clientID uint64) ([]model.Event, error) {
	return r.list(ctx,
		"SELECT "+eventColumns+" FROM events WHERE client_id=? ORDER BY starts_at DESC", clientID)
}

// ListByMember returns the events the given member has a crew assignment on.
func (r *EventRepo) ListByMember(ctx context.Context, memberID uint64) ([]model.Event, error) {
	const q = `SELECT ` + eventColumnsQualified + ` FROM events e
			   JOIN crew_assignments ca ON ca.event_id = e.id
			   WHERE ca.member_id = ?
			   ORDER BY e.starts_at DESC`
	return r.list(ctx, q, memberID)
}

func (r *EventRepo) list(ctx context.Context, q string, args ...any) ([]model.Event, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateFields writes the client/admin editable columns of an event.
// Status and ClientID are deliberately not touched here; status moves
// only through UpdateStatus.
func (r *EventRepo) UpdateFields(ctx context.Context, ev *model.Event) error {
	const q = `UPDATE events SET title=?, event_type=?, starts_at=?, duration_min=?, venue=?,
			   venue_address=?, audience_estimate=?, includes_sound=?, includes_catering=?, notes=?
			   WHERE id=?`
	res, err := r.db.ExecContext(ctx, q,
		ev.Title, ev.EventType, ev.StartsAt.UTC(), ev.DurationMin, ev.Venue, ev.VenueAddress,
		ev.AudienceEstimate, ev.IncludesSound, ev.IncludesCatering, ev.Notes, ev.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, getErr := r.GetEvent(ctx, ev.ID); getErr != nil {
			return getErr
		}
	}
	return nil
}

// UpdateStatus writes the lifecycle status as a single-column update.
func (r *EventRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE events SET status=? WHERE id=?", status, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, getErr := r.GetEvent(ctx, id); getErr != nil {
			return getErr
		}
	}
	return nil
}

// SetContractRef records the reference to the signed contract document.
func (r *EventRepo) SetContractRef(ctx context.Context, id uint64, ref string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE events SET contract_ref=? WHERE id=?", ref, id)
	return err
}

// HasAssignment reports whether the member has a crew assignment on the
// event.  Handlers use it to derive the actor's relationship for policy
// decisions.
func (r *EventRepo) HasAssignment(ctx context.Context, eventID, memberID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM crew_assignments WHERE event_id=? AND member_id=? LIMIT 1",
		eventID, memberID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
