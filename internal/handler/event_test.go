package handler

import (
	"testing"
	"time"

	"github.com/iliyamo/show-booking/internal/model"
)

func TestEventReqValidate(t *testing.T) {
	starts := time.Date(2026, 9, 12, 20, 0, 0, 0, time.UTC)
	valid := eventReq{Title: "Garden Wedding", EventType: "wedding", StartsAt: starts, DurationMin: 120}

	tests := []struct {
		name   string
		mutate func(*eventReq)
		want   string
	}{
		{"valid", func(*eventReq) {}, ""},
		{"missing title", func(r *eventReq) { r.Title = "  " }, "title required"},
		{"missing type", func(r *eventReq) { r.EventType = "" }, "event_type required"},
		{"missing start", func(r *eventReq) { r.StartsAt = time.Time{} }, "starts_at required"},
		{"zero duration", func(r *eventReq) { r.DurationMin = 0 }, "duration_min must be positive"},
	}
	for _, tt := range tests {
		req := valid
		tt.mutate(&req)
		if got := req.validate(); got != tt.want {
			t.Fatalf("%s: validate() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestEventReqApply(t *testing.T) {
	starts := time.Date(2026, 9, 12, 22, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	req := eventReq{
		Title:            "  Summer Festival ",
		EventType:        " festival ",
		StartsAt:         starts,
		DurationMin:      90,
		Venue:            " Main Stage ",
		VenueAddress:     " Av. Central 100 ",
		AudienceEstimate: 500,
		IncludesSound:    true,
		Notes:            "outdoor",
		ClientID:         99, // apply must never move ownership
	}

	ev := &model.Event{ID: 7, ClientID: 20, Status: model.StatusRequested}
	req.apply(ev)

	if ev.Title != "Summer Festival" || ev.EventType != "festival" {
		t.Fatalf("expected trimmed title/type, got %q / %q", ev.Title, ev.EventType)
	}
	if ev.StartsAt.Location() != time.UTC || !ev.StartsAt.Equal(starts) {
		t.Fatalf("expected start normalized to UTC, got %v", ev.StartsAt)
	}
	if ev.DurationMin != 90 || ev.AudienceEstimate != 500 {
		t.Fatalf("expected duration/audience copied, got %d / %d", ev.DurationMin, ev.AudienceEstimate)
	}
	if ev.Venue != "Main Stage" || ev.VenueAddress != "Av. Central 100" {
		t.Fatalf("expected trimmed venue fields, got %q / %q", ev.Venue, ev.VenueAddress)
	}
	if !ev.IncludesSound || ev.IncludesCatering || ev.Notes != "outdoor" {
		t.Fatalf("unexpected flags/notes: %+v", ev)
	}
	if ev.ID != 7 || ev.ClientID != 20 || ev.Status != model.StatusRequested {
		t.Fatalf("identity fields must stay untouched, got %+v", ev)
	}
}
