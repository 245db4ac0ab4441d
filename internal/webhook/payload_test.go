package webhook

import (
	"testing"
	"time"

	"github.com/iliyamo/show-booking/internal/model"
)

func TestAmountInWords(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{140000, "one thousand four hundred reais"},
		{140050, "one thousand four hundred reais and fifty centavos"},
		{99, "zero reais and ninety-nine centavos"},
		{0, "zero reais"},
		{100, "one reais"},
	}
	for _, c := range cases {
		if got := AmountInWords(c.cents); got != c.want {
			t.Fatalf("AmountInWords(%d) = %q, want %q", c.cents, got, c.want)
		}
	}
}

func TestBuildContractPayloadFiltersUnconfirmed(t *testing.T) {
	ev := &model.Event{
		ID:        7,
		Title:     "Corporate launch",
		EventType: "corporate",
		StartsAt:  time.Date(2025, 11, 20, 21, 0, 0, 0, time.UTC),
		Venue:     "Teatro Central",
	}
	client := &model.ActorProfile{ID: 3, Email: "client@example.com", DisplayName: "Acme Ltda"}
	crew := []model.CrewAssignment{
		{MemberID: 10, CacheCents: 50000, Confirmed: true},
		{MemberID: 11, CacheCents: 40000, Confirmed: false},
		{MemberID: 12, CacheCents: 50000, Confirmed: true},
	}
	names := map[uint64]string{10: "Ana", 11: "Bruno", 12: "Carla"}

	p := BuildContractPayload(ev, client, 140000, crew, names, "")

	if len(p.Crew) != 2 {
		t.Fatalf("expected 2 confirmed crew entries, got %d", len(p.Crew))
	}
	for _, e := range p.Crew {
		if e.MemberID == 11 {
			t.Fatalf("unconfirmed member leaked into payload")
		}
	}
	if p.ContractValueWords != "one thousand four hundred reais" {
		t.Fatalf("unexpected words: %q", p.ContractValueWords)
	}
	if p.ClientName != "Acme Ltda" || p.EventID != 7 {
		t.Fatalf("payload identity fields wrong: %+v", p)
	}
}
