// Package webhook builds the contract notification payload sent when a
// client accepts an issued budget.  The payload is published to RabbitMQ
// and later delivered by the dispatcher; it must carry everything the
// contract service needs so no callback into this API is required.
package webhook

import (
	"fmt"
	"time"

	"github.com/divan/num2words"

	"github.com/iliyamo/show-booking/internal/model"
)

// CrewEntry is one confirmed crew line in the contract payload.
type CrewEntry struct {
	MemberID    uint64 `json:"member_id"`
	DisplayName string `json:"display_name"`
	CacheCents  int64  `json:"cache_cents"`
}

// ContractPayload is the JSON body delivered to the contract endpoint.
type ContractPayload struct {
	EventID            uint64      `json:"event_id"`
	EventTitle         string      `json:"event_title"`
	EventType          string      `json:"event_type"`
	StartsAt           time.Time   `json:"starts_at"`
	Venue              string      `json:"venue"`
	VenueAddress       string      `json:"venue_address"`
	ClientID           uint64      `json:"client_id"`
	ClientName         string      `json:"client_name"`
	ClientEmail        string      `json:"client_email"`
	ContractValueCents int64       `json:"contract_value_cents"`
	ContractValueWords string      `json:"contract_value_words"`
	Crew               []CrewEntry `json:"crew"`
	SignatureImage     string      `json:"signature_image,omitempty"` // base64, optional
	AcceptedAt         time.Time   `json:"accepted_at"`
}

// BuildContractPayload assembles the payload from the event, the client
// profile, the recomputed contract value and the confirmed crew roster.
// signatureImage is passed through as received (base64 or empty).
func BuildContractPayload(ev *model.Event, client *model.ActorProfile, valueCents int64, crew []model.CrewAssignment, names map[uint64]string, signatureImage string) ContractPayload {
	p := ContractPayload{
		EventID:            ev.ID,
		EventTitle:         ev.Title,
		EventType:          ev.EventType,
		StartsAt:           ev.StartsAt,
		Venue:              ev.Venue,
		VenueAddress:       ev.VenueAddress,
		ClientID:           client.ID,
		ClientName:         client.DisplayName,
		ClientEmail:        client.Email,
		ContractValueCents: valueCents,
		ContractValueWords: AmountInWords(valueCents),
		SignatureImage:     signatureImage,
		AcceptedAt:         time.Now().UTC(),
	}
	for _, a := range crew {
		if !a.Confirmed {
			continue
		}
		p.Crew = append(p.Crew, CrewEntry{
			MemberID:    a.MemberID,
			DisplayName: names[a.MemberID],
			CacheCents:  a.CacheCents,
		})
	}
	return p
}

// AmountInWords renders a cent amount as spelled-out reais for the
// contract body, e.g. 140050 -> "one thousand four hundred reais and
// fifty centavos".  Whole amounts omit the centavos clause.
func AmountInWords(cents int64) string {
	reais := int(cents / 100)
	centavos := int(cents % 100)
	words := num2words.Convert(reais)
	if centavos == 0 {
		return fmt.Sprintf("%s reais", words)
	}
	return fmt.Sprintf("%s reais and %s centavos", words, num2words.Convert(centavos))
}
