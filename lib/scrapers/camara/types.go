package camara

import (
	"context"
	"encoding/json"
)

// BillRecord is the output value for one legislative bill. The scraper
// assembles it across several dependent fetches and hands it over fully
// formed, partial fields left empty when a later stage failed.
type BillRecord struct {
	Origin           string
	SiteID           int64
	Name             string
	PresentedAt      string
	Summary          string
	Authors          string
	AuthorIDs        string
	Venue            string
	Keywords         string
	OriginalKeywords string
	URL              string
}

// EventRecord is the output value for one agenda event.
type EventRecord struct {
	Origin      string
	SiteID      int64
	Date        string
	Description string
	Venue       string
}

type BillEmitter interface {
	EmitBill(ctx context.Context, bill BillRecord) error
}

type EventEmitter interface {
	EmitEvent(ctx context.Context, event EventRecord) error
}

// Link is one navigation link of a paginated listing response.
type Link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type billListPayload struct {
	Bills []billListEntry `json:"dados"`
	Links []Link          `json:"links"`
}

type billListEntry struct {
	ID  int64  `json:"id"`
	URI string `json:"uri"`
}

type billDetailPayload struct {
	Bill billDetail `json:"dados"`
}

type billDetail struct {
	ID            int64           `json:"id"`
	Type          string          `json:"siglaTipo"`
	Number        int64           `json:"numero"`
	PresentedAt   string          `json:"dataApresentacao"`
	Summary       string          `json:"ementa"`
	Keywords      json.RawMessage `json:"keywords"`
	AuthorshipURI string          `json:"uriAutores"`
	FullTextURL   string          `json:"urlInteiroTeor"`
	Status        billStatus      `json:"statusProposicao"`
}

type billStatus struct {
	VenueURI string `json:"uriOrgao"`
}

type authorshipPayload struct {
	Authors []author `json:"dados"`
}

type author struct {
	Name string `json:"nome"`
	URI  string `json:"uri"`
}

type venuePayload struct {
	Venue venue `json:"dados"`
}

type venue struct {
	Name string `json:"nome"`
}

type eventListPayload struct {
	Events []eventEntry `json:"dados"`
	Links  []Link       `json:"links"`
}

type eventEntry struct {
	ID       int64        `json:"id"`
	StartsAt string       `json:"dataHoraInicio"`
	Venues   []eventVenue `json:"orgaos"`
}

type eventVenue struct {
	Name string `json:"nome"`
}

// upstream serves keywords as a string most of the time, but some bills
// carry null or even structured junk in there. anything that is not a
// string counts as no keywords at all.
func keywordsString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
