package camara

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"raspador-backend/lib/keywords"
	"raspador-backend/lib/pdftext"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// fetchPlan holds the optional follow-up URLs found on the bill detail
// payload. An empty entry means the stage is skipped.
type fetchPlan struct {
	authorship string
	venue      string
	document   string
}

// billBuilder accumulates one bill across its assembly chain. It is
// owned by a single goroutine from creation to emission and never
// shared, so stages mutate it freely.
type billBuilder struct {
	record  BillRecord
	matched *keywords.Set
	plan    fetchPlan
}

func (b *billBuilder) finalize() BillRecord {
	record := b.record
	record.Keywords = b.matched.Join(", ")
	return record
}

func (s *Scraper) newBillBuilder(bill billDetail) *billBuilder {
	return &billBuilder{
		record: BillRecord{
			Origin:           s.origin,
			SiteID:           bill.ID,
			Name:             fmt.Sprintf("%s %d", bill.Type, bill.Number),
			PresentedAt:      clipDate(bill.PresentedAt),
			Summary:          bill.Summary,
			OriginalKeywords: strings.Trim(keywordsString(bill.Keywords), " .\n\t\r"),
			URL:              fmt.Sprintf(s.urls.billPage, bill.ID),
		},
		matched: keywords.NewSet(),
		plan: fetchPlan{
			authorship: bill.AuthorshipURI,
			venue:      bill.Status.VenueURI,
			document:   bill.FullTextURL,
		},
	}
}

// the presentation timestamp comes as ISO 8601 with a time component,
// only the calendar date is kept
func clipDate(timestamp string) string {
	if len(timestamp) < 10 {
		return timestamp
	}
	return timestamp[:10]
}

// assembleBill runs the whole chain for one listed bill:
//
//	detail -> authorship -> venue -> full text -> emission
//
// A stage whose URL is absent ends the chain early and emits right
// away. A stage whose fetch fails still emits whatever accumulated up
// to that point. Only a failure on the detail fetch itself produces
// nothing, there is no record to salvage yet.
func (s *Scraper) assembleBill(ctx context.Context, detailURI string) {
	ctx, span := tracer.Start(ctx, "assembleBill")
	defer span.End()
	span.SetAttributes(attribute.String("uri", detailURI))

	res, err := s.api.R().SetContext(ctx).Get(detailURI)
	if err := checkResponse(res, err); err != nil {
		slog.ErrorContext(ctx, "failed to fetch bill detail", "url", detailURI, "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch bill detail")
		return
	}
	var payload billDetailPayload
	err = json.Unmarshal(res.Body(), &payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to decode bill detail", "url", detailURI, "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode bill detail")
		return
	}

	b := s.newBillBuilder(payload.Bill)
	// the full text is not fetched yet, but summary and the source's
	// own keyword string can be classified immediately
	s.classifier.Classify(b.matched, b.record.Summary, b.record.OriginalKeywords)

	if b.plan.authorship == "" {
		s.finishBill(ctx, b)
		return
	}
	if err := s.resolveAuthorship(ctx, b); err != nil {
		s.abandonBill(ctx, b, b.plan.authorship, err)
		return
	}

	if b.plan.venue == "" {
		s.finishBill(ctx, b)
		return
	}
	if err := s.resolveVenue(ctx, b); err != nil {
		s.abandonBill(ctx, b, b.plan.venue, err)
		return
	}

	if b.plan.document == "" {
		s.finishBill(ctx, b)
		return
	}
	if err := s.resolveDocument(ctx, b); err != nil {
		s.abandonBill(ctx, b, b.plan.document, err)
		return
	}

	s.finishBill(ctx, b)
}

var trailingDigits = regexp.MustCompile(`\d+$`)

func (s *Scraper) resolveAuthorship(ctx context.Context, b *billBuilder) error {
	ctx, span := tracer.Start(ctx, "resolveAuthorship")
	defer span.End()

	res, err := s.api.R().SetContext(ctx).Get(b.plan.authorship)
	if err := checkResponse(res, err); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch authorship")
		return err
	}
	var payload authorshipPayload
	err = json.Unmarshal(res.Body(), &payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode authorship")
		return err
	}

	names := make([]string, 0, len(payload.Authors))
	var ids []string
	for _, author := range payload.Authors {
		names = append(names, author.Name)
		// authors without a numeric resource id (external entities,
		// commissions) are left out of the id list
		if id := trailingDigits.FindString(author.URI); id != "" {
			ids = append(ids, id)
		}
	}
	b.record.Authors = strings.Join(names, ", ")
	b.record.AuthorIDs = strings.Join(ids, ", ")
	return nil
}

func (s *Scraper) resolveVenue(ctx context.Context, b *billBuilder) error {
	ctx, span := tracer.Start(ctx, "resolveVenue")
	defer span.End()

	res, err := s.api.R().SetContext(ctx).Get(b.plan.venue)
	if err := checkResponse(res, err); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch venue")
		return err
	}
	var payload venuePayload
	err = json.Unmarshal(res.Body(), &payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode venue")
		return err
	}

	b.record.Venue = payload.Venue.Name
	return nil
}

func (s *Scraper) resolveDocument(ctx context.Context, b *billBuilder) error {
	ctx, span := tracer.Start(ctx, "resolveDocument")
	defer span.End()

	res, err := s.api.R().SetContext(ctx).Get(b.plan.document)
	if err := checkResponse(res, err); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch full text")
		return err
	}

	text, err := pdftext.Extract(res.Body())
	if err != nil {
		// unreadable documents are routine, classification simply sees
		// an empty text
		slog.DebugContext(ctx, "could not read the pdf", "url", b.plan.document, "err", err)
		text = ""
	}
	s.classifier.Classify(b.matched, text)
	return nil
}

// abandonBill handles a mid-chain fetch failure: the error is logged
// with the stage's URL and whatever the builder accumulated so far is
// still pushed through the normal emission path.
func (s *Scraper) abandonBill(ctx context.Context, b *billBuilder, url string, err error) {
	slog.ErrorContext(ctx, "bill assembly stage failed",
		"site_id", b.record.SiteID,
		"url", url,
		"err", err,
	)
	s.finishBill(ctx, b)
}

// finishBill applies the eligibility decision and emits. With a
// configured policy, a record with no matched keywords is suppressed;
// without one every record goes out.
func (s *Scraper) finishBill(ctx context.Context, b *billBuilder) {
	record := b.finalize()

	if !s.classifier.Eligible(b.matched) {
		slog.DebugContext(ctx, "suppressing bill with no matched keywords",
			"site_id", record.SiteID,
			"name", record.Name,
		)
		return
	}

	err := s.bills.EmitBill(ctx, record)
	if err != nil {
		slog.ErrorContext(ctx, "failed to emit bill", "site_id", record.SiteID, "err", err)
	}
}
