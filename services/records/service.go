// Package records is the downstream side of the scraper: everything a
// record can happen to after emission lives here. A sqlite store keeps
// the run's output queryable, a CSV feed mirrors it to disk, and an
// optional uploader pushes each record to the Radar API.
package records

import (
	"context"
	"database/sql"

	"raspador-backend/lib/scrapers/camara"
	"raspador-backend/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/records")

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

func (s Store) EmitBill(ctx context.Context, bill camara.BillRecord) error {
	ctx, span := tracer.Start(ctx, "store:EmitBill")
	defer span.End()
	span.SetAttributes(attribute.Int64("site_id", bill.SiteID))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bills (
			site_id, origin, name, presented_at, summary,
			authors, author_ids, venue, keywords, original_keywords,
			url, scraped_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.SiteID, bill.Origin, bill.Name, bill.PresentedAt, bill.Summary,
		bill.Authors, bill.AuthorIDs, bill.Venue, bill.Keywords, bill.OriginalKeywords,
		bill.URL, timezone.Now().Unix(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert bill")
		return err
	}
	return nil
}

func (s Store) EmitEvent(ctx context.Context, event camara.EventRecord) error {
	ctx, span := tracer.Start(ctx, "store:EmitEvent")
	defer span.End()
	span.SetAttributes(attribute.Int64("site_id", event.SiteID))

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (site_id, origin, date, description, venue, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.SiteID, event.Origin, event.Date, event.Description, event.Venue,
		timezone.Now().Unix(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert event")
		return err
	}
	return nil
}

// ListBills returns every stored bill in scrape order.
func (s Store) ListBills(ctx context.Context) ([]camara.BillRecord, error) {
	ctx, span := tracer.Start(ctx, "store:ListBills")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT site_id, origin, name, presented_at, summary,
			authors, author_ids, venue, keywords, original_keywords, url
		FROM bills ORDER BY rowid`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query bills")
		return nil, err
	}
	defer rows.Close()

	var bills []camara.BillRecord
	for rows.Next() {
		var bill camara.BillRecord
		err := rows.Scan(
			&bill.SiteID, &bill.Origin, &bill.Name, &bill.PresentedAt, &bill.Summary,
			&bill.Authors, &bill.AuthorIDs, &bill.Venue, &bill.Keywords,
			&bill.OriginalKeywords, &bill.URL,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to scan bill")
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}

// ListEvents returns every stored event in scrape order.
func (s Store) ListEvents(ctx context.Context) ([]camara.EventRecord, error) {
	ctx, span := tracer.Start(ctx, "store:ListEvents")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT site_id, origin, date, description, venue
		FROM events ORDER BY rowid`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query events")
		return nil, err
	}
	defer rows.Close()

	var events []camara.EventRecord
	for rows.Next() {
		var event camara.EventRecord
		err := rows.Scan(&event.SiteID, &event.Origin, &event.Date, &event.Description, &event.Venue)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to scan event")
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
