package camara

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ScrapeAgenda walks every page of the event listing and emits one
// EventRecord per event that names a venue. Events without any named
// venue reflect incomplete source data and are dropped silently.
func (s *Scraper) ScrapeAgenda(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "ScrapeAgenda")
	defer span.End()

	listing, err := s.fetchEventListing(ctx, s.urls.eventList)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch first listing page")
		return err
	}

	wg := sync.WaitGroup{}
	s.scrapeEventPage(ctx, &wg, listing)

	for _, pageURL := range RemainingPages(listing.Links) {
		pageURL := pageURL
		wg.Add(1)
		go func() {
			defer wg.Done()

			s.sem <- struct{}{}
			page, err := s.fetchEventListing(ctx, pageURL)
			<-s.sem
			if err != nil {
				slog.ErrorContext(ctx, "failed to fetch listing page", "url", pageURL, "err", err)
				return
			}
			s.scrapeEventPage(ctx, &wg, page)
		}()
	}

	wg.Wait()
	return nil
}

func (s *Scraper) scrapeEventPage(ctx context.Context, wg *sync.WaitGroup, page eventListPayload) {
	for _, entry := range page.Events {
		entry := entry
		wg.Add(1)
		go func() {
			defer wg.Done()

			s.sem <- struct{}{}
			defer func() { <-s.sem }()
			s.assembleEvent(ctx, entry)
		}()
	}
}

func (s *Scraper) fetchEventListing(ctx context.Context, url string) (eventListPayload, error) {
	ctx, span := tracer.Start(ctx, "fetchEventListing")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	res, err := s.api.R().SetContext(ctx).Get(url)
	if err := checkResponse(res, err); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch listing")
		return eventListPayload{}, err
	}

	var payload eventListPayload
	err = json.Unmarshal(res.Body(), &payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode listing")
		return eventListPayload{}, err
	}
	return payload, nil
}

// assembleEvent is the one-hop sibling of the bill chain: listing entry
// plus one HTML detail page yields the record.
func (s *Scraper) assembleEvent(ctx context.Context, entry eventEntry) {
	ctx, span := tracer.Start(ctx, "assembleEvent")
	defer span.End()
	span.SetAttributes(attribute.Int64("site_id", entry.ID))

	venueName := firstVenueName(entry.Venues)
	if venueName == "" {
		slog.DebugContext(ctx, "dropping event without a named venue", "site_id", entry.ID)
		return
	}

	date, err := normalizeEventDate(entry.StartsAt)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse event start", "site_id", entry.ID, "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse event start")
		return
	}

	detailURL := fmt.Sprintf(s.urls.eventDetail, entry.ID)
	res, err := s.html.R().SetContext(ctx).Get(detailURL)
	if err := checkResponse(res, err); err != nil {
		slog.ErrorContext(ctx, "failed to fetch event detail", "url", detailURL, "err", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch event detail")
		return
	}

	event := EventRecord{
		Origin:      s.origin,
		SiteID:      entry.ID,
		Date:        date,
		Description: parseDescription(res.Body()),
		Venue:       venueName,
	}
	err = s.events.EmitEvent(ctx, event)
	if err != nil {
		slog.ErrorContext(ctx, "failed to emit event", "site_id", entry.ID, "err", err)
	}
}

// firstVenueName picks the first candidate venue that actually carries
// a display name.
func firstVenueName(venues []eventVenue) string {
	for _, v := range venues {
		if v.Name != "" {
			return v.Name
		}
	}
	return ""
}

// normalizeEventDate turns the event's start timestamp into a calendar
// date. Deliberately parsed without a location: upstream timestamps are
// already local and the date must not shift (see DESIGN.md).
func normalizeEventDate(raw string) (string, error) {
	t, err := time.Parse("2006-01-02T15:04", raw)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02"), nil
}
