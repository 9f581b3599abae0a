// Package camara scrapes legislative bills and agenda events from the
// Câmara dos Deputados open data API. Bills are assembled across a
// chain of dependent fetches (detail, authorship, venue, full text) and
// classified against a configurable keyword policy before emission;
// agenda events take a single hop through an HTML detail page.
package camara

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"raspador-backend/lib/keywords"
	"raspador-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/camara")

// DefaultOrigin is the source code stamped on every record scraped here.
const DefaultOrigin = "CA"

var defaultSubjects = []string{"PL", "PLS", "PEC"}

type urlSet struct {
	billList    string
	billPage    string
	eventList   string
	eventDetail string
}

var productionURLs = urlSet{
	billList:    "https://dadosabertos.camara.leg.br/api/v2/proposicoes?siglaTipo=%s&dataInicio=%s&itens=100",
	billPage:    "http://www.camara.gov.br/proposicoesWeb/fichadetramitacao?idProposicao=%d",
	eventList:   "https://dadosabertos.camara.leg.br/api/v2/eventos",
	eventDetail: "http://www.camara.leg.br/internet/ordemdodia/ordemDetalheReuniaoCom.asp?codReuniao=%d",
}

type ScraperOptions struct {
	// StartDate is the lower bound (YYYY-MM-DD) for the bill listing query.
	StartDate string
	// Subjects lists the bill types to track, defaults to PL, PLS, PEC.
	Subjects []string
	// Matchers is the ordered keyword policy. Empty means catch-all:
	// every assembled record is emitted.
	Matchers []keywords.Matcher
	// Origin overrides the source code on emitted records.
	Origin string
	// MaxConcurrent bounds the number of in-flight assembly chains.
	MaxConcurrent int

	Bills  BillEmitter
	Events EventEmitter
}

type Scraper struct {
	api        *resty.Client
	html       *resty.Client
	classifier keywords.Classifier
	startDate  string
	subjects   []string
	origin     string
	bills      BillEmitter
	events     EventEmitter
	sem        chan struct{}
	urls       urlSet
}

func NewScraper(opts ScraperOptions) *Scraper {
	api := resty.New()
	api.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(api, "scrapers/camara/api")

	// the event detail pages live on the public website rather than the
	// open data host and sit behind more aggressive bot filtering
	html := resty.New()
	html.SetTimeout(time.Second * 30)
	html.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	html.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(html.GetClient().Transport)
	telemetry.InstrumentResty(html, "scrapers/camara/html")

	subjects := opts.Subjects
	if len(subjects) == 0 {
		subjects = defaultSubjects
	}
	origin := opts.Origin
	if origin == "" {
		origin = DefaultOrigin
	}
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 32
	}

	return &Scraper{
		api:        api,
		html:       html,
		classifier: keywords.NewClassifier(opts.Matchers...),
		startDate:  opts.StartDate,
		subjects:   subjects,
		origin:     origin,
		bills:      opts.Bills,
		events:     opts.Events,
		sem:        make(chan struct{}, maxConcurrent),
		urls:       productionURLs,
	}
}

// ScrapeBills walks every page of the bill listing and runs one
// assembly chain per listed bill. Chains are independent: each one owns
// its record accumulator and failures never cross between them.
func (s *Scraper) ScrapeBills(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "ScrapeBills")
	defer span.End()

	firstURL := fmt.Sprintf(s.urls.billList, strings.Join(s.subjects, ","), s.startDate)
	listing, err := s.fetchBillListing(ctx, firstURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch first listing page")
		return err
	}

	wg := sync.WaitGroup{}
	s.scrapeBillPage(ctx, &wg, listing)

	for _, pageURL := range RemainingPages(listing.Links) {
		pageURL := pageURL
		wg.Add(1)
		go func() {
			defer wg.Done()

			s.sem <- struct{}{}
			page, err := s.fetchBillListing(ctx, pageURL)
			<-s.sem
			if err != nil {
				slog.ErrorContext(ctx, "failed to fetch listing page", "url", pageURL, "err", err)
				return
			}
			s.scrapeBillPage(ctx, &wg, page)
		}()
	}

	wg.Wait()
	return nil
}

func (s *Scraper) scrapeBillPage(ctx context.Context, wg *sync.WaitGroup, page billListPayload) {
	for _, entry := range page.Bills {
		entry := entry
		wg.Add(1)
		go func() {
			defer wg.Done()

			s.sem <- struct{}{}
			defer func() { <-s.sem }()
			s.assembleBill(ctx, entry.URI)
		}()
	}
}

func (s *Scraper) fetchBillListing(ctx context.Context, url string) (billListPayload, error) {
	ctx, span := tracer.Start(ctx, "fetchBillListing")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	res, err := s.api.R().SetContext(ctx).Get(url)
	if err := checkResponse(res, err); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch listing")
		return billListPayload{}, err
	}

	var payload billListPayload
	err = json.Unmarshal(res.Body(), &payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode listing")
		return billListPayload{}, err
	}
	return payload, nil
}

func checkResponse(res *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("unexpected status: %s", res.Status())
	}
	return nil
}
