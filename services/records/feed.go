package records

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"sync"

	"raspador-backend/lib/scrapers/camara"
)

// Feed appends emitted records to a CSV file, one writer per run.
// Records arrive from concurrently finishing assembly chains, so
// writes are serialized.
type Feed struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

var billHeader = []string{
	"id_site", "origem", "nome", "apresentacao", "ementa",
	"autoria", "autoria_ids", "local", "palavras_chave",
	"palavras_chave_originais", "url",
}

var eventHeader = []string{"id_site", "origem", "data", "descricao", "local"}

func newFeed(path string, header []string) (*Feed, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	writer := csv.NewWriter(file)
	err = writer.Write(header)
	if err != nil {
		file.Close()
		return nil, err
	}
	return &Feed{file: file, writer: writer}, nil
}

// NewBillFeed opens a CSV feed with the bill column layout.
func NewBillFeed(path string) (*Feed, error) {
	return newFeed(path, billHeader)
}

// NewEventFeed opens a CSV feed with the event column layout.
func NewEventFeed(path string) (*Feed, error) {
	return newFeed(path, eventHeader)
}

func (f *Feed) write(row []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.writer.Write(row)
	if err != nil {
		return err
	}
	f.writer.Flush()
	return f.writer.Error()
}

func (f *Feed) EmitBill(ctx context.Context, bill camara.BillRecord) error {
	return f.write([]string{
		strconv.FormatInt(bill.SiteID, 10),
		bill.Origin,
		bill.Name,
		bill.PresentedAt,
		bill.Summary,
		bill.Authors,
		bill.AuthorIDs,
		bill.Venue,
		bill.Keywords,
		bill.OriginalKeywords,
		bill.URL,
	})
}

func (f *Feed) EmitEvent(ctx context.Context, event camara.EventRecord) error {
	return f.write([]string{
		strconv.FormatInt(event.SiteID, 10),
		event.Origin,
		event.Date,
		event.Description,
		event.Venue,
	})
}

func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writer.Flush()
	err := f.writer.Error()
	closeErr := f.file.Close()
	if err != nil {
		return err
	}
	return closeErr
}
