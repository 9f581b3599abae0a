package records

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"raspador-backend/lib/scrapers/camara"
	"raspador-backend/services/records/db"

	"github.com/stretchr/testify/require"
)

var sampleBill = camara.BillRecord{
	Origin:           "CA",
	SiteID:           17,
	Name:             "PL 1234",
	PresentedAt:      "2021-03-15",
	Summary:          "Dispõe sobre o saneamento básico.",
	Authors:          "Ana Silva",
	AuthorIDs:        "204379",
	Venue:            "Plenário",
	Keywords:         "saneamento, água",
	OriginalKeywords: "saneamento",
	URL:              "http://example.com/17",
}

var sampleEvent = camara.EventRecord{
	Origin:      "CA",
	SiteID:      42,
	Date:        "2021-03-15",
	Description: "Pauta da sessão",
	Venue:       "Plenário 1",
}

func TestStoreRoundTrip(t *testing.T) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	store := NewStore(database)
	ctx := context.Background()

	require.NoError(t, store.EmitBill(ctx, sampleBill))
	require.NoError(t, store.EmitEvent(ctx, sampleEvent))

	bills, err := store.ListBills(ctx)
	require.NoError(t, err)
	require.Equal(t, []camara.BillRecord{sampleBill}, bills)

	events, err := store.ListEvents(ctx)
	require.NoError(t, err)
	require.Equal(t, []camara.EventRecord{sampleEvent}, events)
}

func TestBillFeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "camara.csv")

	feed, err := NewBillFeed(path)
	require.NoError(t, err)
	require.NoError(t, feed.EmitBill(context.Background(), sampleBill))
	require.NoError(t, feed.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, billHeader, rows[0])
	require.Equal(t, "17", rows[1][0])
	require.Equal(t, "PL 1234", rows[1][2])
	require.Equal(t, "saneamento, água", rows[1][8])
}

func TestUploader(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	uploader := NewUploader(server.URL, "sekret")
	err := uploader.EmitBill(context.Background(), sampleBill)
	require.NoError(t, err)
	require.Equal(t, "/api/bills/", gotPath)
	require.Equal(t, "Token sekret", gotAuth)

	err = uploader.EmitEvent(context.Background(), sampleEvent)
	require.NoError(t, err)
	require.Equal(t, "/api/events/", gotPath)
}

func TestUploaderRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusForbidden)
	}))
	defer server.Close()

	uploader := NewUploader(server.URL, "wrong")
	err := uploader.EmitBill(context.Background(), sampleBill)
	require.Error(t, err)
}

type failingBillSink struct{}

func (failingBillSink) EmitBill(ctx context.Context, bill camara.BillRecord) error {
	return fmt.Errorf("sink is down")
}

func TestBillFanoutKeepsDelivering(t *testing.T) {
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	defer database.Close()
	store := NewStore(database)

	fanout := BillFanout{failingBillSink{}, store}
	err = fanout.EmitBill(context.Background(), sampleBill)
	require.Error(t, err)

	bills, err := store.ListBills(context.Background())
	require.NoError(t, err)
	require.Len(t, bills, 1)
}
