package camara

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"raspador-backend/lib/keywords"
	"raspador-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

type recordedBills struct {
	mu    sync.Mutex
	bills []BillRecord
}

func (r *recordedBills) EmitBill(ctx context.Context, bill BillRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bills = append(r.bills, bill)
	return nil
}

// testScraper points every URL template at the given test server.
func testScraper(server *httptest.Server, opts ScraperOptions) (*Scraper, *recordedBills) {
	sink := &recordedBills{}
	opts.Bills = sink
	s := NewScraper(opts)
	s.urls = urlSet{
		billList:    server.URL + "/proposicoes?siglaTipo=%s&dataInicio=%s&itens=100",
		billPage:    server.URL + "/fichadetramitacao?idProposicao=%d",
		eventList:   server.URL + "/eventos",
		eventDetail: server.URL + "/ordemDetalheReuniaoCom.asp?codReuniao=%d",
	}
	return s, sink
}

func TestAssembleBillFullChain(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/camara")
	defer cleanup()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/proposicoes/17", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"dados": {
			"id": 17,
			"siglaTipo": "PL",
			"numero": 1234,
			"dataApresentacao": "2021-03-15T14:30:00",
			"ementa": "Dispõe sobre o saneamento básico.",
			"keywords": " saneamento, água .",
			"uriAutores": "%[1]s/proposicoes/17/autores",
			"urlInteiroTeor": "%[1]s/proposicoes/17/inteiro-teor",
			"statusProposicao": {"uriOrgao": "%[1]s/orgaos/4"}
		}}`, server.URL)
	})
	mux.HandleFunc("/proposicoes/17/autores", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dados": [
			{"nome": "Ana Silva", "uri": "https://api.example/autores/204379"},
			{"nome": "Comissão Especial", "uri": "https://api.example/autores/abc"}
		]}`))
	})
	mux.HandleFunc("/orgaos/4", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dados": {"nome": "Plenário"}}`))
	})
	mux.HandleFunc("/proposicoes/17/inteiro-teor", func(w http.ResponseWriter, r *http.Request) {
		// deliberately not a readable pdf, extraction yields empty text
		w.Write([]byte("%PDF-garbage"))
	})

	s, sink := testScraper(server, ScraperOptions{StartDate: "2000-11-07"})
	s.assembleBill(context.Background(), server.URL+"/proposicoes/17")

	require.Len(t, sink.bills, 1)
	bill := sink.bills[0]
	require.Equal(t, "CA", bill.Origin)
	require.Equal(t, int64(17), bill.SiteID)
	require.Equal(t, "PL 1234", bill.Name)
	require.Equal(t, "2021-03-15", bill.PresentedAt)
	require.Equal(t, "Dispõe sobre o saneamento básico.", bill.Summary)
	require.Equal(t, "saneamento, água", bill.OriginalKeywords)
	require.Equal(t, "Ana Silva, Comissão Especial", bill.Authors)
	require.Equal(t, "204379", bill.AuthorIDs)
	require.Equal(t, "Plenário", bill.Venue)
	require.Equal(t, "", bill.Keywords)
	require.Equal(t, server.URL+"/fichadetramitacao?idProposicao=17", bill.URL)
}

func TestAssembleBillSkipForward(t *testing.T) {
	detail := `{"dados": {
		"id": 18,
		"siglaTipo": "PEC",
		"numero": 7,
		"dataApresentacao": "2020-01-02T10:00:00",
		"ementa": "Altera o sistema tributário."
	}}`
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()
	mux.HandleFunc("/proposicoes/18", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(detail))
	})

	s, sink := testScraper(server, ScraperOptions{})
	s.assembleBill(context.Background(), server.URL+"/proposicoes/18")

	require.Len(t, sink.bills, 1)
	bill := sink.bills[0]
	require.Equal(t, "PEC 7", bill.Name)
	require.Empty(t, bill.Authors)
	require.Empty(t, bill.AuthorIDs)
	require.Empty(t, bill.Venue)
	require.Empty(t, bill.Keywords)
}

func TestAssembleBillPartialEmissionOnVenueFailure(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/proposicoes/19", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"dados": {
			"id": 19,
			"siglaTipo": "PL",
			"numero": 99,
			"dataApresentacao": "2019-06-01T09:00:00",
			"ementa": "Institui programa de educação.",
			"uriAutores": "%[1]s/proposicoes/19/autores",
			"urlInteiroTeor": "%[1]s/proposicoes/19/inteiro-teor",
			"statusProposicao": {"uriOrgao": "%[1]s/orgaos/500"}
		}}`, server.URL)
	})
	mux.HandleFunc("/proposicoes/19/autores", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dados": [{"nome": "Bruno Costa", "uri": "https://api.example/autores/1001"}]}`))
	})
	mux.HandleFunc("/orgaos/500", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	s, sink := testScraper(server, ScraperOptions{})
	s.assembleBill(context.Background(), server.URL+"/proposicoes/19")

	require.Len(t, sink.bills, 1)
	bill := sink.bills[0]
	require.Equal(t, "Bruno Costa", bill.Authors)
	require.Equal(t, "1001", bill.AuthorIDs)
	require.Empty(t, bill.Venue)
}

func TestAssembleBillDetailFailureEmitsNothing(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()
	mux.HandleFunc("/proposicoes/20", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	s, sink := testScraper(server, ScraperOptions{})
	s.assembleBill(context.Background(), server.URL+"/proposicoes/20")

	require.Empty(t, sink.bills)
}

func TestAssembleBillFilteredMode(t *testing.T) {
	detail := `{"dados": {
		"id": 21,
		"siglaTipo": "PL",
		"numero": 5,
		"dataApresentacao": "2022-08-10T11:00:00",
		"ementa": "Dispõe sobre acesso à água potável."
	}}`
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()
	mux.HandleFunc("/proposicoes/21", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(detail))
	})

	// policy that matches the summary
	s, sink := testScraper(server, ScraperOptions{
		Matchers: []keywords.Matcher{keywords.NewSubstringMatcher("água")},
	})
	s.assembleBill(context.Background(), server.URL+"/proposicoes/21")
	require.Len(t, sink.bills, 1)
	require.Equal(t, "água", sink.bills[0].Keywords)

	// policy that matches nothing suppresses the assembled record
	s, sink = testScraper(server, ScraperOptions{
		Matchers: []keywords.Matcher{keywords.NewSubstringMatcher("mineração")},
	})
	s.assembleBill(context.Background(), server.URL+"/proposicoes/21")
	require.Empty(t, sink.bills)
}

func TestScrapeBillsFansOutListing(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/proposicoes", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("pagina")
		if page == "" {
			fmt.Fprintf(w, `{
				"dados": [{"id": 1, "uri": "%[1]s/proposicoes/1"}],
				"links": [{"rel": "last", "href": "%[1]s/proposicoes?pagina=2"}]
			}`, server.URL)
			return
		}
		fmt.Fprintf(w, `{
			"dados": [{"id": 2, "uri": "%[1]s/proposicoes/2"}],
			"links": [{"rel": "last", "href": "%[1]s/proposicoes?pagina=2"}]
		}`, server.URL)
	})
	for _, id := range []int{1, 2} {
		id := id
		mux.HandleFunc(fmt.Sprintf("/proposicoes/%d", id), func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"dados": {
				"id": %d,
				"siglaTipo": "PL",
				"numero": %d,
				"dataApresentacao": "2023-01-01T00:00:00",
				"ementa": "Ementa."
			}}`, id, id)
		})
	}

	s, sink := testScraper(server, ScraperOptions{StartDate: "2000-11-07", MaxConcurrent: 4})
	err := s.ScrapeBills(context.Background())
	require.NoError(t, err)

	require.Len(t, sink.bills, 2)
	ids := []int64{sink.bills[0].SiteID, sink.bills[1].SiteID}
	require.ElementsMatch(t, []int64{1, 2}, ids)
}

func TestAuthorIDExtraction(t *testing.T) {
	require.Equal(t, "204379", trailingDigits.FindString("https://api.example/autores/204379"))
	require.Equal(t, "", trailingDigits.FindString("https://api.example/autores/abc"))
}

func TestClipDate(t *testing.T) {
	require.Equal(t, "2021-03-15", clipDate("2021-03-15T14:30:00"))
	require.Equal(t, "", clipDate(""))
	require.Equal(t, "2021", clipDate("2021"))
}
