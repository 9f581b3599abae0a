package records

import (
	"context"
	"fmt"
	"time"

	"raspador-backend/lib/scrapers/camara"
	"raspador-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

// Uploader pushes each emitted record to the Radar API as it comes out
// of the scraper. Upload failures bubble up to the emit fan-out, which
// logs them without interrupting the run.
type Uploader struct {
	http *resty.Client
}

func NewUploader(baseURL, token string) *Uploader {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(time.Second * 30)
	client.SetHeader("Authorization", fmt.Sprintf("Token %s", token))
	telemetry.InstrumentResty(client, "services/records/upload")

	return &Uploader{http: client}
}

type billUpload struct {
	SiteID           int64  `json:"id_site"`
	Origin           string `json:"origem"`
	Name             string `json:"nome"`
	PresentedAt      string `json:"apresentacao"`
	Summary          string `json:"ementa"`
	Authors          string `json:"autoria"`
	AuthorIDs        string `json:"autoria_ids"`
	Venue            string `json:"local"`
	Keywords         string `json:"palavras_chave"`
	OriginalKeywords string `json:"palavras_chave_originais"`
	URL              string `json:"url"`
}

type eventUpload struct {
	SiteID      int64  `json:"id_site"`
	Origin      string `json:"origem"`
	Date        string `json:"data"`
	Description string `json:"descricao"`
	Venue       string `json:"local"`
}

func (u *Uploader) EmitBill(ctx context.Context, bill camara.BillRecord) error {
	res, err := u.http.R().
		SetContext(ctx).
		SetBody(billUpload{
			SiteID:           bill.SiteID,
			Origin:           bill.Origin,
			Name:             bill.Name,
			PresentedAt:      bill.PresentedAt,
			Summary:          bill.Summary,
			Authors:          bill.Authors,
			AuthorIDs:        bill.AuthorIDs,
			Venue:            bill.Venue,
			Keywords:         bill.Keywords,
			OriginalKeywords: bill.OriginalKeywords,
			URL:              bill.URL,
		}).
		Post("/api/bills/")
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("upload rejected: %s", res.Status())
	}
	return nil
}

func (u *Uploader) EmitEvent(ctx context.Context, event camara.EventRecord) error {
	res, err := u.http.R().
		SetContext(ctx).
		SetBody(eventUpload{
			SiteID:      event.SiteID,
			Origin:      event.Origin,
			Date:        event.Date,
			Description: event.Description,
			Venue:       event.Venue,
		}).
		Post("/api/events/")
	if err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("upload rejected: %s", res.Status())
	}
	return nil
}
