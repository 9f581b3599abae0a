package main

import (
	"fmt"
	"os"
	"path/filepath"

	"raspador-backend/lib/keywords"
	"raspador-backend/lib/scrapers/camara"
	"raspador-backend/lib/timezone"
	"raspador-backend/services/records"
	"raspador-backend/services/records/db"

	"github.com/spf13/cobra"
)

var camaraCmd = &cobra.Command{
	Use:   "camara",
	Short: "Scrape bills in tramitation at the Câmara dos Deputados.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cleanup := setupTelemetry(cmd.Context(), cfg)
		defer cleanup()

		matchers, err := keywords.ParsePolicy(cfg.Keywords)
		if err != nil {
			return fmt.Errorf("keyword policy: %w", err)
		}

		store, feed, closeSinks, err := openSinks(cfg, "camara", records.NewBillFeed)
		if err != nil {
			return err
		}
		defer closeSinks()

		sinks := records.BillFanout{store, feed}
		if cfg.Radar.URL != "" {
			sinks = append(sinks, records.NewUploader(cfg.Radar.URL, cfg.Radar.Token))
		}

		scraper := camara.NewScraper(camara.ScraperOptions{
			StartDate:     cfg.StartDate,
			Subjects:      cfg.Subjects,
			Matchers:      matchers,
			Origin:        cfg.Origin,
			MaxConcurrent: cfg.MaxConcurrent,
			Bills:         sinks,
		})
		return scraper.ScrapeBills(cmd.Context())
	},
}

var agendaCmd = &cobra.Command{
	Use:   "agenda",
	Short: "Scrape the Câmara dos Deputados event agenda.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cleanup := setupTelemetry(cmd.Context(), cfg)
		defer cleanup()

		store, feed, closeSinks, err := openSinks(cfg, "agenda_camara", records.NewEventFeed)
		if err != nil {
			return err
		}
		defer closeSinks()

		sinks := records.EventFanout{store, feed}
		if cfg.Radar.URL != "" {
			sinks = append(sinks, records.NewUploader(cfg.Radar.URL, cfg.Radar.Token))
		}

		scraper := camara.NewScraper(camara.ScraperOptions{
			Origin:        cfg.Origin,
			MaxConcurrent: cfg.MaxConcurrent,
			Events:        sinks,
		})
		return scraper.ScrapeAgenda(cmd.Context())
	},
}

// openSinks prepares the sqlite store and a timestamped CSV feed for
// one scraping run.
func openSinks(
	cfg Config,
	name string,
	newFeed func(string) (*records.Feed, error),
) (records.Store, *records.Feed, func(), error) {
	err := os.MkdirAll(cfg.FeedDir, 0o755)
	if err != nil {
		return records.Store{}, nil, nil, err
	}
	if dir := filepath.Dir(cfg.Database); dir != "." {
		err := os.MkdirAll(dir, 0o755)
		if err != nil {
			return records.Store{}, nil, nil, err
		}
	}

	database, err := db.Open(cfg.Database)
	if err != nil {
		return records.Store{}, nil, nil, err
	}

	feedPath := filepath.Join(cfg.FeedDir, fmt.Sprintf(
		"%s-%s.csv",
		name,
		timezone.Now().Format("2006-01-02T15-04-05"),
	))
	feed, err := newFeed(feedPath)
	if err != nil {
		database.Close()
		return records.Store{}, nil, nil, err
	}

	closeAll := func() {
		feed.Close()
		database.Close()
	}
	return records.NewStore(database), feed, closeAll, nil
}

func init() {
	rootCmd.AddCommand(camaraCmd)
	rootCmd.AddCommand(agendaCmd)
}
