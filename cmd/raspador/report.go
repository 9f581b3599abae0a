package main

import (
	"os"

	"raspador-backend/services/records"
	"raspador-backend/services/records/db"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the scraped bills stored in the local database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := db.Open(cfg.Database)
		if err != nil {
			return err
		}
		defer database.Close()

		bills, err := records.NewStore(database).ListBills(cmd.Context())
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"id", "name", "presented", "venue", "keywords", "authors"})
		for _, bill := range bills {
			t.AppendRow(table.Row{
				bill.SiteID,
				bill.Name,
				bill.PresentedAt,
				bill.Venue,
				bill.Keywords,
				bill.Authors,
			})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
