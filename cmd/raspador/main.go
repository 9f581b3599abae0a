package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "raspador",
	Short: "raspador scrapes legislative bills and agenda events and classifies them against a keyword policy.",
}

func main() {
	rootCmd.PersistentFlags().StringVar(
		&configPath,
		"config",
		"raspador.json5",
		"path to the scraper configuration file",
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
