package main

import (
	"fmt"

	"github.com/folio/internal/db"
	"github.com/folio/internal/seed"
	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load portfolio data, skipping records that already exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := bootstrap(); err != nil {
			return err
		}

		data, err := loadSeedData(seedFile)
		if err != nil {
			return err
		}
		report, err := seed.NewSeeder(db.DB).Apply(data)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for kind, n := range report.Created {
			fmt.Fprintf(out, "created %d %s\n", n, kind)
		}
		for kind, n := range report.Skipped {
			fmt.Fprintf(out, "skipped %d existing %s\n", n, kind)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML seed file (default: built-in data)")
}

func loadSeedData(path string) (*seed.Data, error) {
	if path == "" {
		return seed.Default()
	}
	return seed.LoadFile(path)
}
