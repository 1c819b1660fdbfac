package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/tether/internal/config"
	"github.com/alfredjeanlab/tether/internal/snapshot"
	"github.com/alfredjeanlab/tether/internal/store/postgres"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:     "export [file]",
	Short:   "Export the registry as JSONL (stdout by default)",
	GroupID: "system",
	Args:    cobra.MaximumNArgs(1),
	// Reads straight from the database, not through the API.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()

		out := os.Stdout
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[0], err)
			}
			defer f.Close()
			out = f
		}

		return snapshot.ExportJSONL(context.Background(), store, out)
	},
}
