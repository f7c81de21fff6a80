package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catsync",
		Short: "Catalog metadata resolution and sync for digitization sessions",
		Long: `Catsync keeps catalog metadata for a document-digitization session in sync.

It uploads reference tables (CSV or Parquet) to the backend, polls the
detected catalog identifier, merges manual overrides, and builds normalized
export records. It can also run the reference backend itself.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}
