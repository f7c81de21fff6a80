package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/digitizer-tools/catsync/internal/resolve"
)

func newUploadCmd() *cobra.Command {
	var server string
	var sessionID string
	var filePath string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a reference table to the backend",
		Long: `Uploads a reference table (CSV or Parquet) and reports the resulting
catalog status. Without --session the backend creates a new session and its
id is printed for use in later commands.`,
		Example: `  # Upload against a fresh session
  catsync upload --file reference.csv

  # Continue an existing session
  catsync upload --file reference.csv --session 7f4e474c-...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filePath == "" {
				return fmt.Errorf("--file is required")
			}

			file, err := os.Open(filePath)
			if err != nil {
				return fmt.Errorf("open reference table: %w", err)
			}
			defer file.Close()

			client := newClient(server, sessionID)
			payload, err := client.UploadReferenceTable(cmd.Context(), filepath.Base(filePath), file)
			if err != nil {
				return err
			}

			_, status := resolve.Effective(client.Registry().Snapshot())
			fmt.Fprintln(cmd.OutOrStdout(), status)
			fmt.Fprintf(cmd.OutOrStdout(), "session: %s\n", client.Session().GetOrEmpty())
			if payload.Count > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "entries ingested: %d\n", payload.Count)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Backend base URL (default $CATSYNC_API_BASE or "+defaultServer+")")
	cmd.Flags().StringVar(&sessionID, "session", "", "Existing session id")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Reference table to upload (.csv or .parquet)")

	return cmd
}
