package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/digitizer-tools/catsync/internal/sync"
)

func newExportCmd() *cobra.Command {
	var server string
	var sessionID string
	var formPath string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build a normalized catalog record for export",
		Long: `Builds the export snapshot for a session: form values win field by
field, the backend's reference entry fills the gaps, and the publication
year is normalized to an integer or omitted.

The form file is optional YAML with the catalog_* fields; omitted fields
fall back to the reference entry.`,
		Example: `  # Export straight from the backend's data
  catsync export --session 7f4e474c-... -o record.yaml

  # Apply manual form values on top
  catsync export --session 7f4e474c-... --form edits.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				return fmt.Errorf("--session is required")
			}

			var form sync.FormValues
			if formPath != "" {
				data, err := os.ReadFile(formPath)
				if err != nil {
					return fmt.Errorf("read form file: %w", err)
				}
				if err := yaml.Unmarshal(data, &form); err != nil {
					return fmt.Errorf("parse form file: %w", err)
				}
			}

			client := newClient(server, sessionID)
			if _, err := client.RefreshStatus(cmd.Context()); err != nil {
				return err
			}

			snapshot := client.BuildExportSnapshot(client.Registry().DetectedID(), form)
			out, err := yaml.Marshal(snapshot)
			if err != nil {
				return fmt.Errorf("marshal export record: %w", err)
			}

			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), string(out))
				return nil
			}
			if err := os.WriteFile(outPath, out, 0644); err != nil {
				return fmt.Errorf("write export record: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Backend base URL (default $CATSYNC_API_BASE or "+defaultServer+")")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id to export")
	cmd.Flags().StringVar(&formPath, "form", "", "YAML file with manual form values")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the record to this file instead of stdout")

	return cmd
}
