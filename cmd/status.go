package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/digitizer-tools/catsync/internal/format"
)

func newStatusCmd() *cobra.Command {
	var server string
	var sessionID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Poll the backend for the session's catalog status",
		Long: `Fetches the detected catalog identifier and its reference entry for a
session. A session with no detection yet reports an empty result; that is
not an error.`,
		Example: `  catsync status --session 7f4e474c-...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				return fmt.Errorf("--session is required")
			}

			client := newClient(server, sessionID)
			payload, err := client.RefreshStatus(cmd.Context())
			if err != nil {
				return err
			}

			label := client.FetchSessionLabel(cmd.Context())
			name := format.NiceSession(sessionID, label, client.Registry().DetectedID())
			fmt.Fprintf(cmd.OutOrStdout(), "session: %s\n", name)

			if !payload.DetectedID.Set || payload.DetectedID.Value == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no catalog id detected yet")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "detected id: %s\n", payload.DetectedID.Value)

			if payload.Entry != nil {
				out, err := yaml.Marshal(payload.Entry)
				if err != nil {
					return fmt.Errorf("marshal entry: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), string(out))
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "catalog id '%s' not found in reference table\n", payload.DetectedID.Value)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Backend base URL (default $CATSYNC_API_BASE or "+defaultServer+")")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id to poll")

	return cmd
}
