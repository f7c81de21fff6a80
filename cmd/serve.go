package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/digitizer-tools/catsync/internal/handlers"
	"github.com/digitizer-tools/catsync/internal/storage"
)

func newServeCmd() *cobra.Command {
	var port string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the catalog reference backend",
		Long: `Starts the backend the sync client talks to.

It ingests uploaded reference tables (CSV or Parquet), tracks per-session
detected catalog identifiers, and serves catalog status and session labels.
Session state is persisted in SQLite.`,
		Example: `  # Start the backend on the default port
  catsync serve

  # Custom port and database location
  catsync serve --port 8080 --db /var/lib/catsync/catsync.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			handler := handlers.New(store)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/upload_csv", handler.HandleUploadCSV)
			mux.HandleFunc("/catalog_status", handler.HandleCatalogStatus)
			mux.HandleFunc("/session_label", handler.HandleSessionLabel)
			mux.HandleFunc("/detected", handler.HandleSetDetected)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Catalog backend available", "addr", addr, "db", dbPath)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "5001", "Port to listen on")
	cmd.Flags().StringVar(&dbPath, "db", "catsync.db", "Path to the SQLite database")

	return cmd
}
