package cmd

import (
	"os"

	"github.com/digitizer-tools/catsync/internal/registry"
	"github.com/digitizer-tools/catsync/internal/sync"
)

const defaultServer = "http://localhost:5001"

// newClient builds a sync client with a fresh registry and session. The
// session id comes from the --session flag when given; otherwise the
// backend mints one on first upload.
func newClient(server, sessionID string) *sync.Client {
	if server == "" {
		server = os.Getenv("CATSYNC_API_BASE")
	}
	if server == "" {
		server = defaultServer
	}

	sess := registry.NewSession()
	sess.Adopt(sessionID)
	return sync.New(server, registry.New(), sess)
}
