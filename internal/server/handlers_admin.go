package server

import (
	"context"
	"io"
	"net/http"

	"github.com/meltforce/periodize/internal/seed"
)

// maxCatalogBytes caps the accepted catalog payload size.
const maxCatalogBytes = 4 << 20

// catalogLoader applies catalog payloads. Satisfied by *seed.Loader.
type catalogLoader interface {
	Load(ctx context.Context, data []byte, name string) (seed.Stats, error)
}

// handleCatalogUpsert applies a YAML catalog payload to the database: the
// HTTP counterpart of the seeder CLI, for deployments that push catalogs
// instead of running the binary.
func (s *Server) handleCatalogUpsert(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxCatalogBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body: " + err.Error()})
		return
	}

	stats, err := s.catalog.Load(r.Context(), data, "api")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"exercises": stats.Exercises,
		"templates": stats.Templates,
	})
}
