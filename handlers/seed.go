package handlers

import (
	"net/http"

	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/middleware"
)

type SeedHandler struct {
	Catalog *catalog.Service
}

type SeedResponse struct {
	Success bool `json:"success"`
	*catalog.SeedReport
}

// Seed loads the moods and the sample catalogue. Running it again only reports skips.
func (h *SeedHandler) Seed(w http.ResponseWriter, r *http.Request, sess *middleware.Session) {
	report, err := h.Catalog.SeedSamples(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SeedResponse{Success: true, SeedReport: report})
}
