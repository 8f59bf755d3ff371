package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/middleware"
	"github.com/kevinaaaquil/digitallibrary/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MoodHandler struct {
	Catalog *catalog.Service
}

// Recommend answers GET /api/mood/{mood}. A signed-in caller's preferences are passed on as hints.
func (h *MoodHandler) Recommend(w http.ResponseWriter, r *http.Request, sess *middleware.Session) {
	mood := chi.URLParam(r, "mood")
	if !models.IsMood(mood) {
		writeMessage(w, http.StatusBadRequest, "Invalid mood")
		return
	}
	var prefs *models.Preferences
	if sess != nil {
		p, err := h.Catalog.Preferences(r.Context(), sess.UserID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		prefs = p
	}
	recs, err := h.Catalog.Recommend(r.Context(), mood, prefs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	for i := range recs {
		setCoverURL(&recs[i].BookView)
	}
	writeJSON(w, http.StatusOK, recs)
}

type TrainRequest struct {
	BookID string `json:"bookId" validate:"required"`
}

type TrainResponse struct {
	Success      bool               `json:"success"`
	EnhancedData *models.Enrichment `json:"enhancedData"`
}

// Train enriches one book through the generator.
func (h *MoodHandler) Train(w http.ResponseWriter, r *http.Request, sess *middleware.Session) {
	var req TrainRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := primitive.ObjectIDFromHex(req.BookID)
	if err != nil {
		writeError(w, r, invalid("invalid bookId"))
		return
	}
	enrichment, err := h.Catalog.Train(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, TrainResponse{Success: true, EnhancedData: enrichment})
}
