package handlers

import (
	"net/http"

	"github.com/kevinaaaquil/digitallibrary/middleware"
)

type PreferencesRequest struct {
	PreferredCategories []string `json:"preferred_categories"`
	PreferredAuthors    []string `json:"preferred_authors"`
}

// GetPreferences returns the caller's recommendation hints; empty lists if none were saved.
func (h *UsersHandler) GetPreferences(w http.ResponseWriter, r *http.Request, sess *middleware.Session) {
	prefs, err := h.Catalog.Preferences(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// SavePreferences replaces the caller's hints.
func (h *UsersHandler) SavePreferences(w http.ResponseWriter, r *http.Request, sess *middleware.Session) {
	var req PreferencesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	prefs, err := h.Catalog.SavePreferences(r.Context(), sess.UserID, nonBlank(req.PreferredCategories), nonBlank(req.PreferredAuthors))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
