package handlers

import (
	"net/http"

	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/logging"
	"github.com/kevinaaaquil/digitallibrary/middleware"
)

type UsersHandler struct {
	Catalog *catalog.Service
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

// List returns every user. Password hashes are never serialized.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request, sess *middleware.Session) {
	users, err := h.Catalog.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UsersHandler) SetRole(w http.ResponseWriter, r *http.Request, sess *middleware.Session) {
	id, err := objectIDParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req UpdateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Catalog.SetRole(r.Context(), id, req.Role); err != nil {
		writeError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("user", id.Hex()).Str("role", req.Role).Str("by", sess.UserID.Hex()).
		Msg("user role changed")
	writeJSON(w, http.StatusOK, map[string]string{"id": id.Hex(), "role": req.Role})
}
