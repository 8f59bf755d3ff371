package handlers

import (
	"net/http"

	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/logging"
	"github.com/kevinaaaquil/digitallibrary/middleware"
	"github.com/kevinaaaquil/digitallibrary/models"
)

type AuthHandler struct {
	Catalog  *catalog.Service
	Sessions *middleware.Sessions
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.Catalog.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusOK, user)
}

// Register creates a reader account and signs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.Catalog.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("user", user.ID.Hex()).Msg("user registered")
	h.respondWithToken(w, r, http.StatusCreated, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, err := h.Sessions.Issue(user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, LoginResponse{Token: token, Email: user.Email, Role: user.Role})
}
