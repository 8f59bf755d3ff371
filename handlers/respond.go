package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/logging"
	"github.com/kevinaaaquil/digitallibrary/middleware"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AIErrorMessage is reported when the text generator could not serve a request.
const AIErrorMessage = "AI processing error"

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("encode response")
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps an error from the catalog or the session layer to a status and a JSON body.
// Store and generator failures are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, middleware.ErrNoSession):
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, catalog.ErrInvalidCredentials):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, middleware.ErrUnknownUser):
		writeMessage(w, http.StatusNotFound, "user not found")
	case errors.Is(err, catalog.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, middleware.ErrForbidden):
		writeMessage(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, catalog.ErrValidation), errors.Is(err, catalog.ErrInvalidMood):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrEmailTaken):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrGeneration):
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("generation failed")
		writeMessage(w, http.StatusInternalServerError, AIErrorMessage)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads the body into dst and validates it.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invalid("invalid json")
	}
	return validate.Struct(dst)
}

// objectIDParam parses the named URL parameter.
func objectIDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, invalid("invalid " + name)
	}
	return id, nil
}
