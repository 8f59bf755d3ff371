package handlers

import (
	"net/http"

	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/middleware"
	"github.com/kevinaaaquil/digitallibrary/models"
)

type ChatHandler struct {
	Catalog *catalog.Service
}

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type ChatResponse struct {
	UserMessage      models.ChatMessage `json:"userMessage"`
	AssistantMessage models.ChatMessage `json:"assistantMessage"`
	Error            string             `json:"error,omitempty"`
}

// History returns the caller's messages about a book, oldest first.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request, sess *middleware.Session) {
	bookID, err := objectIDParam(r, "bookId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	messages, err := h.Catalog.ChatHistory(r.Context(), sess.UserID, bookID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// Send appends a question and the answer to it. A generator failure still answers 200, with the
// apology as the assistant message and the error field set.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request, sess *middleware.Session) {
	bookID, err := objectIDParam(r, "bookId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req ChatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	reply, err := h.Catalog.Chat(r.Context(), sess.UserID, bookID, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := ChatResponse{UserMessage: reply.UserMessage, AssistantMessage: reply.AssistantMessage}
	if reply.Failed {
		resp.Error = AIErrorMessage
	}
	writeJSON(w, http.StatusOK, resp)
}
