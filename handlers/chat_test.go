package handlers_test

import (
	"net/http"
	"testing"

	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/handlers"
	"github.com/kevinaaaquil/digitallibrary/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatConversation(t *testing.T) {
	ts := newTestServer(t)
	book := ts.createBook(t, "Dune")
	path := "/api/chat/" + book.ID.Hex()

	w := ts.do(http.MethodGet, path, ts.reader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
	assert.Equal(t, 1, ts.store.ThreadCount())

	ts.gen.answer = "It is set on Arrakis."
	w = ts.do(http.MethodPost, path, ts.reader, map[string]string{"message": "Where is it set?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[handlers.ChatResponse](t, w)
	assert.Equal(t, models.ChatRoleUser, resp.UserMessage.Role)
	assert.Equal(t, "It is set on Arrakis.", resp.AssistantMessage.Content)
	assert.Empty(t, resp.Error)

	ts.gen.err = errUpstream
	w = ts.do(http.MethodPost, path, ts.reader, map[string]string{"message": "Who is Paul?"})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[handlers.ChatResponse](t, w)
	assert.Equal(t, catalog.ApologyMessage, resp.AssistantMessage.Content)
	assert.Equal(t, "AI processing error", resp.Error)

	w = ts.do(http.MethodGet, path, ts.reader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]models.ChatMessage](t, w)
	require.Len(t, history, 4)
	assert.Equal(t, "Where is it set?", history[0].Content)
	assert.Equal(t, catalog.ApologyMessage, history[3].Content)
	assert.Equal(t, 1, ts.store.ThreadCount())

	// Threads are per user.
	w = ts.do(http.MethodGet, path, ts.librarian, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestChatRejects(t *testing.T) {
	ts := newTestServer(t)
	book := ts.createBook(t, "Dune")
	path := "/api/chat/" + book.ID.Hex()

	w := ts.do(http.MethodPost, path, "", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = ts.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodPost, path, ts.reader, map[string]string{"message": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/api/chat/nope", ts.reader, map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/api/chat/65f000000000000000000000", ts.reader, map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(http.MethodGet, "/api/chat/65f000000000000000000000", ts.reader, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, errorMessage(t, w), "not found")
	assert.Zero(t, ts.store.ThreadCount())
}
