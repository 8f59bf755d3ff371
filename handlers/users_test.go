package handlers_test

import (
	"net/http"
	"testing"

	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsersAdminOnly(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/users", ts.librarian, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodGet, "/api/users", ts.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	users := decode[[]models.User](t, w)
	assert.Len(t, users, 3)
}

func TestSetRole(t *testing.T) {
	ts := newTestServer(t)
	path := "/api/users/" + ts.readerID + "/role"

	w := ts.do(http.MethodPut, path, ts.admin, map[string]string{"role": "superuser"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPut, "/api/users/65f000000000000000000000/role", ts.admin, map[string]string{"role": "librarian"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The reader cannot create books until promoted; the same token works afterwards.
	book := map[string]string{"title": "Emma", "availability": "EBook"}
	w = ts.do(http.MethodPost, "/api/books", ts.reader, book)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(http.MethodPut, path, ts.admin, map[string]string{"role": models.RoleLibrarian})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodPost, "/api/books", ts.reader, book)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestPreferences(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/preferences", ts.reader, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"preferred_categories":[],"preferred_authors":[]}`, w.Body.String())

	w = ts.do(http.MethodPut, "/api/preferences", ts.reader, map[string]any{
		"preferred_categories": []string{"Fantasy"},
		"preferred_authors":    []string{"Ursula K. Le Guin"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/api/preferences", ts.reader, nil)
	assert.JSONEq(t, `{"preferred_categories":["Fantasy"],"preferred_authors":["Ursula K. Le Guin"]}`, w.Body.String())

	w = ts.do(http.MethodGet, "/api/preferences", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSeedIsIdempotent(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/seed", ts.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[catalog.SeedReport](t, w)
	assert.Equal(t, len(catalog.SampleBooks), first.Created)

	w = ts.do(http.MethodPost, "/api/seed", ts.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[catalog.SeedReport](t, w)
	assert.Zero(t, second.Created)
	assert.Equal(t, len(catalog.SampleBooks), second.Skipped)

	w = ts.do(http.MethodGet, "/api/books", "", nil)
	assert.Len(t, decode[[]models.BookView](t, w), len(catalog.SampleBooks))
}
