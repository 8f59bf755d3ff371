package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/handlers"
	"github.com/kevinaaaquil/digitallibrary/middleware"
	"github.com/kevinaaaquil/digitallibrary/models"
	"github.com/kevinaaaquil/digitallibrary/service"
	"github.com/kevinaaaquil/digitallibrary/store/memstore"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream unavailable")

type stubGenerator struct {
	info        *models.BookInfo
	answer      string
	suggestions []models.Suggestion
	enrichment  *models.Enrichment
	err         error
	prefs       *models.Preferences
}

func (g *stubGenerator) BookInfo(context.Context, string) (*models.BookInfo, error) {
	return g.info, g.err
}

func (g *stubGenerator) SearchParams(context.Context, string) (*models.SearchParams, error) {
	return nil, errUpstream
}

func (g *stubGenerator) Chat(context.Context, models.BookContext, string, []models.ChatMessage) (string, error) {
	return g.answer, g.err
}

func (g *stubGenerator) Recommend(_ context.Context, _ string, prefs *models.Preferences) ([]models.Suggestion, error) {
	g.prefs = prefs
	return g.suggestions, g.err
}

func (g *stubGenerator) Enrich(context.Context, models.BookContext) (*models.Enrichment, error) {
	return g.enrichment, g.err
}

// memCovers is an in-memory CoverStorage.
type memCovers struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	n       int
}

func newMemCovers() *memCovers {
	return &memCovers{objects: map[string][]byte{}, types: map[string]string{}}
}

func (c *memCovers) UploadCover(_ context.Context, bookID, filename string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	key := service.CoverKeyPrefix + bookID + "/" + strings.Repeat("x", c.n) + "-" + filename
	c.objects[key] = data
	c.types[key] = contentType
	return key, nil
}

func (c *memCovers) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.objects, key)
	return nil
}

func (c *memCovers) GetObject(_ context.Context, key string) (io.ReadCloser, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.objects[key]
	if !ok {
		return nil, "", service.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), c.types[key], nil
}

func (c *memCovers) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.objects)
}

type testServer struct {
	router   http.Handler
	svc      *catalog.Service
	store    *memstore.Store
	gen      *stubGenerator
	covers   *memCovers
	sessions *middleware.Sessions

	admin     string
	librarian string
	reader    string
	readerID  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	ts := &testServer{
		store:  memstore.New(),
		gen:    &stubGenerator{},
		covers: newMemCovers(),
	}
	ts.svc = catalog.New(ts.store, ts.gen)
	ts.sessions = &middleware.Sessions{Secret: "test-secret", TTL: time.Hour, Users: ts.store}
	_, err := ts.svc.EnsureMoods(ctx)
	require.NoError(t, err)

	api := handlers.NewAPI(ts.svc, ts.sessions, ts.covers, 1<<20)
	r := chi.NewRouter()
	api.Mount(r)
	ts.router = r

	admin, err := ts.svc.EnsureAdmin(ctx, "admin@example.com", "admin-pass")
	require.NoError(t, err)
	ts.admin = ts.token(t, admin)

	librarian, err := ts.svc.Register(ctx, "lib@example.com", "lib-pass", "Librarian")
	require.NoError(t, err)
	require.NoError(t, ts.svc.SetRole(ctx, librarian.ID, models.RoleLibrarian))
	ts.librarian = ts.token(t, librarian)

	reader, err := ts.svc.Register(ctx, "reader@example.com", "reader-pass", "Reader")
	require.NoError(t, err)
	ts.reader = ts.token(t, reader)
	ts.readerID = reader.ID.Hex()
	return ts
}

func (ts *testServer) token(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := ts.sessions.Issue(u)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["error"]
}

func (ts *testServer) createBook(t *testing.T, title string, categories ...string) models.BookView {
	t.Helper()
	w := ts.do(http.MethodPost, "/api/books", ts.librarian, map[string]any{
		"title":        title,
		"author":       "Someone",
		"availability": "EBook",
		"categories":   categories,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.BookView](t, w)
}
