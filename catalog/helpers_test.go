package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/models"
	"github.com/kevinaaaquil/digitallibrary/store/memstore"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errGenerator = errors.New("upstream unavailable")

// fakeGenerator returns canned results and records what it was asked.
type fakeGenerator struct {
	mu sync.Mutex

	info        *models.BookInfo
	params      *models.SearchParams
	answer      string
	suggestions []models.Suggestion
	enrichment  *models.Enrichment
	err         error

	chatHistory []models.ChatMessage
	chatBook    models.BookContext
	prefs       *models.Preferences
	calls       int
}

func (g *fakeGenerator) record() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	return g.err
}

func (g *fakeGenerator) BookInfo(context.Context, string) (*models.BookInfo, error) {
	if err := g.record(); err != nil {
		return nil, err
	}
	return g.info, nil
}

func (g *fakeGenerator) SearchParams(context.Context, string) (*models.SearchParams, error) {
	if err := g.record(); err != nil {
		return nil, err
	}
	return g.params, nil
}

func (g *fakeGenerator) Chat(_ context.Context, book models.BookContext, _ string, history []models.ChatMessage) (string, error) {
	g.chatBook = book
	g.chatHistory = history
	if err := g.record(); err != nil {
		return "", err
	}
	return g.answer, nil
}

func (g *fakeGenerator) Recommend(_ context.Context, _ string, prefs *models.Preferences) ([]models.Suggestion, error) {
	g.prefs = prefs
	if err := g.record(); err != nil {
		return nil, err
	}
	return g.suggestions, nil
}

func (g *fakeGenerator) Enrich(_ context.Context, book models.BookContext) (*models.Enrichment, error) {
	if err := g.record(); err != nil {
		return nil, err
	}
	return g.enrichment, nil
}

type fixture struct {
	svc   *catalog.Service
	store *memstore.Store
	gen   *fakeGenerator
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: memstore.New(),
		gen:   &fakeGenerator{},
		clock: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	f.svc = catalog.New(f.store, f.gen)
	// Every call advances the clock so creation order is visible in timestamps.
	f.svc.Now = func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}
	_, err := f.svc.EnsureMoods(context.Background())
	require.NoError(t, err)
	return f
}

func (f *fixture) addBook(t *testing.T, title string, categories ...string) primitive.ObjectID {
	t.Helper()
	view, err := f.svc.CreateBook(context.Background(), catalog.BookInput{
		Title:        title,
		Availability: models.FormatEBook,
		Categories:   categories,
	}, primitive.NewObjectID())
	require.NoError(t, err)
	return view.ID
}
