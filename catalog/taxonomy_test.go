package catalog_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/logging"
	"github.com/kevinaaaquil/digitallibrary/metrics"
	"github.com/kevinaaaquil/digitallibrary/models"
	"github.com/kevinaaaquil/digitallibrary/store/memstore"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestResolveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Resolve(ctx, models.KindCategory, "Fiction")
	require.NoError(t, err)
	second, err := f.svc.Resolve(ctx, models.KindCategory, "Fiction")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.store.LabelCount(models.KindCategory))
}

func TestResolveDoesNotNormalize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Fiction", "fiction", " Fiction"} {
		_, err := f.svc.Resolve(ctx, models.KindTag, name)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, f.store.LabelCount(models.KindTag))
}

func TestResolveRejectsEmptyName(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Resolve(context.Background(), models.KindCategory, "")
	assert.ErrorIs(t, err, catalog.ErrValidation)
}

func TestUpdateReplacesCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addBook(t, "The Hobbit")
	require.Empty(t, f.store.Associations(models.KindCategory, id))

	update := func(categories ...string) *models.BookView {
		view, err := f.svc.UpdateBook(ctx, id, catalog.BookInput{
			Title:        "The Hobbit",
			Availability: models.FormatPhysical,
			Categories:   categories,
		})
		require.NoError(t, err)
		return view
	}

	view := update("Fiction", "Fantasy")
	assert.Len(t, f.store.Associations(models.KindCategory, id), 2)
	assert.Equal(t, []string{"Fiction", "Fantasy"}, view.Categories)

	view = update("Fiction")
	assert.Len(t, f.store.Associations(models.KindCategory, id), 1)
	assert.Equal(t, []string{"Fiction"}, view.Categories)
	assert.Equal(t, 2, f.store.LabelCount(models.KindCategory), "labels are never deleted")
}

func TestUpdateWithoutLabelsKeepsLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addBook(t, "Emma", "Romance")

	view, err := f.svc.UpdateBook(ctx, id, catalog.BookInput{Title: "Emma", Availability: models.FormatAudio})
	require.NoError(t, err)
	assert.Equal(t, []string{"Romance"}, view.Categories)
	assert.Equal(t, models.FormatAudio, view.Availability)
}

func TestCreateSkipsLabelsThatCannotBeLinked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.CreateBook(ctx, catalog.BookInput{
		Title:        "Dune",
		Availability: models.FormatEBook,
		Categories:   []string{"Science Fiction", "", "Classic"},
	}, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, []string{"Science Fiction", "Classic"}, view.Categories)
}

func TestFailedUpdateLeavesLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addBook(t, "Emma", "Romance")

	f.store.FailWrites(errors.New("disk full"))
	_, err := f.svc.UpdateBook(ctx, id, catalog.BookInput{Title: "Emma", Availability: "EBook", Categories: []string{"Classic"}})
	require.Error(t, err)
	f.store.FailWrites(nil)

	assert.Len(t, f.store.Associations(models.KindCategory, id), 1)
}

// staleLookupStore misses every label lookup, as a writer does when another request creates the
// label between its lookup and its insert.
type staleLookupStore struct {
	*memstore.Store
}

func (staleLookupStore) FindLabel(context.Context, models.LabelKind, string) (*models.Label, error) {
	return nil, nil
}

func TestResolveLosingRaceIsSkipped(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "info", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.Config{}) })

	ctx := context.Background()
	mem := memstore.New()
	_, err := mem.InsertLabel(ctx, models.KindCategory, "Fiction")
	require.NoError(t, err)
	svc := catalog.New(staleLookupStore{mem}, &fakeGenerator{})

	_, err = svc.Resolve(ctx, models.KindCategory, "Fiction")
	assert.ErrorIs(t, err, catalog.ErrDuplicate)

	skips := testutil.ToFloat64(metrics.LabelSkips.WithLabelValues(string(models.KindCategory)))
	view, err := svc.CreateBook(ctx, catalog.BookInput{
		Title:        "Dune",
		Availability: models.FormatEBook,
		Categories:   []string{"Fiction", "Space Opera"},
	}, primitive.NewObjectID())
	require.NoError(t, err)

	assert.Equal(t, []string{"Space Opera"}, view.Categories)
	assert.Equal(t, 2, mem.LabelCount(models.KindCategory), "only Space Opera was added")
	assert.Equal(t, skips+1, testutil.ToFloat64(metrics.LabelSkips.WithLabelValues(string(models.KindCategory))))

	var line map[string]any
	for _, raw := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(raw, &entry))
		if entry["message"] == "label skipped" {
			line = entry
		}
	}
	require.NotNil(t, line, buf.String())
	assert.Equal(t, "Fiction", line["label"])
	assert.Equal(t, "error", line["level"])
}
