package catalog_test

import (
	"context"
	"testing"

	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUpsertMoodScoreUpdatesInPlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.addBook(t, "Emma")

	require.NoError(t, f.svc.UpsertMoodScore(ctx, book, models.MoodHappy, 7))
	require.NoError(t, f.svc.UpsertMoodScore(ctx, book, models.MoodHappy, 9))

	rows := f.store.BookMoods(book)
	require.Len(t, rows, 1)
	assert.Equal(t, 9.0, rows[0].Score)
}

func TestUpsertMoodScoreIgnoresUnknownMood(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(t, "Emma")

	require.NoError(t, f.svc.UpsertMoodScore(context.Background(), book, "sleepy", 5))
	assert.Empty(t, f.store.BookMoods(book))
}

func TestUpsertMoodScoreStoresOutOfRange(t *testing.T) {
	f := newFixture(t)
	book := f.addBook(t, "Emma")

	require.NoError(t, f.svc.UpsertMoodScore(context.Background(), book, models.MoodCalm, 42))
	rows := f.store.BookMoods(book)
	require.Len(t, rows, 1)
	assert.Equal(t, 42.0, rows[0].Score)
}

func TestRecommendRejectsUnknownMood(t *testing.T) {
	f := newFixture(t)
	for _, mood := range []string{"", "Happy", "angry", "happy "} {
		_, err := f.svc.Recommend(context.Background(), mood, nil)
		assert.ErrorIs(t, err, catalog.ErrInvalidMood, mood)
	}
	assert.Zero(t, f.gen.calls)
}

func TestRecommendPrefersStoredScores(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	low := f.addBook(t, "Emma", "Romance")
	high := f.addBook(t, "Dune", "Science Fiction")
	require.NoError(t, f.svc.UpsertMoodScore(ctx, low, models.MoodCurious, 3))
	require.NoError(t, f.svc.UpsertMoodScore(ctx, high, models.MoodCurious, 8))
	f.gen.suggestions = []models.Suggestion{{Title: "Emma", Reason: "unused"}}

	recs, err := f.svc.Recommend(ctx, models.MoodCurious, nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, high, recs[0].ID)
	assert.Equal(t, []string{"Science Fiction"}, recs[0].Categories)
	require.NotNil(t, recs[0].Score)
	assert.Equal(t, 8.0, *recs[0].Score)
	assert.Equal(t, low, recs[1].ID)
	assert.Zero(t, f.gen.calls)
}

func TestRecommendCapsStoredResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		book := f.addBook(t, string(rune('A'+i)))
		require.NoError(t, f.svc.UpsertMoodScore(ctx, book, models.MoodTired, float64(i)))
	}

	recs, err := f.svc.Recommend(ctx, models.MoodTired, nil)
	require.NoError(t, err)
	require.Len(t, recs, 10)
	assert.Equal(t, 11.0, *recs[0].Score)
}

func TestRecommendSkipsScoresOfDeletedBooks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	kept := f.addBook(t, "Emma")
	gone := f.addBook(t, "Dune")
	require.NoError(t, f.svc.UpsertMoodScore(ctx, kept, models.MoodCalm, 5))
	require.NoError(t, f.svc.UpsertMoodScore(ctx, gone, models.MoodCalm, 9))
	_, err := f.svc.DeleteBook(ctx, gone)
	require.NoError(t, err)

	recs, err := f.svc.Recommend(ctx, models.MoodCalm, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, kept, recs[0].ID)
}

func TestRecommendFallsBackToGenerator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	emma := f.addBook(t, "Emma")
	dune := f.addBook(t, "Dune Messiah")
	f.gen.suggestions = []models.Suggestion{
		{Title: "emma", Reason: "gentle comedy of manners"},
		{Title: "The Road", Reason: "not in the catalogue"},
		{Title: "DUNE", Reason: "sweeping escape"},
	}
	prefs := &models.Preferences{UserID: primitive.NewObjectID(), PreferredAuthors: []string{"Jane Austen"}}

	recs, err := f.svc.Recommend(ctx, models.MoodStressed, prefs)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, emma, recs[0].ID)
	assert.Equal(t, "gentle comedy of manners", recs[0].Reason)
	assert.Nil(t, recs[0].Score)
	assert.Equal(t, dune, recs[1].ID)
	assert.Equal(t, "sweeping escape", recs[1].Reason)
	assert.Same(t, prefs, f.gen.prefs)

	books, err := f.svc.Books(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 2, "recommendations never create books")
}

func TestRecommendFailsWhenGeneratorFails(t *testing.T) {
	f := newFixture(t)
	f.gen.err = errGenerator

	_, err := f.svc.Recommend(context.Background(), models.MoodDown, nil)
	assert.ErrorIs(t, err, catalog.ErrGeneration)
}

func TestRecommendReturnsEmptyWhenNothingMatches(t *testing.T) {
	f := newFixture(t)
	f.gen.suggestions = []models.Suggestion{{Title: "Unknown Book", Reason: "x"}}

	recs, err := f.svc.Recommend(context.Background(), models.MoodHappy, nil)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}
