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

func seedSearchCatalog(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	inputs := []catalog.BookInput{
		{Title: "Emma", Author: "Jane Austen", Availability: "EBook,Physical", Categories: []string{"Romance"}, Tags: []string{"Matchmaking"}},
		{Title: "Dune", Author: "Frank Herbert", Availability: "Audio", Categories: []string{"Science Fiction"}, Tags: []string{"Desert"}},
		{Title: "Persuasion", Author: "Jane Austen", Availability: "Physical", Categories: []string{"Romance", "Classic"}, Tags: []string{"Second Chances"}},
	}
	for _, in := range inputs {
		_, err := f.svc.CreateBook(ctx, in, primitive.NewObjectID())
		require.NoError(t, err)
	}
}

func titles(views []models.BookView) []string {
	out := []string{}
	for _, v := range views {
		out = append(out, v.Title)
	}
	return out
}

func TestSearchPlain(t *testing.T) {
	f := newFixture(t)
	seedSearchCatalog(t, f)

	tests := []struct {
		name string
		q    catalog.SearchQuery
		want []string
	}{
		{"empty returns everything", catalog.SearchQuery{}, []string{"Persuasion", "Dune", "Emma"}},
		{"author", catalog.SearchQuery{Query: "austen"}, []string{"Persuasion", "Emma"}},
		{"title", catalog.SearchQuery{Query: "un"}, []string{"Dune"}},
		{"availability", catalog.SearchQuery{Availability: []string{"Audio", "EBook"}}, []string{"Dune", "Emma"}},
		{"categories", catalog.SearchQuery{Categories: []string{"Classic"}}, []string{"Persuasion"}},
		{"no match", catalog.SearchQuery{Query: "tolstoy"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := f.svc.Search(context.Background(), tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(views))
		})
	}
	assert.Zero(t, f.gen.calls)
}

func TestSearchNLPAppliesExtractedFilters(t *testing.T) {
	f := newFixture(t)
	seedSearchCatalog(t, f)
	f.gen.params = &models.SearchParams{
		Author: "Austen",
		Genres: models.StringList{"Romance", "Drama"},
		Themes: models.StringList{"Second Chances"},
	}

	views, err := f.svc.Search(context.Background(), catalog.SearchQuery{Query: "austen books about second chances", NLP: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Persuasion"}, titles(views))
	assert.Equal(t, []string{"Romance", "Classic"}, views[0].Categories)
}

func TestSearchNLPFallsBackToText(t *testing.T) {
	f := newFixture(t)
	seedSearchCatalog(t, f)

	f.gen.err = errGenerator
	views, err := f.svc.Search(context.Background(), catalog.SearchQuery{Query: "herbert", NLP: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, titles(views))

	f.gen.err = nil
	f.gen.params = nil
	views, err = f.svc.Search(context.Background(), catalog.SearchQuery{Query: "emma", NLP: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Emma"}, titles(views))
}

func TestSearchNLPWithoutExtractedFiltersMatchesAll(t *testing.T) {
	f := newFixture(t)
	seedSearchCatalog(t, f)
	f.gen.params = &models.SearchParams{}

	views, err := f.svc.Search(context.Background(), catalog.SearchQuery{Query: "something good to read", NLP: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Persuasion", "Dune", "Emma"}, titles(views))

	// Explicit filters still apply.
	views, err = f.svc.Search(context.Background(), catalog.SearchQuery{
		Query:        "something good to read",
		NLP:          true,
		Availability: []string{"Audio"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, titles(views))
}
