package catalog

import (
	"context"
	"errors"

	"github.com/kevinaaaquil/digitallibrary/logging"
	"github.com/kevinaaaquil/digitallibrary/models"
)

// SearchQuery is a catalog search request.
type SearchQuery struct {
	Query string
	// NLP asks the generator to turn Query into structured filters first.
	NLP          bool
	Availability []string
	Categories   []string
}

// Search finds books matching q. A natural-language query that cannot be turned into filters
// falls back to a plain title-or-author match. One that yields no filters matches every book.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]models.BookView, error) {
	filter := models.BookFilter{
		Availability: q.Availability,
		Categories:   q.Categories,
	}
	if q.Query != "" {
		if q.NLP {
			if !s.applySearchParams(ctx, q.Query, &filter) {
				filter.Text = q.Query
			}
		} else {
			filter.Text = q.Query
		}
	}
	books, err := s.Store.FindBooks(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.projectAll(ctx, books)
}

// applySearchParams copies the extracted filters into filter. It reports false when extraction
// failed; an extraction with every field empty still counts and leaves filter unchanged.
func (s *Service) applySearchParams(ctx context.Context, query string, filter *models.BookFilter) bool {
	params, err := s.Generator.SearchParams(ctx, query)
	if err == nil && params == nil {
		err = errors.New("no search parameters returned")
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("query", query).Msg("nlp search extraction failed, using text search")
		return false
	}
	filter.Title = params.Title
	filter.Author = params.Author
	if len(params.Genres) > 0 {
		filter.Category = params.Genres[0]
	}
	if len(params.Themes) > 0 {
		filter.Tag = params.Themes[0]
	}
	if filter.Title == "" && filter.Author == "" && filter.Category == "" && filter.Tag == "" {
		logging.Ctx(ctx).Debug().Str("query", query).Msg("nlp search extracted no filters")
	}
	return true
}
