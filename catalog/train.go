package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kevinaaaquil/digitallibrary/logging"
	"github.com/kevinaaaquil/digitallibrary/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Train asks the generator to enrich a book and folds the result back into the catalog:
// the summary is filled in when missing, keywords are added as tags and mood matches are
// stored as scores. Individual write failures are logged, not returned.
func (s *Service) Train(ctx context.Context, bookID primitive.ObjectID) (*models.Enrichment, error) {
	view, err := s.Book(ctx, bookID)
	if err != nil {
		return nil, err
	}
	enrichment, err := s.Generator.Enrich(ctx, bookContext(*view))
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("book", bookID.Hex()).Msg("training generation failed")
		return nil, fmt.Errorf("%w: training: %v", ErrGeneration, err)
	}

	log := logging.Ctx(ctx).With().Str("book", bookID.Hex()).Logger()

	if enrichment.EnhancedSummary != "" && (view.Summary == "" || view.Summary == NoSummary) {
		if err := s.Store.UpdateBookSummary(ctx, bookID, enrichment.EnhancedSummary); err != nil {
			log.Error().Err(err).Msg("storing enhanced summary failed")
		}
	}

	s.mergeLabels(ctx, models.KindTag, bookID, enrichment.Keywords)

	moods := make([]string, 0, len(enrichment.MoodMatches))
	for name := range enrichment.MoodMatches {
		moods = append(moods, name)
	}
	sort.Strings(moods)
	for _, name := range moods {
		score, ok := toScore(enrichment.MoodMatches[name])
		if !ok {
			log.Warn().Str("mood", name).Interface("score", enrichment.MoodMatches[name]).Msg("non-numeric mood score skipped")
			continue
		}
		if err := s.UpsertMoodScore(ctx, bookID, name, score); err != nil {
			log.Error().Err(err).Str("mood", name).Msg("storing mood score failed")
		}
	}

	log.Info().Int("keywords", len(enrichment.Keywords)).Int("moods", len(moods)).Msg("book trained")
	return enrichment, nil
}

// toScore accepts JSON numbers and numeric strings.
func toScore(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
