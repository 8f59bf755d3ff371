package catalog

import (
	"context"
	"fmt"

	"github.com/kevinaaaquil/digitallibrary/logging"
	"github.com/kevinaaaquil/digitallibrary/metrics"
	"github.com/kevinaaaquil/digitallibrary/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// recommendationLimit caps the stored-score path.
const recommendationLimit = 10

// UpsertMoodScore records a book's score for a mood, updating the existing (book, mood) row
// when there is one. A mood that is not stored is ignored. The score is not range-checked.
func (s *Service) UpsertMoodScore(ctx context.Context, bookID primitive.ObjectID, moodName string, score float64) error {
	mood, err := s.Store.MoodByName(ctx, moodName)
	if err != nil {
		return fmt.Errorf("find mood %q: %w", moodName, err)
	}
	if mood == nil {
		return nil
	}
	existing, err := s.Store.FindBookMood(ctx, bookID, mood.ID)
	if err != nil {
		return fmt.Errorf("find book mood: %w", err)
	}
	if existing != nil {
		return s.Store.UpdateBookMoodScore(ctx, existing.ID, score)
	}
	_, err = s.Store.InsertBookMood(ctx, &models.BookMood{BookID: bookID, MoodID: mood.ID, Score: score})
	return err
}

// Recommend lists books for a mood. Stored scores win; only when none exist is the generator
// asked, and its suggestions are kept only if they match a stored title.
func (s *Service) Recommend(ctx context.Context, mood string, prefs *models.Preferences) ([]models.Recommendation, error) {
	if !models.IsMood(mood) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMood, mood)
	}

	stored, err := s.storedRecommendations(ctx, mood)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("mood", mood).Msg("stored mood scores unavailable, using generator")
	}
	if len(stored) > 0 {
		metrics.Recommendations.WithLabelValues("stored").Inc()
		return stored, nil
	}

	suggestions, err := s.Generator.Recommend(ctx, mood, prefs)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("mood", mood).Msg("mood recommendation generation failed")
		return nil, fmt.Errorf("%w: mood recommendations: %v", ErrGeneration, err)
	}

	recs := []models.Recommendation{}
	for _, sug := range suggestions {
		if sug.Title == "" {
			continue
		}
		book, err := s.Store.BookByTitleLike(ctx, sug.Title)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("title", sug.Title).Msg("title lookup failed")
			continue
		}
		if book == nil {
			continue
		}
		view, err := s.project(ctx, *book)
		if err != nil {
			return nil, err
		}
		recs = append(recs, models.Recommendation{BookView: view, Reason: sug.Reason})
	}
	metrics.Recommendations.WithLabelValues("generated").Inc()
	return recs, nil
}

func (s *Service) storedRecommendations(ctx context.Context, moodName string) ([]models.Recommendation, error) {
	mood, err := s.Store.MoodByName(ctx, moodName)
	if err != nil || mood == nil {
		return nil, err
	}
	rows, err := s.Store.TopBookMoods(ctx, mood.ID, recommendationLimit)
	if err != nil {
		return nil, err
	}
	recs := make([]models.Recommendation, 0, len(rows))
	for _, row := range rows {
		book, err := s.Store.BookByID(ctx, row.BookID)
		if err != nil {
			return nil, err
		}
		// Deleting a book leaves its scores behind.
		if book == nil {
			continue
		}
		view, err := s.project(ctx, *book)
		if err != nil {
			return nil, err
		}
		score := row.Score
		recs = append(recs, models.Recommendation{BookView: view, Score: &score})
	}
	return recs, nil
}
