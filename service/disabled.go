package service

import (
	"context"
	"errors"

	"github.com/kevinaaaquil/digitallibrary/models"
)

// ErrGeneratorDisabled is returned by every DisabledGenerator call.
var ErrGeneratorDisabled = errors.New("text generation is not configured")

// DisabledGenerator stands in when no OpenAI key is configured. Stored mood scores, plain
// search and the chat apology still work; everything that needs generated text fails.
type DisabledGenerator struct{}

func (DisabledGenerator) BookInfo(context.Context, string) (*models.BookInfo, error) {
	return nil, ErrGeneratorDisabled
}

func (DisabledGenerator) SearchParams(context.Context, string) (*models.SearchParams, error) {
	return nil, ErrGeneratorDisabled
}

func (DisabledGenerator) Chat(context.Context, models.BookContext, string, []models.ChatMessage) (string, error) {
	return "", ErrGeneratorDisabled
}

func (DisabledGenerator) Recommend(context.Context, string, *models.Preferences) ([]models.Suggestion, error) {
	return nil, ErrGeneratorDisabled
}

func (DisabledGenerator) Enrich(context.Context, models.BookContext) (*models.Enrichment, error) {
	return nil, ErrGeneratorDisabled
}
