package catalog

import (
	"context"

	"github.com/kevinaaaquil/digitallibrary/models"
)

// Generator is the external text-generation collaborator.
type Generator interface {
	BookInfo(ctx context.Context, title string) (*models.BookInfo, error)
	SearchParams(ctx context.Context, query string) (*models.SearchParams, error)
	// Chat answers question about book; history holds earlier turns oldest first.
	Chat(ctx context.Context, book models.BookContext, question string, history []models.ChatMessage) (string, error)
	Recommend(ctx context.Context, mood string, prefs *models.Preferences) ([]models.Suggestion, error)
	Enrich(ctx context.Context, book models.BookContext) (*models.Enrichment, error)
}
