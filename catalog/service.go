// Package catalog implements the library workflows: book CRUD with category and tag
// reconciliation, search, AI-assisted add and training, mood recommendations and per-book chat.
//
// Every workflow is a plain sequence of store and generator calls. Nothing is wrapped in a
// transaction, so concurrent requests on the same labels, (book, mood) pairs or
// (user, book) threads may create duplicate rows or lose an update.
package catalog

import (
	"context"
	"time"

	"github.com/kevinaaaquil/digitallibrary/models"
)

// CoverFinder looks up a cover image URL for a title. An empty URL means none was found.
type CoverFinder interface {
	FindCover(ctx context.Context, title, author string) (string, error)
}

type Service struct {
	Store     Store
	Generator Generator
	// Covers is optional; add-with-AI leaves cover_image empty without it.
	Covers CoverFinder
	// Now defaults to time.Now.
	Now func() time.Time
}

func New(store Store, gen Generator) *Service {
	return &Service{Store: store, Generator: gen}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// project flattens a book and its label names into the response shape.
func (s *Service) project(ctx context.Context, book models.Book) (models.BookView, error) {
	categories, err := s.Store.LabelNames(ctx, models.KindCategory, book.ID)
	if err != nil {
		return models.BookView{}, err
	}
	tags, err := s.Store.LabelNames(ctx, models.KindTag, book.ID)
	if err != nil {
		return models.BookView{}, err
	}
	if categories == nil {
		categories = []string{}
	}
	if tags == nil {
		tags = []string{}
	}
	return models.BookView{Book: book, Categories: categories, Tags: tags}, nil
}

func (s *Service) projectAll(ctx context.Context, books []models.Book) ([]models.BookView, error) {
	views := make([]models.BookView, 0, len(books))
	for _, b := range books {
		v, err := s.project(ctx, b)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func bookContext(view models.BookView) models.BookContext {
	orUnknown := func(s string) string {
		if s == "" {
			return "Unknown"
		}
		return s
	}
	summary := view.Summary
	if summary == "" {
		summary = NoSummary
	}
	return models.BookContext{
		Title:           view.Title,
		Author:          orUnknown(view.Author),
		PublicationDate: orUnknown(view.PublicationDate),
		Publisher:       orUnknown(view.Publisher),
		Availability:    view.Availability,
		Summary:         summary,
		Categories:      view.Categories,
		Tags:            view.Tags,
	}
}

// NoSummary is the placeholder shown to the generator for books without a summary.
const NoSummary = "No summary available"
