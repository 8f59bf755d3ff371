package catalog

import (
	"context"
	"fmt"

	"github.com/kevinaaaquil/digitallibrary/logging"
	"github.com/kevinaaaquil/digitallibrary/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookInput is the editable part of a book plus the label names to link.
type BookInput struct {
	Title           string
	Author          string
	PublicationDate string
	Publisher       string
	Summary         string
	CoverImage      string
	Availability    string
	Categories      []string
	Tags            []string
}

func (in BookInput) toBook() (*models.Book, error) {
	if in.Title == "" || in.Availability == "" {
		return nil, validationError("title and availability are required")
	}
	availability, err := models.NormalizeAvailability(in.Availability)
	if err != nil {
		return nil, validationError("%v", err)
	}
	return &models.Book{
		Title:           in.Title,
		Author:          in.Author,
		PublicationDate: in.PublicationDate,
		Publisher:       in.Publisher,
		Summary:         in.Summary,
		CoverImage:      in.CoverImage,
		Availability:    availability,
	}, nil
}

// Books returns every book, newest first.
func (s *Service) Books(ctx context.Context) ([]models.BookView, error) {
	books, err := s.Store.FindBooks(ctx, models.BookFilter{})
	if err != nil {
		return nil, err
	}
	return s.projectAll(ctx, books)
}

func (s *Service) Book(ctx context.Context, id primitive.ObjectID) (*models.BookView, error) {
	book, err := s.Store.BookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, fmt.Errorf("book %s: %w", id.Hex(), ErrNotFound)
	}
	view, err := s.project(ctx, *book)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// CreateBook inserts a book and links its categories and tags.
func (s *Service) CreateBook(ctx context.Context, in BookInput, addedBy primitive.ObjectID) (*models.BookView, error) {
	book, err := in.toBook()
	if err != nil {
		return nil, err
	}
	book.AddedBy = addedBy
	book.CreatedAt = s.now()
	id, err := s.Store.InsertBook(ctx, book)
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	book.ID = id
	s.attachLabels(ctx, models.KindCategory, id, in.Categories, false)
	s.attachLabels(ctx, models.KindTag, id, in.Tags, false)
	logging.Ctx(ctx).Info().Str("book", id.Hex()).Str("title", book.Title).Msg("book created")
	return s.Book(ctx, id)
}

// UpdateBook overwrites a book's fields. Non-empty category and tag lists replace the current
// associations wholesale; empty lists leave them as they are.
func (s *Service) UpdateBook(ctx context.Context, id primitive.ObjectID, in BookInput) (*models.BookView, error) {
	book, err := in.toBook()
	if err != nil {
		return nil, err
	}
	found, err := s.Store.UpdateBook(ctx, id, book)
	if err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("book %s: %w", id.Hex(), ErrNotFound)
	}
	s.replaceLabels(ctx, models.KindCategory, id, in.Categories)
	s.replaceLabels(ctx, models.KindTag, id, in.Tags)
	return s.Book(ctx, id)
}

// DeleteBook removes the book row. Its label associations, mood scores and chat threads stay.
func (s *Service) DeleteBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	book, err := s.Store.DeleteBook(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete book: %w", err)
	}
	if book == nil {
		return nil, fmt.Errorf("book %s: %w", id.Hex(), ErrNotFound)
	}
	logging.Ctx(ctx).Info().Str("book", id.Hex()).Msg("book deleted")
	return book, nil
}

// SetCover stores a cover reference on an existing book.
func (s *Service) SetCover(ctx context.Context, id primitive.ObjectID, cover string) error {
	book, err := s.Store.BookByID(ctx, id)
	if err != nil {
		return err
	}
	if book == nil {
		return fmt.Errorf("book %s: %w", id.Hex(), ErrNotFound)
	}
	return s.Store.UpdateBookCover(ctx, id, cover)
}

// AddedBook is the result of AddWithAI.
type AddedBook struct {
	Book models.BookView `json:"book"`
	Info models.BookInfo `json:"bookInfo"`
}

// AddWithAI creates a book from a title by asking the generator for its metadata.
func (s *Service) AddWithAI(ctx context.Context, title, availability string, addedBy primitive.ObjectID) (*AddedBook, error) {
	if _, err := (BookInput{Title: title, Availability: availability}).toBook(); err != nil {
		return nil, err
	}
	info, err := s.Generator.BookInfo(ctx, title)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Str("title", title).Msg("book info generation failed")
		return nil, fmt.Errorf("%w: book info: %v", ErrGeneration, err)
	}
	in := BookInput{
		Title:           title,
		Author:          info.Author,
		PublicationDate: info.PublicationDate,
		Publisher:       info.Publisher,
		Summary:         info.Summary,
		Availability:    availability,
		Categories:      info.Categories,
		Tags:            info.Tags,
	}
	if info.Title != "" {
		in.Title = info.Title
	}
	if s.Covers != nil {
		cover, err := s.Covers.FindCover(ctx, in.Title, in.Author)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("title", in.Title).Msg("cover lookup failed")
		}
		in.CoverImage = cover
	}
	view, err := s.CreateBook(ctx, in, addedBy)
	if err != nil {
		return nil, err
	}
	return &AddedBook{Book: *view, Info: *info}, nil
}
