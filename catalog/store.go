package catalog

import (
	"context"

	"github.com/kevinaaaquil/digitallibrary/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lookups return (nil, nil) when the row is absent; an error always means the store failed.

type LabelStore interface {
	FindLabel(ctx context.Context, kind models.LabelKind, name string) (*models.Label, error)
	// InsertLabel fails with ErrDuplicate when the name is taken.
	InsertLabel(ctx context.Context, kind models.LabelKind, name string) (*models.Label, error)
	FindAssociation(ctx context.Context, kind models.LabelKind, bookID, labelID primitive.ObjectID) (*models.Association, error)
	// InsertAssociation does not check for an existing row for the same pair.
	InsertAssociation(ctx context.Context, kind models.LabelKind, bookID, labelID primitive.ObjectID) error
	DeleteAssociations(ctx context.Context, kind models.LabelKind, bookID primitive.ObjectID) error
	// LabelNames returns the names of the labels linked to a book, in link order.
	LabelNames(ctx context.Context, kind models.LabelKind, bookID primitive.ObjectID) ([]string, error)
}

type MoodStore interface {
	MoodByName(ctx context.Context, name string) (*models.Mood, error)
	// InsertMood fails with ErrDuplicate when the name is taken.
	InsertMood(ctx context.Context, mood *models.Mood) (primitive.ObjectID, error)
	FindBookMood(ctx context.Context, bookID, moodID primitive.ObjectID) (*models.BookMood, error)
	// InsertBookMood does not check for an existing row for the same pair.
	InsertBookMood(ctx context.Context, bm *models.BookMood) (primitive.ObjectID, error)
	UpdateBookMoodScore(ctx context.Context, id primitive.ObjectID, score float64) error
	// TopBookMoods returns rows for a mood ordered by score descending.
	TopBookMoods(ctx context.Context, moodID primitive.ObjectID, limit int) ([]models.BookMood, error)
}

type BookStore interface {
	InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error)
	// UpdateBook overwrites the editable fields. It returns false when no book matched.
	UpdateBook(ctx context.Context, id primitive.ObjectID, book *models.Book) (bool, error)
	UpdateBookSummary(ctx context.Context, id primitive.ObjectID, summary string) error
	UpdateBookCover(ctx context.Context, id primitive.ObjectID, cover string) error
	// DeleteBook removes only the book row and returns it.
	DeleteBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	BookByExactTitle(ctx context.Context, title string) (*models.Book, error)
	// BookByTitleLike returns the first book whose title contains fragment, ignoring case.
	BookByTitleLike(ctx context.Context, fragment string) (*models.Book, error)
	// FindBooks returns matching books, newest first.
	FindBooks(ctx context.Context, filter models.BookFilter) ([]models.Book, error)
}

type ChatStore interface {
	FindChatThread(ctx context.Context, userID, bookID primitive.ObjectID) (*models.ChatThread, error)
	InsertChatThread(ctx context.Context, thread *models.ChatThread) (primitive.ObjectID, error)
	InsertChatMessage(ctx context.Context, msg *models.ChatMessage) (primitive.ObjectID, error)
	// ChatMessages returns a thread's messages oldest first.
	ChatMessages(ctx context.Context, chatID primitive.ObjectID) ([]models.ChatMessage, error)
	// RecentChatMessages returns at most limit of the newest messages, oldest first.
	RecentChatMessages(ctx context.Context, chatID primitive.ObjectID, limit int) ([]models.ChatMessage, error)
}

type UserStore interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id primitive.ObjectID, role string) (bool, error)
	PreferencesByUser(ctx context.Context, userID primitive.ObjectID) (*models.Preferences, error)
	UpsertPreferences(ctx context.Context, prefs *models.Preferences) error
}

// Store is everything the catalog persists.
type Store interface {
	LabelStore
	MoodStore
	BookStore
	ChatStore
	UserStore
}
