// Package store persists the catalog in MongoDB.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/kevinaaaquil/digitallibrary/logging"
	"github.com/kevinaaaquil/digitallibrary/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	logging.Info().Str("database", dbName).Msg("connected to MongoDB")
	return &DB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *DB) Preferences() *mongo.Collection {
	return db.Database.Collection("user_preferences")
}

func (db *DB) Books() *mongo.Collection {
	return db.Database.Collection("books")
}

// Labels is the categories or tags collection.
func (db *DB) Labels(kind models.LabelKind) *mongo.Collection {
	if kind == models.KindTag {
		return db.Database.Collection("tags")
	}
	return db.Database.Collection("categories")
}

// Associations is the book_categories or book_tags join collection.
func (db *DB) Associations(kind models.LabelKind) *mongo.Collection {
	if kind == models.KindTag {
		return db.Database.Collection("book_tags")
	}
	return db.Database.Collection("book_categories")
}

func (db *DB) Moods() *mongo.Collection {
	return db.Database.Collection("moods")
}

func (db *DB) BookMoods() *mongo.Collection {
	return db.Database.Collection("book_moods")
}

func (db *DB) ChatThreads() *mongo.Collection {
	return db.Database.Collection("chat_history")
}

func (db *DB) Messages() *mongo.Collection {
	return db.Database.Collection("chat_messages")
}

// EnsureIndexes creates the unique name indexes and the lookup indexes. Join rows, book moods
// and chat threads get no unique constraint.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	specs := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{db.Labels(models.KindCategory), mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}},
		{db.Labels(models.KindTag), mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}},
		{db.Moods(), mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}},
		{db.Users(), mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		{db.Associations(models.KindCategory), mongo.IndexModel{Keys: bson.D{{Key: "book_id", Value: 1}, {Key: "label_id", Value: 1}}}},
		{db.Associations(models.KindTag), mongo.IndexModel{Keys: bson.D{{Key: "book_id", Value: 1}, {Key: "label_id", Value: 1}}}},
		{db.BookMoods(), mongo.IndexModel{Keys: bson.D{{Key: "mood_id", Value: 1}, {Key: "score", Value: -1}}}},
		{db.ChatThreads(), mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "book_id", Value: 1}}}},
		{db.Messages(), mongo.IndexModel{Keys: bson.D{{Key: "chat_id", Value: 1}, {Key: "timestamp", Value: 1}}}},
		{db.Books(), mongo.IndexModel{Keys: bson.D{{Key: "created_at", Value: -1}}}},
	}
	for _, s := range specs {
		if _, err := s.coll.Indexes().CreateOne(ctx, s.model); err != nil {
			return fmt.Errorf("index %s: %w", s.coll.Name(), err)
		}
	}
	return nil
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}

// findOne decodes the first match into out and reports whether there was one.
func findOne(ctx context.Context, coll *mongo.Collection, filter any, out any, opts ...*options.FindOneOptions) (bool, error) {
	err := coll.FindOne(ctx, filter, opts...).Decode(out)
	if isNoDocuments(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// containsFold matches a case-insensitive substring.
func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
