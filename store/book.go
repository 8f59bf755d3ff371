package store

import (
	"context"

	"github.com/kevinaaaquil/digitallibrary/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	res, err := db.Books().InsertOne(ctx, book, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// FindBooks returns books matching filter, newest first.
func (db *DB) FindBooks(ctx context.Context, filter models.BookFilter) ([]models.Book, error) {
	query, err := db.bookQuery(ctx, filter)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := db.Books().Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	books := []models.Book{}
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (db *DB) bookQuery(ctx context.Context, f models.BookFilter) (bson.M, error) {
	var and []bson.M
	if f.Text != "" {
		and = append(and, bson.M{"$or": []bson.M{
			{"title": containsFold(f.Text)},
			{"author": containsFold(f.Text)},
		}})
	}
	if f.Title != "" {
		and = append(and, bson.M{"title": containsFold(f.Title)})
	}
	if f.Author != "" {
		and = append(and, bson.M{"author": containsFold(f.Author)})
	}
	if len(f.Availability) > 0 {
		or := make([]bson.M, 0, len(f.Availability))
		for _, a := range f.Availability {
			or = append(or, bson.M{"availability": containsFold(a)})
		}
		and = append(and, bson.M{"$or": or})
	}
	labelFilters := []struct {
		kind  models.LabelKind
		names []string
	}{
		{models.KindCategory, f.Categories},
		{models.KindCategory, nonEmpty(f.Category)},
		{models.KindTag, nonEmpty(f.Tag)},
	}
	for _, lf := range labelFilters {
		if len(lf.names) == 0 {
			continue
		}
		ids, err := db.bookIDsWithLabels(ctx, lf.kind, lf.names)
		if err != nil {
			return nil, err
		}
		and = append(and, bson.M{"_id": bson.M{"$in": ids}})
	}
	if len(and) == 0 {
		return bson.M{}, nil
	}
	return bson.M{"$and": and}, nil
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

func (db *DB) BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	ok, err := findOne(ctx, db.Books(), bson.M{"_id": id}, &book)
	if !ok || err != nil {
		return nil, err
	}
	return &book, nil
}

func (db *DB) BookByExactTitle(ctx context.Context, title string) (*models.Book, error) {
	var book models.Book
	ok, err := findOne(ctx, db.Books(), bson.M{"title": title}, &book)
	if !ok || err != nil {
		return nil, err
	}
	return &book, nil
}

// BookByTitleLike returns the oldest book whose title contains fragment, ignoring case.
func (db *DB) BookByTitleLike(ctx context.Context, fragment string) (*models.Book, error) {
	var book models.Book
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	ok, err := findOne(ctx, db.Books(), bson.M{"title": containsFold(fragment)}, &book, opts)
	if !ok || err != nil {
		return nil, err
	}
	return &book, nil
}

// DeleteBook removes a book by ID and returns it. Join rows, scores and chats are not touched.
func (db *DB) DeleteBook(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := db.Books().FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&book)
	if err != nil {
		if isNoDocuments(err) {
			return nil, nil
		}
		return nil, err
	}
	return &book, nil
}

// UpdateBook overwrites a book's editable fields by ID.
func (db *DB) UpdateBook(ctx context.Context, id primitive.ObjectID, book *models.Book) (bool, error) {
	update := bson.M{
		"title":            book.Title,
		"author":           book.Author,
		"publication_date": book.PublicationDate,
		"publisher":        book.Publisher,
		"summary":          book.Summary,
		"cover_image":      book.CoverImage,
		"availability":     book.Availability,
	}
	res, err := db.Books().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (db *DB) UpdateBookSummary(ctx context.Context, id primitive.ObjectID, summary string) error {
	_, err := db.Books().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"summary": summary}})
	return err
}

func (db *DB) UpdateBookCover(ctx context.Context, id primitive.ObjectID, cover string) error {
	_, err := db.Books().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"cover_image": cover}})
	return err
}
