package store

import (
	"context"
	"fmt"

	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) MoodByName(ctx context.Context, name string) (*models.Mood, error) {
	var m models.Mood
	ok, err := findOne(ctx, db.Moods(), bson.M{"name": name}, &m)
	if !ok || err != nil {
		return nil, err
	}
	return &m, nil
}

func (db *DB) InsertMood(ctx context.Context, mood *models.Mood) (primitive.ObjectID, error) {
	res, err := db.Moods().InsertOne(ctx, mood)
	if mongo.IsDuplicateKeyError(err) {
		return primitive.NilObjectID, fmt.Errorf("%w: mood %q", catalog.ErrDuplicate, mood.Name)
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) FindBookMood(ctx context.Context, bookID, moodID primitive.ObjectID) (*models.BookMood, error) {
	var bm models.BookMood
	ok, err := findOne(ctx, db.BookMoods(), bson.M{"book_id": bookID, "mood_id": moodID}, &bm)
	if !ok || err != nil {
		return nil, err
	}
	return &bm, nil
}

func (db *DB) InsertBookMood(ctx context.Context, bm *models.BookMood) (primitive.ObjectID, error) {
	res, err := db.BookMoods().InsertOne(ctx, bm)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) UpdateBookMoodScore(ctx context.Context, id primitive.ObjectID, score float64) error {
	_, err := db.BookMoods().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"score": score}})
	return err
}

// TopBookMoods returns the highest-scored rows for a mood.
func (db *DB) TopBookMoods(ctx context.Context, moodID primitive.ObjectID, limit int) ([]models.BookMood, error) {
	opts := options.Find().SetSort(bson.D{{Key: "score", Value: -1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := db.BookMoods().Find(ctx, bson.M{"mood_id": moodID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []models.BookMood
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
