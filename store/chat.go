package store

import (
	"context"

	"github.com/kevinaaaquil/digitallibrary/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) FindChatThread(ctx context.Context, userID, bookID primitive.ObjectID) (*models.ChatThread, error) {
	var t models.ChatThread
	ok, err := findOne(ctx, db.ChatThreads(), bson.M{"user_id": userID, "book_id": bookID}, &t)
	if !ok || err != nil {
		return nil, err
	}
	return &t, nil
}

func (db *DB) InsertChatThread(ctx context.Context, thread *models.ChatThread) (primitive.ObjectID, error) {
	res, err := db.ChatThreads().InsertOne(ctx, thread)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) InsertChatMessage(ctx context.Context, msg *models.ChatMessage) (primitive.ObjectID, error) {
	res, err := db.Messages().InsertOne(ctx, msg)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) ChatMessages(ctx context.Context, chatID primitive.ObjectID) ([]models.ChatMessage, error) {
	return db.chatMessages(ctx, chatID, 1, 0)
}

// RecentChatMessages reads the newest limit messages and returns them oldest first.
func (db *DB) RecentChatMessages(ctx context.Context, chatID primitive.ObjectID, limit int) ([]models.ChatMessage, error) {
	msgs, err := db.chatMessages(ctx, chatID, -1, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (db *DB) chatMessages(ctx context.Context, chatID primitive.ObjectID, order, limit int) ([]models.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: order}, {Key: "_id", Value: order}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := db.Messages().Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	msgs := []models.ChatMessage{}
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
