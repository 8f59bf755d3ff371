package store

import (
	"context"

	"github.com/kevinaaaquil/digitallibrary/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	ok, err := findOne(ctx, db.Users(), bson.M{"email": email}, &u)
	if !ok || err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	res, err := db.Users().InsertOne(ctx, user, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	ok, err := findOne(ctx, db.Users(), bson.M{"_id": id}, &u)
	if !ok || err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := db.Users().Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserRole sets a user's role and reports whether the user exists.
func (db *DB) UpdateUserRole(ctx context.Context, id primitive.ObjectID, role string) (bool, error) {
	res, err := db.Users().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (db *DB) PreferencesByUser(ctx context.Context, userID primitive.ObjectID) (*models.Preferences, error) {
	var p models.Preferences
	ok, err := findOne(ctx, db.Preferences(), bson.M{"user_id": userID}, &p)
	if !ok || err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *DB) UpsertPreferences(ctx context.Context, prefs *models.Preferences) error {
	update := bson.M{"$set": bson.M{
		"preferred_categories": prefs.PreferredCategories,
		"preferred_authors":    prefs.PreferredAuthors,
	}}
	_, err := db.Preferences().UpdateOne(ctx, bson.M{"user_id": prefs.UserID}, update, options.Update().SetUpsert(true))
	return err
}
