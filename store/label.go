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

func (db *DB) FindLabel(ctx context.Context, kind models.LabelKind, name string) (*models.Label, error) {
	var l models.Label
	ok, err := findOne(ctx, db.Labels(kind), bson.M{"name": name}, &l)
	if !ok || err != nil {
		return nil, err
	}
	return &l, nil
}

func (db *DB) InsertLabel(ctx context.Context, kind models.LabelKind, name string) (*models.Label, error) {
	l := models.Label{Name: name}
	res, err := db.Labels(kind).InsertOne(ctx, l)
	if mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("%w: %s %q", catalog.ErrDuplicate, kind, name)
	}
	if err != nil {
		return nil, err
	}
	l.ID = res.InsertedID.(primitive.ObjectID)
	return &l, nil
}

func (db *DB) FindAssociation(ctx context.Context, kind models.LabelKind, bookID, labelID primitive.ObjectID) (*models.Association, error) {
	var a models.Association
	ok, err := findOne(ctx, db.Associations(kind), bson.M{"book_id": bookID, "label_id": labelID}, &a)
	if !ok || err != nil {
		return nil, err
	}
	return &a, nil
}

func (db *DB) InsertAssociation(ctx context.Context, kind models.LabelKind, bookID, labelID primitive.ObjectID) error {
	_, err := db.Associations(kind).InsertOne(ctx, models.Association{BookID: bookID, LabelID: labelID})
	return err
}

func (db *DB) DeleteAssociations(ctx context.Context, kind models.LabelKind, bookID primitive.ObjectID) error {
	_, err := db.Associations(kind).DeleteMany(ctx, bson.M{"book_id": bookID})
	return err
}

// LabelNames joins a book's association rows to their labels, in insertion order.
func (db *DB) LabelNames(ctx context.Context, kind models.LabelKind, bookID primitive.ObjectID) ([]string, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"book_id": bookID}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         db.Labels(kind).Name(),
			"localField":   "label_id",
			"foreignField": "_id",
			"as":           "label",
		}}},
		{{Key: "$unwind", Value: "$label"}},
		{{Key: "$project", Value: bson.M{"_id": 0, "name": "$label.name"}}},
	}
	cur, err := db.Associations(kind).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var rows []struct {
		Name string `bson:"name"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Name)
	}
	return names, nil
}

// bookIDsWithLabels returns the ids of books linked to any of the named labels.
func (db *DB) bookIDsWithLabels(ctx context.Context, kind models.LabelKind, names []string) ([]primitive.ObjectID, error) {
	cur, err := db.Labels(kind).Find(ctx, bson.M{"name": bson.M{"$in": names}}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var labels []models.Label
	if err := cur.All(ctx, &labels); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(labels))
	for _, l := range labels {
		ids = append(ids, l.ID)
	}
	raw, err := db.Associations(kind).Distinct(ctx, "book_id", bson.M{"label_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	bookIDs := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			bookIDs = append(bookIDs, id)
		}
	}
	return bookIDs, nil
}
