package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// LabelKind selects between the two taxonomies a book can be linked to.
type LabelKind string

const (
	KindCategory LabelKind = "category"
	KindTag      LabelKind = "tag"
)

// Label is a Category or a Tag: an id plus a name that is matched exactly.
type Label struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
}

// Association is a book-to-label join row.
type Association struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookID  primitive.ObjectID `bson:"book_id" json:"book_id"`
	LabelID primitive.ObjectID `bson:"label_id" json:"label_id"`
}
