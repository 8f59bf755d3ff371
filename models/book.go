package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Book struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Author          string             `bson:"author,omitempty" json:"author,omitempty"`
	PublicationDate string             `bson:"publication_date,omitempty" json:"publication_date,omitempty"`
	Publisher       string             `bson:"publisher,omitempty" json:"publisher,omitempty"`
	Summary         string             `bson:"summary,omitempty" json:"summary,omitempty"`
	CoverImage      string             `bson:"cover_image,omitempty" json:"cover_image,omitempty"`
	Availability    string             `bson:"availability" json:"availability"`
	AddedBy         primitive.ObjectID `bson:"added_by,omitempty" json:"added_by,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// BookView is a book flattened together with the names of its categories and tags.
type BookView struct {
	Book
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
}

// Recommendation is a BookView annotated with either a stored mood score or a generated reason.
type Recommendation struct {
	BookView
	Score  *float64 `json:"score,omitempty"`
	Reason string   `json:"reason,omitempty"`
}

// BookFilter narrows FindBooks. Empty fields are ignored; all set fields must hold.
type BookFilter struct {
	// Text matches title OR author, case-insensitive substring.
	Text   string
	Title  string
	Author string
	// Availability matches when the availability string contains any of the values.
	Availability []string
	// Categories matches books linked to any of the named categories.
	Categories []string
	// Category and Tag each require membership of one named label.
	Category string
	Tag      string
}
