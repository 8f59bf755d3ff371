package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role constants for user authorization.
const (
	RoleAdmin     = "admin"
	RoleLibrarian = "librarian"
	RoleReader    = "reader"
)

var ValidRoles = []string{RoleAdmin, RoleLibrarian, RoleReader}

func RoleValid(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// CanEditCatalog reports whether role may add, update, delete or train books.
func CanEditCatalog(role string) bool {
	return role == RoleLibrarian || role == RoleAdmin
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash
	Role      string             `bson:"role" json:"role"`
	FullName  string             `bson:"full_name,omitempty" json:"full_name,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Preferences are optional hints passed to the recommendation generator.
type Preferences struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID              primitive.ObjectID `bson:"user_id" json:"-"`
	PreferredCategories []string           `bson:"preferred_categories" json:"preferred_categories"`
	PreferredAuthors    []string           `bson:"preferred_authors" json:"preferred_authors"`
}
