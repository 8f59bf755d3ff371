package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	MoodHappy    = "happy"
	MoodDown     = "down"
	MoodCalm     = "calm"
	MoodStressed = "stressed"
	MoodCurious  = "curious"
	MoodTired    = "tired"
)

var MoodNames = []string{MoodHappy, MoodDown, MoodCalm, MoodStressed, MoodCurious, MoodTired}

// MoodTraits describe what a reader in each mood is looking for; they are fed to the generator.
var MoodTraits = map[string]string{
	MoodHappy:    "uplifting, joyful, positive, inspiring, humorous",
	MoodDown:     "comforting, hopeful, empathetic, relatable, gentle",
	MoodCalm:     "peaceful, meditative, soothing, mindful, relaxing",
	MoodStressed: "escapist, engaging, distracting, absorbing, captivating",
	MoodCurious:  "informative, thought-provoking, educational, fascinating, mind-expanding",
	MoodTired:    "easy-to-read, light, entertaining, refreshing, rejuvenating",
}

// MoodDescriptions are the seeded descriptions of the mood rows.
var MoodDescriptions = map[string]string{
	MoodHappy:    "Books for when you are feeling joyful and positive",
	MoodDown:     "Books for when you are feeling sad or melancholic",
	MoodCalm:     "Books for when you want to relax and unwind",
	MoodStressed: "Books for when you are feeling anxious or overwhelmed",
	MoodCurious:  "Books for when you want to learn something new",
	MoodTired:    "Books for when you need a mental escape",
}

func IsMood(name string) bool {
	for _, m := range MoodNames {
		if m == name {
			return true
		}
	}
	return false
}

type Mood struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
}

// BookMood is a book's affinity score for one mood, nominally 0-10.
type BookMood struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookID primitive.ObjectID `bson:"book_id" json:"book_id"`
	MoodID primitive.ObjectID `bson:"mood_id" json:"mood_id"`
	Score  float64            `bson:"score" json:"score"`
}
