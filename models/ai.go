package models

import (
	"strings"

	json "github.com/goccy/go-json"
)

// StringList decodes either a JSON array of strings or a single string.
// Generated output is not always consistent about which one it sends.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if strings.TrimSpace(one) == "" {
		*l = nil
		return nil
	}
	*l = StringList{one}
	return nil
}

// BookInfo is what the generator knows about a title.
type BookInfo struct {
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	PublicationDate string     `json:"publication_date"`
	Publisher       string     `json:"publisher"`
	Summary         string     `json:"summary"`
	Categories      StringList `json:"categories"`
	Tags            StringList `json:"tags"`
}

// SearchParams are filters extracted from a natural-language query.
type SearchParams struct {
	Title    string     `json:"title"`
	Author   string     `json:"author"`
	Genres   StringList `json:"genres"`
	Themes   StringList `json:"themes"`
	Keywords StringList `json:"keywords"`
}

// Suggestion is one generated mood recommendation.
type Suggestion struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Reason string `json:"reason"`
}

// Enrichment is generated metadata used to train search, recommendations and chat.
// MoodMatches values are whatever the generator sent; numbers decode as float64.
type Enrichment struct {
	EnhancedSummary string         `json:"enhanced_summary"`
	Themes          StringList     `json:"themes"`
	Keywords        StringList     `json:"keywords"`
	MoodMatches     map[string]any `json:"mood_matches"`
	SimilarBooks    StringList     `json:"similar_books"`
	ReadingLevel    string         `json:"reading_level"`
	ContentWarnings StringList     `json:"content_warnings"`
}

// BookContext is the book description handed to the generator for chat and training.
type BookContext struct {
	Title           string
	Author          string
	PublicationDate string
	Publisher       string
	Availability    string
	Summary         string
	Categories      []string
	Tags            []string
}
