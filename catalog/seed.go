package catalog

import (
	"context"
	"fmt"

	"github.com/kevinaaaquil/digitallibrary/logging"
	"github.com/kevinaaaquil/digitallibrary/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EnsureMoods inserts any of the six moods that are missing and returns how many were added.
func (s *Service) EnsureMoods(ctx context.Context) (int, error) {
	added := 0
	for _, name := range models.MoodNames {
		existing, err := s.Store.MoodByName(ctx, name)
		if err != nil {
			return added, fmt.Errorf("find mood %q: %w", name, err)
		}
		if existing != nil {
			continue
		}
		mood := &models.Mood{Name: name, Description: models.MoodDescriptions[name]}
		if _, err := s.Store.InsertMood(ctx, mood); err != nil {
			return added, fmt.Errorf("insert mood %q: %w", name, err)
		}
		added++
	}
	return added, nil
}

// EnsureAdmin creates the configured admin account if no user has that email yet.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("admin email and password are required")
	}
	existing, err := s.Store.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	user, err := s.createUser(ctx, email, password, "System Administrator", models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Str("email", email).Msg("admin user created")
	return user, nil
}

// SeedReport summarizes a SeedSamples run.
type SeedReport struct {
	Moods   int `json:"moods"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// SeedSamples loads the moods and the sample catalogue. Books are matched by exact title, so
// running it twice adds nothing the second time.
func (s *Service) SeedSamples(ctx context.Context, addedBy primitive.ObjectID) (*SeedReport, error) {
	moods, err := s.EnsureMoods(ctx)
	if err != nil {
		return nil, err
	}
	report := &SeedReport{Moods: moods}
	for _, sample := range SampleBooks {
		existing, err := s.Store.BookByExactTitle(ctx, sample.Title)
		if err != nil {
			return report, err
		}
		if existing != nil {
			report.Skipped++
			continue
		}
		if _, err := s.CreateBook(ctx, sample, addedBy); err != nil {
			return report, fmt.Errorf("seed %q: %w", sample.Title, err)
		}
		report.Created++
	}
	logging.Ctx(ctx).Info().Int("created", report.Created).Int("skipped", report.Skipped).Msg("sample catalogue seeded")
	return report, nil
}

// SampleBooks is the starter catalogue.
var SampleBooks = []BookInput{
	{
		Title:           "Frankenstein",
		Author:          "Mary Shelley",
		PublicationDate: "1818",
		Publisher:       "Lackington, Hughes, Harding, Mavor & Jones",
		Summary:         "A young scientist builds a living being from dead matter and abandons it, and both are ruined by what follows.",
		Availability:    "EBook,Physical,Audio",
		Categories:      []string{"Fiction", "Classic", "Horror"},
		Tags:            []string{"Science", "Creation", "Isolation"},
	},
	{
		Title:           "Pride and Prejudice",
		Author:          "Jane Austen",
		PublicationDate: "1813",
		Publisher:       "T. Egerton",
		Summary:         "Elizabeth Bennet and Fitzwilliam Darcy misjudge each other across a season of balls, visits and family embarrassments.",
		Availability:    "EBook,Physical,Audio",
		Categories:      []string{"Fiction", "Classic", "Romance"},
		Tags:            []string{"Marriage", "Social Class", "19th Century"},
	},
	{
		Title:           "The Adventures of Sherlock Holmes",
		Author:          "Arthur Conan Doyle",
		PublicationDate: "1892",
		Publisher:       "George Newnes",
		Summary:         "Twelve cases solved by a consulting detective in Baker Street, as recorded by his friend Dr. Watson.",
		Availability:    "EBook,Physical",
		Categories:      []string{"Fiction", "Mystery", "Classic"},
		Tags:            []string{"Detective", "London", "Short Stories"},
	},
	{
		Title:           "Meditations",
		Author:          "Marcus Aurelius",
		PublicationDate: "180",
		Summary:         "Private notes of a Roman emperor on duty, loss and keeping a steady mind.",
		Availability:    "EBook,Audio",
		Categories:      []string{"Philosophy", "Non-Fiction"},
		Tags:            []string{"Stoicism", "Mindfulness", "Self-Reflection"},
	},
	{
		Title:           "The Time Machine",
		Author:          "H. G. Wells",
		PublicationDate: "1895",
		Publisher:       "William Heinemann",
		Summary:         "A Victorian inventor travels to the year 802,701 and finds humanity split into two species.",
		Availability:    "EBook,Physical",
		Categories:      []string{"Fiction", "Science Fiction", "Classic"},
		Tags:            []string{"Time Travel", "Future", "Society"},
	},
	{
		Title:           "The Wind in the Willows",
		Author:          "Kenneth Grahame",
		PublicationDate: "1908",
		Publisher:       "Methuen",
		Summary:         "Mole, Rat, Badger and the reckless Toad drift through river-bank seasons and one disastrous motor-car craze.",
		Availability:    "Physical,Audio",
		Categories:      []string{"Fiction", "Children", "Classic"},
		Tags:            []string{"Friendship", "Nature", "Animals"},
	},
	{
		Title:           "On the Origin of Species",
		Author:          "Charles Darwin",
		PublicationDate: "1859",
		Publisher:       "John Murray",
		Summary:         "The argument for evolution by natural selection, built from pigeons, barnacles and island finches.",
		Availability:    "EBook,Physical",
		Categories:      []string{"Science", "Non-Fiction", "Classic"},
		Tags:            []string{"Evolution", "Biology", "Natural History"},
	},
	{
		Title:           "Treasure Island",
		Author:          "Robert Louis Stevenson",
		PublicationDate: "1883",
		Publisher:       "Cassell and Company",
		Summary:         "Young Jim Hawkins sails for buried gold with a crew that includes the one-legged cook Long John Silver.",
		Availability:    "EBook,Physical,Audio",
		Categories:      []string{"Fiction", "Adventure", "Classic"},
		Tags:            []string{"Pirates", "Treasure", "Coming of Age"},
	},
}
