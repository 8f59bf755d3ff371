// Package storetest is a behavioural suite shared by every catalog.Store implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Run exercises newStore against the lookup, ordering and filtering rules the catalog relies on.
// newStore must return an empty store each time it is called.
func Run(t *testing.T, newStore func(t *testing.T) catalog.Store) {
	t.Run("Labels", func(t *testing.T) { testLabels(t, newStore(t)) })
	t.Run("Associations", func(t *testing.T) { testAssociations(t, newStore(t)) })
	t.Run("BookMoods", func(t *testing.T) { testBookMoods(t, newStore(t)) })
	t.Run("Books", func(t *testing.T) { testBooks(t, newStore(t)) })
	t.Run("FindBooks", func(t *testing.T) { testFindBooks(t, newStore(t)) })
	t.Run("Chat", func(t *testing.T) { testChat(t, newStore(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("UniqueNames", func(t *testing.T) { testUniqueNames(t, newStore(t)) })
	t.Run("DuplicateRows", func(t *testing.T) { testDuplicateRows(t, newStore(t)) })
}

// base is millisecond-aligned so timestamps survive a BSON round trip unchanged.
var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func insertBook(t *testing.T, s catalog.Store, title, author, availability string, at time.Time) primitive.ObjectID {
	t.Helper()
	id, err := s.InsertBook(context.Background(), &models.Book{
		Title: title, Author: author, Availability: availability, CreatedAt: at,
	})
	require.NoError(t, err)
	return id
}

func link(t *testing.T, s catalog.Store, kind models.LabelKind, bookID primitive.ObjectID, name string) {
	t.Helper()
	ctx := context.Background()
	label, err := s.FindLabel(ctx, kind, name)
	require.NoError(t, err)
	if label == nil {
		label, err = s.InsertLabel(ctx, kind, name)
		require.NoError(t, err)
	}
	require.NoError(t, s.InsertAssociation(ctx, kind, bookID, label.ID))
}

func testLabels(t *testing.T, s catalog.Store) {
	ctx := context.Background()

	missing, err := s.FindLabel(ctx, models.KindCategory, "Fiction")
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := s.InsertLabel(ctx, models.KindCategory, "Fiction")
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())

	found, err := s.FindLabel(ctx, models.KindCategory, "Fiction")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	// Exact match only.
	folded, err := s.FindLabel(ctx, models.KindCategory, "fiction")
	require.NoError(t, err)
	assert.Nil(t, folded)

	// Categories and tags are separate namespaces.
	tag, err := s.FindLabel(ctx, models.KindTag, "Fiction")
	require.NoError(t, err)
	assert.Nil(t, tag)
}

func testAssociations(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	book := insertBook(t, s, "Dune", "Frank Herbert", "EBook", base)
	other := insertBook(t, s, "Emma", "Jane Austen", "EBook", base)

	link(t, s, models.KindCategory, book, "Science Fiction")
	link(t, s, models.KindCategory, book, "Classic")
	link(t, s, models.KindCategory, other, "Classic")
	link(t, s, models.KindTag, book, "Desert")

	names, err := s.LabelNames(ctx, models.KindCategory, book)
	require.NoError(t, err)
	assert.Equal(t, []string{"Science Fiction", "Classic"}, names)

	classic, err := s.FindLabel(ctx, models.KindCategory, "Classic")
	require.NoError(t, err)
	assoc, err := s.FindAssociation(ctx, models.KindCategory, book, classic.ID)
	require.NoError(t, err)
	require.NotNil(t, assoc)
	assert.Equal(t, book, assoc.BookID)

	require.NoError(t, s.DeleteAssociations(ctx, models.KindCategory, book))

	names, err = s.LabelNames(ctx, models.KindCategory, book)
	require.NoError(t, err)
	assert.Empty(t, names)

	otherNames, err := s.LabelNames(ctx, models.KindCategory, other)
	require.NoError(t, err)
	assert.Equal(t, []string{"Classic"}, otherNames, "other books keep their links")

	tags, err := s.LabelNames(ctx, models.KindTag, book)
	require.NoError(t, err)
	assert.Equal(t, []string{"Desert"}, tags, "deleting categories leaves tags")
}

func testBookMoods(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	moodID, err := s.InsertMood(ctx, &models.Mood{Name: models.MoodCalm})
	require.NoError(t, err)

	mood, err := s.MoodByName(ctx, models.MoodCalm)
	require.NoError(t, err)
	require.NotNil(t, mood)
	assert.Equal(t, moodID, mood.ID)

	none, err := s.MoodByName(ctx, "sleepy")
	require.NoError(t, err)
	assert.Nil(t, none)

	scores := []float64{4, 9, 6}
	var rowIDs []primitive.ObjectID
	for i, score := range scores {
		book := insertBook(t, s, []string{"A", "B", "C"}[i], "", "EBook", base)
		id, err := s.InsertBookMood(ctx, &models.BookMood{BookID: book, MoodID: moodID, Score: score})
		require.NoError(t, err)
		rowIDs = append(rowIDs, id)
	}

	top, err := s.TopBookMoods(ctx, moodID, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, 9.0, top[0].Score)
	assert.Equal(t, 6.0, top[1].Score)

	require.NoError(t, s.UpdateBookMoodScore(ctx, rowIDs[0], 10))
	top, err = s.TopBookMoods(ctx, moodID, 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, 10.0, top[0].Score)

	row, err := s.FindBookMood(ctx, top[0].BookID, moodID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, rowIDs[0], row.ID)
}

func testBooks(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	id := insertBook(t, s, "The Time Machine", "H. G. Wells", "EBook,Physical", base)

	book, err := s.BookByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, book)
	assert.Equal(t, "The Time Machine", book.Title)

	absent, err := s.BookByID(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, absent)

	like, err := s.BookByTitleLike(ctx, "time mach")
	require.NoError(t, err)
	require.NotNil(t, like)
	assert.Equal(t, id, like.ID)

	meta, err := s.BookByTitleLike(ctx, "T.me")
	require.NoError(t, err)
	assert.Nil(t, meta, "fragments are literal, not patterns")

	exact, err := s.BookByExactTitle(ctx, "the time machine")
	require.NoError(t, err)
	assert.Nil(t, exact)

	found, err := s.UpdateBook(ctx, id, &models.Book{Title: "The Time Machine", Author: "Wells", Availability: "Audio"})
	require.NoError(t, err)
	assert.True(t, found)
	found, err = s.UpdateBook(ctx, primitive.NewObjectID(), &models.Book{Title: "x", Availability: "Audio"})
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.UpdateBookSummary(ctx, id, "Eloi and Morlocks."))
	require.NoError(t, s.UpdateBookCover(ctx, id, "covers/a.jpg"))
	book, err = s.BookByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Wells", book.Author)
	assert.Equal(t, "Audio", book.Availability)
	assert.Equal(t, "Eloi and Morlocks.", book.Summary)
	assert.Equal(t, "covers/a.jpg", book.CoverImage)

	deleted, err := s.DeleteBook(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	assert.Equal(t, id, deleted.ID)

	again, err := s.DeleteBook(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func testFindBooks(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	emma := insertBook(t, s, "Emma", "Jane Austen", "EBook,Physical", base)
	dune := insertBook(t, s, "Dune", "Frank Herbert", "Audio", base.Add(time.Hour))
	sense := insertBook(t, s, "Sense and Sensibility", "Jane Austen", "Physical", base.Add(2*time.Hour))
	link(t, s, models.KindCategory, emma, "Romance")
	link(t, s, models.KindCategory, dune, "Science Fiction")
	link(t, s, models.KindCategory, sense, "Classic")
	link(t, s, models.KindTag, sense, "Sisters")

	ids := func(books []models.Book) []primitive.ObjectID {
		out := []primitive.ObjectID{}
		for _, b := range books {
			out = append(out, b.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter models.BookFilter
		want   []primitive.ObjectID
	}{
		{"all newest first", models.BookFilter{}, []primitive.ObjectID{sense, dune, emma}},
		{"text matches author", models.BookFilter{Text: "austen"}, []primitive.ObjectID{sense, emma}},
		{"text matches title", models.BookFilter{Text: "DUNE"}, []primitive.ObjectID{dune}},
		{"title and author", models.BookFilter{Title: "sense", Author: "austen"}, []primitive.ObjectID{sense}},
		{"availability any of", models.BookFilter{Availability: []string{"Audio", "EBook"}}, []primitive.ObjectID{dune, emma}},
		{"categories any of", models.BookFilter{Categories: []string{"Romance", "Classic"}}, []primitive.ObjectID{sense, emma}},
		{"category", models.BookFilter{Category: "Science Fiction"}, []primitive.ObjectID{dune}},
		{"tag", models.BookFilter{Tag: "Sisters"}, []primitive.ObjectID{sense}},
		{"unknown category", models.BookFilter{Category: "Poetry"}, []primitive.ObjectID{}},
		{"combined", models.BookFilter{Author: "austen", Availability: []string{"EBook"}}, []primitive.ObjectID{emma}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			books, err := s.FindBooks(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(books))
		})
	}
}

func testChat(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	user, book := primitive.NewObjectID(), primitive.NewObjectID()

	none, err := s.FindChatThread(ctx, user, book)
	require.NoError(t, err)
	assert.Nil(t, none)

	chatID, err := s.InsertChatThread(ctx, &models.ChatThread{UserID: user, BookID: book, CreatedAt: base})
	require.NoError(t, err)

	thread, err := s.FindChatThread(ctx, user, book)
	require.NoError(t, err)
	require.NotNil(t, thread)
	assert.Equal(t, chatID, thread.ID)

	for i := 0; i < 5; i++ {
		role := models.ChatRoleUser
		if i%2 == 1 {
			role = models.ChatRoleAssistant
		}
		_, err := s.InsertChatMessage(ctx, &models.ChatMessage{
			ChatID: chatID, Role: role, Content: string(rune('a' + i)), Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	contents := func(msgs []models.ChatMessage) string {
		out := ""
		for _, m := range msgs {
			out += m.Content
		}
		return out
	}

	all, err := s.ChatMessages(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, "abcde", contents(all))

	recent, err := s.RecentChatMessages(ctx, chatID, 3)
	require.NoError(t, err)
	assert.Equal(t, "cde", contents(recent))

	empty, err := s.ChatMessages(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testUsers(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	id, err := s.CreateUser(ctx, &models.User{Email: "reader@example.com", Password: "hash", Role: models.RoleReader, CreatedAt: base})
	require.NoError(t, err)

	byEmail, err := s.UserByEmail(ctx, "reader@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, id, byEmail.ID)

	nobody, err := s.UserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, nobody)

	found, err := s.UpdateUserRole(ctx, id, models.RoleLibrarian)
	require.NoError(t, err)
	assert.True(t, found)
	found, err = s.UpdateUserRole(ctx, primitive.NewObjectID(), models.RoleLibrarian)
	require.NoError(t, err)
	assert.False(t, found)

	byID, err := s.UserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.RoleLibrarian, byID.Role)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	prefs, err := s.PreferencesByUser(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, prefs)

	require.NoError(t, s.UpsertPreferences(ctx, &models.Preferences{UserID: id, PreferredCategories: []string{"Mystery"}}))
	require.NoError(t, s.UpsertPreferences(ctx, &models.Preferences{UserID: id, PreferredAuthors: []string{"Agatha Christie"}}))
	prefs, err = s.PreferencesByUser(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, prefs)
	assert.Empty(t, prefs.PreferredCategories)
	assert.Equal(t, []string{"Agatha Christie"}, prefs.PreferredAuthors)
}

// testUniqueNames pins the one constraint the stores enforce: a label or mood name exists once.
// A get-or-create that loses a race therefore fails instead of adding a second label.
func testUniqueNames(t *testing.T, s catalog.Store) {
	ctx := context.Background()

	_, err := s.InsertLabel(ctx, models.KindCategory, "Fiction")
	require.NoError(t, err)
	_, err = s.InsertLabel(ctx, models.KindCategory, "Fiction")
	assert.ErrorIs(t, err, catalog.ErrDuplicate)

	// Same name in the other namespace, and a different case, are separate labels.
	_, err = s.InsertLabel(ctx, models.KindTag, "Fiction")
	assert.NoError(t, err)
	_, err = s.InsertLabel(ctx, models.KindCategory, "fiction")
	assert.NoError(t, err)

	_, err = s.InsertMood(ctx, &models.Mood{Name: models.MoodHappy})
	require.NoError(t, err)
	_, err = s.InsertMood(ctx, &models.Mood{Name: models.MoodHappy})
	assert.ErrorIs(t, err, catalog.ErrDuplicate)
}

// testDuplicateRows pins the rows the stores do not deduplicate. Association rows, book mood
// scores and chat threads are guarded only by the lookup the catalog does first, so two writers
// that both miss the lookup leave two rows.
func testDuplicateRows(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	book := insertBook(t, s, "Dune", "Frank Herbert", "EBook", base)

	label, err := s.InsertLabel(ctx, models.KindTag, "Desert")
	require.NoError(t, err)
	require.NoError(t, s.InsertAssociation(ctx, models.KindTag, book, label.ID))
	require.NoError(t, s.InsertAssociation(ctx, models.KindTag, book, label.ID))
	names, err := s.LabelNames(ctx, models.KindTag, book)
	require.NoError(t, err)
	assert.Equal(t, []string{"Desert", "Desert"}, names)

	moodID, err := s.InsertMood(ctx, &models.Mood{Name: models.MoodCalm})
	require.NoError(t, err)
	first, err := s.InsertBookMood(ctx, &models.BookMood{BookID: book, MoodID: moodID, Score: 7})
	require.NoError(t, err)
	second, err := s.InsertBookMood(ctx, &models.BookMood{BookID: book, MoodID: moodID, Score: 8})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	top, err := s.TopBookMoods(ctx, moodID, 10)
	require.NoError(t, err)
	assert.Len(t, top, 2)

	user := primitive.NewObjectID()
	a, err := s.InsertChatThread(ctx, &models.ChatThread{UserID: user, BookID: book, CreatedAt: base})
	require.NoError(t, err)
	b, err := s.InsertChatThread(ctx, &models.ChatThread{UserID: user, BookID: book, CreatedAt: base})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
