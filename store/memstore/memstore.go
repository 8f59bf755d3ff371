// Package memstore keeps the catalog in process memory. It backs STORE_BACKEND=memory and the
// unit tests, and mirrors the MongoDB store's lookup and ordering semantics.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu sync.RWMutex

	books        []models.Book
	labels       map[models.LabelKind][]models.Label
	associations map[models.LabelKind][]models.Association
	moods        []models.Mood
	bookMoods    []models.BookMood
	threads      []models.ChatThread
	messages     []models.ChatMessage
	users        []models.User
	preferences  []models.Preferences

	// writeErr, when set, is returned by every insert, update and delete.
	writeErr error
}

func New() *Store {
	return &Store{
		labels:       map[models.LabelKind][]models.Label{},
		associations: map[models.LabelKind][]models.Association{},
	}
}

// FailWrites makes every subsequent write return err. Pass nil to recover.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// Labels

func (s *Store) FindLabel(_ context.Context, kind models.LabelKind, name string) (*models.Label, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.labels[kind] {
		if l.Name == name {
			l := l
			return &l, nil
		}
	}
	return nil, nil
}

func (s *Store) InsertLabel(_ context.Context, kind models.LabelKind, name string) (*models.Label, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	for _, l := range s.labels[kind] {
		if l.Name == name {
			return nil, fmt.Errorf("%w: %s %q", catalog.ErrDuplicate, kind, name)
		}
	}
	l := models.Label{ID: primitive.NewObjectID(), Name: name}
	s.labels[kind] = append(s.labels[kind], l)
	return &l, nil
}

func (s *Store) FindAssociation(_ context.Context, kind models.LabelKind, bookID, labelID primitive.ObjectID) (*models.Association, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.associations[kind] {
		if a.BookID == bookID && a.LabelID == labelID {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (s *Store) InsertAssociation(_ context.Context, kind models.LabelKind, bookID, labelID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.associations[kind] = append(s.associations[kind], models.Association{ID: primitive.NewObjectID(), BookID: bookID, LabelID: labelID})
	return nil
}

func (s *Store) DeleteAssociations(_ context.Context, kind models.LabelKind, bookID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	kept := s.associations[kind][:0]
	for _, a := range s.associations[kind] {
		if a.BookID != bookID {
			kept = append(kept, a)
		}
	}
	s.associations[kind] = kept
	return nil
}

func (s *Store) LabelNames(_ context.Context, kind models.LabelKind, bookID primitive.ObjectID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for _, a := range s.associations[kind] {
		if a.BookID != bookID {
			continue
		}
		for _, l := range s.labels[kind] {
			if l.ID == a.LabelID {
				names = append(names, l.Name)
				break
			}
		}
	}
	return names, nil
}

// Associations returns a copy of the join rows for a book. Tests use it to count links.
func (s *Store) Associations(kind models.LabelKind, bookID primitive.ObjectID) []models.Association {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Association
	for _, a := range s.associations[kind] {
		if a.BookID == bookID {
			out = append(out, a)
		}
	}
	return out
}

// LabelCount returns how many labels of kind are stored.
func (s *Store) LabelCount(kind models.LabelKind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.labels[kind])
}

// Moods

func (s *Store) MoodByName(_ context.Context, name string) (*models.Mood, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.moods {
		if m.Name == name {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (s *Store) InsertMood(_ context.Context, mood *models.Mood) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return primitive.NilObjectID, s.writeErr
	}
	for _, m := range s.moods {
		if m.Name == mood.Name {
			return primitive.NilObjectID, fmt.Errorf("%w: mood %q", catalog.ErrDuplicate, mood.Name)
		}
	}
	m := *mood
	m.ID = primitive.NewObjectID()
	s.moods = append(s.moods, m)
	return m.ID, nil
}

func (s *Store) FindBookMood(_ context.Context, bookID, moodID primitive.ObjectID) (*models.BookMood, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, bm := range s.bookMoods {
		if bm.BookID == bookID && bm.MoodID == moodID {
			bm := bm
			return &bm, nil
		}
	}
	return nil, nil
}

func (s *Store) InsertBookMood(_ context.Context, bm *models.BookMood) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return primitive.NilObjectID, s.writeErr
	}
	row := *bm
	row.ID = primitive.NewObjectID()
	s.bookMoods = append(s.bookMoods, row)
	return row.ID, nil
}

func (s *Store) UpdateBookMoodScore(_ context.Context, id primitive.ObjectID, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	for i := range s.bookMoods {
		if s.bookMoods[i].ID == id {
			s.bookMoods[i].Score = score
		}
	}
	return nil
}

func (s *Store) TopBookMoods(_ context.Context, moodID primitive.ObjectID, limit int) ([]models.BookMood, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []models.BookMood
	for _, bm := range s.bookMoods {
		if bm.MoodID == moodID {
			rows = append(rows, bm)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Score > rows[j].Score })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// BookMoods returns every score row for a book.
func (s *Store) BookMoods(bookID primitive.ObjectID) []models.BookMood {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.BookMood
	for _, bm := range s.bookMoods {
		if bm.BookID == bookID {
			out = append(out, bm)
		}
	}
	return out
}

// Books

func (s *Store) InsertBook(_ context.Context, book *models.Book) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return primitive.NilObjectID, s.writeErr
	}
	b := *book
	b.ID = primitive.NewObjectID()
	s.books = append(s.books, b)
	return b.ID, nil
}

func (s *Store) bookIndex(id primitive.ObjectID) int {
	for i, b := range s.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) UpdateBook(_ context.Context, id primitive.ObjectID, book *models.Book) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return false, s.writeErr
	}
	i := s.bookIndex(id)
	if i < 0 {
		return false, nil
	}
	cur := &s.books[i]
	cur.Title = book.Title
	cur.Author = book.Author
	cur.PublicationDate = book.PublicationDate
	cur.Publisher = book.Publisher
	cur.Summary = book.Summary
	cur.CoverImage = book.CoverImage
	cur.Availability = book.Availability
	return true, nil
}

func (s *Store) UpdateBookSummary(_ context.Context, id primitive.ObjectID, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	if i := s.bookIndex(id); i >= 0 {
		s.books[i].Summary = summary
	}
	return nil
}

func (s *Store) UpdateBookCover(_ context.Context, id primitive.ObjectID, cover string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	if i := s.bookIndex(id); i >= 0 {
		s.books[i].CoverImage = cover
	}
	return nil
}

func (s *Store) DeleteBook(_ context.Context, id primitive.ObjectID) (*models.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return nil, s.writeErr
	}
	i := s.bookIndex(id)
	if i < 0 {
		return nil, nil
	}
	b := s.books[i]
	s.books = append(s.books[:i], s.books[i+1:]...)
	return &b, nil
}

func (s *Store) BookByID(_ context.Context, id primitive.ObjectID) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.bookIndex(id); i >= 0 {
		b := s.books[i]
		return &b, nil
	}
	return nil, nil
}

func (s *Store) BookByExactTitle(_ context.Context, title string) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if b.Title == title {
			b := b
			return &b, nil
		}
	}
	return nil, nil
}

func (s *Store) BookByTitleLike(_ context.Context, fragment string) (*models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if containsFold(b.Title, fragment) {
			b := b
			return &b, nil
		}
	}
	return nil, nil
}

func (s *Store) hasLabel(kind models.LabelKind, bookID primitive.ObjectID, names ...string) bool {
	for _, a := range s.associations[kind] {
		if a.BookID != bookID {
			continue
		}
		for _, l := range s.labels[kind] {
			if l.ID != a.LabelID {
				continue
			}
			for _, n := range names {
				if l.Name == n {
					return true
				}
			}
		}
	}
	return false
}

func (s *Store) matches(b models.Book, f models.BookFilter) bool {
	if f.Text != "" && !containsFold(b.Title, f.Text) && !containsFold(b.Author, f.Text) {
		return false
	}
	if f.Title != "" && !containsFold(b.Title, f.Title) {
		return false
	}
	if f.Author != "" && !containsFold(b.Author, f.Author) {
		return false
	}
	if len(f.Availability) > 0 {
		found := false
		for _, a := range f.Availability {
			if containsFold(b.Availability, a) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Categories) > 0 && !s.hasLabel(models.KindCategory, b.ID, f.Categories...) {
		return false
	}
	if f.Category != "" && !s.hasLabel(models.KindCategory, b.ID, f.Category) {
		return false
	}
	if f.Tag != "" && !s.hasLabel(models.KindTag, b.ID, f.Tag) {
		return false
	}
	return true
}

func (s *Store) FindBooks(_ context.Context, filter models.BookFilter) ([]models.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Book{}
	for i := len(s.books) - 1; i >= 0; i-- {
		if s.matches(s.books[i], filter) {
			out = append(out, s.books[i])
		}
	}
	// Newest first; later inserts win ties.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Chat

func (s *Store) FindChatThread(_ context.Context, userID, bookID primitive.ObjectID) (*models.ChatThread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.threads {
		if t.UserID == userID && t.BookID == bookID {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

func (s *Store) InsertChatThread(_ context.Context, thread *models.ChatThread) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return primitive.NilObjectID, s.writeErr
	}
	t := *thread
	t.ID = primitive.NewObjectID()
	s.threads = append(s.threads, t)
	return t.ID, nil
}

func (s *Store) InsertChatMessage(_ context.Context, msg *models.ChatMessage) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return primitive.NilObjectID, s.writeErr
	}
	m := *msg
	m.ID = primitive.NewObjectID()
	s.messages = append(s.messages, m)
	return m.ID, nil
}

// threadMessages returns a thread's messages by timestamp, insertion order breaking ties.
func (s *Store) threadMessages(chatID primitive.ObjectID) []models.ChatMessage {
	out := []models.ChatMessage{}
	for _, m := range s.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func (s *Store) ChatMessages(_ context.Context, chatID primitive.ObjectID) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threadMessages(chatID), nil
}

func (s *Store) RecentChatMessages(_ context.Context, chatID primitive.ObjectID, limit int) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.threadMessages(chatID)
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

// ThreadCount returns how many chat threads exist.
func (s *Store) ThreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.threads)
}

// Users

func (s *Store) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateUser(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return primitive.NilObjectID, s.writeErr
	}
	u := *user
	u.ID = primitive.NewObjectID()
	s.users = append(s.users, u)
	return u.ID, nil
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *Store) UpdateUserRole(_ context.Context, id primitive.ObjectID, role string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return false, s.writeErr
	}
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].Role = role
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) PreferencesByUser(_ context.Context, userID primitive.ObjectID) (*models.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.preferences {
		if p.UserID == userID {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (s *Store) UpsertPreferences(_ context.Context, prefs *models.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	for i := range s.preferences {
		if s.preferences[i].UserID == prefs.UserID {
			s.preferences[i].PreferredCategories = prefs.PreferredCategories
			s.preferences[i].PreferredAuthors = prefs.PreferredAuthors
			return nil
		}
	}
	p := *prefs
	p.ID = primitive.NewObjectID()
	s.preferences = append(s.preferences, p)
	return nil
}
