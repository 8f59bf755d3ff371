package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kevinaaaquil/digitallibrary/catalog"
	"github.com/kevinaaaquil/digitallibrary/middleware"
)

// API groups the handlers behind /api.
type API struct {
	Guard *Guard
	Auth  *AuthHandler
	Books *BooksHandler
	Mood  *MoodHandler
	Chat  *ChatHandler
	Users *UsersHandler
	Seed  *SeedHandler
	// Limit throttles login and the routes that call the text generator. Nil means unlimited.
	Limit func(next http.Handler) http.Handler
}

// NewAPI wires every handler to svc. covers may be nil.
func NewAPI(svc *catalog.Service, sessions *middleware.Sessions, covers CoverStorage, maxUploadBytes int64) *API {
	return &API{
		Guard: &Guard{Sessions: sessions},
		Auth:  &AuthHandler{Catalog: svc, Sessions: sessions},
		Books: &BooksHandler{Catalog: svc, Covers: covers, MaxBytes: maxUploadBytes},
		Mood:  &MoodHandler{Catalog: svc},
		Chat:  &ChatHandler{Catalog: svc},
		Users: &UsersHandler{Catalog: svc},
		Seed:  &SeedHandler{Catalog: svc},
	}
}

// Mount registers the /api routes on r.
func (a *API) Mount(r chi.Router) {
	g := a.Guard
	limit := a.Limit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/auth/login", a.Auth.Login)
			r.Post("/auth/register", a.Auth.Register)
			r.Get("/search", a.Books.Search)
			r.Get("/mood/{mood}", g.Optional(a.Mood.Recommend))
			r.Post("/train", g.Editor(a.Mood.Train))
			r.Post("/books/add-with-ai", g.Editor(a.Books.AddWithAI))
			r.Post("/chat/{bookId}", g.User(a.Chat.Send))
		})

		r.Get("/books", a.Books.List)
		r.Get("/books/{id}", a.Books.Get)
		r.Get("/books/{id}/cover", a.Books.Cover)
		r.Post("/books", g.Editor(a.Books.Create))
		r.Put("/books/{id}", g.Editor(a.Books.Update))
		r.Delete("/books/{id}", g.Editor(a.Books.Delete))
		r.Post("/books/{id}/cover", g.Editor(a.Books.UploadCover))

		r.Get("/chat/{bookId}", g.User(a.Chat.History))
		r.Get("/preferences", g.User(a.Users.GetPreferences))
		r.Put("/preferences", g.User(a.Users.SavePreferences))

		r.Get("/users", g.Admin(a.Users.List))
		r.Put("/users/{id}/role", g.Admin(a.Users.SetRole))
		r.Post("/seed", g.Admin(a.Seed.Seed))
	})
}
