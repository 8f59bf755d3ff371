package handlers

import (
	"errors"
	"net/http"

	"github.com/kevinaaaquil/digitallibrary/middleware"
)

// SessionHandlerFunc is a handler that runs for a resolved caller.
type SessionHandlerFunc func(w http.ResponseWriter, r *http.Request, sess *middleware.Session)

// RoleCheck rejects a session; middleware.RequireEditor and middleware.RequireAdmin are the usual ones.
type RoleCheck func(sess *middleware.Session) error

// Guard adapts session-aware handlers to plain http handlers.
type Guard struct {
	Sessions *middleware.Sessions
}

// User requires a session. Any of checks can reject it before h runs, so nothing in h
// (body decoding included) happens for a caller without the right role.
func (g *Guard) User(h SessionHandlerFunc, checks ...RoleCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := g.Sessions.Resolve(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for _, check := range checks {
			if err := check(sess); err != nil {
				writeError(w, r, err)
				return
			}
		}
		h(w, r, sess)
	}
}

func (g *Guard) Editor(h SessionHandlerFunc) http.HandlerFunc {
	return g.User(h, middleware.RequireEditor)
}

func (g *Guard) Admin(h SessionHandlerFunc) http.HandlerFunc {
	return g.User(h, middleware.RequireAdmin)
}

// Optional passes a nil session for anonymous callers and for tokens that no longer resolve.
// Only a store failure while resolving is an error.
func (g *Guard) Optional(h SessionHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := g.Sessions.Resolve(r)
		if err != nil {
			if !errors.Is(err, middleware.ErrNoSession) && !errors.Is(err, middleware.ErrUnknownUser) {
				writeError(w, r, err)
				return
			}
			sess = nil
		}
		h(w, r, sess)
	}
}
