package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kevinaaaquil/digitallibrary/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNoSession means the request carried no bearer token or an invalid one.
	ErrNoSession = errors.New("missing or invalid session")
	// ErrUnknownUser means the token is valid but its user no longer exists.
	ErrUnknownUser = errors.New("session user not found")
	ErrForbidden   = errors.New("insufficient role")
)

type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Session is the caller behind a request. Role is read from the stored user on every request,
// so role changes take effect without a new token.
type Session struct {
	UserID primitive.ObjectID
	Email  string
	Role   string
}

// UserLookup is the part of the store sessions need.
type UserLookup interface {
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Sessions issues and resolves HS256 bearer tokens.
type Sessions struct {
	Secret string
	TTL    time.Duration
	Users  UserLookup
	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *Sessions) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue signs a token for user.
func (s *Sessions) Issue(user *models.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.Secret))
}

// Resolve returns the session for r's Authorization header.
func (s *Sessions) Resolve(r *http.Request) (*Session, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return nil, ErrNoSession
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return nil, ErrNoSession
	}
	token, err := jwt.ParseWithClaims(parts[1], &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ErrNoSession
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrNoSession
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrNoSession
	}
	user, err := s.Users.UserByID(r.Context(), userID)
	if err != nil {
		return nil, fmt.Errorf("load session user: %w", err)
	}
	if user == nil {
		return nil, ErrUnknownUser
	}
	return &Session{UserID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// RequireEditor allows librarians and admins.
func RequireEditor(sess *Session) error {
	if sess == nil || !models.CanEditCatalog(sess.Role) {
		return ErrForbidden
	}
	return nil
}

func RequireAdmin(sess *Session) error {
	if sess == nil || sess.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}
