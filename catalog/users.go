package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/kevinaaaquil/digitallibrary/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a reader account.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}
	existing, err := s.Store.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	return s.createUser(ctx, email, password, fullName, models.RoleReader)
}

func (s *Service) createUser(ctx context.Context, email, password, fullName, role string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Email:     email,
		Password:  string(hash),
		Role:      role,
		FullName:  fullName,
		CreatedAt: s.now(),
	}
	id, err := s.Store.CreateUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	user.ID = id
	return user, nil
}

// Authenticate checks an email and password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.Store.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.Store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// SetRole changes a user's role.
func (s *Service) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	if !models.RoleValid(role) {
		return validationError("role must be one of %s", strings.Join(models.ValidRoles, ", "))
	}
	found, err := s.Store.UpdateUserRole(ctx, id, role)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("user %s: %w", id.Hex(), ErrNotFound)
	}
	return nil
}

// Preferences returns the user's recommendation hints, or empty ones if none were saved.
func (s *Service) Preferences(ctx context.Context, userID primitive.ObjectID) (*models.Preferences, error) {
	prefs, err := s.Store.PreferencesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		prefs = &models.Preferences{UserID: userID}
	}
	if prefs.PreferredCategories == nil {
		prefs.PreferredCategories = []string{}
	}
	if prefs.PreferredAuthors == nil {
		prefs.PreferredAuthors = []string{}
	}
	return prefs, nil
}

func (s *Service) SavePreferences(ctx context.Context, userID primitive.ObjectID, categories, authors []string) (*models.Preferences, error) {
	prefs := &models.Preferences{UserID: userID, PreferredCategories: categories, PreferredAuthors: authors}
	if err := s.Store.UpsertPreferences(ctx, prefs); err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}
	return s.Preferences(ctx, userID)
}
