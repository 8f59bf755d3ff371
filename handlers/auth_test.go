package handlers_test

import (
	"net/http"
	"testing"

	"github.com/kevinaaaquil/digitallibrary/handlers"
	"github.com/kevinaaaquil/digitallibrary/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "New@Example.com", "password": "secret-pass", "fullName": "New Reader",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := decode[handlers.LoginResponse](t, w)
	assert.Equal(t, "new@example.com", reg.Email)
	assert.Equal(t, models.RoleReader, reg.Role)
	assert.NotEmpty(t, reg.Token)

	w = ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "new@example.com", "password": "another-pass",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "new@example.com", "password": "secret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[handlers.LoginResponse](t, w)

	// The token opens a session.
	w = ts.do(http.MethodGet, "/api/preferences", login.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginRejects(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"wrong password", map[string]string{"email": "admin@example.com", "password": "nope"}, http.StatusUnauthorized},
		{"unknown email", map[string]string{"email": "who@example.com", "password": "nope"}, http.StatusUnauthorized},
		{"missing password", map[string]string{"email": "admin@example.com"}, http.StatusBadRequest},
		{"invalid json", "not json", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(http.MethodPost, "/api/auth/login", "", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "not-an-email", "password": "secret-pass"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "email must be a valid email address")

	w = ts.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "a@example.com", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "password must be at least 6 characters")
}
