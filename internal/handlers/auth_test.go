package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"techblog/internal/auth"
	"techblog/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	r := setupEnv(t)

	w := doJSON(r, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	require.Equal(t, true, body["success"])
	token, ok := body["token"].(string)
	require.True(t, ok && token != "")

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, models.RoleUser, claims.Role)

	w = doJSON(r, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "ada@example.com",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "ada@example.com",
		"password": "wrong-password",
	}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := setupEnv(t)
	createUser(t, "Ada", "ada@example.com", models.RoleUser)

	w := doJSON(r, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"name":     "Other Ada",
		"email":    "ada@example.com",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	require.Equal(t, false, body["success"])
	require.Equal(t, "User already exists", body["message"])
}

func TestRegisterValidation(t *testing.T) {
	r := setupEnv(t)

	w := doJSON(r, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"name":     "Ada",
		"email":    "not-an-email",
		"password": "123",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	require.Equal(t, false, body["success"])
	errs, ok := body["errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, errs, 2)
}

func TestMeRequiresToken(t *testing.T) {
	r := setupEnv(t)

	w := doJSON(r, http.MethodGet, "/api/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	_, token := createUser(t, "Ada", "ada@example.com", models.RoleUser)
	w = doJSON(r, http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ada@example.com", data(t, w)["email"])
}

func TestChangePassword(t *testing.T) {
	r := setupEnv(t)
	_, token := createUser(t, "Ada", "ada@example.com", models.RoleUser)

	w := doJSON(r, http.MethodPut, "/api/auth/change-password", map[string]interface{}{
		"currentPassword": "nope",
		"newPassword":     "another-secret",
	}, token)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPut, "/api/auth/change-password", map[string]interface{}{
		"currentPassword": "secret123",
		"newPassword":     "another-secret",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "ada@example.com",
		"password": "another-secret",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	r := setupEnv(t)
	user, token := createUser(t, "Ada", "ada@example.com", models.RoleUser)

	w := doJSON(r, http.MethodPut, "/api/auth/update-profile", map[string]interface{}{
		"name": "Ada Lovelace",
		"bio":  "First programmer",
	}, token)
	require.Equal(t, http.StatusOK, w.Code)

	var fresh models.User
	require.NoError(t, dbFirst(&fresh, user.ID))
	require.Equal(t, "Ada Lovelace", fresh.Name)
	require.Equal(t, "First programmer", fresh.Bio)
}
