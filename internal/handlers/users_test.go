package handlers

import (
	"fmt"
	"testing"

	"github.com/chachabrian/parceltrack-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfile(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	user, token := createTestUser(t, db, "karim@example.com", models.RoleUser)

	w := doRequest(r, "GET", "/api/users/profile", token, nil)
	require.Equal(t, 200, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, user.ID, body["id"])
	assert.Equal(t, "karim@example.com", body["email"])
}

func TestUpdateProfile(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	user, token := createTestUser(t, db, "karim@example.com", models.RoleUser)

	w := doRequest(r, "PUT", "/api/users/profile", token, map[string]string{"name": "New Name"})
	require.Equal(t, 200, w.Code)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, "New Name", stored.Name)
	assert.Equal(t, "karim@example.com", stored.Email)
}

func TestListUsers_AdminOnly(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	_, userToken := createTestUser(t, db, "karim@example.com", models.RoleUser)
	_, adminToken := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	w := doRequest(r, "GET", "/api/users", userToken, nil)
	assert.Equal(t, 403, w.Code)

	w = doRequest(r, "GET", "/api/users", adminToken, nil)
	assert.Equal(t, 200, w.Code)
}

func TestUpdateUserRole(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	user, _ := createTestUser(t, db, "karim@example.com", models.RoleUser)
	_, adminToken := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	w := doRequest(r, "PATCH", fmt.Sprintf("/api/users/%d/role", user.ID), adminToken,
		map[string]string{"role": "rider"})
	require.Equal(t, 200, w.Code)

	var promoted models.User
	require.NoError(t, db.First(&promoted, user.ID).Error)
	assert.Equal(t, models.RoleRider, promoted.Role)

	w = doRequest(r, "PATCH", fmt.Sprintf("/api/users/%d/role", user.ID), adminToken,
		map[string]string{"role": "superuser"})
	assert.Equal(t, 400, w.Code)
}
