package handlers

import (
	"encoding/json"
	"testing"

	"github.com/chachabrian/parceltrack-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReview(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	_, token := createTestUser(t, db, "customer@example.com", models.RoleUser)

	w := doRequest(r, "POST", "/api/reviews", token, map[string]interface{}{
		"riderEmail": "rider@example.com",
		"rating":     5,
		"comment":    "Fast delivery",
	})
	require.Equal(t, 201, w.Code)

	var review models.Review
	require.NoError(t, db.First(&review).Error)
	assert.Equal(t, "customer@example.com", review.ReviewerEmail)
	assert.Equal(t, 5, review.Rating)

	// Ratings outside 1..5 are rejected
	w = doRequest(r, "POST", "/api/reviews", token, map[string]interface{}{
		"riderEmail": "rider@example.com",
		"rating":     6,
	})
	assert.Equal(t, 400, w.Code)
}

func TestListReviews_PublicWithFilter(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)

	require.NoError(t, db.Create(&models.Review{RiderEmail: "a@example.com", ReviewerEmail: "x@example.com", Rating: 5}).Error)
	require.NoError(t, db.Create(&models.Review{RiderEmail: "b@example.com", ReviewerEmail: "y@example.com", Rating: 3}).Error)

	w := doRequest(r, "GET", "/api/reviews?riderEmail=a@example.com", "", nil)
	require.Equal(t, 200, w.Code)

	var reviews []models.Review
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reviews))
	require.Len(t, reviews, 1)
	assert.Equal(t, "a@example.com", reviews[0].RiderEmail)
}
