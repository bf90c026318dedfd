package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/chachabrian/parceltrack-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDailyBookingStats_AscendingBuckets(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	_, adminToken := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	now := time.Now()
	for daysAgo := 0; daysAgo < 3; daysAgo++ {
		for i := 0; i <= daysAgo; i++ {
			parcel := createTestParcel(t, db, "sender@example.com", "Dhaka", "Dhaka", 100)
			require.NoError(t, db.Model(&parcel).Update("created_at", now.AddDate(0, 0, -daysAgo)).Error)
		}
	}

	w := doRequest(r, "GET", "/api/stats/daily-bookings", adminToken, nil)
	require.Equal(t, 200, w.Code)

	var stats []DailyBookingStat
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Len(t, stats, 3)

	// Oldest bucket first, counts match the per-day seeding
	for i := 1; i < len(stats); i++ {
		assert.Less(t, stats[i-1].Date, stats[i].Date)
	}
	assert.EqualValues(t, 3, stats[0].Count)
	assert.EqualValues(t, 2, stats[1].Count)
	assert.EqualValues(t, 1, stats[2].Count)
}

func TestGetDistrictStats_BusiestFirst(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	_, adminToken := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	createTestParcel(t, db, "a@example.com", "Dhaka", "Dhaka", 100)
	createTestParcel(t, db, "b@example.com", "Dhaka", "Sylhet", 100)
	createTestParcel(t, db, "c@example.com", "Khulna", "Dhaka", 100)

	w := doRequest(r, "GET", "/api/stats/districts", adminToken, nil)
	require.Equal(t, 200, w.Code)

	var stats []DistrictStat
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Len(t, stats, 2)
	assert.Equal(t, "Dhaka", stats[0].District)
	assert.EqualValues(t, 2, stats[0].Count)
	assert.Equal(t, "Khulna", stats[1].District)
	assert.EqualValues(t, 1, stats[1].Count)
}

func TestStats_AdminOnly(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(db)
	_, userToken := createTestUser(t, db, "user@example.com", models.RoleUser)

	w := doRequest(r, "GET", "/api/stats/daily-bookings", userToken, nil)
	assert.Equal(t, 403, w.Code)

	w = doRequest(r, "GET", "/api/stats/districts", userToken, nil)
	assert.Equal(t, 403, w.Code)
}
