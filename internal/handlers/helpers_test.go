package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/chachabrian/parceltrack-backend/internal/database"
	"github.com/chachabrian/parceltrack-backend/internal/middleware"
	"github.com/chachabrian/parceltrack-backend/internal/models"
	"github.com/chachabrian/parceltrack-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret")
	os.Exit(m.Run())
}

var testDBCounter uint64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, atomic.AddUint64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

// setupRouter mounts the API the way cmd/api does, minus Redis, Stripe
// and the websocket hub.
func setupRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()

	api := r.Group("/api")
	api.POST("/auth/register", Register(db))
	api.POST("/auth/login", Login(db))
	api.GET("/track/:trackingId", TrackParcel(db))
	api.GET("/reviews", ListReviews(db))

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/users/profile", GetProfile(db))
	protected.PUT("/users/profile", UpdateProfile(db))
	protected.GET("/users", middleware.RequireRole(db, models.RoleAdmin), ListUsers(db))
	protected.PATCH("/users/:id/role", middleware.RequireRole(db, models.RoleAdmin), UpdateUserRole(db))

	protected.POST("/parcels", CreateParcel(db))
	protected.GET("/parcels", ListParcels(db))
	protected.GET("/parcels/:id", GetParcel(db))
	protected.PATCH("/parcels/:id/status", UpdateParcelStatus(db))
	protected.POST("/parcels/:id/cancel", CancelParcel(db))
	protected.DELETE("/parcels/:id", middleware.RequireRole(db, models.RoleAdmin), DeleteParcel(db))
	protected.PATCH("/parcels/:id/assign", middleware.RequireRole(db, models.RoleAdmin), AssignRider(db))
	protected.POST("/parcels/:id/cashout", middleware.RequireRole(db, models.RoleRider), CashoutParcel(db))

	protected.POST("/riders/apply", ApplyAsRider(db))
	protected.GET("/riders/pending", middleware.RequireRole(db, models.RoleAdmin), ListPendingRiders(db))
	protected.GET("/riders/active", middleware.RequireRole(db, models.RoleAdmin), ListActiveRiders(db))
	protected.GET("/riders/available", middleware.RequireRole(db, models.RoleAdmin), ListAvailableRiders(db))
	protected.PATCH("/riders/:id/approve", middleware.RequireRole(db, models.RoleAdmin), ApproveRider(db))
	protected.PATCH("/riders/:id/deactivate", middleware.RequireRole(db, models.RoleAdmin), DeactivateRider(db))
	protected.DELETE("/riders/:id", middleware.RequireRole(db, models.RoleAdmin), RejectRider(db))
	protected.GET("/riders/earnings", middleware.RequireRole(db, models.RoleRider), GetRiderEarnings(db))
	protected.GET("/riders/withdrawals", middleware.RequireRole(db, models.RoleRider), ListWithdrawals(db))

	protected.POST("/payments", RecordPayment(db))
	protected.GET("/payments", ListPayments(db))
	protected.POST("/reviews", CreateReview(db))

	stats := protected.Group("/stats")
	stats.Use(middleware.RequireRole(db, models.RoleAdmin))
	stats.GET("/daily-bookings", GetDailyBookingStats(db))
	stats.GET("/districts", GetDistrictStats(db))

	return r
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role models.Role) (models.User, string) {
	t.Helper()

	user := models.User{
		Name:         "Test " + string(role),
		Email:        email,
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(&user)
	require.NoError(t, err)
	return user, token
}

func createTestParcel(t *testing.T, db *gorm.DB, senderEmail, senderDistrict, receiverDistrict string, cost float64) models.Parcel {
	t.Helper()

	parcel := models.Parcel{
		TrackingID:       utils.GenerateTrackingID(),
		SenderEmail:      senderEmail,
		SenderDistrict:   senderDistrict,
		ReceiverName:     "Receiver",
		ReceiverDistrict: receiverDistrict,
		DeliveryCost:     cost,
		DeliveryStatus:   models.DeliveryStatusProcessing,
		PaymentStatus:    models.PaymentStatusUnpaid,
	}
	require.NoError(t, db.Create(&parcel).Error)
	return parcel
}

func createTestRider(t *testing.T, db *gorm.DB, email, district string, status models.RiderStatus) models.RiderApplication {
	t.Helper()

	rider := models.RiderApplication{
		Name:       "Rider " + email,
		Email:      email,
		District:   district,
		Status:     status,
		WorkStatus: models.WorkStatusAvailable,
	}
	require.NoError(t, db.Create(&rider).Error)
	return rider
}

func doRequest(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
