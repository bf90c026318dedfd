package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/chachabrian/parceltrack-backend/internal/database"
	"github.com/chachabrian/parceltrack-backend/internal/handlers"
	"github.com/chachabrian/parceltrack-backend/internal/middleware"
	"github.com/chachabrian/parceltrack-backend/internal/models"
	"github.com/chachabrian/parceltrack-backend/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	// Initialize database with better error handling
	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Initialize Redis
	if err := services.InitRedis(); err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

	// Initialize Stripe
	if err := services.InitStripe(); err != nil {
		log.Fatalf("Failed to initialize Stripe: %v", err)
	}

	// Initialize Storage (S3 or local fallback)
	if err := services.InitStorage(); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize WebSocket hub and start fanning out tracking updates
	hub := services.NewHub()
	go hub.Run()
	go hub.ListenTrackingUpdates(context.Background())

	// Initialize router
	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Serve locally stored delivery proofs
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "/app/uploads"
	}
	r.Static("/uploads", uploadDir)

	// Routes
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}

		// Anonymous parcel tracking
		api.GET("/track/:trackingId", handlers.TrackParcel(db))
		api.GET("/ws/track/:trackingId", handlers.TrackingSocket(db, hub))
		api.GET("/reviews", handlers.ListReviews(db))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// User routes
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
				users.GET("", middleware.RequireRole(db, models.RoleAdmin), handlers.ListUsers(db))
				users.PATCH("/:id/role", middleware.RequireRole(db, models.RoleAdmin), handlers.UpdateUserRole(db))
			}

			// Parcel routes
			parcels := protected.Group("/parcels")
			{
				parcels.POST("", handlers.CreateParcel(db))
				parcels.GET("", handlers.ListParcels(db))
				parcels.GET("/:id", handlers.GetParcel(db))
				parcels.PATCH("/:id/status", handlers.UpdateParcelStatus(db))
				parcels.POST("/:id/cancel", handlers.CancelParcel(db))
				parcels.DELETE("/:id", middleware.RequireRole(db, models.RoleAdmin), handlers.DeleteParcel(db))
				parcels.PATCH("/:id/assign", middleware.RequireRole(db, models.RoleAdmin), handlers.AssignRider(db))
				parcels.POST("/:id/cashout", middleware.RequireRole(db, models.RoleRider), handlers.CashoutParcel(db))
			}

			// Rider directory routes
			riders := protected.Group("/riders")
			{
				riders.POST("/apply", handlers.ApplyAsRider(db))
				riders.GET("/pending", middleware.RequireRole(db, models.RoleAdmin), handlers.ListPendingRiders(db))
				riders.GET("/active", middleware.RequireRole(db, models.RoleAdmin), handlers.ListActiveRiders(db))
				riders.GET("/available", middleware.RequireRole(db, models.RoleAdmin), handlers.ListAvailableRiders(db))
				riders.PATCH("/:id/approve", middleware.RequireRole(db, models.RoleAdmin), handlers.ApproveRider(db))
				riders.PATCH("/:id/deactivate", middleware.RequireRole(db, models.RoleAdmin), handlers.DeactivateRider(db))
				riders.DELETE("/:id", middleware.RequireRole(db, models.RoleAdmin), handlers.RejectRider(db))
				riders.GET("/earnings", middleware.RequireRole(db, models.RoleRider), handlers.GetRiderEarnings(db))
				riders.GET("/withdrawals", middleware.RequireRole(db, models.RoleRider), handlers.ListWithdrawals(db))
			}

			// Payment routes
			payments := protected.Group("/payments")
			{
				payments.POST("/create-intent", handlers.CreatePaymentIntent(db))
				payments.POST("", handlers.RecordPayment(db))
				payments.GET("", handlers.ListPayments(db))
			}

			// Review routes
			protected.POST("/reviews", handlers.CreateReview(db))

			// Admin dashboard stats
			stats := protected.Group("/stats")
			stats.Use(middleware.RequireRole(db, models.RoleAdmin))
			{
				stats.GET("/daily-bookings", handlers.GetDailyBookingStats(db))
				stats.GET("/districts", handlers.GetDistrictStats(db))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
