package handlers

import (
	"github.com/chachabrian/parceltrack-backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateReview records rider feedback from the authenticated user
func CreateReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			RiderEmail string `json:"riderEmail" binding:"required,email"`
			Rating     int    `json:"rating" binding:"required,min=1,max=5"`
			Comment    string `json:"comment"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		review := models.Review{
			RiderEmail:    input.RiderEmail,
			ReviewerEmail: c.GetString("email"),
			Rating:        input.Rating,
			Comment:       input.Comment,
		}

		if err := db.Create(&review).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create review"})
			return
		}

		c.JSON(201, review)
	}
}

// ListReviews returns reviews, optionally filtered by rider email
func ListReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Order("id desc")
		if email := c.Query("riderEmail"); email != "" {
			query = query.Where("rider_email = ?", email)
		}

		var reviews []models.Review
		if err := query.Find(&reviews).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch reviews"})
			return
		}

		c.JSON(200, reviews)
	}
}
