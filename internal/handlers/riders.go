package handlers

import (
	"errors"
	"fmt"

	"github.com/chachabrian/parceltrack-backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplyAsRider submits a rider application for the authenticated user
func ApplyAsRider(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name     string `json:"name" binding:"required"`
			Phone    string `json:"phone"`
			District string `json:"district" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		email := c.GetString("email")

		var existing models.RiderApplication
		if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
			c.JSON(409, gin.H{"error": "Application already exists"})
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(500, gin.H{"error": "Failed to submit application"})
			return
		}

		application := models.RiderApplication{
			Name:       input.Name,
			Email:      email,
			Phone:      input.Phone,
			District:   input.District,
			Status:     models.RiderStatusPending,
			WorkStatus: models.WorkStatusAvailable,
		}

		if err := db.Create(&application).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to submit application"})
			return
		}

		c.JSON(201, application)
	}
}

// ListPendingRiders returns applications awaiting review
func ListPendingRiders(db *gorm.DB) gin.HandlerFunc {
	return listRidersByStatus(db, models.RiderStatusPending)
}

// ListActiveRiders returns approved riders
func ListActiveRiders(db *gorm.DB) gin.HandlerFunc {
	return listRidersByStatus(db, models.RiderStatusActive)
}

func listRidersByStatus(db *gorm.DB, status models.RiderStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		var riders []models.RiderApplication
		if err := db.Where("status = ?", status).Order("id desc").Find(&riders).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch riders"})
			return
		}

		c.JSON(200, riders)
	}
}

// ApproveRider activates an application and promotes the linked user to
// the rider role. The two writes stand or fall together: if the user row
// cannot be promoted the activation is rolled back and the inconsistency
// reported instead of a silent half-approval.
func ApproveRider(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var approved models.RiderApplication
		txErr := db.Transaction(func(tx *gorm.DB) error {
			var application models.RiderApplication
			if err := tx.First(&application, c.Param("id")).Error; err != nil {
				return errNotFound
			}

			if application.Status == models.RiderStatusActive {
				return errAlreadyProcessed
			}

			if err := tx.Model(&application).Update("status", models.RiderStatusActive).Error; err != nil {
				return err
			}

			result := tx.Model(&models.User{}).
				Where("email = ?", application.Email).
				Update("role", models.RoleRider)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: no user account for %s, approval rolled back", errConflict, application.Email)
			}

			approved = application
			approved.Status = models.RiderStatusActive
			return nil
		})

		if txErr != nil {
			respondTxError(c, txErr)
			return
		}

		c.JSON(200, approved)
	}
}

// RejectRider deletes a rider application
func RejectRider(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := db.Delete(&models.RiderApplication{}, c.Param("id"))
		if result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to reject application"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(404, gin.H{"error": "Application not found"})
			return
		}

		c.JSON(200, gin.H{"message": "Application rejected"})
	}
}

// DeactivateRider resets an active rider back to pending
func DeactivateRider(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var application models.RiderApplication
		if err := db.First(&application, c.Param("id")).Error; err != nil {
			c.JSON(404, gin.H{"error": "Application not found"})
			return
		}

		if err := db.Model(&application).Update("status", models.RiderStatusPending).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to deactivate rider"})
			return
		}

		c.JSON(200, gin.H{"message": "Rider deactivated"})
	}
}

// ListAvailableRiders returns active riders serving a district. The
// district match is exact but case-insensitive.
func ListAvailableRiders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		district := c.Query("district")
		if district == "" {
			c.JSON(400, gin.H{"error": "district query parameter is required"})
			return
		}

		var riders []models.RiderApplication
		if err := db.Where("status = ? AND LOWER(district) = LOWER(?)", models.RiderStatusActive, district).
			Find(&riders).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch riders"})
			return
		}

		c.JSON(200, riders)
	}
}
