package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/chachabrian/parceltrack-backend/internal/models"
	"github.com/chachabrian/parceltrack-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AssignRider links a parcel to an active rider. Both records move inside
// one transaction: the parcel gains the rider fields and goes in-transit,
// the rider is marked busy. The parcel update is conditional on it being
// paid, still Processing and unassigned; touching zero rows aborts the
// whole assignment.
func AssignRider(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		parcelID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		var input struct {
			RiderID           uint       `json:"riderId" binding:"required"`
			EstimatedDelivery *time.Time `json:"estimatedDelivery"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var assigned models.Parcel
		txErr := db.Transaction(func(tx *gorm.DB) error {
			var rider models.RiderApplication
			if err := tx.First(&rider, input.RiderID).Error; err != nil {
				return errNotFound
			}
			if rider.Status != models.RiderStatusActive {
				return fmt.Errorf("%w: rider is not active", errConflict)
			}

			result := tx.Model(&models.Parcel{}).
				Where("id = ? AND payment_status = ? AND delivery_status = ? AND rider_id IS NULL",
					uint(parcelID), models.PaymentStatusPaid, models.DeliveryStatusProcessing).
				Updates(map[string]interface{}{
					"rider_id":           rider.ID,
					"rider_email":        rider.Email,
					"rider_name":         rider.Name,
					"delivery_status":    models.DeliveryStatusInTransit,
					"estimated_delivery": input.EstimatedDelivery,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Unknown parcel, unpaid, already assigned, or past
				// Processing: the caller sees the same not-found outcome
				return errNotFound
			}

			event := models.TrackingEvent{
				ParcelID: uint(parcelID),
				Status:   models.DeliveryStatusInTransit,
				Message:  fmt.Sprintf("Rider %s assigned, parcel in transit", rider.Name),
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}

			if err := tx.Model(&rider).Update("work_status", models.WorkStatusInDelivery).Error; err != nil {
				return err
			}

			if err := tx.First(&assigned, uint(parcelID)).Error; err != nil {
				return err
			}
			return nil
		})

		if txErr != nil {
			respondTxError(c, txErr)
			return
		}

		if err := services.PublishTrackingUpdate(context.Background(), assigned.TrackingID,
			string(models.DeliveryStatusInTransit), "Rider assigned, parcel in transit"); err != nil {
			log.Printf("Failed to publish tracking update for %s: %v", assigned.TrackingID, err)
		}

		c.JSON(200, assigned)
	}
}
