package handlers

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/chachabrian/parceltrack-backend/internal/models"
	"github.com/chachabrian/parceltrack-backend/internal/services"
	"github.com/chachabrian/parceltrack-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateParcel books a new parcel for the authenticated sender. Delivery
// and payment state are always server-assigned; multiple open parcels per
// sender are expected.
func CreateParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			SenderDistrict   string   `json:"senderDistrict" binding:"required"`
			ReceiverName     string   `json:"receiverName" binding:"required"`
			ReceiverDistrict string   `json:"receiverDistrict" binding:"required"`
			DeliveryCost     *float64 `json:"deliveryCost" binding:"required,gte=0"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		parcel := models.Parcel{
			TrackingID:       utils.GenerateTrackingID(),
			SenderEmail:      c.GetString("email"),
			SenderDistrict:   input.SenderDistrict,
			ReceiverName:     input.ReceiverName,
			ReceiverDistrict: input.ReceiverDistrict,
			DeliveryCost:     *input.DeliveryCost,
			DeliveryStatus:   models.DeliveryStatusProcessing,
			PaymentStatus:    models.PaymentStatusUnpaid,
		}

		if err := db.Create(&parcel).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to create parcel"})
			return
		}

		c.JSON(201, gin.H{
			"id":         parcel.ID,
			"trackingId": parcel.TrackingID,
			"parcel":     parcel,
		})
	}
}

// ListParcels returns parcels newest-first, optionally filtered by sender
// email. Non-admins may only list their own parcels.
func ListParcels(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("email")

		var caller models.User
		isAdmin := false
		if err := db.Where("email = ?", c.GetString("email")).First(&caller).Error; err == nil {
			isAdmin = caller.Role == models.RoleAdmin
		}

		if !isAdmin {
			if email == "" {
				email = c.GetString("email")
			} else if email != c.GetString("email") {
				c.JSON(403, gin.H{"error": "Forbidden access"})
				return
			}
		}

		query := db.Order("id desc")
		if email != "" {
			query = query.Where("sender_email = ?", email)
		}

		var parcels []models.Parcel
		if err := query.Find(&parcels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch parcels"})
			return
		}

		c.JSON(200, parcels)
	}
}

// GetParcel fetches a single parcel with its tracking history. Only the
// sender, the assigned rider and admins may see the full record; everyone
// else goes through the public tracking projection.
func GetParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		var parcel models.Parcel
		if err := db.Preload("TrackingEvents", func(db *gorm.DB) *gorm.DB {
			return db.Order("tracking_events.id asc")
		}).First(&parcel, uint(id)).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		email := c.GetString("email")
		if parcel.SenderEmail != email && parcel.RiderEmail != email {
			var caller models.User
			if err := db.Where("email = ?", email).First(&caller).Error; err != nil || caller.Role != models.RoleAdmin {
				c.JSON(403, gin.H{"error": "Forbidden access"})
				return
			}
		}

		c.JSON(200, parcel)
	}
}

// UpdateParcelStatus advances the delivery state machine. Admins may move
// any parcel; riders only the parcels assigned to them. The transition is
// validated against the canonical status set under a row lock, and exactly
// one tracking entry is appended per successful transition.
func UpdateParcelStatus(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		var rawStatus string
		var proofFile *multipart.FileHeader

		if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			rawStatus = c.PostForm("status")
			if file, ferr := c.FormFile("deliveryProof"); ferr == nil {
				proofFile = file
			}
		} else {
			var input struct {
				Status string `json:"status" binding:"required"`
			}
			if err := c.ShouldBindJSON(&input); err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			rawStatus = input.Status
		}

		// Free-form caller input never reaches the state machine: it is
		// normalized and whitelisted first.
		newStatus, ok := models.NormalizeDeliveryStatus(rawStatus)
		if !ok {
			c.JSON(400, gin.H{"error": "Invalid delivery status"})
			return
		}

		var caller models.User
		if err := db.Where("email = ?", c.GetString("email")).First(&caller).Error; err != nil {
			c.JSON(403, gin.H{"error": "Forbidden access"})
			return
		}

		var updated models.Parcel
		txErr := db.Transaction(func(tx *gorm.DB) error {
			var parcel models.Parcel
			if err := tx.First(&parcel, uint(id)).Error; err != nil {
				return errNotFound
			}

			switch caller.Role {
			case models.RoleAdmin:
			case models.RoleRider:
				if parcel.RiderEmail != caller.Email {
					return errForbidden
				}
			default:
				return errForbidden
			}

			if err := models.CanTransition(parcel.DeliveryStatus, newStatus); err != nil {
				return &transitionError{err}
			}

			updates := map[string]interface{}{"delivery_status": newStatus}
			// Upload only once the transition is known to be allowed, so a
			// rejected request cannot leave an orphan file behind
			if proofFile != nil {
				url, uerr := services.UploadImage(proofFile, "proofs")
				if uerr != nil {
					return fmt.Errorf("failed to upload delivery proof: %w", uerr)
				}
				updates["delivery_proof_url"] = url
			}
			// Conditional on the status we validated against, so a
			// concurrent transition cannot slip a backwards move through
			result := tx.Model(&models.Parcel{}).
				Where("id = ? AND delivery_status = ?", parcel.ID, parcel.DeliveryStatus).
				Updates(updates)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: parcel was modified concurrently", errConflict)
			}

			event := models.TrackingEvent{
				ParcelID: parcel.ID,
				Status:   newStatus,
				Message:  statusMessage(newStatus),
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}

			// A terminal transition frees the assigned rider
			if models.IsTerminalStatus(newStatus) && parcel.RiderID != nil {
				if err := tx.Model(&models.RiderApplication{}).
					Where("id = ?", *parcel.RiderID).
					Update("work_status", models.WorkStatusAvailable).Error; err != nil {
					return err
				}
			}

			updated = parcel
			updated.DeliveryStatus = newStatus
			return nil
		})

		if txErr != nil {
			respondTxError(c, txErr)
			return
		}

		if err := services.PublishTrackingUpdate(context.Background(), updated.TrackingID, string(newStatus), statusMessage(newStatus)); err != nil {
			log.Printf("Failed to publish tracking update for %s: %v", updated.TrackingID, err)
		}

		c.JSON(200, gin.H{
			"id":             updated.ID,
			"trackingId":     updated.TrackingID,
			"deliveryStatus": updated.DeliveryStatus,
		})
	}
}

// CancelParcel cancels a non-terminal parcel. Only the sender or an admin
// may cancel.
func CancelParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		email := c.GetString("email")

		var cancelled models.Parcel
		txErr := db.Transaction(func(tx *gorm.DB) error {
			var parcel models.Parcel
			if err := tx.First(&parcel, uint(id)).Error; err != nil {
				return errNotFound
			}

			if parcel.SenderEmail != email {
				var caller models.User
				if err := tx.Where("email = ?", email).First(&caller).Error; err != nil || caller.Role != models.RoleAdmin {
					return errForbidden
				}
			}

			if err := models.CanTransition(parcel.DeliveryStatus, models.DeliveryStatusCancelled); err != nil {
				return &transitionError{err}
			}

			result := tx.Model(&models.Parcel{}).
				Where("id = ? AND delivery_status = ?", parcel.ID, parcel.DeliveryStatus).
				Update("delivery_status", models.DeliveryStatusCancelled)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: parcel was modified concurrently", errConflict)
			}

			event := models.TrackingEvent{
				ParcelID: parcel.ID,
				Status:   models.DeliveryStatusCancelled,
				Message:  statusMessage(models.DeliveryStatusCancelled),
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}

			if parcel.RiderID != nil {
				if err := tx.Model(&models.RiderApplication{}).
					Where("id = ?", *parcel.RiderID).
					Update("work_status", models.WorkStatusAvailable).Error; err != nil {
					return err
				}
			}

			cancelled = parcel
			return nil
		})

		if txErr != nil {
			respondTxError(c, txErr)
			return
		}

		if err := services.PublishTrackingUpdate(context.Background(), cancelled.TrackingID, string(models.DeliveryStatusCancelled), statusMessage(models.DeliveryStatusCancelled)); err != nil {
			log.Printf("Failed to publish tracking update for %s: %v", cancelled.TrackingID, err)
		}

		c.JSON(200, gin.H{"message": "Parcel cancelled"})
	}
}

// DeleteParcel removes a parcel unconditionally. Tracking and payment
// records are left in place; there is no cascading cleanup.
func DeleteParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		result := db.Delete(&models.Parcel{}, uint(id))
		if result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to delete parcel"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		c.JSON(200, gin.H{"message": "Parcel deleted"})
	}
}

func statusMessage(status models.DeliveryStatus) string {
	switch status {
	case models.DeliveryStatusProcessing:
		return "Parcel booked and awaiting assignment"
	case models.DeliveryStatusPicked:
		return "Parcel picked up by rider"
	case models.DeliveryStatusInTransit:
		return "Parcel is on the way"
	case models.DeliveryStatusDelivered:
		return "Parcel delivered to receiver"
	case models.DeliveryStatusCancelled:
		return "Parcel cancelled"
	}
	return fmt.Sprintf("Parcel status updated to %s", status)
}
