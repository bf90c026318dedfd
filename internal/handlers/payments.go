package handlers

import (
	"context"
	"log"
	"time"

	"github.com/chachabrian/parceltrack-backend/internal/models"
	"github.com/chachabrian/parceltrack-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreatePaymentIntent asks the payment provider for an intent covering a
// parcel's delivery cost. The provider is a black box; only the client
// secret reference comes back.
func CreatePaymentIntent(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ParcelID uint `json:"parcelId" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var parcel models.Parcel
		if err := db.First(&parcel, input.ParcelID).Error; err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		if parcel.SenderEmail != c.GetString("email") {
			c.JSON(403, gin.H{"error": "Forbidden access"})
			return
		}

		if parcel.PaymentStatus == models.PaymentStatusPaid {
			c.JSON(409, gin.H{"error": "Parcel is already paid"})
			return
		}

		if parcel.DeliveryCost <= 0 {
			c.JSON(400, gin.H{"error": "Nothing to pay for this parcel"})
			return
		}

		clientSecret, err := services.CreatePaymentIntent(c.Request.Context(), parcel.DeliveryCost)
		if err != nil {
			log.Printf("Payment intent creation failed for parcel %d: %v", parcel.ID, err)
			c.JSON(500, gin.H{"error": "Failed to create payment intent"})
			return
		}

		c.JSON(200, gin.H{"clientSecret": clientSecret})
	}
}

// RecordPayment marks a parcel paid and appends the payment receipt. The
// parcel flip and the receipt are one transaction; there is no state where
// one exists without the other.
func RecordPayment(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			ParcelID      uint   `json:"parcelId" binding:"required"`
			TransactionID string `json:"transactionId" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		email := c.GetString("email")

		var paid models.Parcel
		txErr := db.Transaction(func(tx *gorm.DB) error {
			var parcel models.Parcel
			if err := tx.First(&parcel, input.ParcelID).Error; err != nil {
				return errNotFound
			}

			if parcel.SenderEmail != email {
				return errForbidden
			}

			result := tx.Model(&models.Parcel{}).
				Where("id = ? AND payment_status = ?", parcel.ID, models.PaymentStatusUnpaid).
				Updates(map[string]interface{}{
					"payment_status": models.PaymentStatusPaid,
					"transaction_id": input.TransactionID,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return errAlreadyProcessed
			}

			payment := models.Payment{
				ParcelID:      parcel.ID,
				TransactionID: input.TransactionID,
				Email:         email,
				Amount:        parcel.DeliveryCost,
				PaidAt:        time.Now(),
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}

			event := models.TrackingEvent{
				ParcelID: parcel.ID,
				Status:   parcel.DeliveryStatus,
				Message:  "Payment received",
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}

			paid = parcel
			return nil
		})

		if txErr != nil {
			respondTxError(c, txErr)
			return
		}

		if err := services.PublishTrackingUpdate(context.Background(), paid.TrackingID,
			string(paid.DeliveryStatus), "Payment received"); err != nil {
			log.Printf("Failed to publish tracking update for %s: %v", paid.TrackingID, err)
		}

		c.JSON(201, gin.H{
			"parcelId":      paid.ID,
			"transactionId": input.TransactionID,
			"paymentStatus": models.PaymentStatusPaid,
		})
	}
}

// ListPayments returns payment receipts, optionally scoped to one email.
// Non-admins only see their own receipts.
func ListPayments(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")

		var caller models.User
		isAdmin := false
		if err := db.Where("email = ?", email).First(&caller).Error; err == nil {
			isAdmin = caller.Role == models.RoleAdmin
		}

		query := db.Order("id desc")
		if !isAdmin {
			query = query.Where("email = ?", email)
		} else if q := c.Query("email"); q != "" {
			query = query.Where("email = ?", q)
		}

		var payments []models.Payment
		if err := query.Find(&payments).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch payments"})
			return
		}

		c.JSON(200, payments)
	}
}
