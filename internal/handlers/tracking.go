package handlers

import (
	"github.com/chachabrian/parceltrack-backend/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TrackParcel is the public, unauthenticated tracking lookup. It returns a
// restricted projection only: sender contact details and financial fields
// never leave this endpoint.
func TrackParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		trackingID := c.Param("trackingId")

		var parcel models.Parcel
		if err := db.Preload("TrackingEvents", func(db *gorm.DB) *gorm.DB {
			return db.Order("tracking_events.id asc")
		}).Where("tracking_id = ?", trackingID).First(&parcel).Error; err != nil {
			c.JSON(404, gin.H{"error": "Tracking ID not found"})
			return
		}

		c.JSON(200, gin.H{
			"trackingId":       parcel.TrackingID,
			"receiverName":     parcel.ReceiverName,
			"deliveryStatus":   parcel.DeliveryStatus,
			"senderDistrict":   parcel.SenderDistrict,
			"receiverDistrict": parcel.ReceiverDistrict,
			"trackingHistory":  parcel.TrackingEvents,
		})
	}
}
