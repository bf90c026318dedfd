package handlers

import (
	"github.com/chachabrian/parceltrack-backend/internal/models"
	"github.com/chachabrian/parceltrack-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TrackingSocket subscribes a client to live status updates for one
// tracking id. Like the REST tracking lookup it is public, so the
// tracking id is validated before the upgrade.
func TrackingSocket(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		trackingID := c.Param("trackingId")

		var parcel models.Parcel
		if err := db.Select("id").Where("tracking_id = ?", trackingID).First(&parcel).Error; err != nil {
			c.JSON(404, gin.H{"error": "Tracking ID not found"})
			return
		}

		services.HandleWebSocket(hub, c.Writer, c.Request, trackingID)
	}
}
