package handlers

import (
	"strconv"

	"github.com/chachabrian/parceltrack-backend/internal/models"
	"github.com/chachabrian/parceltrack-backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetRiderEarnings lists the caller's delivered parcels with per-parcel
// earnings. Earnings are recomputed from the cost and districts on every
// read; nothing here is persisted.
func GetRiderEarnings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")

		var parcels []models.Parcel
		if err := db.Where("rider_email = ? AND delivery_status = ?", email, models.DeliveryStatusDelivered).
			Order("id desc").Find(&parcels).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch earnings"})
			return
		}

		var totalEarned, totalCashedOut, totalPending float64
		entries := make([]gin.H, 0, len(parcels))
		for _, p := range parcels {
			breakdown := utils.CalculateEarnings(p.DeliveryCost, p.SenderDistrict, p.ReceiverDistrict)
			totalEarned += breakdown.Earnings
			if p.IsCashedOut {
				totalCashedOut += breakdown.Earnings
			} else {
				totalPending += breakdown.Earnings
			}
			entries = append(entries, gin.H{
				"parcelId":     p.ID,
				"trackingId":   p.TrackingID,
				"deliveryCost": p.DeliveryCost,
				"rate":         breakdown.Rate,
				"earnings":     breakdown.Earnings,
				"isCashedOut":  p.IsCashedOut,
			})
		}

		c.JSON(200, gin.H{
			"parcels":        entries,
			"totalEarned":    totalEarned,
			"totalCashedOut": totalCashedOut,
			"totalPending":   totalPending,
		})
	}
}

// CashoutParcel settles a rider's earnings for one delivered parcel. The
// is_cashed_out flag is flipped with a conditional update and the ledger
// entry written in the same transaction, so a parcel can never be cashed
// out twice. The ledger amount is always derived server-side from the
// earnings formula; caller-supplied amounts are ignored.
func CashoutParcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(404, gin.H{"error": "Parcel not found"})
			return
		}

		email := c.GetString("email")

		var withdrawal models.Withdrawal
		txErr := db.Transaction(func(tx *gorm.DB) error {
			var parcel models.Parcel
			if err := tx.First(&parcel, uint(id)).Error; err != nil {
				return errNotFound
			}

			if parcel.RiderEmail != email {
				return errForbidden
			}
			if parcel.IsCashedOut {
				return errAlreadyProcessed
			}
			if parcel.DeliveryStatus != models.DeliveryStatusDelivered {
				return &transitionError{errNotDelivered}
			}

			result := tx.Model(&models.Parcel{}).
				Where("id = ? AND is_cashed_out = ?", parcel.ID, false).
				Update("is_cashed_out", true)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Lost the race against a concurrent cashout
				return errAlreadyProcessed
			}

			breakdown := utils.CalculateEarnings(parcel.DeliveryCost, parcel.SenderDistrict, parcel.ReceiverDistrict)
			withdrawal = models.Withdrawal{
				ParcelID:   parcel.ID,
				RiderEmail: email,
				Amount:     breakdown.Earnings,
				Status:     models.WithdrawalStatusCompleted,
			}
			return tx.Create(&withdrawal).Error
		})

		if txErr != nil {
			respondTxError(c, txErr)
			return
		}

		c.JSON(201, withdrawal)
	}
}

// ListWithdrawals returns the caller's cashout ledger entries
func ListWithdrawals(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var withdrawals []models.Withdrawal
		if err := db.Where("rider_email = ?", c.GetString("email")).
			Order("id desc").Find(&withdrawals).Error; err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch withdrawals"})
			return
		}

		c.JSON(200, withdrawals)
	}
}
