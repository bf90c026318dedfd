package handlers

import (
	"log"
	"time"

	"github.com/chachabrian/parceltrack-backend/internal/models"
	"github.com/chachabrian/parceltrack-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const statsCacheTTL = 60 * time.Second

// DailyBookingStat is one creation-date bucket of parcel bookings
type DailyBookingStat struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// DistrictStat is the parcel count for one sender district
type DistrictStat struct {
	District string `json:"district"`
	Count    int64  `json:"count"`
}

// GetDailyBookingStats returns booking counts for the most recent seven
// creation dates, oldest bucket first
func GetDailyBookingStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if services.RedisClient != nil {
			var cached []DailyBookingStat
			if err := services.GetCachedStats(c.Request.Context(), "daily-bookings", &cached); err == nil {
				c.JSON(200, cached)
				return
			}
		}

		var stats []DailyBookingStat
		err := db.Model(&models.Parcel{}).
			Select("DATE(created_at) as date, COUNT(*) as count").
			Where("created_at IS NOT NULL").
			Group("DATE(created_at)").
			Order("date DESC").
			Limit(7).
			Scan(&stats).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to aggregate bookings"})
			return
		}

		// Query is newest-first to pick the recent buckets; present ascending
		for i, j := 0, len(stats)-1; i < j; i, j = i+1, j-1 {
			stats[i], stats[j] = stats[j], stats[i]
		}

		if services.RedisClient != nil {
			if err := services.CacheStats(c.Request.Context(), "daily-bookings", stats, statsCacheTTL); err != nil {
				log.Printf("Failed to cache daily booking stats: %v", err)
			}
		}

		c.JSON(200, stats)
	}
}

// GetDistrictStats returns parcel counts grouped by sender district,
// busiest district first
func GetDistrictStats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if services.RedisClient != nil {
			var cached []DistrictStat
			if err := services.GetCachedStats(c.Request.Context(), "districts", &cached); err == nil {
				c.JSON(200, cached)
				return
			}
		}

		var stats []DistrictStat
		err := db.Model(&models.Parcel{}).
			Select("sender_district as district, COUNT(*) as count").
			Group("sender_district").
			Order("count DESC").
			Scan(&stats).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to aggregate districts"})
			return
		}

		if services.RedisClient != nil {
			if err := services.CacheStats(c.Request.Context(), "districts", stats, statsCacheTTL); err != nil {
				log.Printf("Failed to cache district stats: %v", err)
			}
		}

		c.JSON(200, stats)
	}
}
