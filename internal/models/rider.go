package models

import "gorm.io/gorm"

type RiderStatus string

const (
	RiderStatusPending RiderStatus = "pending"
	RiderStatusActive  RiderStatus = "active"
)

type WorkStatus string

const (
	WorkStatusAvailable  WorkStatus = "available"
	WorkStatusInDelivery WorkStatus = "in delivery"
)

// RiderApplication doubles as the rider record once approved: an admin
// flips Status to active and the matching User row gains the rider role.
type RiderApplication struct {
	gorm.Model
	Name       string      `json:"name" gorm:"column:name;not null"`
	Email      string      `json:"email" gorm:"column:email;unique;not null"`
	Phone      string      `json:"phone" gorm:"column:phone"`
	District   string      `json:"district" gorm:"column:district;not null"`
	Status     RiderStatus `json:"status" gorm:"column:status;not null;default:pending"`
	WorkStatus WorkStatus  `json:"workStatus" gorm:"column:work_status;not null;default:available"`
}

// TableName specifies the table name
func (RiderApplication) TableName() string {
	return "rider_applications"
}
