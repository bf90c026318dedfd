package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment is the receipt appended when a parcel's fee is settled.
// One-to-one with the parcel's unpaid to paid transition.
type Payment struct {
	gorm.Model
	ParcelID      uint      `json:"parcelId" gorm:"column:parcel_id;index;not null"`
	TransactionID string    `json:"transactionId" gorm:"column:transaction_id;not null"`
	Email         string    `json:"email" gorm:"column:email;not null"`
	Amount        float64   `json:"amount" gorm:"column:amount;not null"`
	PaidAt        time.Time `json:"paidAt" gorm:"column:paid_at;not null"`
}

// TableName specifies the table name
func (Payment) TableName() string {
	return "payments"
}

type WithdrawalStatus string

const (
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
)

// Withdrawal is one cashout ledger entry. The unique index on ParcelID
// backs up the is_cashed_out guard on the parcel itself.
type Withdrawal struct {
	gorm.Model
	ParcelID   uint             `json:"parcelId" gorm:"column:parcel_id;uniqueIndex;not null"`
	RiderEmail string           `json:"riderEmail" gorm:"column:rider_email;index;not null"`
	Amount     float64          `json:"amount" gorm:"column:amount;not null"`
	Status     WithdrawalStatus `json:"status" gorm:"column:status;not null;default:completed"`
}

// TableName specifies the table name
func (Withdrawal) TableName() string {
	return "withdrawals"
}
