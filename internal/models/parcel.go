package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type DeliveryStatus string

const (
	DeliveryStatusProcessing DeliveryStatus = "Processing"
	DeliveryStatusPicked     DeliveryStatus = "picked"
	DeliveryStatusInTransit  DeliveryStatus = "in-transit"
	DeliveryStatusDelivered  DeliveryStatus = "delivered"
	DeliveryStatusCancelled  DeliveryStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// statusRank orders the forward delivery stages. Cancelled is handled
// separately since it is reachable from any non-terminal stage.
var statusRank = map[DeliveryStatus]int{
	DeliveryStatusProcessing: 0,
	DeliveryStatusPicked:     1,
	DeliveryStatusInTransit:  2,
	DeliveryStatusDelivered:  3,
}

// NormalizeDeliveryStatus maps accepted input aliases onto the canonical
// status set. "On The Way" is a legacy alias for the picked stage.
func NormalizeDeliveryStatus(s string) (DeliveryStatus, bool) {
	switch s {
	case string(DeliveryStatusProcessing):
		return DeliveryStatusProcessing, true
	case string(DeliveryStatusPicked), "On The Way", "On-The-Way":
		return DeliveryStatusPicked, true
	case string(DeliveryStatusInTransit):
		return DeliveryStatusInTransit, true
	case string(DeliveryStatusDelivered):
		return DeliveryStatusDelivered, true
	case string(DeliveryStatusCancelled):
		return DeliveryStatusCancelled, true
	}
	return "", false
}

// IsTerminalStatus reports whether no further transitions are allowed.
func IsTerminalStatus(s DeliveryStatus) bool {
	return s == DeliveryStatusDelivered || s == DeliveryStatusCancelled
}

// CanTransition validates a delivery status change. Stages only move
// forward; skipping stages is allowed (assignment jumps straight to
// in-transit). Cancellation is allowed from any non-terminal stage.
func CanTransition(from, to DeliveryStatus) error {
	if IsTerminalStatus(from) {
		return fmt.Errorf("parcel is already %s", from)
	}
	if to == DeliveryStatusCancelled {
		return nil
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return fmt.Errorf("unknown delivery status %q", from)
	}
	toRank, ok := statusRank[to]
	if !ok {
		return fmt.Errorf("unknown delivery status %q", to)
	}
	if toRank <= fromRank {
		return fmt.Errorf("cannot move parcel from %s back to %s", from, to)
	}
	return nil
}

type Parcel struct {
	gorm.Model
	TrackingID        string          `json:"trackingId" gorm:"column:tracking_id;uniqueIndex;not null"`
	SenderEmail       string          `json:"senderEmail" gorm:"column:sender_email;index;not null"`
	SenderDistrict    string          `json:"senderDistrict" gorm:"column:sender_district;not null"`
	ReceiverName      string          `json:"receiverName" gorm:"column:receiver_name;not null"`
	ReceiverDistrict  string          `json:"receiverDistrict" gorm:"column:receiver_district;not null"`
	DeliveryCost      float64         `json:"deliveryCost" gorm:"column:delivery_cost;not null"`
	DeliveryStatus    DeliveryStatus  `json:"deliveryStatus" gorm:"column:delivery_status;not null;default:Processing"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus" gorm:"column:payment_status;not null;default:unpaid"`
	TransactionID     string          `json:"transactionId,omitempty" gorm:"column:transaction_id"`
	RiderID           *uint           `json:"riderId,omitempty" gorm:"column:rider_id"`
	RiderEmail        string          `json:"riderEmail,omitempty" gorm:"column:rider_email;index"`
	RiderName         string          `json:"riderName,omitempty" gorm:"column:rider_name"`
	EstimatedDelivery *time.Time      `json:"estimatedDelivery,omitempty" gorm:"column:estimated_delivery"`
	IsCashedOut       bool            `json:"isCashedOut" gorm:"column:is_cashed_out;not null;default:false"`
	DeliveryProofURL  string          `json:"deliveryProofUrl,omitempty" gorm:"column:delivery_proof_url"`
	TrackingEvents    []TrackingEvent `json:"trackingHistory,omitempty" gorm:"foreignKey:ParcelID"`
}

// TableName specifies the table name
func (Parcel) TableName() string {
	return "parcels"
}

// TrackingEvent is one append-only entry in a parcel's tracking history.
// Rows are only ever inserted; there is no update or delete path.
type TrackingEvent struct {
	ID        uint           `json:"-" gorm:"primarykey"`
	ParcelID  uint           `json:"-" gorm:"column:parcel_id;index;not null"`
	Status    DeliveryStatus `json:"status" gorm:"column:status;not null"`
	Message   string         `json:"message" gorm:"column:message;not null"`
	CreatedAt time.Time      `json:"timestamp"`
}

// TableName specifies the table name
func (TrackingEvent) TableName() string {
	return "tracking_events"
}
