package utils

import "strings"

const (
	// SameDistrictRate applies when the parcel stays inside one district.
	SameDistrictRate = 0.8
	// CrossDistrictRate applies when sender and receiver districts differ.
	CrossDistrictRate = 0.3
)

// EarningsBreakdown contains the computed rider earnings for one parcel.
type EarningsBreakdown struct {
	DeliveryCost float64 `json:"deliveryCost"`
	Rate         float64 `json:"rate"`
	SameDistrict bool    `json:"sameDistrict"`
	Earnings     float64 `json:"earnings"`
}

// EarningsRate returns the payout rate for a delivery between the two
// districts. District comparison is case-insensitive.
func EarningsRate(senderDistrict, receiverDistrict string) float64 {
	if strings.EqualFold(senderDistrict, receiverDistrict) {
		return SameDistrictRate
	}
	return CrossDistrictRate
}

// CalculateEarnings computes the rider payout for a parcel. Earnings are
// always derived from the delivery cost and districts at read time; they
// are never stored on the parcel record.
func CalculateEarnings(deliveryCost float64, senderDistrict, receiverDistrict string) EarningsBreakdown {
	rate := EarningsRate(senderDistrict, receiverDistrict)
	return EarningsBreakdown{
		DeliveryCost: deliveryCost,
		Rate:         rate,
		SameDistrict: rate == SameDistrictRate,
		Earnings:     deliveryCost * rate,
	}
}
