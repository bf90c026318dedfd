package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateEarnings_SameDistrict(t *testing.T) {
	breakdown := CalculateEarnings(1000, "Dhaka", "Dhaka")

	assert.Equal(t, 0.8, breakdown.Rate)
	assert.True(t, breakdown.SameDistrict)
	assert.InDelta(t, 800.0, breakdown.Earnings, 0.001)
}

func TestCalculateEarnings_CrossDistrict(t *testing.T) {
	breakdown := CalculateEarnings(1000, "Dhaka", "Chittagong")

	assert.Equal(t, 0.3, breakdown.Rate)
	assert.False(t, breakdown.SameDistrict)
	assert.InDelta(t, 300.0, breakdown.Earnings, 0.001)
}

func TestCalculateEarnings_DistrictCaseInsensitive(t *testing.T) {
	breakdown := CalculateEarnings(500, "dhaka", "DHAKA")

	assert.Equal(t, 0.8, breakdown.Rate)
	assert.InDelta(t, 400.0, breakdown.Earnings, 0.001)
}

func TestCalculateEarnings_ZeroCost(t *testing.T) {
	breakdown := CalculateEarnings(0, "Dhaka", "Sylhet")

	assert.Zero(t, breakdown.Earnings)
}

func TestGenerateTrackingID(t *testing.T) {
	a := GenerateTrackingID()
	b := GenerateTrackingID()

	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^TRK-[0-9A-F]{12}$`, a)
}
