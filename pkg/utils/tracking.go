package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateTrackingID returns a public opaque identifier for anonymous
// parcel lookups. It carries no information about the sender.
func GenerateTrackingID() string {
	return "TRK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
