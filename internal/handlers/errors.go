package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// Sentinel errors returned from inside transactions so the handler can map
// the rollback cause to the right HTTP status.
var (
	errNotFound         = errors.New("record not found")
	errForbidden        = errors.New("forbidden")
	errAlreadyProcessed = errors.New("already processed")
	errConflict         = errors.New("conflict")
	errNotDelivered     = errors.New("parcel has not been delivered yet")
)

// transitionError marks a delivery-status transition rejected by the state
// machine.
type transitionError struct {
	err error
}

func (e *transitionError) Error() string { return e.err.Error() }
func (e *transitionError) Unwrap() error { return e.err }

func respondTxError(c *gin.Context, err error) {
	var te *transitionError
	switch {
	case errors.Is(err, errNotFound):
		c.JSON(404, gin.H{"error": "Resource not found"})
	case errors.Is(err, errForbidden):
		c.JSON(403, gin.H{"error": "Forbidden access"})
	case errors.Is(err, errAlreadyProcessed):
		c.JSON(409, gin.H{"error": "Already processed"})
	case errors.Is(err, errConflict):
		c.JSON(409, gin.H{"error": err.Error()})
	case errors.As(err, &te):
		c.JSON(422, gin.H{"error": te.Error()})
	default:
		c.JSON(500, gin.H{"error": "Internal server error"})
	}
}
