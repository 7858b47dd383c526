package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mcosta/btcfolio-backend/internal/domain"
)

// writeError maps the domain error taxonomy onto HTTP statuses.
//
// Out-of-range keeps its own message so callers can tell "no price exists
// here" apart from "the series has a gap". Not-found covers absent and
// foreign-owned resources alike.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Timestamp out of valid range."})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrPriceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Price record not found"})
	case errors.Is(err, domain.ErrNoPriceData):
		c.JSON(http.StatusNotFound, gin.H{"error": "No price data available"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Resource already exists"})
	case errors.Is(err, domain.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Upstream service unavailable, try again"})
	default:
		log.Printf("httpapi: unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
