package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mcosta/btcfolio-backend/internal/usecase/prices"
)

// NewPriceRouter builds the price service HTTP API.
func NewPriceRouter(priceService *prices.Service) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/prices", listPrices(priceService))
	router.GET("/prices/:timestamp", getPriceByTimestamp(priceService))

	return router
}

// listPrices returns a page of hourly candles sorted by timestamp DESC.
func listPrices(priceService *prices.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		points, err := priceService.List(c.Request.Context(), limit, offset)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, points)
	}
}

// getPriceByTimestamp rounds the timestamp to the nearest full hour and
// returns the candle stored for that hour.
func getPriceByTimestamp(priceService *prices.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ts, err := strconv.ParseInt(c.Param("timestamp"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Timestamp must be an integer"})
			return
		}

		point, err := priceService.PriceAt(c.Request.Context(), ts)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, point)
	}
}
