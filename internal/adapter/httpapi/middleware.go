package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mcosta/btcfolio-backend/internal/usecase/auth"
)

// ownerKey is the gin context key carrying the authenticated owner id.
const ownerKey = "owner_id"

// AuthRequired validates the bearer token and stores the owner identity in
// the request context. Handlers downstream never inspect credentials.
func AuthRequired(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		ownerID, err := authService.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ownerKey, ownerID)
		c.Next()
	}
}

// ownerID returns the authenticated owner set by AuthRequired.
func ownerID(c *gin.Context) uuid.UUID {
	return c.MustGet(ownerKey).(uuid.UUID)
}
