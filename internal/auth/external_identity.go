package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Context keys under which an upstream OAuth verifier attaches the identity
// it has already validated. This service never performs the handshake itself:
// it only consumes a verified email and display name.
const (
	ExternalEmailKey = "externalEmail"
	ExternalNameKey  = "externalName"
)

// ExternalIdentityRequired creates a gin middleware that rejects requests on
// which no verified external identity was attached. It must run AFTER the
// provider-specific verification middleware configured in main.
func ExternalIdentityRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(ExternalEmailKey)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "External identity not verified"})
			return
		}
		c.Next()
	}
}
