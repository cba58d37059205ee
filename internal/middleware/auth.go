package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/files-manager/internal/auth"
)

// TokenHeader carries the opaque session token on authenticated calls.
const TokenHeader = "X-Token"

// AuthRequired resolves the session token and aborts with 401 when it
// does not resolve. The user id lands in the context as "user_id".
func AuthRequired(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(TokenHeader)

		userID, err := authService.ResolveIdentity(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set("user_id", userID.String())
		c.Next()
	}
}
