package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adrijadey5/Smart-Home-Inventory/services"
)

// UserIDKey is the gin context key under which the authenticated user id is
// stored.
const UserIDKey = "user_id"

// RequireAuth validates the bearer token and stores the user id in the
// request context. Requests without a valid token never reach the inventory
// handlers.
func RequireAuth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			// SSE clients cannot set headers; allow the token as a query param.
			if t := c.Query("token"); t != "" {
				header = "Bearer " + t
			}
		}
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		userID, err := auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID extracts the authenticated user id set by RequireAuth.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
