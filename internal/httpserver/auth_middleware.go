package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"buildtrack/internal/util"
)

// AuthMiddleware validates the bearer token minted by the identity service
// and attaches the trusted caller identity to the request context. It does
// not authorize anything; that happens against the project in the service.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		userID, role, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}
