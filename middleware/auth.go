package middleware

import (
	"strings"

	"cloudbox/services"
	"cloudbox/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the bearer token issued by the external identity
// provider and loads the mirrored user into the request context. The
// service trusts the verified identity completely; it performs no
// authentication of its own.
func AuthMiddleware(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, "Authorization header required")
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			utils.UnauthorizedResponse(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenParts[1])
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		user, err := users.EnsureFromClaims(c.Request.Context(), claims)
		if err != nil {
			utils.UnauthorizedResponse(c, "User not found")
			c.Abort()
			return
		}

		if !user.IsActive {
			utils.UnauthorizedResponse(c, "Account is deactivated")
			c.Abort()
			return
		}

		utils.SetUserInContext(c, user)
		c.Next()
	}
}
