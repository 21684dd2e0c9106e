package middleware

import (
	"strings"

	"cloudbox/models"
	"cloudbox/utils"

	"github.com/gin-gonic/gin"
)

// RequestInfoMiddleware captures the client IP and user agent once per
// request and stores them as an explicit parameter object. Services take
// the models.RequestInfo as an argument instead of reaching into ambient
// request state.
func RequestInfoMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.SetRequestInfo(c, models.RequestInfo{
			IPAddress: clientIP(c),
			UserAgent: c.Request.UserAgent(),
		})
		c.Next()
	}
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return c.ClientIP()
}
