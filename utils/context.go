package utils

import (
	"cloudbox/models"

	"github.com/gin-gonic/gin"
)

const (
	userContextKey        = "current_user"
	requestInfoContextKey = "request_info"
)

// SetUserInContext stores the authenticated user on the Gin context
func SetUserInContext(c *gin.Context, user *models.User) {
	c.Set(userContextKey, user)
}

// GetUserFromContext retrieves the authenticated user from the Gin context
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// SetRequestInfo stores the captured client attributes on the Gin context
func SetRequestInfo(c *gin.Context, info models.RequestInfo) {
	c.Set(requestInfoContextKey, info)
}

// GetRequestInfo retrieves the captured client attributes; zero value when
// the middleware did not run.
func GetRequestInfo(c *gin.Context) models.RequestInfo {
	value, exists := c.Get(requestInfoContextKey)
	if !exists {
		return models.RequestInfo{}
	}
	info, ok := value.(models.RequestInfo)
	if !ok {
		return models.RequestInfo{}
	}
	return info
}
