package utils

import (
	"errors"
	"net/http"
	"time"

	"cloudbox/errtypes"
	"cloudbox/models"

	"github.com/gin-gonic/gin"
)

// SuccessResponse sends a successful API response
func SuccessResponse(c *gin.Context, message string, data interface{}) {
	response := models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
	c.JSON(http.StatusOK, response)
}

// CreatedResponse sends a 201 created response
func CreatedResponse(c *gin.Context, message string, data interface{}) {
	response := models.APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
	c.JSON(http.StatusCreated, response)
}

// ErrorResponse sends an error API response
func ErrorResponse(c *gin.Context, statusCode int, message string, details map[string]interface{}) {
	response := models.APIResponse{
		Success: false,
		Message: message,
		Error: &models.APIError{
			Code:    http.StatusText(statusCode),
			Message: message,
			Details: details,
		},
		Timestamp: time.Now(),
	}
	c.JSON(statusCode, response)
}

// ValidationErrorResponse sends a validation error response
func ValidationErrorResponse(c *gin.Context, err error) {
	ErrorResponse(c, http.StatusBadRequest, "Validation failed", map[string]interface{}{
		"validation_errors": err.Error(),
	})
}

// BadRequestResponse sends a 400 response
func BadRequestResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message, nil)
}

// UnauthorizedResponse sends a 401 response
func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized access"
	}
	ErrorResponse(c, http.StatusUnauthorized, message, nil)
}

// ForbiddenResponse sends a 403 response
func ForbiddenResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Access forbidden"
	}
	ErrorResponse(c, http.StatusForbidden, message, nil)
}

// NotFoundResponse sends a 404 response
func NotFoundResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	ErrorResponse(c, http.StatusNotFound, message, nil)
}

// ConflictResponse sends a 409 response
func ConflictResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, message, nil)
}

// TooManyRequestsResponse sends a 429 response
func TooManyRequestsResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Too many requests"
	}
	ErrorResponse(c, http.StatusTooManyRequests, message, nil)
}

// InternalServerErrorResponse sends a 500 response
func InternalServerErrorResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	ErrorResponse(c, http.StatusInternalServerError, message, nil)
}

// ServiceErrorResponse maps a service-layer error to the matching HTTP
// response. Link-resolution sub-kinds (expired, inactive, quota) collapse
// to 404 at the boundary; a wrong password stays a 403. The distinction is
// preserved internally for logging, not leaked to unauthenticated callers.
func ServiceErrorResponse(c *gin.Context, err error) {
	var (
		notFound     errtypes.NotFound
		denied       errtypes.PermissionDenied
		invalid      errtypes.InvalidArgument
		exists       errtypes.AlreadyExists
		expired      errtypes.Expired
		inactive     errtypes.Inactive
		quota        errtypes.QuotaExceeded
		wrongPasswd  errtypes.WrongPassword
	)
	switch {
	case errors.As(err, &notFound):
		NotFoundResponse(c, notFound.Error())
	case errors.As(err, &denied):
		ForbiddenResponse(c, denied.Error())
	case errors.As(err, &invalid):
		BadRequestResponse(c, invalid.Error())
	case errors.As(err, &exists):
		ConflictResponse(c, exists.Error())
	case errors.As(err, &expired), errors.As(err, &inactive), errors.As(err, &quota):
		NotFoundResponse(c, "share link not available")
	case errors.As(err, &wrongPasswd):
		ForbiddenResponse(c, "password required or incorrect")
	default:
		InternalServerErrorResponse(c, "")
	}
}

// PaginatedResponse sends a response with pagination metadata
func PaginatedResponse(c *gin.Context, message string, data interface{}, page, limit, total int) {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	response := models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta: &models.Meta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
		Timestamp: time.Now(),
	}
	c.JSON(http.StatusOK, response)
}
