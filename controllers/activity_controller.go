package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"cloudbox/services"
	"cloudbox/utils"
)

type ActivityController struct {
	activityService *services.ActivityService
}

func NewActivityController(activityService *services.ActivityService) *ActivityController {
	return &ActivityController{activityService: activityService}
}

// GetActivity returns the user's recent activity, newest first
func (ac *ActivityController) GetActivity(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := ac.activityService.ListForUser(c.Request.Context(), user.ID, limit)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Activity retrieved successfully", entries)
}
