package routes

import (
	"github.com/gin-gonic/gin"

	"cloudbox/controllers"
)

func ActivityRoutes(r *gin.RouterGroup, activity *controllers.ActivityController) {
	r.GET("/activity", activity.GetActivity)
}
