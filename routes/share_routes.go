package routes

import (
	"github.com/gin-gonic/gin"

	"cloudbox/controllers"
)

func ShareRoutes(r *gin.RouterGroup, shares *controllers.ShareController) {
	group := r.Group("/shares")
	{
		group.POST("/bulk", shares.BulkShare)
		group.DELETE("/links/:uuid", shares.RevokeLink)
	}
}
