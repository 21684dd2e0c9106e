package routes

import (
	"github.com/gin-gonic/gin"

	"cloudbox/controllers"
	"cloudbox/middleware"
)

// PublicRoutes serves anonymous share link access at the engine root so
// that link URLs stay short and stable.
func PublicRoutes(r *gin.Engine, public *controllers.PublicController) {
	group := r.Group("/share")
	group.Use(middleware.DownloadRateLimitMiddleware())
	{
		group.GET("/:uuid", public.ResolveLink)
		group.GET("/:uuid/download", public.DownloadByLink)
	}
}
