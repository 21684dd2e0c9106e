package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cloudbox/config"
	"cloudbox/controllers"
	"cloudbox/middleware"
	"cloudbox/services"
)

// Controllers bundles the transport handlers wired in main.
type Controllers struct {
	Files    *controllers.FileController
	Folders  *controllers.FolderController
	Shares   *controllers.ShareController
	Public   *controllers.PublicController
	Activity *controllers.ActivityController
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, logger *logrus.Logger, users *services.UserService, ctrl *Controllers) {
	// Global middleware
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middleware.RequestInfoMiddleware())
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(gin.Recovery())

	// Public share link routes, no authentication
	PublicRoutes(r, ctrl.Public)

	// API v1 routes
	v1 := r.Group("/api/v1")
	if cfg.RateLimitEnabled {
		v1.Use(middleware.RateLimitMiddleware())
	}
	v1.Use(middleware.AuthMiddleware(users))
	{
		FileRoutes(v1, ctrl.Files, ctrl.Shares)
		FolderRoutes(v1, ctrl.Folders, ctrl.Shares)
		ShareRoutes(v1, ctrl.Shares)
		ActivityRoutes(v1, ctrl.Activity)
	}
}
