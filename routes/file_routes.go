package routes

import (
	"github.com/gin-gonic/gin"

	"cloudbox/controllers"
	"cloudbox/middleware"
)

func FileRoutes(r *gin.RouterGroup, files *controllers.FileController, shares *controllers.ShareController) {
	group := r.Group("/files")
	{
		group.GET("", files.GetFiles)
		group.POST("/upload", middleware.UploadRateLimitMiddleware(), files.Upload)
		group.GET("/:id", files.GetFile)
		group.PUT("/:id", files.UpdateFile)
		group.DELETE("/:id", files.DeleteFile)
		group.GET("/:id/download", middleware.DownloadRateLimitMiddleware(), files.Download)

		// Sharing
		group.POST("/:id/share", shares.ShareFile)
		group.DELETE("/:id/share", shares.UnshareFile)
		group.GET("/:id/shares", shares.GetFileShares)
		group.POST("/:id/links", shares.CreateFileLink)
	}
}
