package routes

import (
	"github.com/gin-gonic/gin"

	"cloudbox/controllers"
)

func FolderRoutes(r *gin.RouterGroup, folders *controllers.FolderController, shares *controllers.ShareController) {
	group := r.Group("/folders")
	{
		group.GET("", folders.GetFolders)
		group.POST("", folders.CreateFolder)
		group.GET("/:id", folders.GetFolder)
		group.PUT("/:id", folders.UpdateFolder)
		group.POST("/:id/move", folders.MoveFolder)
		group.DELETE("/:id", folders.DeleteFolder)

		// Sharing
		group.POST("/:id/share", shares.ShareFolder)
		group.DELETE("/:id/share", shares.UnshareFolder)
		group.GET("/:id/shares", shares.GetFolderShares)
		group.POST("/:id/links", shares.CreateFolderLink)
	}
}
