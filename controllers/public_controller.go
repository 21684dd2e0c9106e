package controllers

import (
	"github.com/gin-gonic/gin"

	"cloudbox/services"
	"cloudbox/utils"
)

// PublicController serves unauthenticated share link access. Passwords
// travel in the X-Share-Password header (or a password query parameter
// for plain browser links), never in the URL path.
type PublicController struct {
	linkService *services.LinkService
	fileService *services.FileService
}

func NewPublicController(linkService *services.LinkService, fileService *services.FileService) *PublicController {
	return &PublicController{
		linkService: linkService,
		fileService: fileService,
	}
}

// ResolveLink validates a share link and returns a preview of what it
// points at. Invalid links answer 404 regardless of the precise reason;
// a missing or wrong password answers 403.
func (pc *PublicController) ResolveLink(c *gin.Context) {
	link, err := pc.linkService.ResolveLink(c.Request.Context(), c.Param("uuid"), linkPassword(c))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	preview, err := pc.linkService.DescribeLink(c.Request.Context(), link)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Share link resolved", preview)
}

// DownloadByLink claims one download slot on the link and serves the file
// bytes. Folder links have no downloadable bytes and answer 400.
func (pc *PublicController) DownloadByLink(c *gin.Context) {
	link, err := pc.linkService.ResolveLink(c.Request.Context(), c.Param("uuid"), linkPassword(c))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	if link.FileID == nil {
		utils.BadRequestResponse(c, "Folder links cannot be downloaded directly")
		return
	}

	if _, err := pc.linkService.ConsumeDownload(c.Request.Context(), link.UUID, linkPassword(c), utils.GetRequestInfo(c)); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	url, stream, file, err := pc.fileService.OpenByLink(c.Request.Context(), *link.FileID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	serveBlob(c, url, stream, file)
}

func linkPassword(c *gin.Context) string {
	if pw := c.GetHeader("X-Share-Password"); pw != "" {
		return pw
	}
	return c.Query("password")
}
