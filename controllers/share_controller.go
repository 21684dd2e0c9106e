package controllers

import (
	"github.com/gin-gonic/gin"

	"cloudbox/models"
	"cloudbox/services"
	"cloudbox/utils"
)

type ShareController struct {
	shareService *services.ShareService
	linkService  *services.LinkService
	bulkService  *services.BulkService
	appURL       string
}

func NewShareController(shareService *services.ShareService, linkService *services.LinkService, bulkService *services.BulkService, appURL string) *ShareController {
	return &ShareController{
		shareService: shareService,
		linkService:  linkService,
		bulkService:  bulkService,
		appURL:       appURL,
	}
}

// ShareFile grants a user access to a file
func (sc *ShareController) ShareFile(c *gin.Context) {
	sc.shareResource(c, models.ResourceFile)
}

// ShareFolder grants a user access to a folder and everything under it
func (sc *ShareController) ShareFolder(c *gin.Context) {
	sc.shareResource(c, models.ResourceFolder)
}

func (sc *ShareController) shareResource(c *gin.Context, kind models.ResourceKind) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	resourceID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid resource ID")
		return
	}

	var req models.ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	resource := models.Resource{Kind: kind, ID: resourceID}
	share, err := sc.shareService.GrantByEmail(c.Request.Context(), user.ID, resource, req.UserEmail, req.Permission, req.ExpiresAt, utils.GetRequestInfo(c))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Resource shared successfully", share)
}

// UnshareFile revokes a user's access to a file
func (sc *ShareController) UnshareFile(c *gin.Context) {
	sc.unshareResource(c, models.ResourceFile)
}

// UnshareFolder revokes a user's access to a folder
func (sc *ShareController) UnshareFolder(c *gin.Context) {
	sc.unshareResource(c, models.ResourceFolder)
}

func (sc *ShareController) unshareResource(c *gin.Context, kind models.ResourceKind) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	resourceID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid resource ID")
		return
	}

	var req models.RevokeShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request payload")
		return
	}

	targetID, err := utils.StringToObjectID(req.UserID)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID")
		return
	}

	resource := models.Resource{Kind: kind, ID: resourceID}
	if err := sc.shareService.Revoke(c.Request.Context(), user.ID, resource, targetID, utils.GetRequestInfo(c)); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Share revoked successfully", nil)
}

// GetFileShares lists the active shares on a file
func (sc *ShareController) GetFileShares(c *gin.Context) {
	sc.listShares(c, models.ResourceFile)
}

// GetFolderShares lists the active shares on a folder
func (sc *ShareController) GetFolderShares(c *gin.Context) {
	sc.listShares(c, models.ResourceFolder)
}

func (sc *ShareController) listShares(c *gin.Context, kind models.ResourceKind) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	resourceID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid resource ID")
		return
	}

	shares, err := sc.shareService.ListForResource(c.Request.Context(), user.ID, models.Resource{Kind: kind, ID: resourceID})
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Shares retrieved successfully", shares)
}

// CreateFileLink creates a public share link for a file
func (sc *ShareController) CreateFileLink(c *gin.Context) {
	sc.createLink(c, models.ResourceFile)
}

// CreateFolderLink creates a public share link for a folder
func (sc *ShareController) CreateFolderLink(c *gin.Context) {
	sc.createLink(c, models.ResourceFolder)
}

func (sc *ShareController) createLink(c *gin.Context, kind models.ResourceKind) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	resourceID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid resource ID")
		return
	}

	var req models.ShareLinkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request payload")
		return
	}

	resource := models.Resource{Kind: kind, ID: resourceID}
	link, err := sc.linkService.CreateLink(c.Request.Context(), user.ID, resource, &req, utils.GetRequestInfo(c))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Share link created successfully", linkResponse(link, sc.appURL))
}

// RevokeLink deactivates a share link
func (sc *ShareController) RevokeLink(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	if err := sc.linkService.RevokeLink(c.Request.Context(), user.ID, c.Param("uuid"), utils.GetRequestInfo(c)); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Share link revoked successfully", nil)
}

// BulkShare applies one grant to every (resource, email) pair. Each pair
// succeeds or fails on its own; the response always carries the full
// outcome list and the request as a whole returns 200.
func (sc *ShareController) BulkShare(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	var req models.BulkShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	outcomes := sc.bulkService.BulkShare(c.Request.Context(), user.ID, req.Items, req.UserEmails, req.Permission, req.ExpiresAt, utils.GetRequestInfo(c))
	utils.SuccessResponse(c, "Bulk share processed", outcomes)
}

// linkResponse builds the transport view of a link, including the URL a
// recipient can open.
func linkResponse(link *models.ShareLink, appURL string) *models.ShareLinkResponse {
	return &models.ShareLinkResponse{
		UUID:          link.UUID,
		URL:           appURL + "/share/" + link.UUID,
		ExpiresAt:     link.ExpiresAt,
		MaxDownloads:  link.MaxDownloads,
		DownloadCount: link.DownloadCount,
		IsActive:      link.IsActive,
		CreatedAt:     link.CreatedAt,
	}
}
