package controllers

import (
	"github.com/gin-gonic/gin"

	"cloudbox/models"
	"cloudbox/services"
	"cloudbox/utils"
)

type FolderController struct {
	folderService *services.FolderService
}

func NewFolderController(folderService *services.FolderService) *FolderController {
	return &FolderController{folderService: folderService}
}

// CreateFolder creates a folder, optionally inside a parent
func (fc *FolderController) CreateFolder(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	var req models.FolderCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	folder, err := fc.folderService.CreateFolder(c.Request.Context(), user.ID, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Folder created successfully", folder)
}

// GetFolders lists folders under a parent. With no parent it returns the
// user's root folders plus folders shared with them.
func (fc *FolderController) GetFolders(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	folders, err := fc.folderService.ListFolders(c.Request.Context(), user.ID, c.Query("parent_id"))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Folders retrieved successfully", folders)
}

// GetFolder returns a specific folder
func (fc *FolderController) GetFolder(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	folderID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return
	}

	folder, err := fc.folderService.GetFolder(c.Request.Context(), user.ID, folderID, utils.GetRequestInfo(c))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Folder retrieved successfully", folder)
}

// UpdateFolder renames a folder or changes its description
func (fc *FolderController) UpdateFolder(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	folderID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return
	}

	var req models.FolderUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	folder, err := fc.folderService.UpdateFolder(c.Request.Context(), user.ID, folderID, &req, utils.GetRequestInfo(c))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Folder updated successfully", folder)
}

// MoveFolder reparents a folder. An empty parent_id moves it to the root.
func (fc *FolderController) MoveFolder(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	folderID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return
	}

	var req models.FolderMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request payload")
		return
	}

	folder, err := fc.folderService.MoveFolder(c.Request.Context(), user.ID, folderID, req.ParentID, utils.GetRequestInfo(c))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Folder moved successfully", folder)
}

// DeleteFolder removes an empty folder
func (fc *FolderController) DeleteFolder(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	folderID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid folder ID")
		return
	}

	if err := fc.folderService.DeleteFolder(c.Request.Context(), user.ID, folderID, utils.GetRequestInfo(c)); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Folder deleted successfully", nil)
}
