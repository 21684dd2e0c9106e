package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"cloudbox/models"
	"cloudbox/services"
	"cloudbox/utils"
)

type FileController struct {
	fileService *services.FileService
}

func NewFileController(fileService *services.FileService) *FileController {
	return &FileController{fileService: fileService}
}

// Upload stores a new file from a multipart form. The form field "file"
// carries the bytes; "folder_id" optionally places it in a folder.
func (fc *FileController) Upload(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "No file provided")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Unable to read uploaded file")
		return
	}
	defer src.Close()

	req := &models.FileCreateRequest{
		Name:     fileHeader.Filename,
		FolderID: c.PostForm("folder_id"),
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
	}
	if req.MimeType == "" {
		req.MimeType = "application/octet-stream"
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	file, err := fc.fileService.Upload(c.Request.Context(), user.ID, req, src, utils.GetRequestInfo(c))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "File uploaded successfully", file)
}

// GetFiles returns the files the user owns plus files shared with them.
func (fc *FileController) GetFiles(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	files, err := fc.fileService.ListFiles(c.Request.Context(), user.ID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Files retrieved successfully", files)
}

// GetFile returns a specific file's metadata
func (fc *FileController) GetFile(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	fileID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	file, err := fc.fileService.GetFile(c.Request.Context(), user.ID, fileID, utils.GetRequestInfo(c))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "File retrieved successfully", file)
}

// Download serves the file bytes, either as a redirect to a presigned URL
// or as a direct stream when the blob backend has no presign support.
func (fc *FileController) Download(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	fileID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	url, stream, file, err := fc.fileService.Download(c.Request.Context(), user.ID, fileID, utils.GetRequestInfo(c))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	serveBlob(c, url, stream, file)
}

// UpdateFile renames a file or moves it between folders
func (fc *FileController) UpdateFile(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	fileID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	var req models.FileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	file, err := fc.fileService.UpdateFile(c.Request.Context(), user.ID, fileID, &req, utils.GetRequestInfo(c))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "File updated successfully", file)
}

// DeleteFile removes a file's metadata and its stored bytes
func (fc *FileController) DeleteFile(c *gin.Context) {
	user, exists := utils.GetUserFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "User not found in context")
		return
	}

	fileID, err := utils.StringToObjectID(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid file ID")
		return
	}

	if err := fc.fileService.DeleteFile(c.Request.Context(), user.ID, fileID, utils.GetRequestInfo(c)); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "File deleted successfully", nil)
}

// serveBlob writes file content to the client. Presign-capable backends
// return a URL and the client is redirected; otherwise the stream is
// copied through with download headers.
func serveBlob(c *gin.Context, url string, stream io.ReadCloser, file *models.File) {
	if url != "" {
		c.Redirect(http.StatusFound, url)
		return
	}
	defer stream.Close()

	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.Header("Content-Type", file.MimeType)
	c.DataFromReader(http.StatusOK, file.Size, file.MimeType, stream, nil)
}
