package handler

import (
	"io"
	"net/http"

	"docflow/internal/middleware"
	"docflow/internal/policy"
	"docflow/internal/service"
	"docflow/pkg/pagination"
	"docflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	fileService service.FileService
}

func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *FileHandler) RegisterRoutes(router *gin.RouterGroup) {
	files := router.Group("/files")
	{
		files.GET("", middleware.RequireCapability(policy.FilesRead), h.ListFiles)
		files.GET("/:id", middleware.RequireCapability(policy.FilesRead), h.GetFile)
		files.POST("", middleware.RequireCapability(policy.FilesSubmit), h.SubmitFile)
		files.POST("/:id/approve", middleware.RequireCapability(policy.FilesReview), h.ApproveFile)
		files.POST("/:id/reject", middleware.RequireCapability(policy.FilesReview), h.RejectFile)
	}
}

// SubmitFile handles POST /files with a multipart upload
// @Summary      Submit file
// @Description  Archives a file under a category; it waits as PENDING until reviewed
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file         formData  file    true   "File to archive"
// @Param        category     formData  string  true   "Category"
// @Param        subcategory  formData  string  false  "Subcategory"
// @Success      201  {object}  response.Response{data=service.FileResponse}
// @Failure      400  {object}  response.Response
// @Router       /files [post]
func (h *FileHandler) SubmitFile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing file upload"))
		return
	}

	category := c.PostForm("category")
	if category == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing category"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to open upload"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Failed to read upload"))
		return
	}

	req := service.SubmitFileDTO{
		FileName:    fileHeader.Filename,
		Category:    category,
		Subcategory: c.PostForm("subcategory"),
		ViewableBy:  c.PostFormArray("viewable_by"),
	}

	record, err := h.fileService.SubmitFile(c.Request.Context(), req, data, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, record))
}

// GetFile handles GET /files/:id
// @Summary      Get file record
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "File ID"
// @Success      200  {object}  response.Response{data=service.FileResponse}
// @Failure      404  {object}  response.Response
// @Router       /files/{id} [get]
func (h *FileHandler) GetFile(c *gin.Context) {
	record, err := h.fileService.GetFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}

// ListFiles handles GET /files
// @Summary      List file records
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Number of items per page (default 20)"
// @Param        status    query     string  false  "Status filter (PENDING, APPROVED, REJECTED)"
// @Param        category  query     string  false  "Category filter"
// @Success      200       {object}  response.Response{data=response.ListData}
// @Failure      500       {object}  response.Response
// @Router       /files [get]
func (h *FileHandler) ListFiles(c *gin.Context) {
	params := pagination.Parse(c)
	filter := service.FileFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Page:     params.Page,
		Limit:    params.Limit,
	}

	files, total, err := h.fileService.ListFiles(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch files"))
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, files, total, params.Page, params.Limit))
}

// ApproveFile handles POST /files/:id/approve
// @Summary      Approve file
// @Description  Approves a pending file; the decision is final
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "File ID"
// @Success      200  {object}  response.Response{data=service.FileResponse}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /files/{id}/approve [post]
func (h *FileHandler) ApproveFile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	record, err := h.fileService.ApproveFile(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}

// RejectFile handles POST /files/:id/reject
// @Summary      Reject file
// @Description  Rejects a pending file with a reason; the stored bytes are purged
// @Tags         files
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "File ID"
// @Param        payload  body      service.RejectFileDTO  true  "Rejection reason"
// @Success      200      {object}  response.Response{data=service.FileResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /files/{id}/reject [post]
func (h *FileHandler) RejectFile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.RejectFileDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	record, err := h.fileService.RejectFile(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, record))
}
