package handler

import (
	"net/http"

	"docflow/internal/middleware"
	"docflow/internal/policy"
	"docflow/internal/service"
	"docflow/pkg/pagination"
	"docflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documentService service.DocumentService
}

func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	docs := router.Group("/documents")
	{
		docs.GET("", middleware.RequireCapability(policy.DocumentsRead), h.ListDocuments)
		docs.GET("/:id", middleware.RequireCapability(policy.DocumentsRead), h.GetDocument)
		docs.POST("", middleware.RequireCapability(policy.DocumentsCreate), h.CreateDocument)
		docs.POST("/:id/approve", middleware.RequireCapability(policy.DocumentsApprove), h.ApproveDocument)
		docs.POST("/:id/suspend", middleware.RequireCapability(policy.DocumentsSuspend), h.SuspendDocument)
		docs.POST("/:id/reopen", middleware.RequireCapability(policy.DocumentsSuspend), h.ReopenDocument)
	}
}

// CreateDocument handles POST /documents
// @Summary      Create document
// @Description  Creates a document of any type with its items, approver list and appended references
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDocumentDTO  true  "Create Document Payload"
// @Success      201      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /documents [post]
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.CreateDocumentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doc, err := h.documentService.CreateDocument(c.Request.Context(), req, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}

// GetDocument handles GET /documents/:id
// @Summary      Get document
// @Description  Fetches a document with items, approvals and appended references
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  response.Response{data=service.DocumentResponse}
// @Failure      404  {object}  response.Response
// @Router       /documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	doc, err := h.documentService.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// ListDocuments handles GET /documents
// @Summary      List documents
// @Description  Retrieves a paginated document list, optionally filtered by type and status
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        type    query     string  false  "Document type filter"
// @Param        status  query     string  false  "Document status filter"
// @Success      200     {object}  response.Response{data=response.ListData}
// @Failure      500     {object}  response.Response
// @Router       /documents [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	params := pagination.Parse(c)
	filter := service.DocumentFilter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	docs, total, err := h.documentService.ListDocuments(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch documents"))
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, docs, total, params.Page, params.Limit))
}

// ApproveDocument handles POST /documents/:id/approve
// @Summary      Approve document
// @Description  Records the caller's signature; the document status is recomputed from the approver list
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  response.Response{data=service.DocumentResponse}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /documents/{id}/approve [post]
func (h *DocumentHandler) ApproveDocument(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	doc, err := h.documentService.Approve(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// SuspendDocument handles POST /documents/:id/suspend
// @Summary      Suspend document
// @Description  Suspends a document; it drops out of storage aggregation until reopened
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true   "Document ID"
// @Param        payload  body      service.SuspendDocumentDTO  false  "Suspension reason"
// @Success      200      {object}  response.Response{data=service.DocumentResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /documents/{id}/suspend [post]
func (h *DocumentHandler) SuspendDocument(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.SuspendDocumentDTO
	_ = c.ShouldBindJSON(&req) // reason is optional

	doc, err := h.documentService.Suspend(c.Request.Context(), c.Param("id"), userID, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// ReopenDocument handles POST /documents/:id/reopen
// @Summary      Reopen document
// @Description  Reopens a suspended document; prior approvals are cleared and must be collected again
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  response.Response{data=service.DocumentResponse}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /documents/{id}/reopen [post]
func (h *DocumentHandler) ReopenDocument(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	doc, err := h.documentService.Reopen(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}
