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

type ProjectHandler struct {
	projectService service.ProjectService
}

func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ProjectHandler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("", middleware.RequireCapability(policy.ProjectsRead), h.ListProjects)
		projects.GET("/:id", middleware.RequireCapability(policy.ProjectsRead), h.GetProject)
		projects.POST("", middleware.RequireCapability(policy.ProjectsCreate), h.CreateProject)
		projects.POST("/:id/phases/:phase/approve", middleware.RequireCapability(policy.ProjectsApprove), h.ApprovePhase)
		projects.PUT("/:id/phases/:phase", middleware.RequireCapability(policy.ProjectsUpdate), h.UpdatePhaseDetails)
	}
}

// CreateProject handles POST /projects
// @Summary      Create project
// @Description  Creates a project with the proposal phase pending and later phases locked
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateProjectDTO  true  "Create Project Payload"
// @Success      201      {object}  response.Response{data=service.ProjectResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.CreateProjectDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), req, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, project))
}

// GetProject handles GET /projects/:id
// @Summary      Get project
// @Description  Fetches a project with all three phases
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response{data=service.ProjectResponse}
// @Failure      404  {object}  response.Response
// @Router       /projects/{id} [get]
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}

// ListProjects handles GET /projects
// @Summary      List projects
// @Description  Retrieves a paginated project list
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.ListData}
// @Failure      500    {object}  response.Response
// @Router       /projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	params := pagination.Parse(c)

	projects, total, err := h.projectService.ListProjects(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch projects"))
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, projects, total, params.Page, params.Limit))
}

// ApprovePhase handles POST /projects/:id/phases/:phase/approve
// @Summary      Approve project phase
// @Description  Records the caller's signature on a phase; the payment phase needs both headOfAccounting and director
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Project ID"
// @Param        phase  path      string  true  "Phase name (proposal, purchasing, payment)"
// @Success      200    {object}  response.Response{data=service.ProjectResponse}
// @Failure      403    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /projects/{id}/phases/{phase}/approve [post]
func (h *ProjectHandler) ApprovePhase(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	project, err := h.projectService.ApprovePhase(c.Request.Context(), c.Param("id"), c.Param("phase"), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}

// UpdatePhaseDetails handles PUT /projects/:id/phases/:phase
// @Summary      Update phase details
// @Description  Updates the content of a phase that has not started collecting approvals
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Project ID"
// @Param        phase    path      string                         true  "Phase name"
// @Param        payload  body      service.UpdatePhaseDetailsDTO  true  "Phase details"
// @Success      200      {object}  response.Response{data=service.ProjectResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /projects/{id}/phases/{phase} [put]
func (h *ProjectHandler) UpdatePhaseDetails(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.UpdatePhaseDetailsDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	project, err := h.projectService.UpdatePhaseDetails(c.Request.Context(), c.Param("id"), c.Param("phase"), req, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}
