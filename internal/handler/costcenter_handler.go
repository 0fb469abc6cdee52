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

type CostCenterHandler struct {
	ccService service.CostCenterService
}

func NewCostCenterHandler(ccService service.CostCenterService) *CostCenterHandler {
	return &CostCenterHandler{ccService: ccService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *CostCenterHandler) RegisterRoutes(router *gin.RouterGroup) {
	centers := router.Group("/cost-centers")
	{
		centers.GET("", middleware.RequireAuth(), h.ListCostCenters)
		centers.GET("/:name", middleware.RequireAuth(), h.GetCostCenter)
		centers.POST("", middleware.RequireCapability(policy.CostCentersManage), h.CreateCostCenter)
		centers.PUT("/:name", middleware.RequireCapability(policy.CostCentersManage), h.UpdateCostCenter)
		centers.DELETE("/:name", middleware.RequireCapability(policy.CostCentersManage), h.DeleteCostCenter)
	}
}

// CreateCostCenter handles POST /cost-centers
// @Summary      Create cost center
// @Description  Creates a cost center with an optional allowed-users list; empty list means unrestricted
// @Tags         cost-centers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CostCenterDTO  true  "Cost Center Payload"
// @Success      201      {object}  response.Response{data=service.CostCenterResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /cost-centers [post]
func (h *CostCenterHandler) CreateCostCenter(c *gin.Context) {
	var req service.CostCenterDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	cc, err := h.ccService.CreateCostCenter(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, cc))
}

// UpdateCostCenter handles PUT /cost-centers/:name
// @Summary      Update cost center
// @Description  Updates a cost center's name or allowed-users list
// @Tags         cost-centers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name     path      string                 true  "Cost center name"
// @Param        payload  body      service.CostCenterDTO  true  "Cost Center Payload"
// @Success      200      {object}  response.Response{data=service.CostCenterResponse}
// @Failure      404      {object}  response.Response
// @Router       /cost-centers/{name} [put]
func (h *CostCenterHandler) UpdateCostCenter(c *gin.Context) {
	var req service.CostCenterDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	cc, err := h.ccService.UpdateCostCenter(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cc))
}

// DeleteCostCenter handles DELETE /cost-centers/:name
// @Summary      Delete cost center
// @Tags         cost-centers
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Cost center name"
// @Success      200   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /cost-centers/{name} [delete]
func (h *CostCenterHandler) DeleteCostCenter(c *gin.Context) {
	if err := h.ccService.DeleteCostCenter(c.Request.Context(), c.Param("name")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Cost center deleted successfully"))
}

// GetCostCenter handles GET /cost-centers/:name
// @Summary      Get cost center
// @Tags         cost-centers
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Cost center name"
// @Success      200   {object}  response.Response{data=service.CostCenterResponse}
// @Failure      404   {object}  response.Response
// @Router       /cost-centers/{name} [get]
func (h *CostCenterHandler) GetCostCenter(c *gin.Context) {
	cc, err := h.ccService.GetCostCenter(c.Request.Context(), c.Param("name"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, cc))
}

// ListCostCenters handles GET /cost-centers
// @Summary      List cost centers
// @Tags         cost-centers
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.ListData}
// @Failure      500    {object}  response.Response
// @Router       /cost-centers [get]
func (h *CostCenterHandler) ListCostCenters(c *gin.Context) {
	params := pagination.Parse(c)

	centers, total, err := h.ccService.ListCostCenters(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch cost centers"))
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, centers, total, params.Page, params.Limit))
}
