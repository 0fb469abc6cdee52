package handler

import (
	"net/http"

	"docflow/internal/middleware"
	"docflow/internal/policy"
	"docflow/internal/service"
	"docflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type StorageHandler struct {
	storageService service.StorageService
}

func NewStorageHandler(storageService service.StorageService) *StorageHandler {
	return &StorageHandler{storageService: storageService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *StorageHandler) RegisterRoutes(router *gin.RouterGroup) {
	storage := router.Group("/storage")
	{
		storage.GET("", middleware.RequireCapability(policy.StorageRead), h.GetSnapshot)
		storage.GET("/:product", middleware.RequireCapability(policy.StorageRead), h.GetProductInfo)
	}
}

// GetSnapshot handles GET /storage
// @Summary      Storage snapshot
// @Description  Returns the derived per-product inventory, recomputed from the current document set
// @Tags         storage
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=storage.Snapshot}
// @Failure      500  {object}  response.Response
// @Router       /storage [get]
func (h *StorageHandler) GetSnapshot(c *gin.Context) {
	snapshot, err := h.storageService.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to compute storage snapshot"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, snapshot))
}

// GetProductInfo handles GET /storage/:product
// @Summary      Storage info for one product
// @Tags         storage
// @Produce      json
// @Security     BearerAuth
// @Param        product  path      string  true  "Product name"
// @Success      200      {object}  response.Response{data=storage.Info}
// @Failure      500      {object}  response.Response
// @Router       /storage/{product} [get]
func (h *StorageHandler) GetProductInfo(c *gin.Context) {
	info, err := h.storageService.ProductInfo(c.Request.Context(), c.Param("product"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to compute storage info"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, info))
}
