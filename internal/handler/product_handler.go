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

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/products")
	{
		products.GET("", middleware.RequireCapability(policy.ProductsRead), h.ListProducts)
		products.GET("/:id", middleware.RequireCapability(policy.ProductsRead), h.GetProduct)
		products.GET("/export", middleware.RequireCapability(policy.ProductsRead), h.ExportExcel)
		products.POST("", middleware.RequireCapability(policy.ProductsWrite), h.CreateProduct)
		products.POST("/import", middleware.RequireCapability(policy.ProductsWrite), h.ImportProducts)
		products.POST("/import-file", middleware.RequireCapability(policy.ProductsWrite), h.ImportProductsFile)
		products.PUT("/:id", middleware.RequireCapability(policy.ProductsWrite), h.UpdateProduct)
		products.DELETE("/:id", middleware.RequireCapability(policy.ProductsDelete), h.DeleteProduct)
	}
}

// CreateProduct handles POST /products
// @Summary      Create product
// @Description  Registers a new product with a unique name and code
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateProductRequest  true  "Create Product Payload"
// @Success      201      {object}  response.Response{data=service.ProductResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// UpdateProduct handles PUT /products/:id
// @Summary      Update product
// @Description  Updates a product; renames propagate asynchronously to documents referencing it
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Product ID"
// @Param        payload  body      service.UpdateProductRequest  true  "Update Product Payload"
// @Success      200      {object}  response.Response{data=service.ProductResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// DeleteProduct handles DELETE /products/:id
// @Summary      Delete product
// @Description  Soft deletes a product; existing document references become orphaned
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), c.Param("id"), userID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Product deleted successfully"))
}

// GetProduct handles GET /products/:id
// @Summary      Get product
// @Description  Fetches a product with its change history and derived storage info
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response{data=service.ProductResponse}
// @Failure      404  {object}  response.Response
// @Router       /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}

// ListProducts handles GET /products
// @Summary      List products
// @Description  Retrieves a paginated product list with derived storage columns
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        search  query     string  false  "Match against name or code"
// @Success      200     {object}  response.Response{data=response.ListData}
// @Failure      500     {object}  response.Response
// @Router       /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := pagination.Parse(c)
	search := c.Query("search")

	products, total, err := h.productService.ListProducts(c.Request.Context(), params.Page, params.Limit, search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch products"))
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, products, total, params.Page, params.Limit))
}

// ImportProducts handles POST /products/import with a JSON row array
// @Summary      Bulk import products
// @Description  Imports product rows; per-row failures are collected, valid rows still land
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      []service.CreateProductRequest  true  "Product rows"
// @Success      200      {object}  response.Response{data=service.ImportResult}
// @Failure      400      {object}  response.Response
// @Router       /products/import [post]
func (h *ProductHandler) ImportProducts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var rows []service.CreateProductRequest
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	result, err := h.productService.ImportProducts(c.Request.Context(), rows, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ImportProductsFile handles POST /products/import-file with an xlsx upload
// @Summary      Import products from xlsx
// @Description  Parses an uploaded workbook and imports its rows
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "xlsx workbook"
// @Success      200   {object}  response.Response{data=service.ImportResult}
// @Failure      400   {object}  response.Response
// @Router       /products/import-file [post]
func (h *ProductHandler) ImportProductsFile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Missing file upload"))
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

	result, err := h.productService.ImportProductsFile(c.Request.Context(), data, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ExportExcel handles GET /products/export
// @Summary      Export products as xlsx
// @Description  Streams the registry with derived storage columns as a workbook
// @Tags         products
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200  {file}    file
// @Failure      500  {object}  response.Response
// @Router       /products/export [get]
func (h *ProductHandler) ExportExcel(c *gin.Context) {
	data, err := h.productService.ExportExcel(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="products.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
