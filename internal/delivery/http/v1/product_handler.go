package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cddiller-backend/internal/delivery/http/middleware"
	"cddiller-backend/internal/delivery/http/response"
	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

type ProductHandler struct {
	productUC domain.ProductUsecase
}

func NewProductHandler(protected *gin.RouterGroup, productUC domain.ProductUsecase) {
	handler := &ProductHandler{productUC: productUC}

	products := protected.Group("/products")
	{
		products.GET("", handler.List)
		products.GET("/:id", handler.Get)
	}

	warehouse := products.Group("")
	warehouse.Use(middleware.RequireRoles(domain.RoleAdmin, domain.RoleWarehouse))
	{
		warehouse.POST("", handler.Create)
		warehouse.PUT("/:id", handler.Update)
		warehouse.PATCH("/:id/stock", handler.AdjustStock)
		warehouse.DELETE("/:id", handler.Delete)
	}
}

// List godoc
// @Summary      List Products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        category  query  string  false  "Filter by category"
// @Param        page      query  int     false  "Page number"
// @Success      200  {object}  response.Response{data=response.Paginated}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	products, total, err := h.productUC.List(c.Request.Context(), c.Query("category"), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Products retrieved", response.Paginated{
		Items: products, Total: total, Page: page, PageSize: pageSize,
	})
}

// Get godoc
// @Summary      Get Product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  response.Response{data=domain.Product}
// @Failure      404  {object}  response.Response
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("invalid product id"))
		return
	}
	product, err := h.productUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Product retrieved", product)
}

type ProductRequest struct {
	Name     string  `json:"name" binding:"required"`
	SKU      string  `json:"sku" binding:"required"`
	Category string  `json:"category" binding:"required"`
	Price    float64 `json:"price" binding:"required,gt=0"`
	Stock    int     `json:"stock" binding:"gte=0"`
	Status   string  `json:"status" binding:"omitempty,oneof=active inactive"`
}

// Create godoc
// @Summary      Create Product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        product  body      ProductRequest  true  "Product"
// @Success      201      {object}  response.Response{data=domain.Product}
// @Failure      409      {object}  response.Response
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	product := &domain.Product{
		Name:     req.Name,
		SKU:      req.SKU,
		Category: req.Category,
		Price:    req.Price,
		Stock:    req.Stock,
		Status:   domain.Status(req.Status),
	}
	if err := h.productUC.Create(c.Request.Context(), product); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Product created", product)
}

// Update godoc
// @Summary      Update Product
// @Description  Edits catalogue fields; stock changes go through the stock endpoint.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int             true  "Product ID"
// @Param        product  body      ProductRequest  true  "Fields"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("invalid product id"))
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	product := &domain.Product{
		ID:       id,
		Name:     req.Name,
		SKU:      req.SKU,
		Category: req.Category,
		Price:    req.Price,
		Status:   domain.Status(req.Status),
	}
	if err := h.productUC.Update(c.Request.Context(), product); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Product updated", nil)
}

type StockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// AdjustStock godoc
// @Summary      Adjust Stock
// @Description  Apply a positive or negative stock delta atomically. Fails if the result would be negative.
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      int           true  "Product ID"
// @Param        delta  body      StockRequest  true  "Stock delta"
// @Success      200    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /products/{id}/stock [patch]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("invalid product id"))
		return
	}
	var req StockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	stock, err := h.productUC.AdjustStock(c.Request.Context(), id, req.Delta)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Stock adjusted", gin.H{"stock": stock})
}

// Delete godoc
// @Summary      Delete Product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("invalid product id"))
		return
	}
	if err := h.productUC.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Product deleted", nil)
}
