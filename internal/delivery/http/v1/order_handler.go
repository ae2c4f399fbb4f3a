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

type OrderHandler struct {
	orderUC domain.OrderUsecase
}

func NewOrderHandler(protected *gin.RouterGroup, orderUC domain.OrderUsecase) {
	handler := &OrderHandler{orderUC: orderUC}

	orders := protected.Group("/orders")
	{
		orders.GET("", handler.List)
		orders.GET("/:id", handler.Get)
		orders.POST("", handler.Create)
	}

	staff := orders.Group("")
	staff.Use(middleware.RequireRoles(domain.RoleAdmin, domain.RoleWarehouse))
	{
		staff.PATCH("/:id/status", handler.ChangeStatus)
		staff.DELETE("/:id", handler.Delete)
	}
}

// List godoc
// @Summary      List Orders
// @Description  Dealers, agents and store accounts see their own orders; staff see everything.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        store_id  query  int     false  "Filter by store"
// @Param        status    query  string  false  "Filter by status"
// @Param        page      query  int     false  "Page number"
// @Success      200  {object}  response.Response{data=response.Paginated}
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter domain.OrderFilter
	if storeID := c.Query("store_id"); storeID != "" {
		id, err := strconv.ParseInt(storeID, 10, 64)
		if err != nil {
			c.Error(apperror.BadRequest("invalid store_id"))
			return
		}
		filter.StoreID = id
	}
	filter.Status = domain.OrderStatus(c.Query("status"))

	role := c.MustGet(string(domain.KeyUserRole)).(domain.Role)
	switch role {
	case domain.RoleDealer, domain.RoleAgent, domain.RoleStore:
		filter.CustomerID = c.MustGet(string(domain.KeyUserID)).(string)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	orders, total, err := h.orderUC.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Orders retrieved", response.Paginated{
		Items: orders, Total: total, Page: page, PageSize: pageSize,
	})
}

// Get godoc
// @Summary      Get Order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Order ID"
// @Success      200  {object}  response.Response{data=domain.Order}
// @Failure      404  {object}  response.Response
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("invalid order id"))
		return
	}
	order, err := h.orderUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	role := c.MustGet(string(domain.KeyUserRole)).(domain.Role)
	userID := c.MustGet(string(domain.KeyUserID)).(string)
	switch role {
	case domain.RoleDealer, domain.RoleAgent, domain.RoleStore:
		if order.CustomerID != userID {
			c.Error(apperror.Forbidden("Access denied"))
			return
		}
	}

	response.Success(c, http.StatusOK, "Order retrieved", order)
}

type OrderItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type CreateOrderRequest struct {
	StoreID int64              `json:"store_id" binding:"required"`
	Items   []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// Create godoc
// @Summary      Create Order
// @Description  Place an order. Line prices come from the catalogue; stock is reserved atomically.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        order  body      CreateOrderRequest  true  "Order"
// @Success      201    {object}  response.Response{data=domain.Order}
// @Failure      409    {object}  response.Response
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	items := make([]domain.OrderItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = domain.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	order := &domain.Order{
		StoreID:    req.StoreID,
		CustomerID: c.MustGet(string(domain.KeyUserID)).(string),
	}
	if err := h.orderUC.Create(c.Request.Context(), order, items); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Order placed", order)
}

type OrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=processing shipped delivered cancelled"`
}

// ChangeStatus godoc
// @Summary      Change Order Status
// @Description  Advance the order lifecycle. Illegal transitions are rejected; cancellation restocks.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      int                 true  "Order ID"
// @Param        status  body      OrderStatusRequest  true  "New status"
// @Success      200     {object}  response.Response
// @Failure      409     {object}  response.Response
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("invalid order id"))
		return
	}
	var req OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	if err := h.orderUC.ChangeStatus(c.Request.Context(), id, domain.OrderStatus(req.Status)); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Order status updated", nil)
}

// Delete godoc
// @Summary      Delete Order
// @Description  Soft delete; the order moves to trash and can be restored.
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Order ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /orders/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("invalid order id"))
		return
	}
	if err := h.orderUC.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Order moved to trash", nil)
}
