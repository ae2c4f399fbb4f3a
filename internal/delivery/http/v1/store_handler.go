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

type StoreHandler struct {
	storeUC domain.StoreUsecase
}

func NewStoreHandler(protected *gin.RouterGroup, storeUC domain.StoreUsecase) {
	handler := &StoreHandler{storeUC: storeUC}

	stores := protected.Group("/stores")
	stores.Use(middleware.RequireRoles(domain.RoleAdmin, domain.RoleDealer))
	{
		stores.GET("", handler.List)
		stores.GET("/:id", handler.Get)
		stores.POST("", handler.Create)
		stores.PUT("/:id", handler.Update)
		stores.DELETE("/:id", handler.Delete)
	}
}

// List godoc
// @Summary      List Stores
// @Description  Dealers see their own stores; admins can pass dealer_id to scope.
// @Tags         stores
// @Produce      json
// @Security     BearerAuth
// @Param        dealer_id  query  string  false  "Filter by dealer"
// @Param        page       query  int     false  "Page number"
// @Success      200  {object}  response.Response{data=response.Paginated}
// @Router       /stores [get]
func (h *StoreHandler) List(c *gin.Context) {
	dealerID := c.Query("dealer_id")
	// A dealer only ever sees their own stores, whatever they ask for
	if role := c.MustGet(string(domain.KeyUserRole)).(domain.Role); role == domain.RoleDealer {
		dealerID = c.MustGet(string(domain.KeyUserID)).(string)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	stores, total, err := h.storeUC.List(c.Request.Context(), dealerID, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Stores retrieved", response.Paginated{
		Items: stores, Total: total, Page: page, PageSize: pageSize,
	})
}

// Get godoc
// @Summary      Get Store
// @Tags         stores
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Store ID"
// @Success      200  {object}  response.Response{data=domain.Store}
// @Failure      404  {object}  response.Response
// @Router       /stores/{id} [get]
func (h *StoreHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("invalid store id"))
		return
	}
	store, err := h.storeUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Store retrieved", store)
}

type CreateStoreRequest struct {
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address" binding:"required"`
	DealerID string `json:"dealer_id" binding:"omitempty,uuid"`
}

// Create godoc
// @Summary      Create Store
// @Tags         stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        store  body      CreateStoreRequest  true  "Store"
// @Success      201    {object}  response.Response{data=domain.Store}
// @Router       /stores [post]
func (h *StoreHandler) Create(c *gin.Context) {
	var req CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	dealerID := req.DealerID
	if role := c.MustGet(string(domain.KeyUserRole)).(domain.Role); role == domain.RoleDealer {
		dealerID = c.MustGet(string(domain.KeyUserID)).(string)
	}
	if dealerID == "" {
		c.Error(apperror.BadRequest("dealer_id is required"))
		return
	}

	store := &domain.Store{
		Name:     req.Name,
		Address:  req.Address,
		DealerID: dealerID,
	}
	if err := h.storeUC.Create(c.Request.Context(), store); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Store created", store)
}

type UpdateStoreRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
	Status  string `json:"status" binding:"required,oneof=active inactive pending"`
}

// Update godoc
// @Summary      Update Store
// @Tags         stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      int                 true  "Store ID"
// @Param        store  body      UpdateStoreRequest  true  "Fields"
// @Success      200    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /stores/{id} [put]
func (h *StoreHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("invalid store id"))
		return
	}
	var req UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	store := &domain.Store{
		ID:      id,
		Name:    req.Name,
		Address: req.Address,
		Status:  status,
	}
	if err := h.storeUC.Update(c.Request.Context(), store); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Store updated", nil)
}

// Delete godoc
// @Summary      Delete Store
// @Description  Soft delete; the store moves to trash and can be restored.
// @Tags         stores
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Store ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /stores/{id} [delete]
func (h *StoreHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("invalid store id"))
		return
	}
	if err := h.storeUC.Delete(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Store moved to trash", nil)
}
