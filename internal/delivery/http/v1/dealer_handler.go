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

type DealerHandler struct {
	dealerUC domain.DealerUsecase
}

func NewDealerHandler(protected *gin.RouterGroup, dealerUC domain.DealerUsecase) {
	handler := &DealerHandler{dealerUC: dealerUC}

	dealers := protected.Group("/dealers")
	dealers.Use(middleware.RequireRoles(domain.RoleAdmin))
	{
		dealers.GET("", handler.List)
		dealers.GET("/:id", handler.Get)
		dealers.POST("", handler.Register)
		dealers.PUT("/:id", handler.Update)
		dealers.DELETE("/:id", handler.Delete)
	}
}

// List godoc
// @Summary      List Dealers
// @Tags         dealers
// @Produce      json
// @Security     BearerAuth
// @Param        page  query  int  false  "Page number"
// @Success      200  {object}  response.Response{data=response.Paginated}
// @Router       /dealers [get]
func (h *DealerHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	dealers, total, err := h.dealerUC.List(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Dealers retrieved", response.Paginated{
		Items: dealers, Total: total, Page: page, PageSize: pageSize,
	})
}

// Get godoc
// @Summary      Get Dealer
// @Tags         dealers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Dealer ID"
// @Success      200  {object}  response.Response{data=domain.Dealer}
// @Failure      404  {object}  response.Response
// @Router       /dealers/{id} [get]
func (h *DealerHandler) Get(c *gin.Context) {
	dealer, err := h.dealerUC.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Dealer retrieved", dealer)
}

// Register godoc
// @Summary      Register Dealer
// @Description  Create the dealer's login, profile and dealer record in one step.
// @Tags         dealers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        dealer  body      domain.DealerRegistration  true  "Dealer"
// @Success      201     {object}  response.Response{data=domain.Dealer}
// @Failure      409     {object}  response.Response
// @Router       /dealers [post]
func (h *DealerHandler) Register(c *gin.Context) {
	var req domain.DealerRegistration
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	dealer, err := h.dealerUC.Register(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Dealer registered", dealer)
}

type UpdateDealerRequest struct {
	Region string `json:"region" binding:"required"`
	Phone  string `json:"phone" binding:"omitempty,valid_phone"`
	Status string `json:"status" binding:"required,oneof=active inactive pending"`
}

// Update godoc
// @Summary      Update Dealer
// @Tags         dealers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string               true  "Dealer ID"
// @Param        dealer  body      UpdateDealerRequest  true  "Fields"
// @Success      200     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /dealers/{id} [put]
func (h *DealerHandler) Update(c *gin.Context) {
	var req UpdateDealerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	dealer := &domain.Dealer{
		ID:     c.Param("id"),
		Region: req.Region,
		Phone:  req.Phone,
		Status: status,
	}
	if err := h.dealerUC.Update(c.Request.Context(), dealer); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Dealer updated", nil)
}

// Delete godoc
// @Summary      Delete Dealer
// @Description  Soft delete; the dealer moves to trash and can be restored.
// @Tags         dealers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Dealer ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /dealers/{id} [delete]
func (h *DealerHandler) Delete(c *gin.Context) {
	if err := h.dealerUC.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Dealer moved to trash", nil)
}
