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

type ReturnHandler struct {
	returnUC domain.ReturnUsecase
}

func NewReturnHandler(protected *gin.RouterGroup, returnUC domain.ReturnUsecase) {
	handler := &ReturnHandler{returnUC: returnUC}

	returns := protected.Group("/returns")
	{
		returns.GET("", handler.List)
		returns.GET("/:id", handler.Get)
		returns.POST("", handler.Create)
	}

	staff := returns.Group("")
	staff.Use(middleware.RequireRoles(domain.RoleAdmin, domain.RoleWarehouse))
	{
		staff.POST("/:id/approve", handler.Approve)
		staff.POST("/:id/reject", handler.Reject)
	}
}

// List godoc
// @Summary      List Returns
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        page  query  int  false  "Page number"
// @Success      200  {object}  response.Response{data=response.Paginated}
// @Router       /returns [get]
func (h *ReturnHandler) List(c *gin.Context) {
	var customerID string
	role := c.MustGet(string(domain.KeyUserRole)).(domain.Role)
	switch role {
	case domain.RoleDealer, domain.RoleAgent, domain.RoleStore:
		customerID = c.MustGet(string(domain.KeyUserID)).(string)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	returns, total, err := h.returnUC.List(c.Request.Context(), customerID, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Returns retrieved", response.Paginated{
		Items: returns, Total: total, Page: page, PageSize: pageSize,
	})
}

// Get godoc
// @Summary      Get Return
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Return ID"
// @Success      200  {object}  response.Response{data=domain.Return}
// @Failure      404  {object}  response.Response
// @Router       /returns/{id} [get]
func (h *ReturnHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("invalid return id"))
		return
	}
	ret, err := h.returnUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	role := c.MustGet(string(domain.KeyUserRole)).(domain.Role)
	userID := c.MustGet(string(domain.KeyUserID)).(string)
	switch role {
	case domain.RoleDealer, domain.RoleAgent, domain.RoleStore:
		if ret.CustomerID != userID {
			c.Error(apperror.Forbidden("Access denied"))
			return
		}
	}

	response.Success(c, http.StatusOK, "Return retrieved", ret)
}

type CreateReturnRequest struct {
	OrderID int64   `json:"order_id" binding:"required"`
	Reason  string  `json:"reason" binding:"required"`
	ItemIDs []int64 `json:"item_ids" binding:"required,min=1"`
}

// Create godoc
// @Summary      Create Return
// @Description  Open a return against a delivered order. Items must belong to that order.
// @Tags         returns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        return  body      CreateReturnRequest  true  "Return"
// @Success      201     {object}  response.Response{data=domain.Return}
// @Failure      409     {object}  response.Response
// @Router       /returns [post]
func (h *ReturnHandler) Create(c *gin.Context) {
	var req CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	ret := &domain.Return{
		OrderID: req.OrderID,
		Reason:  req.Reason,
		ItemIDs: req.ItemIDs,
	}
	if err := h.returnUC.Create(c.Request.Context(), ret); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Return submitted", ret)
}

// Approve godoc
// @Summary      Approve Return
// @Description  Approve a pending return and restock the returned items.
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Return ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /returns/{id}/approve [post]
func (h *ReturnHandler) Approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("invalid return id"))
		return
	}
	if err := h.returnUC.Approve(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Return approved", nil)
}

// Reject godoc
// @Summary      Reject Return
// @Tags         returns
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Return ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /returns/{id}/reject [post]
func (h *ReturnHandler) Reject(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("invalid return id"))
		return
	}
	if err := h.returnUC.Reject(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Return rejected", nil)
}
