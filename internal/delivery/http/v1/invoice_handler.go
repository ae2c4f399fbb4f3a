package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cddiller-backend/internal/delivery/http/middleware"
	"cddiller-backend/internal/delivery/http/response"
	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

type InvoiceHandler struct {
	invoiceUC domain.InvoiceUsecase
}

func NewInvoiceHandler(protected *gin.RouterGroup, invoiceUC domain.InvoiceUsecase) {
	handler := &InvoiceHandler{invoiceUC: invoiceUC}

	invoices := protected.Group("/invoices")
	{
		invoices.GET("", handler.List)
		invoices.GET("/:id", handler.Get)
	}

	admin := invoices.Group("")
	admin.Use(middleware.RequireRoles(domain.RoleAdmin))
	{
		admin.POST("", handler.Issue)
		admin.POST("/:id/pay", handler.MarkPaid)
	}
}

// List godoc
// @Summary      List Invoices
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        status  query  string  false  "Filter by status"
// @Param        page    query  int     false  "Page number"
// @Success      200  {object}  response.Response{data=response.Paginated}
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var customerID string
	role := c.MustGet(string(domain.KeyUserRole)).(domain.Role)
	switch role {
	case domain.RoleDealer, domain.RoleAgent, domain.RoleStore:
		customerID = c.MustGet(string(domain.KeyUserID)).(string)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	invoices, total, err := h.invoiceUC.List(c.Request.Context(), customerID,
		domain.InvoiceStatus(c.Query("status")), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Invoices retrieved", response.Paginated{
		Items: invoices, Total: total, Page: page, PageSize: pageSize,
	})
}

// Get godoc
// @Summary      Get Invoice
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=domain.Invoice}
// @Failure      404  {object}  response.Response
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("invalid invoice id"))
		return
	}
	inv, err := h.invoiceUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	role := c.MustGet(string(domain.KeyUserRole)).(domain.Role)
	userID := c.MustGet(string(domain.KeyUserID)).(string)
	switch role {
	case domain.RoleDealer, domain.RoleAgent, domain.RoleStore:
		if inv.CustomerID != userID {
			c.Error(apperror.Forbidden("Access denied"))
			return
		}
	}

	response.Success(c, http.StatusOK, "Invoice retrieved", inv)
}

type IssueInvoiceRequest struct {
	OrderID int64  `json:"order_id" binding:"required"`
	DueDate string `json:"due_date" binding:"required"` // RFC 3339 date, e.g. 2026-09-30
}

// Issue godoc
// @Summary      Issue Invoice
// @Description  Bill a delivered order. The total is frozen at issue time.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        invoice  body      IssueInvoiceRequest  true  "Invoice"
// @Success      201      {object}  response.Response{data=domain.Invoice}
// @Failure      409      {object}  response.Response
// @Router       /invoices [post]
func (h *InvoiceHandler) Issue(c *gin.Context) {
	var req IssueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		c.Error(apperror.BadRequest("due_date must be YYYY-MM-DD"))
		return
	}

	inv, err := h.invoiceUC.IssueForOrder(c.Request.Context(), req.OrderID, dueDate)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Invoice issued", inv)
}

// MarkPaid godoc
// @Summary      Mark Invoice Paid
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /invoices/{id}/pay [post]
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.BadRequest("invalid invoice id"))
		return
	}
	if err := h.invoiceUC.MarkPaid(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Invoice marked as paid", nil)
}
