package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cddiller-backend/internal/delivery/http/middleware"
	"cddiller-backend/internal/delivery/http/response"
	"cddiller-backend/internal/domain"
)

type ReportHandler struct {
	reportUC domain.ReportUsecase
}

func NewReportHandler(protected *gin.RouterGroup, reportUC domain.ReportUsecase) {
	handler := &ReportHandler{reportUC: reportUC}

	reports := protected.Group("/reports")
	reports.Use(middleware.RequireRoles(domain.RoleAdmin))
	{
		reports.GET("/summary", handler.Summary)
		reports.GET("/sales", handler.MonthlySales)
		reports.GET("/top-products", handler.TopProducts)
		reports.GET("/top-dealers", handler.TopDealers)
		reports.GET("/orders/export", handler.ExportOrders)
	}
}

// Summary godoc
// @Summary      Dashboard Summary
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=domain.SummaryReport}
// @Router       /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.reportUC.Summary(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Summary retrieved", summary)
}

// MonthlySales godoc
// @Summary      Monthly Sales
// @Description  Twelve data points for the sales chart; empty months are zero.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        year  query  int  false  "Year (defaults to current)"
// @Success      200  {object}  response.Response{data=[]domain.MonthlySales}
// @Router       /reports/sales [get]
func (h *ReportHandler) MonthlySales(c *gin.Context) {
	year, _ := strconv.Atoi(c.DefaultQuery("year", "0"))
	sales, err := h.reportUC.MonthlySales(c.Request.Context(), year)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Sales retrieved", sales)
}

// TopProducts godoc
// @Summary      Top Products
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "Number of products (default 5)"
// @Success      200  {object}  response.Response{data=[]domain.TopProduct}
// @Router       /reports/top-products [get]
func (h *ReportHandler) TopProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	products, err := h.reportUC.TopProducts(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Top products retrieved", products)
}

// TopDealers godoc
// @Summary      Top Dealers
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query  int  false  "Number of dealers (default 5)"
// @Success      200  {object}  response.Response{data=[]domain.TopDealer}
// @Router       /reports/top-dealers [get]
func (h *ReportHandler) TopDealers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	dealers, err := h.reportUC.TopDealers(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Top dealers retrieved", dealers)
}

// ExportOrders godoc
// @Summary      Export Orders
// @Description  Download the order book as an .xlsx spreadsheet.
// @Tags         reports
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        status  query  string  false  "Filter by status"
// @Success      200
// @Router       /reports/orders/export [get]
func (h *ReportHandler) ExportOrders(c *gin.Context) {
	filter := domain.OrderFilter{Status: domain.OrderStatus(c.Query("status"))}

	data, filename, err := h.reportUC.ExportOrders(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
