package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

// exportBatchSize caps a single spreadsheet export.
const exportBatchSize = 10000

type reportUsecase struct {
	reports domain.ReportRepository
	orders  domain.OrderRepository
}

func NewReportUsecase(reports domain.ReportRepository, orders domain.OrderRepository) domain.ReportUsecase {
	return &reportUsecase{reports: reports, orders: orders}
}

func (u *reportUsecase) Summary(ctx context.Context) (*domain.SummaryReport, error) {
	return u.reports.Summary(ctx)
}

func (u *reportUsecase) MonthlySales(ctx context.Context, year int) ([]domain.MonthlySales, error) {
	if year == 0 {
		year = time.Now().Year()
	}
	if year < 2000 || year > time.Now().Year() {
		return nil, apperror.BadRequest("year out of range")
	}
	return u.reports.MonthlySales(ctx, year)
}

func (u *reportUsecase) TopProducts(ctx context.Context, limit int) ([]domain.TopProduct, error) {
	if limit < 1 || limit > 50 {
		limit = 5
	}
	return u.reports.TopProducts(ctx, limit)
}

func (u *reportUsecase) TopDealers(ctx context.Context, limit int) ([]domain.TopDealer, error) {
	if limit < 1 || limit > 50 {
		limit = 5
	}
	return u.reports.TopDealers(ctx, limit)
}

// ExportOrders renders the order book as an .xlsx workbook.
func (u *reportUsecase) ExportOrders(ctx context.Context, filter domain.OrderFilter) ([]byte, string, error) {
	orders, _, err := u.orders.Fetch(ctx, filter, exportBatchSize, 0)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	sheetName := "Orders"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"REFERENCE", "STORE", "CUSTOMER", "STATUS", "ITEMS", "TOTAL", "CREATED AT"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, o := range orders {
		row := rowIdx + 2
		values := []interface{}{
			o.Reference,
			o.StoreName,
			o.CustomerName,
			string(o.Status),
			o.ItemsCount,
			o.Total,
			o.CreatedAt.Format("2006-01-02 15:04"),
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	for i := range headers {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	filename := fmt.Sprintf("orders_%s.xlsx", time.Now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}
