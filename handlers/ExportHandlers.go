package handlers

import (
	"fmt"
	"net/http"
	"time"

	"craftmarket/models"
	"craftmarket/services"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ExportOrders godoc
// @Summary      Export the caller's orders as an Excel workbook
// @Tags         orders
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}    file  "XLSX workbook"
// @Failure      401  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/export/orders [get]
func ExportOrders(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.ListByCreator(c.GetString("userID"))
		if err != nil {
			respondServiceError(c, err)
			return
		}

		f := excelize.NewFile()
		defer f.Close()
		sheet := "Orders"
		f.SetSheetName("Sheet1", sheet)

		titleCaser := cases.Title(language.German)
		headers := []string{"auftrag", "anfrage", "status", "netto", "steuersatz", "brutto", "erstellt am"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, titleCaser.String(h))
		}

		for row, order := range list {
			values := []interface{}{
				order.Title,
				order.RequestID,
				order.Status,
				order.NetTotal,
				order.TaxRate,
				order.GrossTotal,
				order.CreatedAt.Format("02.01.2006"),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=auftraege-%s.xlsx", time.Now().Format("2006-01-02")))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to write workbook", Code: models.CodeInternal})
		}
	}
}
