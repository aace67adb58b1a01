package handler

import (
	"net/http"
	"time"

	"stockroom/internal/apperror"
	"stockroom/internal/dto"
	"stockroom/internal/infra"
	"stockroom/internal/repository"

	"github.com/gin-gonic/gin"
)

// exportPageSize is deliberately generous: exports are whole-table dumps.
const exportPageSize = 10000

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
}

func NewExportHandler(products repository.ProductRepository, orders repository.OrderRepository) *ExportHandler {
	return &ExportHandler{products: products, orders: orders}
}

// Products streams the inventory as CSV (default) or xlsx (?format=xlsx).
func (h *ExportHandler) Products(c *gin.Context) {
	rows, _, err := h.products.List(c.Request.Context(), dto.ProductFilter{
		Category: c.Query("category"),
		Page:     1,
		Limit:    exportPageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	stamp := time.Now().Format("20060102")
	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		c.Header("Content-Disposition", `attachment; filename="inventory_`+stamp+`.xlsx"`)
		c.Header("Content-Type", xlsxContentType)
		if err := infra.WriteProductsExcel(c.Writer, rows); err != nil {
			respondError(c, err)
		}
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="inventory_`+stamp+`.csv"`)
		c.Header("Content-Type", "text/csv")
		if err := infra.WriteProductsCSV(c.Writer, rows); err != nil {
			respondError(c, err)
		}
	default:
		c.JSON(http.StatusBadRequest, apperror.New("format must be csv or xlsx"))
	}
}

// Orders streams purchase orders as CSV (default) or xlsx (?format=xlsx).
func (h *ExportHandler) Orders(c *gin.Context) {
	rows, _, err := h.orders.List(c.Request.Context(), dto.OrderFilter{
		Status: c.Query("status"),
		Page:   1,
		Limit:  exportPageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	stamp := time.Now().Format("20060102")
	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		c.Header("Content-Disposition", `attachment; filename="orders_`+stamp+`.xlsx"`)
		c.Header("Content-Type", xlsxContentType)
		if err := infra.WriteOrdersExcel(c.Writer, rows); err != nil {
			respondError(c, err)
		}
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="orders_`+stamp+`.csv"`)
		c.Header("Content-Type", "text/csv")
		if err := infra.WriteOrdersCSV(c.Writer, rows); err != nil {
			respondError(c, err)
		}
	default:
		c.JSON(http.StatusBadRequest, apperror.New("format must be csv or xlsx"))
	}
}
