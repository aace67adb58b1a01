package infra

// excel.go — spreadsheet exports for inventory and purchase orders.
// Excel files are built with excelize; CSV uses encoding/csv since the
// format needs nothing a library would add.

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"stockroom/internal/model"

	"github.com/xuri/excelize/v2"
)

var productHeader = []string{"SKU", "Name", "Category", "Unit Price", "In Stock", "Reorder Level", "Stock Value", "Supplier"}

var orderHeader = []string{"Order Number", "Supplier", "Status", "Order Date", "Expected Delivery", "Items", "Total"}

// WriteProductsExcel streams an xlsx workbook with one row per product.
func WriteProductsExcel(w io.Writer, products []model.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Inventory"
	f.SetSheetName("Sheet1", sheet)

	if err := f.SetSheetRow(sheet, "A1", &productHeader); err != nil {
		return fmt.Errorf("excel: header: %w", err)
	}
	for i, p := range products {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{
			p.SKU,
			p.Name,
			p.Category,
			p.UnitPrice.StringFixed(2),
			p.QuantityInStock,
			p.ReorderLevel,
			p.StockValue().StringFixed(2),
			supplierName(p.Supplier),
		}); err != nil {
			return fmt.Errorf("excel: row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}

// WriteOrdersExcel streams an xlsx workbook with one row per purchase order.
func WriteOrdersExcel(w io.Writer, orders []model.PurchaseOrder) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Purchase Orders"
	f.SetSheetName("Sheet1", sheet)

	if err := f.SetSheetRow(sheet, "A1", &orderHeader); err != nil {
		return fmt.Errorf("excel: header: %w", err)
	}
	for i, o := range orders {
		expected := ""
		if o.ExpectedDelivery != nil {
			expected = o.ExpectedDelivery.Format("2006-01-02")
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{
			o.OrderNumber,
			supplierName(o.Supplier),
			o.Status,
			o.OrderDate.Format("2006-01-02"),
			expected,
			len(o.Items),
			o.TotalAmount.StringFixed(2),
		}); err != nil {
			return fmt.Errorf("excel: row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}

// WriteProductsCSV writes the same rows as the Excel export in CSV form.
func WriteProductsCSV(w io.Writer, products []model.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(productHeader); err != nil {
		return err
	}
	for _, p := range products {
		if err := cw.Write([]string{
			p.SKU,
			p.Name,
			p.Category,
			p.UnitPrice.StringFixed(2),
			strconv.Itoa(p.QuantityInStock),
			strconv.Itoa(p.ReorderLevel),
			p.StockValue().StringFixed(2),
			supplierName(p.Supplier),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteOrdersCSV writes the same rows as the Excel export in CSV form.
func WriteOrdersCSV(w io.Writer, orders []model.PurchaseOrder) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(orderHeader); err != nil {
		return err
	}
	for _, o := range orders {
		expected := ""
		if o.ExpectedDelivery != nil {
			expected = o.ExpectedDelivery.Format("2006-01-02")
		}
		if err := cw.Write([]string{
			o.OrderNumber,
			supplierName(o.Supplier),
			o.Status,
			o.OrderDate.Format("2006-01-02"),
			expected,
			strconv.Itoa(len(o.Items)),
			o.TotalAmount.StringFixed(2),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func supplierName(s *model.Supplier) string {
	if s == nil {
		return ""
	}
	return s.Name
}
