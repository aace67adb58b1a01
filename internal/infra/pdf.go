package infra

// pdf.go — Purchase order PDF generation using go-pdf/fpdf.
// Produces an A4 document with:
//   - Order number and dates header
//   - Supplier block (name, contact, address)
//   - Line item table (SKU, product, ordered, received, unit price, line total)
//   - Bold order total
//
// The output file is saved to storagePath/po_{order_number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"stockroom/internal/model"

	"github.com/go-pdf/fpdf"
)

// GeneratePurchaseOrderPDF writes the printable form of a purchase order.
// storagePath is the directory where the PDF will be written (created if
// needed). Returns the absolute path to the generated file.
func GeneratePurchaseOrderPDF(order *model.PurchaseOrder, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("po_%s.pdf", order.OrderNumber)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30 // total margins = 30mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Purchase Order", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 6, order.OrderNumber, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Ordered: "+order.OrderDate.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	if order.ExpectedDelivery != nil {
		pdf.CellFormat(contentW, 5, "Expected: "+order.ExpectedDelivery.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 5, "Status: "+order.Status, "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Supplier block ────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Supplier", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if s := order.Supplier; s != nil {
		pdf.CellFormat(contentW, 5, s.Name, "", 1, "L", false, 0, "")
		if s.ContactName != nil {
			pdf.CellFormat(contentW, 5, "Attn: "+*s.ContactName, "", 1, "L", false, 0, "")
		}
		if s.Email != nil {
			pdf.CellFormat(contentW, 5, *s.Email, "", 1, "L", false, 0, "")
		}
		if s.Address != nil {
			pdf.CellFormat(contentW, 5, *s.Address, "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)

	// ── Items header ──────────────────────────────────────────────────────────
	col1 := contentW * 0.16 // SKU
	col2 := contentW * 0.34 // product name
	col3 := contentW * 0.10 // ordered
	col4 := contentW * 0.12 // received
	col5 := contentW * 0.13 // unit price
	col6 := contentW * 0.15 // line total

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 6, "SKU", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col4, 6, "Recv", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col5, 6, "Unit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col6, 6, "Total", "B", 1, "R", false, 0, "")

	// ── Item rows ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	for _, item := range order.Items {
		sku, name := "", ""
		if item.Product != nil {
			sku = item.Product.SKU
			name = item.Product.Name
		}
		if len(name) > 34 {
			name = name[:33] + "…"
		}
		pdf.CellFormat(col1, 5, sku, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, fmt.Sprintf("%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col4, 5, fmt.Sprintf("%d", item.ReceivedQuantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col5, 5, "$"+item.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col6, 5, "$"+item.TotalPrice().StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Total ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1+col2+col3+col4+col5, 7, "ORDER TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col6, 7, "$"+order.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")

	if order.Notes != nil && *order.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, "Notes: "+*order.Notes, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
