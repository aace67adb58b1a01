package infra

// qrcode.go — label QR codes for shelf and paperwork scanning.
// Payload formats understood by the lookup endpoint:
//   product:<sku>
//   order:<order_number>

import (
	"fmt"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSizePx = 256

// GenerateProductQR writes a QR PNG encoding "product:<sku>" and returns the
// file path.
func GenerateProductQR(sku, storagePath string) (string, error) {
	return writeQR("product:"+sku, fmt.Sprintf("product_%s.png", sku), storagePath)
}

// GenerateOrderQR writes a QR PNG encoding "order:<order_number>" and returns
// the file path.
func GenerateOrderQR(orderNumber, storagePath string) (string, error) {
	return writeQR("order:"+orderNumber, fmt.Sprintf("order_%s.png", orderNumber), storagePath)
}

func writeQR(payload, fileName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("qrcode: create storage dir: %w", err)
	}
	filePath := filepath.Join(storagePath, fileName)
	if err := qrcode.WriteFile(payload, qrcode.Medium, qrSizePx, filePath); err != nil {
		return "", fmt.Errorf("qrcode: write %s: %w", fileName, err)
	}
	return filePath, nil
}
