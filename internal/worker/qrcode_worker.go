package worker

// qrcode_worker.go
// Processes QR generation jobs from QueueQRCode: renders the label PNG for a
// product or order and records the file path back on the row.

import (
	"context"
	"encoding/json"
	"fmt"

	"stockroom/internal/config"
	"stockroom/internal/infra"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// QRCodeJobPayload is the job envelope sent to QueueQRCode.
// Entity is "product" or "order"; ID is the row's uuid.
type QRCodeJobPayload struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
}

type QRCodeWorker struct {
	storagePath string
	products    repository.ProductRepository
	orders      repository.OrderRepository
}

func NewQRCodeWorker(cfg *config.Config, products repository.ProductRepository, orders repository.OrderRepository) *QRCodeWorker {
	return &QRCodeWorker{
		storagePath: cfg.QRStoragePath,
		products:    products,
		orders:      orders,
	}
}

// Process generates the PNG and persists its path.
func (w *QRCodeWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload QRCodeJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("qrcode_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}
	id, err := uuid.Parse(payload.ID)
	if err != nil {
		log.Error().Str("id", payload.ID).Msg("qrcode_worker: invalid uuid")
		return nil
	}

	switch payload.Entity {
	case "product":
		p, err := w.products.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("qrcode_worker: load product: %w", err)
		}
		path, err := infra.GenerateProductQR(p.SKU, w.storagePath)
		if err != nil {
			return err
		}
		if err := w.products.UpdateQRPath(ctx, id, path); err != nil {
			return fmt.Errorf("qrcode_worker: save product path: %w", err)
		}
		log.Info().Str("sku", p.SKU).Str("path", path).Msg("qrcode_worker: product label generated")

	case "order":
		o, err := w.orders.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("qrcode_worker: load order: %w", err)
		}
		path, err := infra.GenerateOrderQR(o.OrderNumber, w.storagePath)
		if err != nil {
			return err
		}
		if err := w.orders.UpdateQRPath(ctx, id, path); err != nil {
			return fmt.Errorf("qrcode_worker: save order path: %w", err)
		}
		log.Info().Str("order_number", o.OrderNumber).Str("path", path).Msg("qrcode_worker: order label generated")

	default:
		log.Warn().Str("entity", payload.Entity).Msg("qrcode_worker: unknown entity")
	}
	return nil
}
