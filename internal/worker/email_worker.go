package worker

// email_worker.go
// Processes email jobs from QueueEmail. When OrderID is set the purchase
// order PDF is generated (or regenerated) and attached.

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

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	OrderID string `json:"order_id,omitempty"`
}

type EmailWorker struct {
	mailer         *infra.Mailer
	orders         repository.OrderRepository
	pdfStoragePath string
}

func NewEmailWorker(cfg *config.Config, mailer *infra.Mailer, orders repository.OrderRepository) *EmailWorker {
	return &EmailWorker{
		mailer:         mailer,
		orders:         orders,
		pdfStoragePath: cfg.PDFStoragePath,
	}
}

// Process sends the email, attaching the order PDF when requested.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email — skipping")
		return nil
	}

	attachment := ""
	if payload.OrderID != "" {
		id, err := uuid.Parse(payload.OrderID)
		if err != nil {
			log.Error().Str("order_id", payload.OrderID).Msg("email_worker: invalid order uuid")
			return nil
		}
		order, err := w.orders.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("email_worker: load order: %w", err)
		}
		attachment, err = infra.GeneratePurchaseOrderPDF(order, w.pdfStoragePath)
		if err != nil {
			return fmt.Errorf("email_worker: build PDF: %w", err)
		}
	}

	if err := w.mailer.SendDocument(payload.ToEmail, payload.Subject, payload.Body, attachment); err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("email_worker: sent")
	return nil
}
