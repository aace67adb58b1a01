package worker

// reorder_cron.go
// Background goroutine that periodically scans for products at or below
// their reorder level and emails a restock digest to the purchasing inbox.
// A Redis guard key keeps the digest to at most one per scan window even
// when several replicas run the cron.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockroom/internal/config"
	"stockroom/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const reorderGuardKey = "reorder:digest_sent"

// ReorderCronConfig holds all dependencies for the reorder scan goroutine.
type ReorderCronConfig struct {
	Products   repository.ProductRepository
	Dispatcher *Dispatcher
	RDB        *redis.Client
	Cfg        *config.Config
}

// StartReorderCron launches a background goroutine that ticks every
// REORDER_SCAN_MINUTES, lists low-stock products, and queues the digest.
// It respects the context for graceful shutdown.
func StartReorderCron(ctx context.Context, cfg ReorderCronConfig) {
	interval := time.Duration(cfg.Cfg.ReorderScanMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("reorder_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("reorder_cron: shutting down")
				return
			case <-ticker.C:
				scanAndNotify(ctx, cfg, interval)
			}
		}
	}()
}

func scanAndNotify(ctx context.Context, cfg ReorderCronConfig, interval time.Duration) {
	if cfg.Cfg.PurchasingEmail == "" {
		return
	}

	low, err := cfg.Products.ListLowStock(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reorder_cron: low stock scan failed")
		return
	}
	if len(low) == 0 {
		return
	}

	// One digest per window across all replicas.
	ok, err := cfg.RDB.SetNX(ctx, reorderGuardKey, time.Now().UTC().Format(time.RFC3339), interval).Result()
	if err != nil {
		log.Error().Err(err).Msg("reorder_cron: guard key check failed")
		return
	}
	if !ok {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d product(s) are at or below their reorder level:\n\n", len(low))
	for _, p := range low {
		fmt.Fprintf(&b, "  %-16s %-32s in stock: %d  reorder at: %d  suggested qty: %d\n",
			p.SKU, p.Name, p.QuantityInStock, p.ReorderLevel, p.ReorderQuantity)
	}

	err = cfg.Dispatcher.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail: cfg.Cfg.PurchasingEmail,
		Subject: fmt.Sprintf("Restock needed: %d product(s) low", len(low)),
		Body:    b.String(),
	})
	if err != nil {
		log.Error().Err(err).Msg("reorder_cron: failed to enqueue digest")
		return
	}
	log.Info().Int("products", len(low)).Msg("reorder_cron: restock digest queued")
}
