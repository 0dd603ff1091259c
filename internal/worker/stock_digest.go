package worker

// stock_digest.go
// Background goroutine that periodically enqueues the full low-stock list as
// one alert email. Disabled when the interval is zero.

import (
	"context"
	"time"

	"taller/internal/repository"

	"github.com/rs/zerolog/log"
)

// StockDigestConfig holds all dependencies for the digest goroutine.
type StockDigestConfig struct {
	Productos  repository.ProductoRepository
	Dispatcher *Dispatcher
	Interval   time.Duration
}

// StartStockDigest launches the digest ticker. It respects ctx for graceful shutdown.
func StartStockDigest(ctx context.Context, cfg StockDigestConfig) {
	if cfg.Interval <= 0 {
		log.Info().Msg("stock_digest: disabled")
		return
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("stock_digest: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stock_digest: shutting down")
				return
			case <-ticker.C:
				if err := EnqueueStockDigest(ctx, cfg); err != nil {
					log.Error().Err(err).Msg("stock_digest: tick failed")
				}
			}
		}
	}()
}

// EnqueueStockDigest builds and enqueues one digest.
func EnqueueStockDigest(ctx context.Context, cfg StockDigestConfig) error {
	productos, err := cfg.Productos.ListStockBajo(ctx)
	if err != nil {
		return err
	}
	if len(productos) == 0 {
		return nil
	}
	payload := AlertaStockPayload{Origen: "resumen"}
	for _, p := range productos {
		payload.Productos = append(payload.Productos, ProductoAlerta{
			SKU:         p.SKU,
			Nombre:      p.Nombre,
			StockActual: p.StockActual,
			StockMinimo: p.StockMinimo,
		})
	}
	log.Info().Int("productos", len(payload.Productos)).Msg("stock_digest: enqueued")
	return cfg.Dispatcher.EnqueueAlertaStock(ctx, payload)
}
