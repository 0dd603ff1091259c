package service

import (
	"context"

	"taller/internal/model"
	"taller/internal/repository"
	"taller/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// alertarStockBajo enqueues one alert email for the touched products that
// ended at or below their minimum. It runs after commit and never fails the caller.
func alertarStockBajo(ctx context.Context, productos repository.ProductoRepository, alertas AlertaDispatcher,
	origen string, referencia uuid.UUID, ids []uuid.UUID) {
	if alertas == nil || len(ids) == 0 {
		return
	}
	bajos, err := productos.FindStockBajoTx(productos.DB().WithContext(ctx), ids)
	if err != nil {
		log.Warn().Err(err).Str("origen", origen).Msg("alerta stock: consulta falló")
		return
	}
	if len(bajos) == 0 {
		return
	}
	payload := worker.AlertaStockPayload{
		Origen:       origen,
		ReferenciaID: referencia.String(),
		Productos:    productosAlerta(bajos),
	}
	if err := alertas.EnqueueAlertaStock(ctx, payload); err != nil {
		log.Warn().Err(err).Str("origen", origen).Msg("alerta stock: no se pudo encolar")
	}
}

func productosAlerta(productos []model.Producto) []worker.ProductoAlerta {
	out := make([]worker.ProductoAlerta, 0, len(productos))
	for _, p := range productos {
		out = append(out, worker.ProductoAlerta{
			SKU:         p.SKU,
			Nombre:      p.Nombre,
			StockActual: p.StockActual,
			StockMinimo: p.StockMinimo,
		})
	}
	return out
}
