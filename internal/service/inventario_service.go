package service

import (
	"context"
	"time"

	"taller/internal/apperror"
	"taller/internal/dto"
	"taller/internal/repository"

	"github.com/google/uuid"
)

// InventarioService exposes the stock ledger journal.
type InventarioService interface {
	ListarMovimientos(ctx context.Context, filter dto.MovimientoStockFilter) (*dto.MovimientoStockListResponse, error)
}

type inventarioService struct {
	movimientos repository.MovimientoStockRepository
}

func NewInventarioService(movimientos repository.MovimientoStockRepository) InventarioService {
	return &inventarioService{movimientos: movimientos}
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoStockFilter) (*dto.MovimientoStockListResponse, error) {
	f := repository.MovimientoStockFilter{Tipo: filter.Tipo, Page: filter.Page, Limit: filter.Limit}
	if filter.ProductoID != "" {
		id, err := uuid.Parse(filter.ProductoID)
		if err != nil {
			return nil, apperror.Validation("producto_id inválido")
		}
		f.ProductoID = &id
	}
	if filter.ReferenciaID != "" {
		id, err := uuid.Parse(filter.ReferenciaID)
		if err != nil {
			return nil, apperror.Validation("referencia_id inválido")
		}
		f.ReferenciaID = &id
	}

	movs, total, err := s.movimientos.List(ctx, f)
	if err != nil {
		return nil, apperror.Internal("inventario.movimientos", "movimiento_stock", err)
	}

	resp := &dto.MovimientoStockListResponse{
		Data:  make([]dto.MovimientoStockResponse, 0, len(movs)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for _, m := range movs {
		item := dto.MovimientoStockResponse{
			ID:            m.ID.String(),
			ProductoID:    m.ProductoID.String(),
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
			CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		}
		if m.Producto != nil {
			item.ProductoSKU = m.Producto.SKU
			item.ProductoNombre = m.Producto.Nombre
		}
		if m.ReferenciaID != nil {
			ref := m.ReferenciaID.String()
			item.ReferenciaID = &ref
		}
		resp.Data = append(resp.Data, item)
	}
	return resp, nil
}
