package service

import (
	"fmt"

	"taller/internal/apperror"
	"taller/internal/model"
	"taller/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AjusteStock describes one change of a product's stock.
type AjusteStock struct {
	ProductoID   uuid.UUID
	Delta        int
	Tipo         string
	ReferenciaID *uuid.UUID
	Motivo       string
}

// StockLedger is the only writer of productos.stock_actual. Every adjustment
// runs inside the caller's transaction and is journaled in movimientos_stock.
type StockLedger struct {
	productos   repository.ProductoRepository
	movimientos repository.MovimientoStockRepository
}

func NewStockLedger(productos repository.ProductoRepository, movimientos repository.MovimientoStockRepository) *StockLedger {
	return &StockLedger{productos: productos, movimientos: movimientos}
}

// Ajustar applies a.Delta with a single conditional UPDATE that refuses to
// leave stock below zero. On refusal the current row is read back and an
// *apperror.StockError is returned. It returns the new stock level.
func (l *StockLedger) Ajustar(tx *gorm.DB, a AjusteStock) (int, error) {
	ok, err := l.productos.AjustarStockTx(tx, a.ProductoID, a.Delta)
	if err != nil {
		return 0, apperror.Internal("stock.ajustar", "producto", err)
	}
	p, err := l.productos.FindByIDTx(tx, a.ProductoID)
	if err != nil {
		return 0, apperror.Internal("stock.ajustar", "producto", err)
	}
	if !ok {
		return 0, apperror.InsufficientStock(p.Nombre, p.StockActual, -a.Delta)
	}

	mov := &model.MovimientoStock{
		ProductoID:    a.ProductoID,
		Tipo:          a.Tipo,
		Cantidad:      a.Delta,
		StockAnterior: p.StockActual - a.Delta,
		StockNuevo:    p.StockActual,
		Motivo:        a.Motivo,
		ReferenciaID:  a.ReferenciaID,
	}
	if err := l.movimientos.CreateTx(tx, mov); err != nil {
		return 0, apperror.Internal("stock.ajustar", "movimiento_stock", err)
	}
	return p.StockActual, nil
}

// Revertir takes back cantidad units previously added, clamping at zero when
// part of them has already left the shop. The journal records the effective delta.
func (l *StockLedger) Revertir(tx *gorm.DB, productoID uuid.UUID, cantidad int, referenciaID *uuid.UUID, motivo string) (int, error) {
	antes, err := l.productos.FindByIDTx(tx, productoID)
	if err != nil {
		return 0, apperror.Internal("stock.revertir", "producto", err)
	}
	if err := l.productos.RevertirStockTx(tx, productoID, cantidad); err != nil {
		return 0, apperror.Internal("stock.revertir", "producto", err)
	}
	despues, err := l.productos.FindByIDTx(tx, productoID)
	if err != nil {
		return 0, apperror.Internal("stock.revertir", "producto", err)
	}

	delta := despues.StockActual - antes.StockActual
	if delta == 0 {
		return despues.StockActual, nil
	}
	if delta != -cantidad {
		motivo = fmt.Sprintf("%s (ajustado a %d por stock insuficiente)", motivo, -delta)
	}
	mov := &model.MovimientoStock{
		ProductoID:    productoID,
		Tipo:          model.StockReversaCompra,
		Cantidad:      delta,
		StockAnterior: antes.StockActual,
		StockNuevo:    despues.StockActual,
		Motivo:        motivo,
		ReferenciaID:  referenciaID,
	}
	if err := l.movimientos.CreateTx(tx, mov); err != nil {
		return 0, apperror.Internal("stock.revertir", "movimiento_stock", err)
	}
	return despues.StockActual, nil
}
