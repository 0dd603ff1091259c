package service

import (
	"context"
	"errors"

	"taller/internal/worker"

	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
// Returning an error or panicking inside fn rolls the transaction back.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

func isDuplicate(err error) bool { return errors.Is(err, gorm.ErrDuplicatedKey) }

// AlertaDispatcher enqueues background jobs raised by committed transactions.
// *worker.Dispatcher implements it; nil disables alerts.
type AlertaDispatcher interface {
	EnqueueAlertaStock(ctx context.Context, payload worker.AlertaStockPayload) error
}
