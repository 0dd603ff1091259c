package worker

// notificacion_worker.go
// Posts internal-error notifications to the operations chat webhook.
// Calls go through a circuit breaker with bounded retries; exhausted jobs
// are moved to the DLQ.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"taller/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxNotificacionAttempts = 3

// ErrorInternoPayload describes an internal error answered with a 500.
type ErrorInternoPayload struct {
	Method    string `json:"method"`
	Path      string `json:"path"`
	RequestID string `json:"request_id"`
	Operacion string `json:"operacion"`
	Entidad   string `json:"entidad"`
	Error     string `json:"error"`
	Fecha     string `json:"fecha"` // RFC 3339
}

// Webhook is the subset of infra.WebhookClient the worker needs.
type Webhook interface {
	Enviar(ctx context.Context, content string) error
}

type NotificacionWorker struct {
	webhook Webhook
	cb      *infra.CircuitBreaker
	rdb     *redis.Client
	backoff time.Duration
}

func NewNotificacionWorker(webhook Webhook, cb *infra.CircuitBreaker, rdb *redis.Client) *NotificacionWorker {
	return &NotificacionWorker{webhook: webhook, cb: cb, rdb: rdb, backoff: time.Second}
}

func (w *NotificacionWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ErrorInternoPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notificacion_worker: invalid payload")
		return
	}
	content := FormatErrorInterno(payload)

	attempts := 0
	err := withRetry(ctx, maxNotificacionAttempts, w.backoff, func(attempt int) error {
		attempts = attempt + 1
		return w.cb.Execute(func() error { return w.webhook.Enviar(ctx, content) })
	})
	if err != nil {
		log.Error().Err(err).
			Str("request_id", payload.RequestID).
			Str("cb_state", w.cb.State().String()).
			Msg("notificacion_worker: webhook failed after retries")
		SendToDLQ(ctx, w.rdb, QueueNotificacion, JobErrorInterno, raw, err.Error(), attempts)
		return
	}
	log.Debug().Str("request_id", payload.RequestID).Msg("notificacion_worker: notification sent")
}

// FormatErrorInterno builds the chat message for an internal error.
func FormatErrorInterno(p ErrorInternoPayload) string {
	var b strings.Builder
	b.WriteString("🚨 **Error interno del servidor**\n")
	fmt.Fprintf(&b, "**Ruta:** `%s %s`\n", p.Method, p.Path)
	if p.Operacion != "" {
		fmt.Fprintf(&b, "**Operación:** `%s`", p.Operacion)
		if p.Entidad != "" {
			fmt.Fprintf(&b, " (%s)", p.Entidad)
		}
		b.WriteString("\n")
	}
	if p.RequestID != "" {
		fmt.Fprintf(&b, "**Request ID:** `%s`\n", p.RequestID)
	}
	if p.Fecha != "" {
		fmt.Fprintf(&b, "**Fecha:** %s\n", p.Fecha)
	}
	fmt.Fprintf(&b, "```%s```", p.Error)
	return b.String()
}

// withRetry calls fn up to maxAttempts times with exponential backoff
// (base, 2×base, …). An open circuit stops retrying immediately.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := base * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		err := fn(i)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, infra.ErrCircuitOpen) {
			return err
		}
	}
	return lastErr
}
