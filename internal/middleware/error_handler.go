package middleware

import (
	"context"
	"net/http"
	"time"

	"taller/internal/apierror"
	"taller/internal/apperror"
	"taller/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorNotifier forwards internal errors to the operations channel.
// *worker.Dispatcher implements it.
type ErrorNotifier interface {
	EnqueueErrorInterno(ctx context.Context, payload worker.ErrorInternoPayload) error
}

// ErrorHandler is a Gin middleware that catches panics and unhandled errors.
// It ensures stack traces are NEVER exposed to clients (security requirement).
// Handlers attach internal errors with c.Error after answering; they are
// logged here and, when notifier is set, queued for the webhook.
func ErrorHandler(notifier ErrorNotifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		// Log the internal error with full context (for debugging)
		err := c.Errors.Last()
		op, entidad := apperror.Origin(err.Err)
		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Str("op", op).
			Str("entidad", entidad).
			Err(err.Err).
			Msg("unhandled error")

		if notifier != nil {
			payload := worker.ErrorInternoPayload{
				Method:    c.Request.Method,
				Path:      c.Request.URL.Path,
				RequestID: c.GetString(RequestIDKey),
				Operacion: op,
				Entidad:   entidad,
				Error:     err.Err.Error(),
				Fecha:     time.Now().UTC().Format(time.RFC3339),
			}
			if nerr := notifier.EnqueueErrorInterno(context.WithoutCancel(c.Request.Context()), payload); nerr != nil {
				log.Warn().Err(nerr).Msg("error notification not queued")
			}
		}

		// Safe error message, no stack trace
		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
		}
	}
}

// Recovery handles panics and converts them into 500 responses.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Interface("panic", r).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
			}
		}()
		c.Next()
	}
}

// Logger logs each request with method, path, status, latency, and request_id.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
