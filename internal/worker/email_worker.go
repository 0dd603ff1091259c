package worker

// email_worker.go
// Processes low-stock alert jobs from QueueEmail and mails them to the
// configured alerts inbox.

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog/log"
)

// ProductoAlerta is one product at or below its minimum stock.
type ProductoAlerta struct {
	SKU         string `json:"sku"`
	Nombre      string `json:"nombre"`
	StockActual int    `json:"stock_actual"`
	StockMinimo int    `json:"stock_minimo"`
}

// AlertaStockPayload is the job sent to QueueEmail. Origen says what raised
// it: "orden_trabajo", "venta_meson" or "resumen".
type AlertaStockPayload struct {
	Origen       string           `json:"origen"`
	ReferenciaID string           `json:"referencia_id,omitempty"`
	Productos    []ProductoAlerta `json:"productos"`
}

// AlertaSender is the subset of infra.Mailer the worker needs.
type AlertaSender interface {
	SendAlerta(to, subject, text, html string) error
}

type EmailWorker struct {
	mailer AlertaSender
	to     string
}

// NewEmailWorker creates an EmailWorker sending every alert to `to`.
func NewEmailWorker(mailer AlertaSender, to string) *EmailWorker {
	return &EmailWorker{mailer: mailer, to: to}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload AlertaStockPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if w.to == "" {
		log.Warn().Msg("email_worker: ALERTAS_EMAIL not set, skipping")
		return
	}
	if len(payload.Productos) == 0 {
		return
	}

	subject, text, htmlBody := FormatAlertaStock(payload)
	if err := w.mailer.SendAlerta(w.to, subject, text, htmlBody); err != nil {
		log.Error().Err(err).Str("to", w.to).Msg("email_worker: failed to send alert")
		return
	}
	log.Info().Str("to", w.to).Int("productos", len(payload.Productos)).Msg("email_worker: stock alert sent")
}

// FormatAlertaStock returns the subject, plain text and HTML bodies of an alert.
func FormatAlertaStock(p AlertaStockPayload) (subject, text, htmlBody string) {
	if p.Origen == "resumen" {
		subject = fmt.Sprintf("Resumen de stock bajo: %d productos", len(p.Productos))
	} else {
		subject = fmt.Sprintf("Alerta de stock bajo: %d productos", len(p.Productos))
	}

	var t, h strings.Builder
	t.WriteString("Los siguientes productos están en o bajo su stock mínimo:\n\n")
	h.WriteString("<p>Los siguientes productos están en o bajo su stock mínimo:</p>")
	h.WriteString("<table border=\"1\" cellpadding=\"4\"><tr><th>SKU</th><th>Producto</th><th>Stock</th><th>Mínimo</th></tr>")
	for _, pr := range p.Productos {
		fmt.Fprintf(&t, "- %s %s: %d (mínimo %d)\n", pr.SKU, pr.Nombre, pr.StockActual, pr.StockMinimo)
		fmt.Fprintf(&h, "<tr><td>%s</td><td>%s</td><td>%d</td><td>%d</td></tr>",
			html.EscapeString(pr.SKU), html.EscapeString(pr.Nombre), pr.StockActual, pr.StockMinimo)
	}
	h.WriteString("</table>")
	return subject, t.String(), h.String()
}
