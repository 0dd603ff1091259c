package infra

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taller/internal/config"
	"taller/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Circuit breaker ───────────────────────────────────────────────────────────

func TestCircuitBreaker_TripsAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: time.Minute})
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }
	fail := func() error { return assert.AnError }

	assert.ErrorIs(t, cb.Execute(fail), assert.AnError)
	assert.Equal(t, CBClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(fail), assert.AnError)
	assert.Equal(t, CBOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second})
	now := time.Now()
	cb.now = func() time.Time { return now }

	_ = cb.Execute(func() error { return assert.AnError })
	now = now.Add(2 * time.Second)
	_ = cb.Execute(func() error { return assert.AnError })
	assert.Equal(t, CBOpen, cb.State())
	assert.Equal(t, "open", cb.State().String())
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2})
	_ = cb.Execute(func() error { return assert.AnError })
	require.NoError(t, cb.Execute(func() error { return nil }))
	_ = cb.Execute(func() error { return assert.AnError })
	assert.Equal(t, CBClosed, cb.State())
}

// ── PDF ───────────────────────────────────────────────────────────────────────

func TestFormatCLP(t *testing.T) {
	cases := map[int64]string{
		0:        "$0",
		990:      "$990",
		1000:     "$1.000",
		350000:   "$350.000",
		1234567:  "$1.234.567",
		-25000:   "-$25.000",
		10000000: "$10.000.000",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatCLP(in))
	}
}

func TestGenerateOrdenPDF(t *testing.T) {
	rut := "123456785"
	prodID := uuid.New()
	orden := &model.OrdenTrabajo{
		ID:               uuid.New(),
		NumeroOrdenPapel: 1042,
		FechaIngreso:     time.Date(2026, 5, 4, 15, 30, 0, 0, time.UTC),
		TotalCobrado:     65000,
		RealizadoPor:     "Pedro",
		PatenteVehiculo:  "ABCD12",
		Kilometraje:      func() *int { k := 123000; return &k }(),
		Cliente:          &model.Cliente{Nombre: "José Muñoz", RUT: &rut},
		Detalles: []model.DetalleOrden{
			{ServicioNombre: "Cambio Pastillas", Precio: 25000, Cantidad: 2, ProductoID: &prodID,
				Producto: &model.Producto{SKU: "PAS-1", Nombre: "Pastillas delanteras"}},
			{ServicioNombre: "Revisión", Precio: 15000, Cantidad: 1},
		},
	}

	out, err := GenerateOrdenPDF(orden, "Taller Frenos Ñuñoa")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
	assert.Greater(t, len(out), 500)
}

// ── Webhook ───────────────────────────────────────────────────────────────────

func TestWebhookClient_Enviar(t *testing.T) {
	var got WebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewWebhookClient(srv.URL)
	require.NoError(t, c.Enviar(context.Background(), strings.Repeat("á", 2500)))
	assert.Equal(t, discordMaxContent, len([]rune(got.Content)))
	assert.True(t, strings.HasSuffix(got.Content, "…"))
}

func TestWebhookClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewWebhookClient(srv.URL).Enviar(context.Background(), "hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestWebhookClient_DisabledIsNoop(t *testing.T) {
	c := NewWebhookClient("")
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Enviar(context.Background(), "hola"))
}

// ── Cache / mailer without backing services ───────────────────────────────────

func TestRedisCache_NilClient(t *testing.T) {
	c := NewRedisCache(nil)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "precio:X", []byte("1"), time.Minute))
	_, ok := c.Get(ctx, "precio:X")
	assert.False(t, ok)
	assert.NoError(t, c.Del(ctx, "precio:X"))
}

func TestMailer_Disabled(t *testing.T) {
	m := NewMailer(&config.Config{SMTPPort: 587})
	assert.False(t, m.Enabled())
	assert.ErrorIs(t, m.SendAlerta("a@b.cl", "s", "t", ""), ErrMailerDisabled)
}
