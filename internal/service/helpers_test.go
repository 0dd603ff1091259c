package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"taller/internal/config"
	"taller/internal/dto"
	"taller/internal/infra"
	"taller/internal/model"
	"taller/internal/repository"
	"taller/internal/worker"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ── In-memory doubles ─────────────────────────────────────────────────────────

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *memCache) has(key string) bool {
	_, ok := c.Get(context.Background(), key)
	return ok
}

type alertasSpy struct {
	mu       sync.Mutex
	payloads []worker.AlertaStockPayload
}

func (a *alertasSpy) EnqueueAlertaStock(_ context.Context, p worker.AlertaStockPayload) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.payloads = append(a.payloads, p)
	return nil
}

func (a *alertasSpy) all() []worker.AlertaStockPayload {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]worker.AlertaStockPayload(nil), a.payloads...)
}

// ── SQLite environment ────────────────────────────────────────────────────────

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the shared in-memory database alive and serializes
	// transactions the way row locks would on Postgres.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infra.RunMigrations(db))
	return db
}

func newTestCfg() *config.Config {
	return &config.Config{
		JWTSecret:             testSecret,
		JWTExpirationHours:    8,
		JWTRefreshHours:       24,
		TallerNombre:          "Taller de Prueba",
		IVARate:               "0.19",
		Timezone:              "UTC",
		PrecioCacheTTLMinutes: 5,
	}
}

const testSecret = "test_jwt_secret_32_chars_minimum!"

type testEnv struct {
	db      *gorm.DB
	cfg     *config.Config
	cache   *memCache
	alertas *alertasSpy

	productosRepo   repository.ProductoRepository
	movimientosRepo repository.MovimientoStockRepository
	clientesRepo    repository.ClienteRepository
	vehiculosRepo   repository.VehiculoRepository
	modelosRepo     repository.ModeloVehiculoRepository

	ledger     *StockLedger
	compras    CompraService
	ordenes    OrdenTrabajoService
	ventas     VentaMesonService
	reportes   *reporteService
	productos  ProductoService
	categorias CategoriaService
	modelos    ModeloVehiculoService
	clientes   ClienteService
	inventario InventarioService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	cfg := newTestCfg()
	env := &testEnv{db: db, cfg: cfg, cache: newMemCache(), alertas: &alertasSpy{}}

	env.productosRepo = repository.NewProductoRepository(db)
	env.movimientosRepo = repository.NewMovimientoStockRepository(db)
	env.clientesRepo = repository.NewClienteRepository(db)
	env.vehiculosRepo = repository.NewVehiculoRepository(db)
	env.modelosRepo = repository.NewModeloVehiculoRepository(db)
	categoriasRepo := repository.NewCategoriaRepository(db)
	historialRepo := repository.NewHistorialPrecioRepository(db)

	env.ledger = NewStockLedger(env.productosRepo, env.movimientosRepo)
	env.compras = NewCompraService(repository.NewCompraRepository(db), repository.NewProveedorRepository(db),
		env.productosRepo, env.modelosRepo, historialRepo, env.ledger, env.cache, cfg)
	env.ordenes = NewOrdenTrabajoService(repository.NewOrdenTrabajoRepository(db), env.clientesRepo,
		env.vehiculosRepo, env.productosRepo, env.ledger, env.cache, env.alertas, cfg.TallerNombre)
	env.ventas = NewVentaMesonService(repository.NewVentaMesonRepository(db), env.productosRepo,
		env.ledger, env.cache, env.alertas)
	env.reportes = NewReporteService(repository.NewReporteRepository(db), env.productosRepo, env.cache, cfg).(*reporteService)
	env.productos = NewProductoService(env.productosRepo, categoriasRepo, env.modelosRepo, historialRepo,
		env.cache, cfg.PrecioCacheTTL())
	env.categorias = NewCategoriaService(categoriasRepo)
	env.modelos = NewModeloVehiculoService(env.modelosRepo)
	env.clientes = NewClienteService(env.clientesRepo)
	env.inventario = NewInventarioService(env.movimientosRepo)
	return env
}

// seedProducto creates a catalog product and sets its stock directly.
func (e *testEnv) seedProducto(t *testing.T, sku, nombre string, precio int64, stock int) *model.Producto {
	t.Helper()
	minimo := 2
	resp, err := e.productos.Crear(context.Background(), dto.CrearProductoRequest{
		SKU: sku, Nombre: nombre, PrecioVenta: precio, StockMinimo: &minimo,
	})
	require.NoError(t, err)
	require.NoError(t, e.db.Model(&model.Producto{}).Where("sku = ?", sku).
		Update("stock_actual", stock).Error)
	p, err := e.productosRepo.FindBySKU(context.Background(), resp.SKU)
	require.NoError(t, err)
	return p
}

func (e *testEnv) stock(t *testing.T, sku string) int {
	t.Helper()
	var p model.Producto
	require.NoError(t, e.db.Unscoped().Where("sku = ?", sku).First(&p).Error)
	return p.StockActual
}

func (e *testEnv) count(t *testing.T, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}

func ptr[T any](v T) *T { return &v }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func ordenBasica(numero int, cliente dto.ClienteOrdenInput, patente string, items ...dto.OrdenItemInput) dto.CrearOrdenTrabajoRequest {
	if len(items) == 0 {
		items = []dto.OrdenItemInput{{ServicioNombre: "Revision", Precio: 15000}}
	}
	return dto.CrearOrdenTrabajoRequest{
		NumeroOrdenPapel: numero,
		RealizadoPor:     "Pedro",
		Cliente:          cliente,
		Vehiculo:         dto.VehiculoOrdenInput{Patente: patente, Marca: "Toyota", Modelo: "Yaris"},
		Items:            items,
	}
}
