package router

import (
	"time"

	"taller/internal/config"
	"taller/internal/handler"
	"taller/internal/infra"
	"taller/internal/middleware"
	"taller/internal/model"
	"taller/internal/repository"
	"taller/internal/service"
	"taller/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis.
// rdb may be nil: the cache then always misses and async jobs are dropped.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Worker dispatcher, shared by the error middleware and the services
	dispatcher := worker.NewDispatcher(rdb)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler(dispatcher))
	r.Use(middleware.CORS())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	cache := infra.NewRedisCache(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	vehiculoRepo := repository.NewVehiculoRepository(db)
	modeloRepo := repository.NewModeloVehiculoRepository(db)
	compraRepo := repository.NewCompraRepository(db)
	ordenRepo := repository.NewOrdenTrabajoRepository(db)
	ventaMesonRepo := repository.NewVentaMesonRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	historialPrecioRepo := repository.NewHistorialPrecioRepository(db)
	reporteRepo := repository.NewReporteRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	ledger := service.NewStockLedger(productoRepo, movimientoStockRepo)

	authSvc := service.NewAuthService(usuarioRepo, cfg)
	productoSvc := service.NewProductoService(productoRepo, categoriaRepo, modeloRepo, historialPrecioRepo, cache, cfg.PrecioCacheTTL())
	categoriaSvc := service.NewCategoriaService(categoriaRepo)
	proveedorSvc := service.NewProveedorService(proveedorRepo)
	clienteSvc := service.NewClienteService(clienteRepo)
	modeloSvc := service.NewModeloVehiculoService(modeloRepo)
	inventarioSvc := service.NewInventarioService(movimientoStockRepo)
	compraSvc := service.NewCompraService(compraRepo, proveedorRepo, productoRepo, modeloRepo, historialPrecioRepo, ledger, cache, cfg)
	ordenSvc := service.NewOrdenTrabajoService(ordenRepo, clienteRepo, vehiculoRepo, productoRepo, ledger, cache, dispatcher, cfg.TallerNombre)
	ventaMesonSvc := service.NewVentaMesonService(ventaMesonRepo, productoRepo, ledger, cache, dispatcher)
	reporteSvc := service.NewReporteService(reporteRepo, productoRepo, cache, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	productosH := handler.NewProductosHandler(productoSvc)
	consultaH := handler.NewConsultaPreciosHandler(productoSvc)
	categoriasH := handler.NewCategoriasHandler(categoriaSvc)
	proveedoresH := handler.NewProveedoresHandler(proveedorSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	modelosH := handler.NewModelosVehiculoHandler(modeloSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	comprasH := handler.NewComprasHandler(compraSvc)
	ordenesH := handler.NewOrdenesTrabajoHandler(ordenSvc)
	ventasMesonH := handler.NewVentasMesonHandler(ventaMesonSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check, no auth required
	r.GET("/v1/precio/:sku", consultaH.GetPrecioPorSKU)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	admin := middleware.RequireRole(model.RolAdmin)
	v1 := r.Group("/v1", jwtMW)
	{
		compras := v1.Group("/compras")
		{
			compras.POST("", admin, comprasH.Crear)
			compras.GET("", comprasH.Listar)
			compras.GET("/:id", comprasH.ObtenerPorID)
			compras.DELETE("/:id", admin, comprasH.Eliminar)
		}

		ordenes := v1.Group("/ordenes-trabajo")
		{
			ordenes.POST("", ordenesH.Crear)
			ordenes.GET("", ordenesH.Listar)
			ordenes.GET("/catalogo-servicios", ordenesH.CatalogoServicios)
			ordenes.GET("/:id", ordenesH.ObtenerPorID)
			ordenes.GET("/:id/pdf", ordenesH.DescargarPDF)
			ordenes.PATCH("/:id", ordenesH.Actualizar)
		}

		v1.POST("/ventas-meson", ventasMesonH.Crear)
		v1.GET("/ventas-meson", ventasMesonH.Listar)

		reportes := v1.Group("/reportes")
		{
			reportes.GET("/stock-bajo", reportesH.StockBajo)
			reportes.GET("/caja-diaria", reportesH.CajaDiaria)
			reportes.GET("/buscar", reportesH.Buscar)
		}

		// Catalog reads are open to every role; writes are ADMIN only
		prods := v1.Group("/productos")
		{
			prods.GET("", productosH.Listar)
			prods.GET("/eliminados", admin, productosH.ListarEliminados)
			prods.GET("/:id", productosH.ObtenerPorID)
			prods.GET("/:id/historial-precios", productosH.HistorialPrecios)
			prods.POST("", admin, productosH.Crear)
			prods.PUT("/:id", admin, productosH.Actualizar)
			prods.DELETE("/:id", admin, productosH.Eliminar)
			prods.PATCH("/:id/restaurar", admin, productosH.Restaurar)
		}

		categorias := v1.Group("/categorias")
		{
			categorias.GET("", categoriasH.Listar)
			categorias.GET("/:id", categoriasH.ObtenerPorID)
			categorias.POST("", admin, categoriasH.Crear)
			categorias.PUT("/:id", admin, categoriasH.Actualizar)
			categorias.DELETE("/:id", admin, categoriasH.Eliminar)
		}

		modelos := v1.Group("/modelos-vehiculo")
		{
			modelos.GET("", modelosH.Listar)
			modelos.GET("/marcas", modelosH.Marcas)
			modelos.GET("/marcas/:marca", modelosH.ModelosPorMarca)
			modelos.GET("/:id", modelosH.ObtenerPorID)
			modelos.POST("", admin, modelosH.Crear)
			modelos.PUT("/:id", admin, modelosH.Actualizar)
			modelos.DELETE("/:id", admin, modelosH.Eliminar)
		}

		prov := v1.Group("/proveedores")
		{
			prov.GET("", proveedoresH.Listar)
			prov.GET("/:id", proveedoresH.ObtenerPorID)
			prov.POST("", admin, proveedoresH.Crear)
			prov.PUT("/:id", admin, proveedoresH.Actualizar)
			prov.DELETE("/:id", admin, proveedoresH.Eliminar)
		}

		clientes := v1.Group("/clientes")
		{
			clientes.GET("", clientesH.Listar)
			clientes.POST("", admin, clientesH.Crear)
		}

		v1.GET("/inventario/movimientos", inventarioH.ListarMovimientos)

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
