package router

import (
	"context"
	"time"

	"kiosco/internal/carrito"
	"kiosco/internal/config"
	"kiosco/internal/handler"
	"kiosco/internal/infra"
	"kiosco/internal/middleware"
	"kiosco/internal/repository"
	"kiosco/internal/service"
	"kiosco/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitMinuto, time.Minute)
	limiter.StartPurge(ctx, 5*time.Minute)

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(limiter.Middleware())

	loc := cfg.Location()

	// ── Infrastructure ───────────────────────────────────────────────────────
	pdf := infra.NewCierrePDF(cfg.NombreNegocio, cfg.PDFStoragePath, loc)
	dispatcher := worker.NewDispatcher(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	productoRepo := repository.NewProductoRepository(db)
	comboRepo := repository.NewComboRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	cierreRepo := repository.NewCierreRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	reposicionRepo := repository.NewReposicionRepository(db)
	tasaRepo := repository.NewTasaCambioRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	productoSvc := service.NewProductoService(productoRepo, movimientoStockRepo, loc)
	comboSvc := service.NewComboService(comboRepo, productoRepo)
	tasaSvc := service.NewTasaCambioService(tasaRepo, cfg.MonedaPrincipal, cfg.MonedaSecundaria)
	ventaSvc := service.NewVentaService(ventaRepo, productoRepo, comboRepo, movimientoStockRepo, tasaSvc, dispatcher,
		service.VentaOpciones{
			Recargos: carrito.Recargos{
				ShotExtra: decimal.NewFromFloat(cfg.ShotExtraMonto),
				Monster:   decimal.NewFromFloat(cfg.MonsterPrecio),
			},
			Timeout:         cfg.Timeout(),
			ModoStock:       cfg.StockRespaldoModo,
			MonedaPrincipal: cfg.MonedaPrincipal,
			Location:        loc,
		})
	cierreSvc := service.NewCierreService(cierreRepo, ventaRepo, pdf, dispatcher, service.CierreOpciones{
		Location:         loc,
		MonedaSecundaria: cfg.MonedaSecundaria,
		ExcluirAnuladas:  cfg.CierreExcluirAnuladas,
		EmailDestino:     cfg.CierreEmailDestino,
	})
	reporteSvc := service.NewReporteService(ventaRepo, productoRepo, loc, nil, cfg.MonedaSecundaria)
	reposicionSvc := service.NewReposicionService(reposicionRepo, productoRepo, movimientoStockRepo, cfg.MonedaPrincipal)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productosH := handler.NewProductosHandler(productoSvc)
	combosH := handler.NewCombosHandler(comboSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	cierresH := handler.NewCierresHandler(cierreSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)
	reposicionH := handler.NewReposicionHandler(reposicionSvc)
	tasaH := handler.NewTasaCambioHandler(tasaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		prods := v1.Group("/productos")
		{
			prods.GET("", productosH.Listar)
			prods.POST("", productosH.Crear)
			prods.GET("/alertas", productosH.Alertas)
			prods.GET("/:id", productosH.ObtenerPorID)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
			prods.PATCH("/:id/stock", productosH.AjustarStock)
			prods.GET("/:id/movimientos", productosH.Movimientos)
		}

		combos := v1.Group("/combos")
		{
			combos.GET("", combosH.Listar)
			combos.POST("", combosH.Crear)
			combos.GET("/:id", combosH.Obtener)
			combos.PUT("/:id", combosH.Actualizar)
			combos.DELETE("/:id", combosH.Desactivar)
		}

		ventas := v1.Group("/ventas")
		{
			ventas.POST("", ventasH.RegistrarVenta)
			ventas.GET("", ventasH.ListarVentas)
			ventas.GET("/:id", ventasH.ObtenerVenta)
			ventas.POST("/:id/anular", ventasH.AnularVenta)
		}

		cierres := v1.Group("/cierres")
		{
			cierres.POST("", cierresH.Cerrar)
			cierres.GET("", cierresH.Listar)
			cierres.GET("/hoy", cierresH.Hoy)
			cierres.GET("/:id/pdf", cierresH.PDF)
		}

		reportes := v1.Group("/reportes")
		{
			reportes.GET("", reportesH.Rango)
			reportes.GET("/hoy", reportesH.Hoy)
			reportes.GET("/semana", reportesH.Semana)
			reportes.GET("/mes", reportesH.Mes)
		}

		repo := v1.Group("/reposicion")
		{
			repo.GET("/fuentes", reposicionH.ListarFuentes)
			repo.POST("/fuentes", reposicionH.CrearFuente)
			repo.DELETE("/fuentes/:id", reposicionH.EliminarFuente)
			repo.POST("/compras", reposicionH.RegistrarCompra)
		}

		v1.GET("/tasa-cambio", tasaH.Obtener)
		v1.PUT("/tasa-cambio", tasaH.Actualizar)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
