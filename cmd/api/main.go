package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	_ "github.com/jhoicas/inventario-lotes/docs"
	"github.com/jhoicas/inventario-lotes/internal/application/auth"
	"github.com/jhoicas/inventario-lotes/internal/application/batch"
	"github.com/jhoicas/inventario-lotes/internal/application/export"
	"github.com/jhoicas/inventario-lotes/internal/application/usecase"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/cache"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/events"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/excel"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/inventario-lotes/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-lotes/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-lotes/internal/interfaces/http"
	"github.com/jhoicas/inventario-lotes/pkg/config"
	"github.com/jhoicas/inventario-lotes/pkg/jwt"
	"github.com/jhoicas/inventario-lotes/pkg/logger"
)

// @title                       Inventario de lotes API
// @version                     1.0
// @description                 Materiales, lotes con trazabilidad de consumo, proveedores y etiquetas con código de barras.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("db", postgres.Describe(cfg.DB)).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.App.MigrationsEnabled {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")
	}

	tokens, err := jwt.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración JWT")
	}

	companyRepo := postgres.NewCompanyRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	materialRepo := postgres.NewMaterialRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Eventos de lotes: un consumidor de log; los descartes se cuentan en métricas.
	hub := events.NewHub()
	defer hub.Close()
	stream, unsubscribe := hub.Subscribe(256)
	defer unsubscribe()
	go logBatchEvents(log.Component("events"), stream)

	batchUC := batch.NewUseCase(txRunner, batchRepo, materialRepo, supplierRepo, warehouseRepo, log.Component("batch")).
		WithEvents(hub)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New("inventario")
		hub.OnDrop(m.EventDropped)
		batchUC.WithMetrics(m)
	}

	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			// sin Redis las lecturas van directo a PostgreSQL
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, caché de lotes desactivada")
		} else {
			batchUC.WithCache(cache.NewBatchCache(rdb, cfg.Redis.TTL()))
			log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.TTL()).Msg("caché de lotes en Redis")
		}
		cancel()
	}

	authUC := auth.NewAuthUseCase(userRepo, companyRepo, tokens)
	companyUC := usecase.NewCompanyUseCase(companyRepo)
	userUC := usecase.NewUserUseCase(userRepo)
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo).WithBatchCache(batchUC)
	supplierUC := usecase.NewSupplierUseCase(supplierRepo).WithBatchCache(batchUC)
	materialUC := usecase.NewMaterialUseCase(materialRepo, batchRepo).WithBatchCache(batchUC)
	exportUC := export.NewUseCase(batchRepo, materialRepo, companyRepo, excel.NewWriter(), infrapdf.NewLabelGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	if m != nil {
		app.Use(m.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario de lotes API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "db": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CompanyUC:   companyUC,
		UserUC:      userUC,
		WarehouseUC: warehouseUC,
		SupplierUC:  supplierUC,
		MaterialUC:  materialUC,
		BatchUC:     batchUC,
		ExportUC:    exportUC,
		Tokens:      tokens,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Uint64("eventos_descartados", hub.Dropped()).Msg("aplicación detenida")
}

func logBatchEvents(log *logger.Logger, stream <-chan entity.BatchEvent) {
	for ev := range stream {
		log.Info().
			Str("type", ev.Type).
			Str("company_id", ev.CompanyID).
			Str("batch_id", ev.BatchID).
			Str("material_id", ev.MaterialID).
			Str("status", string(ev.Status)).
			Time("at", ev.At).
			Msg("evento de lote")
	}
}
