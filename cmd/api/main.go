package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jhoicas/Cantina-api/internal/application/catalog"
	"github.com/jhoicas/Cantina-api/internal/application/inventory"
	"github.com/jhoicas/Cantina-api/internal/application/ports"
	"github.com/jhoicas/Cantina-api/internal/application/reporting"
	infrapdf "github.com/jhoicas/Cantina-api/internal/infrastructure/pdf"
	infraredis "github.com/jhoicas/Cantina-api/internal/infrastructure/redis"
	"github.com/jhoicas/Cantina-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/Cantina-api/internal/interfaces/http"
	"github.com/jhoicas/Cantina-api/pkg/config"
	"github.com/jhoicas/Cantina-api/pkg/keylock"
	"github.com/jhoicas/Cantina-api/pkg/logger"
)

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
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer backend.Close()

	// Un único locker por proceso: catálogo y motor serializan por código de producto.
	locks := keylock.New()
	catalogUC := catalog.NewUseCase(backend.Products, backend.Tx, locks, log)
	engine := inventory.NewEngine(backend.Tx, locks, log)
	reportingUC := reporting.NewUseCase(
		backend.Ledger, backend.Products,
		infrapdf.NewSalesReportGenerator(cfg.App.Name),
		cfg.Reporting.LowStockThreshold, log,
	)

	// Idempotency-Key solo si hay Redis configurado.
	var idem ports.IdempotencyStore
	if cfg.Redis.Enabled() {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer client.Close()
		idem = infraredis.NewIdempotencyStore(client, cfg.Redis.IdempotencyTTL)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("Idempotency-Key habilitado")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Cantina API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": backend.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Catalog:     catalogUC,
		Engine:      engine,
		Reporting:   reportingUC,
		Idempotency: idem,
		Logger:      log,
		JWTSecret:   cfg.JWT.Secret,
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

	log.Info().Msg("aplicación detenida")
}
