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

	"github.com/ordexa/ordexa-api/internal/application/auth"
	"github.com/ordexa/ordexa-api/internal/application/tenant"
	"github.com/ordexa/ordexa-api/internal/application/usecase"
	"github.com/ordexa/ordexa-api/internal/infrastructure/postgres"
	infraredis "github.com/ordexa/ordexa-api/internal/infrastructure/redis"
	httpRouter "github.com/ordexa/ordexa-api/internal/interfaces/http"
	"github.com/ordexa/ordexa-api/pkg/config"
	"github.com/ordexa/ordexa-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   "info",
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	sessionStore, err := infraredis.NewSessionStore(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer sessionStore.Close()

	empresaRepo := postgres.NewEmpresaRepository(pool)
	usuarioRepo := postgres.NewUsuarioRepository(pool)
	dispositivoRepo := postgres.NewDispositivoRepository(pool)
	productoRepo := postgres.NewProductoRepository(pool)
	ventaRepo := postgres.NewVentaRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	registrar := tenant.NewRegistrar(txRunner)
	resolver := tenant.NewResolver(usuarioRepo, empresaRepo, registrar, log)
	lifecycle := tenant.NewLifecycle(txRunner, empresaRepo, usuarioRepo, sessionStore, cfg.Tenancy.MaxUsuariosPorEmpresa, log)
	crearEmpresaUC := tenant.NewCrearEmpresaUseCase(txRunner, cfg.Tenancy.MaxDispositivos)

	productoUC := usecase.NewProductoUseCase(productoRepo)
	ventaUC := usecase.NewVentaUseCase(txRunner, ventaRepo)

	authUC := auth.NewAuthUseCase(usuarioRepo, empresaRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Ordexa API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:          authUC,
		Resolver:        resolver,
		CrearEmpresaUC:  crearEmpresaUC,
		Lifecycle:       lifecycle,
		ProductoUC:      productoUC,
		VentaUC:         ventaUC,
		EmpresaRepo:     empresaRepo,
		DispositivoRepo: dispositivoRepo,
		JWTSecret:       cfg.JWT.Secret,
		Revocation:      sessionStore,
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
