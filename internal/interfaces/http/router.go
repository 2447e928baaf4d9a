package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ordexa/ordexa-api/internal/application/auth"
	"github.com/ordexa/ordexa-api/internal/application/tenant"
	"github.com/ordexa/ordexa-api/internal/application/usecase"
	"github.com/ordexa/ordexa-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	Resolver        *tenant.Resolver
	CrearEmpresaUC  *tenant.CrearEmpresaUseCase
	Lifecycle       *tenant.Lifecycle
	ProductoUC      *usecase.ProductoUseCase
	VentaUC         *usecase.VentaUseCase
	EmpresaRepo     repository.EmpresaRepository
	DispositivoRepo repository.DispositivoRepository
	JWTSecret       string
	Revocation      RevocationChecker
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token no revocado)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.Revocation))

	// Sesión: contexto de tenant + cierre de sesión
	sessionHandler := NewSessionHandler(deps.Resolver)
	protected.Get("/session", sessionHandler.Get)
	protected.Post("/session/signout", sessionHandler.SignOut)

	// Empresas
	empresas := protected.Group("/empresas")
	empresaHandler := NewEmpresaHandler(deps.CrearEmpresaUC, deps.Lifecycle, deps.EmpresaRepo)
	empresas.Post("/", empresaHandler.Create)
	empresas.Post("/join", empresaHandler.Join)
	empresas.Get("/:id", empresaHandler.GetByID)
	empresas.Put("/:id/suspend", empresaHandler.Suspend)

	// Dispositivos (cupos)
	devices := protected.Group("/devices")
	dispositivoHandler := NewDispositivoHandler(deps.Lifecycle, deps.DispositivoRepo, deps.EmpresaRepo)
	devices.Post("/register", dispositivoHandler.Register)
	devices.Get("/", dispositivoHandler.List)
	devices.Delete("/:deviceId", dispositivoHandler.Unregister)

	// Productos (catálogo)
	productos := protected.Group("/productos")
	productoHandler := NewProductoHandler(deps.ProductoUC)
	productos.Post("/", productoHandler.Create)
	productos.Get("/", productoHandler.List)
	productos.Get("/:id", productoHandler.GetByID)
	productos.Put("/:id", productoHandler.Update)
	productos.Delete("/:id", RequireRole("admin"), productoHandler.Delete)

	// Ventas (protegido)
	ventas := protected.Group("/ventas")
	ventaHandler := NewVentaHandler(deps.VentaUC)
	ventas.Post("/", ventaHandler.Create)
	ventas.Get("/", ventaHandler.List)
	ventas.Get("/:id", ventaHandler.GetByID)
}
