package http

import (
	"context"
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/taller-api/internal/application/appointment"
	"github.com/jhoicas/taller-api/internal/application/auth"
	"github.com/jhoicas/taller-api/internal/application/cart"
	"github.com/jhoicas/taller-api/internal/application/dto"
	"github.com/jhoicas/taller-api/internal/application/usecase"
	"github.com/jhoicas/taller-api/internal/domain/entity"
	"github.com/jhoicas/taller-api/pkg/logger"
)

// AppConfig opciones de la aplicación Fiber.
type AppConfig struct {
	Name        string
	CORSOrigins string
	Log         *logger.Logger
	Metrics     HTTPRecorder
}

// NewApp crea la app Fiber con el ErrorHandler de dominio, recover, CORS y log de peticiones.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Name,
		ErrorHandler: ErrorHandler(cfg.Log),
	})
	app.Use(RequestLogger(cfg.Log, cfg.Metrics))
	app.Use(recover.New())
	origins := cfg.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	return app
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	ProductUC     *usecase.ProductUseCase
	UserUC        *usecase.UserUseCase
	AppointmentUC *appointment.UseCase
	CartUC        *cart.UseCase
	JWTSecret     string
	AuthLimiter   *RateLimiter
	// MetricsHandler se monta en /metrics si no es nil.
	MetricsHandler nethttp.Handler
	// Ping verifica la base de datos en /health; nil = siempre sano.
	Ping func(ctx context.Context) error
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", health(deps.Ping))
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")
	requireAuth := AuthMiddleware(deps.JWTSecret)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Auth (público, con límite por IP)
	authGroup := api.Group("/auth", RateLimit(deps.AuthLimiter))
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	api.Get("/users/me", requireAuth, NewUserHandler(deps.UserUC).Me)

	// Products: lectura pública, escritura admin
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", requireAuth, adminOnly, productHandler.Create)
	products.Put("/:id", requireAuth, adminOnly, productHandler.Update)
	products.Delete("/:id", requireAuth, adminOnly, productHandler.Delete)

	// Appointments (protegido; dueño o admin se decide en el caso de uso)
	appointments := api.Group("/appointments", requireAuth)
	appointmentHandler := NewAppointmentHandler(deps.AppointmentUC)
	appointments.Post("/", appointmentHandler.Create)
	appointments.Get("/", appointmentHandler.List)
	appointments.Get("/history", adminOnly, appointmentHandler.History)
	appointments.Put("/:id", appointmentHandler.Update)
	appointments.Put("/:id/arrive", appointmentHandler.Arrive)
	appointments.Put("/:id/cancel", appointmentHandler.Cancel)
	appointments.Delete("/:id", appointmentHandler.Delete)

	// Cart y checkout (protegido)
	cartHandler := NewCartHandler(deps.CartUC)
	cartGroup := api.Group("/cart", requireAuth)
	cartGroup.Get("/", cartHandler.Get)
	cartGroup.Post("/", cartHandler.Add)
	cartGroup.Put("/:productId", cartHandler.ChangeQuantity)
	cartGroup.Delete("/:productId", cartHandler.Remove)
	api.Post("/checkout", requireAuth, cartHandler.Checkout)
}

// health godoc
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.MessageResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /health [get]
func health(ping func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ping != nil {
			if err := ping(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "DB_UNAVAILABLE", Message: "base de datos no disponible"})
			}
		}
		return c.JSON(dto.MessageResponse{Message: "ok"})
	}
}
