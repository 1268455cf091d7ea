package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/aerolux/concierge-admin/docs"
	"github.com/aerolux/concierge-admin/internal/api/handler"
	"github.com/aerolux/concierge-admin/internal/api/middleware"
	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
	"github.com/aerolux/concierge-admin/internal/infrastructure/broadcast"
	"github.com/aerolux/concierge-admin/internal/infrastructure/http/handlers"
	"github.com/aerolux/concierge-admin/internal/pkg/config"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config    *config.Config
	Tokens    middleware.TokenVerifier
	Auth      ports.AuthService
	Vendors   ports.VendorService
	Inventory ports.InventoryService
	Hub       *broadcast.Hub
	Checks    map[string]handlers.Check
	Logger    zerolog.Logger

	// Registerer and Gatherer default to the global prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	registerer, gatherer := d.Registerer, d.Gatherer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.Config.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "concierge",
		Registerer: registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth)
	vendorHandler := handler.NewVendorHandler(d.Vendors)
	inventoryHandler := handler.NewInventoryHandler(d.Inventory)
	eventHandler := handler.NewEventHandler(d.Hub, d.Config.AllowedOrigins, d.Logger)

	requireAuth := middleware.Auth(d.Tokens)
	optionalAuth := middleware.OptionalAuth(d.Tokens)
	loginLimiter := loginRateLimiter(d.Config.RateLimit)

	api := e.Group("/api")

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login, loginLimiter)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/verify", authHandler.Verify, requireAuth)

	superAdmin := auth.Group("", requireAuth, middleware.RequireRole(domain.RoleSuperAdmin))
	superAdmin.POST("/register", authHandler.Register)
	superAdmin.GET("/users", authHandler.ListUsers)
	superAdmin.PUT("/users/:id", authHandler.UpdateUser)
	superAdmin.DELETE("/users/:id", authHandler.DeleteUser)

	// --- Vendor routes ---
	vendors := api.Group("/vendors")
	vendors.POST("", vendorHandler.Register)
	vendors.POST("/login", vendorHandler.Login, loginLimiter)
	vendors.GET("", vendorHandler.List, optionalAuth)
	vendors.GET("/:id", vendorHandler.Get, optionalAuth)

	manageVendors := vendors.Group("", requireAuth, middleware.RequireCapability(domain.PermVendors))
	manageVendors.PUT("/:id", vendorHandler.Update)
	manageVendors.PATCH("/:id/verification", vendorHandler.Verification)
	manageVendors.DELETE("/:id", vendorHandler.Delete)

	// --- Inventory routes ---
	api.GET("/inventory/events", eventHandler.Stream,
		middleware.StreamAuth(d.Tokens), middleware.RequireCapability(domain.PermInventory))

	inventory := api.Group("/inventory", requireAuth, middleware.RequireCapability(domain.PermInventory))
	inventory.GET("", inventoryHandler.List)
	inventory.POST("", inventoryHandler.Create)
	inventory.GET("/:id", inventoryHandler.Get)
	inventory.PUT("/:id", inventoryHandler.Update)
	inventory.DELETE("/:id", inventoryHandler.Delete)
	inventory.POST("/:id/images", inventoryHandler.AttachImage)

	for _, cat := range domain.Categories() {
		g := api.Group("/"+string(cat.Category), requireAuth,
			middleware.RequireCapability(domain.PermInventory), handler.ForCategory(cat.Category))
		g.GET("", inventoryHandler.List)
		g.POST("", inventoryHandler.Create)
		g.GET("/:id", inventoryHandler.Get)
		g.PUT("/:id", inventoryHandler.Update)
		g.DELETE("/:id", inventoryHandler.Delete)
		g.POST("/:id/images", inventoryHandler.AttachImage)
	}

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// loginRateLimiter throttles credential attempts per client IP.
func loginRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.LoginPerSecond),
			Burst:     cfg.LoginBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
	})
}
