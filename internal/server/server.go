package server

import (
	"context"
	"time"

	"notevault-be/internal/bootstrap"
	"notevault-be/internal/config"
	"notevault-be/internal/controller"
	"notevault-be/internal/pkg/cache"
	"notevault-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "notevault-be",
		BodyLimit:    int(cfg.Upload.MaxFileSize)*cfg.Upload.MaxFiles + 1024*1024,
		ErrorHandler: serverutils.NewErrorHandler(container.Logger, cfg.IsProduction()),
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: !cfg.IsProduction()}))
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Content-Disposition",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())
	app.Use(container.Metrics.Middleware())
	app.Use(serverutils.RequestLogger(container.Logger))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"status": "OK", "timestamp": time.Now().UTC()})
	})

	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) Run() error {
	s.container.Logger.Info("Server", "Server is running", map[string]interface{}{"port": s.cfg.App.Port})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	limiterStorage := cache.NewLimiterStorage(c.Redis)
	rl := cfg.RateLimit

	api := app.Group("/api", newLimiter(limiterStorage, rl.Window, rl.Max, false))

	mw := controller.Middleware{
		Auth:          serverutils.NewJwtMiddleware(cfg.Auth.JWTSecret),
		AuthLimiter:   newLimiter(limiterStorage, rl.AuthWindow, rl.AuthMax, true),
		UploadLimiter: newLimiter(limiterStorage, rl.Window, rl.UploadMax, false),
		Audit:         c.Audit,
	}

	c.AuthController.RegisterRoutes(api, mw)
	c.NoteController.RegisterRoutes(api, mw)
	c.SharingController.RegisterRoutes(api, mw)
	c.CategoryController.RegisterRoutes(api, mw)
	c.TagController.RegisterRoutes(api, mw)
	c.TemplateController.RegisterRoutes(api, mw)
	c.ExportController.RegisterRoutes(api, mw)
	c.ReportController.RegisterRoutes(api, mw)

	c.NotificationHandler.RegisterRoutes(api, mw.Auth)
}

// newLimiter counts requests per client IP. skipSuccess only counts failed
// attempts, which is what the login limiter wants.
func newLimiter(storage fiber.Storage, window time.Duration, max int, skipSuccess bool) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:                    max,
		Expiration:             window,
		Storage:                storage,
		SkipSuccessfulRequests: skipSuccess,
		LimitReached: func(ctx *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	})
}
