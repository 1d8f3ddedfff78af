package api

import (
	"time"

	"fin-extract/docs"
	"fin-extract/internal/api/handlers"
	"fin-extract/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// bodyLimit caps multipart uploads.
const bodyLimit = 64 << 20

type RouterConfig struct {
	APIToken     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// DisableRequestLog turns off the request logger middleware.
	DisableRequestLog bool
}

func SetupRouter(
	ledgerHandler *handlers.LedgerHandler,
	extractHandler *handlers.ExtractHandler,
	cfg RouterConfig,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:             bodyLimit,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	if !cfg.DisableRequestLog {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// importing docs registers the OpenAPI document served under /swagger
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	if cfg.APIToken == "" {
		appLogger.Warn("SERVER_API_TOKEN is empty, /api/v1 is not protected")
	}
	protected := app.Group("/api/v1", middleware.TokenAuth(cfg.APIToken, appLogger))

	protected.Get("/ledger", ledgerHandler.GetLedger)
	protected.Get("/files/remote", ledgerHandler.ListRemote)
	protected.Post("/documents/extract", extractHandler.ExtractDocument)
	protected.Post("/extract/:category", extractHandler.ExtractCategory)

	return app
}
