package api

import (
	"errors"

	"statement-ingest/docs"
	"statement-ingest/internal/api/handlers"
	"statement-ingest/pkg/auth"
	"statement-ingest/pkg/config"
	"statement-ingest/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// multipart framing on top of the largest accepted file
const bodyLimitSlack = 1 << 20

func SetupRouter(
	docHandler *handlers.DocumentHandler,
	jobHandler *handlers.JobHandler,
	txHandler *handlers.TransactionHandler,
	jwtManager *auth.JWTManager,
	cfg *config.Config,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "statement-ingest",
		BodyLimit:    int(cfg.Upload.MaxFileSize) + bodyLimitSlack,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code == fiber.StatusInternalServerError {
				appLogger.Error("Unhandled error", zap.String("path", c.Path()), zap.Error(err))
				return middleware.Error(c, code, "internal server error")
			}
			return middleware.Error(c, code, err.Error())
		},
	})

	// Middleware
	app.Use(middleware.RequestID())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders: "X-Request-ID",
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// importing docs registers the swagger document through init()
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	limiter := middleware.NewTenantRateLimiter(cfg.Upload.RatePerMinute, appLogger)

	protected := app.Group("/api/v1", middleware.TenantMiddleware(
		jwtManager,
		cfg.Security.Enabled,
		cfg.Security.MockTenant,
		appLogger,
	))

	protected.Post("/documents", limiter.Handler(), docHandler.SubmitDocument)

	jobs := protected.Group("/jobs")
	jobs.Get("", jobHandler.ListJobs)
	jobs.Get("/stale", jobHandler.ListStaleJobs)
	jobs.Get("/:id", jobHandler.GetJob)
	jobs.Post("/:id/cancel", jobHandler.CancelJob)

	transactions := protected.Group("/transactions")
	transactions.Get("", txHandler.ListTransactions)
	transactions.Get("/institution/:institution", txHandler.ListByInstitution)
	transactions.Get("/period", txHandler.ListByPeriod)

	return app
}
