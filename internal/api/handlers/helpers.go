package handlers

import (
	"errors"

	"statement-ingest/internal/classifier"
	"statement-ingest/internal/extract"
	"statement-ingest/internal/models"
	"statement-ingest/internal/queue"
	"statement-ingest/internal/service"
	"statement-ingest/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// writeError maps service errors onto HTTP statuses. Unknown errors are logged
// and reported as 500 without their detail.
func writeError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return middleware.Error(c, fiber.StatusBadRequest, verr.Error())
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return middleware.Error(c, fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrExtractionFailed), errors.Is(err, classifier.ErrClassification):
		return middleware.Error(c, fiber.StatusBadGateway, err.Error())
	case errors.Is(err, queue.ErrPublishFailed):
		return middleware.Error(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, models.ErrJobNotFound):
		return middleware.Error(c, fiber.StatusNotFound, models.ErrJobNotFound.Error())
	case errors.Is(err, models.ErrInvalidTransition):
		return middleware.Error(c, fiber.StatusConflict, err.Error())
	}

	logger.Error("Request failed",
		zap.String("path", c.Path()),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	)
	return middleware.Error(c, fiber.StatusInternalServerError, "internal server error")
}
