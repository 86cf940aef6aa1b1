package handlers

import (
	"context"
	"io"

	"statement-ingest/internal/dto"
	"statement-ingest/internal/service"
	"statement-ingest/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DocumentSubmitter interface {
	Submit(ctx context.Context, tenantID string, up service.Upload) (*service.SubmitResult, error)
}

type DocumentHandler struct {
	ingestion DocumentSubmitter
	logger    *zap.Logger
}

func NewDocumentHandler(ingestion DocumentSubmitter, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		ingestion: ingestion,
		logger:    logger,
	}
}

// SubmitDocument godoc
// @Summary Submit a bank statement or card invoice
// @Description Extracts and classifies the document, then queues its transactions for storage. Poll the returned job for progress.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document file (PDF or CSV)"
// @Param institution formData string true "Issuing institution"
// @Param currency formData string false "ISO currency code" default(BRL)
// @Param type formData string false "STATEMENT or CARD_INVOICE" default(STATEMENT)
// @Security Bearer
// @Success 202 {object} dto.SubmitResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 415 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/documents [post]
func (h *DocumentHandler) SubmitDocument(c *fiber.Ctx) error {
	tenantID := middleware.TenantID(c)

	file, err := c.FormFile("file")
	if err != nil {
		return middleware.Error(c, fiber.StatusBadRequest, "file is required")
	}

	src, err := file.Open()
	if err != nil {
		return middleware.Error(c, fiber.StatusBadRequest, "failed to open file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return middleware.Error(c, fiber.StatusBadRequest, "failed to read file")
	}

	result, err := h.ingestion.Submit(c.UserContext(), tenantID, service.Upload{
		FileName:     file.Filename,
		ContentType:  file.Header.Get(fiber.HeaderContentType),
		Data:         data,
		Institution:  c.FormValue("institution"),
		Currency:     c.FormValue("currency"),
		DocumentType: c.FormValue("type"),
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(dto.NewSubmitResponse(result))
}
