package handlers

import (
	"context"
	"time"

	"statement-ingest/internal/dto"
	"statement-ingest/internal/models"
	"statement-ingest/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TransactionQuerier interface {
	List(ctx context.Context, tenantID string) ([]*models.Transaction, error)
	ListByInstitution(ctx context.Context, tenantID, institution string) ([]*models.Transaction, error)
	ListByPeriod(ctx context.Context, tenantID string, start, end time.Time) ([]*models.Transaction, error)
}

type TransactionHandler struct {
	transactions TransactionQuerier
	logger       *zap.Logger
}

func NewTransactionHandler(transactions TransactionQuerier, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		logger:       logger,
	}
}

// ListTransactions godoc
// @Summary List the caller's transactions
// @Tags transactions
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.TransactionResponse
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	txs, err := h.transactions.List(c.UserContext(), middleware.TenantID(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(dto.NewTransactionResponses(txs))
}

// ListByInstitution godoc
// @Summary List transactions of one institution
// @Tags transactions
// @Produce json
// @Param institution path string true "Institution"
// @Security Bearer
// @Success 200 {array} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/transactions/institution/{institution} [get]
func (h *TransactionHandler) ListByInstitution(c *fiber.Ctx) error {
	txs, err := h.transactions.ListByInstitution(c.UserContext(), middleware.TenantID(c), c.Params("institution"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(dto.NewTransactionResponses(txs))
}

// ListByPeriod godoc
// @Summary List transactions dated within a period
// @Description Both bounds are inclusive.
// @Tags transactions
// @Produce json
// @Param start query string true "YYYY-MM-DD"
// @Param end query string true "YYYY-MM-DD"
// @Security Bearer
// @Success 200 {array} dto.TransactionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/transactions/period [get]
func (h *TransactionHandler) ListByPeriod(c *fiber.Ctx) error {
	start, err := models.ParseDate(c.Query("start"))
	if err != nil {
		return middleware.Error(c, fiber.StatusBadRequest, "start must be a date in YYYY-MM-DD format")
	}
	end, err := models.ParseDate(c.Query("end"))
	if err != nil {
		return middleware.Error(c, fiber.StatusBadRequest, "end must be a date in YYYY-MM-DD format")
	}

	txs, err := h.transactions.ListByPeriod(c.UserContext(), middleware.TenantID(c), start.Time, end.Time)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(dto.NewTransactionResponses(txs))
}
