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

const defaultStaleAfter = 30 * time.Minute

type JobManager interface {
	Get(ctx context.Context, tenantID, jobID string) (*models.Job, error)
	List(ctx context.Context, tenantID string, status models.JobStatus) ([]*models.Job, error)
	ListStale(ctx context.Context, tenantID string, olderThan time.Duration) ([]*models.Job, error)
	Cancel(ctx context.Context, tenantID, jobID string) (*models.Job, error)
}

type JobHandler struct {
	jobs   JobManager
	logger *zap.Logger
}

func NewJobHandler(jobs JobManager, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		jobs:   jobs,
		logger: logger,
	}
}

// ListJobs godoc
// @Summary List the caller's jobs
// @Tags jobs
// @Produce json
// @Param status query string false "PENDING, PROCESSING, COMPLETED, FAILED or CANCELLED"
// @Security Bearer
// @Success 200 {array} dto.JobResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/jobs [get]
func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	var status models.JobStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseJobStatus(raw)
		if err != nil {
			return middleware.Error(c, fiber.StatusBadRequest, err.Error())
		}
		status = parsed
	}

	jobs, err := h.jobs.List(c.UserContext(), middleware.TenantID(c), status)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(dto.NewJobResponses(jobs))
}

// GetJob godoc
// @Summary Get a job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Security Bearer
// @Success 200 {object} dto.JobResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/jobs/{id} [get]
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	job, err := h.jobs.Get(c.UserContext(), middleware.TenantID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(dto.NewJobResponse(job))
}

// CancelJob godoc
// @Summary Cancel a pending job
// @Description Only PENDING jobs can be cancelled; the queued batch is then skipped.
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Security Bearer
// @Success 200 {object} dto.JobResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/jobs/{id}/cancel [post]
func (h *JobHandler) CancelJob(c *fiber.Ctx) error {
	job, err := h.jobs.Cancel(c.UserContext(), middleware.TenantID(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(dto.NewJobResponse(job))
}

// ListStaleJobs godoc
// @Summary List jobs stuck in PROCESSING
// @Tags jobs
// @Produce json
// @Param older_than query string false "Go duration" default(30m)
// @Security Bearer
// @Success 200 {array} dto.JobResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/jobs/stale [get]
func (h *JobHandler) ListStaleJobs(c *fiber.Ctx) error {
	olderThan := defaultStaleAfter
	if raw := c.Query("older_than"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return middleware.Error(c, fiber.StatusBadRequest, "older_than must be a positive duration such as 30m")
		}
		olderThan = d
	}

	jobs, err := h.jobs.ListStale(c.UserContext(), middleware.TenantID(c), olderThan)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(dto.NewJobResponses(jobs))
}
