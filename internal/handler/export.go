package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/scriptor-pro/ernest-export/internal/jobs"
	"github.com/scriptor-pro/ernest-export/internal/model"
	"github.com/scriptor-pro/ernest-export/pkg/response"
)

type ExportHandler struct {
	manager   *jobs.Manager
	validator *validator.Validate
}

func NewExportHandler(m *jobs.Manager, v *validator.Validate) *ExportHandler {
	return &ExportHandler{
		manager:   m,
		validator: v,
	}
}

// Start handles POST /api/export. Configuration and resolution problems are
// reported synchronously with 422 and no job is created for them; an accepted
// request answers 202 with the new job id.
func (h *ExportHandler) Start(c *fiber.Ctx) error {
	var req model.ExportRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	jobID, exportErr := h.manager.Start(req)
	if exportErr != nil {
		return response.ExportError(c, exportErr)
	}

	return response.Accepted(c, fiber.Map{"jobId": jobID})
}

// Cancel handles POST /api/export/cancel/:jobId. Cancelling a finished job is
// a no-op that still answers 200; only an unknown id is 404.
func (h *ExportHandler) Cancel(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if !h.manager.Cancel(jobID) {
		return response.NotFound(c, "Job not found")
	}
	return response.OK(c, fiber.Map{"jobId": jobID, "cancelled": true})
}

// Cleanup handles DELETE /api/export/:jobId. Removal does not stop a running
// job; the second delete of the same id answers 404.
func (h *ExportHandler) Cleanup(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if !h.manager.Cleanup(jobID) {
		return response.NotFound(c, "Job not found")
	}
	return response.NoContent(c)
}

// Jobs handles GET /api/export/jobs
func (h *ExportHandler) Jobs(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{"jobs": h.manager.List()})
}

// Job handles GET /api/export/jobs/:jobId
func (h *ExportHandler) Job(c *fiber.Ctx) error {
	job, ok := h.manager.Get(c.Params("jobId"))
	if !ok {
		return response.NotFound(c, "Job not found")
	}
	return response.OK(c, job)
}

func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
