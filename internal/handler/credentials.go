package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/scriptor-pro/ernest-export/internal/credentials"
	"github.com/scriptor-pro/ernest-export/internal/model"
	"github.com/scriptor-pro/ernest-export/internal/project"
	"github.com/scriptor-pro/ernest-export/pkg/response"
)

// CredentialsHandler is a write-only surface over the host keychain. There is
// deliberately no read endpoint; stored secrets only ever flow into runners.
type CredentialsHandler struct {
	store     credentials.Store
	validator *validator.Validate
}

func NewCredentialsHandler(store credentials.Store, v *validator.Validate) *CredentialsHandler {
	return &CredentialsHandler{
		store:     store,
		validator: v,
	}
}

// Set handles POST /api/credentials
func (h *CredentialsHandler) Set(c *fiber.Ctx) error {
	var req model.CredentialSetRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	root, ok := project.FindRoot(req.FilePath)
	if !ok {
		return response.ExportError(c, model.NewError(
			model.CodeConfigMissing, "No .export.toml found in parent folders", ""))
	}

	if err := h.store.Set(root, req.Target, req.Profile, req.Kind, req.Value); err != nil {
		return response.ServiceError(c, "Unable to store credential")
	}

	return response.NoContent(c)
}

// Delete handles DELETE /api/credentials. Deleting an absent credential
// succeeds; the keychain slot simply stays empty.
func (h *CredentialsHandler) Delete(c *fiber.Ctx) error {
	var req model.CredentialRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	root, ok := project.FindRoot(req.FilePath)
	if !ok {
		return response.ExportError(c, model.NewError(
			model.CodeConfigMissing, "No .export.toml found in parent folders", ""))
	}

	if err := h.store.Delete(root, req.Target, req.Profile, req.Kind); err != nil {
		return response.ServiceError(c, "Unable to delete credential")
	}

	return response.NoContent(c)
}
