package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itaymdigi/coldtherapylanding/internal/service"
	"github.com/itaymdigi/coldtherapylanding/pkg/validator"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
	mediaService   *service.MediaService
	validator      *validator.Validator
}

func NewCatalogHandler(catalogService *service.CatalogService, mediaService *service.MediaService, validator *validator.Validator) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		mediaService:   mediaService,
		validator:      validator,
	}
}

// ListPackages GET /api/v1/packages
func (h *CatalogHandler) ListPackages(c *fiber.Ctx) error {
	packages, err := h.catalogService.List(c.UserContext(), true)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"packages": packages})
}

// ListAllPackages includes inactive entries
// GET /api/v1/admin/packages
func (h *CatalogHandler) ListAllPackages(c *fiber.Ctx) error {
	packages, err := h.catalogService.List(c.UserContext(), false)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"packages": packages})
}

// UpsertPackage creates or replaces the package with the given slug
// PUT /api/v1/admin/packages
func (h *CatalogHandler) UpsertPackage(c *fiber.Ctx) error {
	var req service.UpsertPackageRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	pkg, err := h.catalogService.Upsert(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(pkg)
}

// ListMedia returns the published gallery with short-lived URLs
// GET /api/v1/media
func (h *CatalogHandler) ListMedia(c *fiber.Ctx) error {
	items, err := h.mediaService.List(c.UserContext(), true)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"media": items})
}

// ListAllMedia GET /api/v1/admin/media
func (h *CatalogHandler) ListAllMedia(c *fiber.Ctx) error {
	items, err := h.mediaService.List(c.UserContext(), false)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"media": items})
}

// CreateUpload POST /api/v1/admin/media
func (h *CatalogHandler) CreateUpload(c *fiber.Ctx) error {
	var req service.CreateUploadRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return respondError(c, err)
	}

	resp, err := h.mediaService.CreateUpload(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// PublishMedia toggles gallery visibility
// POST /api/v1/admin/media/:id/publish
func (h *CatalogHandler) PublishMedia(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var req struct {
		Published *bool `json:"published"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, h.validator, &req); err != nil {
			return respondError(c, err)
		}
	}
	published := req.Published == nil || *req.Published

	item, err := h.mediaService.Publish(c.UserContext(), id, published)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// DeleteMedia DELETE /api/v1/admin/media/:id
func (h *CatalogHandler) DeleteMedia(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := h.mediaService.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
