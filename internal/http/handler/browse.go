package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"busgallery/internal/logger"
	"busgallery/internal/service"
	"busgallery/internal/storage"
)

func internalError(c *fiber.Ctx, msg string, err error) error {
	logger.Error(c.UserContext(), msg, err, logger.Fields{"path": c.Path()})
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// GetBuses godoc
// @Summary List buses for the upload picker
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string][]model.BusSummary
// @Router /api/getBuses [get]
func GetBuses(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		buses, err := svc.ListBusSummaries(c.UserContext())
		if err != nil {
			return internalError(c, "list buses failed", err)
		}
		return c.JSON(fiber.Map{"buses": buses})
	}
}

// ListCategories godoc
// @Summary List bus categories
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string][]model.Category
// @Router /api/categories [get]
func ListCategories(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := svc.ListCategories(c.UserContext())
		if err != nil {
			return internalError(c, "list categories failed", err)
		}
		return c.JSON(fiber.Map{"categories": cats})
	}
}

// ListModels godoc
// @Summary List the models of a category
// @Tags catalog
// @Produce json
// @Param id path string true "Category id"
// @Success 200 {object} map[string][]model.BusModel
// @Router /api/categories/{id}/models [get]
func ListModels(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		models, err := svc.ListModels(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrIDRequired) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id")
			}
			return internalError(c, "list models failed", err)
		}
		return c.JSON(fiber.Map{"models": models})
	}
}

// ListBuses godoc
// @Summary List the buses of a model
// @Tags catalog
// @Produce json
// @Param id path string true "Model id"
// @Success 200 {object} map[string][]model.Bus
// @Router /api/models/{id}/buses [get]
func ListBuses(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		buses, err := svc.ListBuses(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrIDRequired) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id")
			}
			return internalError(c, "list buses of model failed", err)
		}
		return c.JSON(fiber.Map{"buses": buses})
	}
}

// ListBusImages godoc
// @Summary List the ready images of a bus
// @Tags catalog
// @Produce json
// @Param id path string true "Bus id"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Page offset" default(0)
// @Success 200 {object} service.ImageListResult
// @Failure 400 {object} errorPayload
// @Router /api/buses/{id}/images [get]
func ListBusImages(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "50"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.ListImages(c.UserContext(), c.Params("id"), limit, offset)
		if err != nil {
			if errors.Is(err, service.ErrIDRequired) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id")
			}
			return internalError(c, "list images failed", err)
		}
		return c.JSON(res)
	}
}

// DownloadAsset godoc
// @Summary Download an uploaded image
// @Tags catalog
// @Produce octet-stream
// @Param key path string true "Asset key, e.g. images/<id>.jpg"
// @Success 200 {file} binary
// @Failure 404 {object} errorPayload
// @Router /api/assets/{key} [get]
func DownloadAsset(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Params("*")
		rc, info, err := svc.OpenAsset(c.UserContext(), key)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidAssetKey):
				return writeError(c, fiber.StatusBadRequest, "INVALID_KEY", "invalid asset key")
			case errors.Is(err, storage.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "asset not found")
			}
			return internalError(c, "open asset failed", err)
		}

		c.Attachment(service.DownloadName(service.Label(info.OriginalFilename()), key))
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		// fasthttp closes rc once the body has been written.
		return c.SendStream(rc, int(info.Size))
	}
}
