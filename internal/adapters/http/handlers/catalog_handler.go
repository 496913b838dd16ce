package handlers

import (
	"errors"
	"strconv"

	"queuehub-backend/internal/core/services"
	"queuehub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles service catalog endpoints
type CatalogHandler struct {
	catalogService *services.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListServices handles listing services
// @Summary List services
// @Description List services with their sub-services
// @Tags Catalog
// @Accept json
// @Produce json
// @Param active query bool false "Only active services"
// @Success 200 {object} response.Response
// @Router /services [get]
func (h *CatalogHandler) ListServices(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active", false)

	items, err := h.catalogService.ListServices(c.Context(), activeOnly)
	if err != nil {
		return response.InternalServerError(c, "Failed to list services")
	}

	return response.Success(c, "Services retrieved successfully", fiber.Map{
		"services": items,
	})
}

// GetService handles getting a service by ID
// @Summary Get service
// @Description Get a service with its sub-services
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /services/{id} [get]
func (h *CatalogHandler) GetService(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid service ID")
	}

	service, err := h.catalogService.GetService(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrServiceNotFound) {
			return response.NotFound(c, "Service not found")
		}
		return response.InternalServerError(c, "Failed to get service")
	}

	return response.Success(c, "Service retrieved successfully", fiber.Map{
		"service": service,
	})
}

// CreateService handles service creation (Admin only)
// @Summary Create service
// @Description Create a new service
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateServiceInput true "Service data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /services [post]
func (h *CatalogHandler) CreateService(c *fiber.Ctx) error {
	var input services.CreateServiceInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Name == "" {
		return response.BadRequest(c, "Name is required")
	}

	service, err := h.catalogService.CreateService(c.Context(), &input)
	if err != nil {
		return response.InternalServerError(c, "Failed to create service")
	}

	return response.Created(c, "Service created successfully", fiber.Map{
		"service": service,
	})
}

// UpdateService handles service update (Admin only)
// @Summary Update service
// @Description Update a service
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Service ID"
// @Param body body services.UpdateServiceInput true "Update data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /services/{id} [put]
func (h *CatalogHandler) UpdateService(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid service ID")
	}

	var input services.UpdateServiceInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	service, err := h.catalogService.UpdateService(c.Context(), uint(id), &input)
	if err != nil {
		if errors.Is(err, services.ErrServiceNotFound) {
			return response.NotFound(c, "Service not found")
		}
		return response.InternalServerError(c, "Failed to update service")
	}

	return response.Success(c, "Service updated successfully", fiber.Map{
		"service": service,
	})
}

// DeleteService handles service deletion (Admin only)
// @Summary Delete service
// @Description Soft-delete a service
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Service ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /services/{id} [delete]
func (h *CatalogHandler) DeleteService(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid service ID")
	}

	if err := h.catalogService.DeleteService(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrServiceNotFound) {
			return response.NotFound(c, "Service not found")
		}
		return response.InternalServerError(c, "Failed to delete service")
	}

	return response.Success(c, "Service deleted successfully", nil)
}

// ListSubServices handles listing sub-services of a service
// @Summary List sub-services
// @Description List sub-services of a service
// @Tags Catalog
// @Accept json
// @Produce json
// @Param service_id path int true "Service ID"
// @Success 200 {object} response.Response
// @Router /services/{service_id}/sub-services [get]
func (h *CatalogHandler) ListSubServices(c *fiber.Ctx) error {
	serviceID, err := strconv.ParseUint(c.Params("service_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid service ID")
	}

	items, err := h.catalogService.ListSubServices(c.Context(), uint(serviceID))
	if err != nil {
		return response.InternalServerError(c, "Failed to list sub-services")
	}

	return response.Success(c, "Sub-services retrieved successfully", fiber.Map{
		"sub_services": items,
	})
}

// CreateSubService handles sub-service creation (Admin only)
// @Summary Create sub-service
// @Description Create a sub-service under a service
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateSubServiceInput true "Sub-service data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /sub-services [post]
func (h *CatalogHandler) CreateSubService(c *fiber.Ctx) error {
	var input services.CreateSubServiceInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.ServiceID == 0 || input.Name == "" {
		return response.BadRequest(c, "Service ID and name are required")
	}

	sub, err := h.catalogService.CreateSubService(c.Context(), &input)
	if err != nil {
		if errors.Is(err, services.ErrServiceNotFound) {
			return response.NotFound(c, "Service not found")
		}
		return response.InternalServerError(c, "Failed to create sub-service")
	}

	return response.Created(c, "Sub-service created successfully", fiber.Map{
		"sub_service": sub,
	})
}

// UpdateSubService handles sub-service update (Admin only)
// @Summary Update sub-service
// @Description Update a sub-service
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sub-service ID"
// @Param body body services.UpdateSubServiceInput true "Update data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /sub-services/{id} [put]
func (h *CatalogHandler) UpdateSubService(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid sub-service ID")
	}

	var input services.UpdateSubServiceInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	sub, err := h.catalogService.UpdateSubService(c.Context(), uint(id), &input)
	if err != nil {
		if errors.Is(err, services.ErrSubNotFound) {
			return response.NotFound(c, "Sub-service not found")
		}
		return response.InternalServerError(c, "Failed to update sub-service")
	}

	return response.Success(c, "Sub-service updated successfully", fiber.Map{
		"sub_service": sub,
	})
}

// DeleteSubService handles sub-service deletion (Admin only)
// @Summary Delete sub-service
// @Description Soft-delete a sub-service
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sub-service ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /sub-services/{id} [delete]
func (h *CatalogHandler) DeleteSubService(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid sub-service ID")
	}

	if err := h.catalogService.DeleteSubService(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrSubNotFound) {
			return response.NotFound(c, "Sub-service not found")
		}
		return response.InternalServerError(c, "Failed to delete sub-service")
	}

	return response.Success(c, "Sub-service deleted successfully", nil)
}
