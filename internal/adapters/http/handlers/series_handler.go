package handlers

import (
	"errors"
	"strconv"

	"queuehub-backend/internal/core/services"
	"queuehub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SeriesHandler handles number series management endpoints
type SeriesHandler struct {
	sequenceService *services.SequenceService
}

// NewSeriesHandler creates a new series handler
func NewSeriesHandler(sequenceService *services.SequenceService) *SeriesHandler {
	return &SeriesHandler{sequenceService: sequenceService}
}

// ListSeries handles listing series for a branch
// @Summary List number series
// @Description List all number series of a branch
// @Tags Series
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param branch_id path int true "Branch ID"
// @Success 200 {object} response.Response
// @Router /branches/{branch_id}/series [get]
func (h *SeriesHandler) ListSeries(c *fiber.Ctx) error {
	branchID, err := strconv.ParseUint(c.Params("branch_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}

	items, err := h.sequenceService.ListByBranch(c.Context(), uint(branchID))
	if err != nil {
		return response.InternalServerError(c, "Failed to list series")
	}

	return response.Success(c, "Series retrieved successfully", fiber.Map{
		"series": items,
	})
}

// GetSeries handles getting a series by ID
// @Summary Get series
// @Description Get a number series by ID
// @Tags Series
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Series ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /series/{id} [get]
func (h *SeriesHandler) GetSeries(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid series ID")
	}

	series, err := h.sequenceService.GetSeries(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrSeriesNotFound) {
			return response.NotFound(c, "Series not found")
		}
		return response.InternalServerError(c, "Failed to get series")
	}

	return response.Success(c, "Series retrieved successfully", fiber.Map{
		"series": series,
	})
}

// CreateSeries handles series creation (Admin/Manager)
// @Summary Create series
// @Description Create a number series for a branch service
// @Tags Series
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateSeriesInput true "Series data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /series [post]
func (h *SeriesHandler) CreateSeries(c *fiber.Ctx) error {
	var input services.CreateSeriesInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.BranchID == 0 || input.ServiceID == 0 {
		return response.BadRequest(c, "Branch ID and service ID are required")
	}

	series, err := h.sequenceService.CreateSeries(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRange):
			return response.BadRequest(c, "Invalid series range or prefix")
		case errors.Is(err, services.ErrPrefixTaken):
			return response.Conflict(c, "Prefix already in use for this branch")
		case errors.Is(err, services.ErrSeriesActiveClash):
			return response.Conflict(c, "Another series is already active for this service")
		default:
			return response.InternalServerError(c, "Failed to create series")
		}
	}

	return response.Created(c, "Series created successfully", fiber.Map{
		"series": series,
	})
}

// UpdateSeries handles series update (Admin/Manager)
// @Summary Update series
// @Description Update a number series; editing start_from rewinds the counter
// @Tags Series
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Series ID"
// @Param body body services.UpdateSeriesInput true "Update data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /series/{id} [put]
func (h *SeriesHandler) UpdateSeries(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid series ID")
	}

	var input services.UpdateSeriesInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	series, err := h.sequenceService.UpdateSeries(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSeriesNotFound):
			return response.NotFound(c, "Series not found")
		case errors.Is(err, services.ErrInvalidRange):
			return response.BadRequest(c, "Invalid series range or prefix")
		case errors.Is(err, services.ErrPrefixTaken):
			return response.Conflict(c, "Prefix already in use for this branch")
		case errors.Is(err, services.ErrSeriesActiveClash):
			return response.Conflict(c, "Another series is already active for this service")
		default:
			return response.InternalServerError(c, "Failed to update series")
		}
	}

	return response.Success(c, "Series updated successfully", fiber.Map{
		"series": series,
	})
}

// ResetSeries handles rewinding a series counter (Admin/Manager)
// @Summary Reset series
// @Description Rewind the series counter back to its start
// @Tags Series
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Series ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /series/{id}/reset [post]
func (h *SeriesHandler) ResetSeries(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid series ID")
	}

	if err := h.sequenceService.Reset(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrSeriesNotFound) {
			return response.NotFound(c, "Series not found")
		}
		return response.InternalServerError(c, "Failed to reset series")
	}

	return response.Success(c, "Series reset successfully", nil)
}

// DeleteSeries handles series deletion (Admin/Manager)
// @Summary Delete series
// @Description Delete a number series
// @Tags Series
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Series ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /series/{id} [delete]
func (h *SeriesHandler) DeleteSeries(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid series ID")
	}

	if err := h.sequenceService.DeleteSeries(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrSeriesNotFound) {
			return response.NotFound(c, "Series not found")
		}
		return response.InternalServerError(c, "Failed to delete series")
	}

	return response.Success(c, "Series deleted successfully", nil)
}
