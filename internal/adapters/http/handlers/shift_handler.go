package handlers

import (
	"errors"
	"strconv"

	"queuehub-backend/internal/core/services"
	"queuehub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ShiftHandler handles employee shift endpoints
type ShiftHandler struct {
	shiftService *services.ShiftService
}

// NewShiftHandler creates a new shift handler
func NewShiftHandler(shiftService *services.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: shiftService}
}

// CheckIn handles employee check-in
// @Summary Check in
// @Description Start the employee's shift, making them available for dispatch
// @Tags Shifts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /shifts/check-in [post]
func (h *ShiftHandler) CheckIn(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.shiftService.CheckIn(c.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmployeeNotFound):
			return response.NotFound(c, "Employee not found")
		case errors.Is(err, services.ErrAlreadyCheckedIn):
			return response.BadRequest(c, "Already checked in")
		default:
			return response.InternalServerError(c, "Failed to check in")
		}
	}

	return response.Success(c, "Checked in successfully", fiber.Map{
		"user": user.ToResponse(),
	})
}

// CheckOut handles employee check-out
// @Summary Check out
// @Description End the employee's shift
// @Tags Shifts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /shifts/check-out [post]
func (h *ShiftHandler) CheckOut(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.shiftService.CheckOut(c.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmployeeNotFound):
			return response.NotFound(c, "Employee not found")
		case errors.Is(err, services.ErrNotCheckedIn):
			return response.BadRequest(c, "Not checked in")
		case errors.Is(err, services.ErrStillServing):
			return response.BadRequest(c, "Finish your current token before checking out")
		default:
			return response.InternalServerError(c, "Failed to check out")
		}
	}

	return response.Success(c, "Checked out successfully", fiber.Map{
		"user": user.ToResponse(),
	})
}

// StartBreak handles break start
// @Summary Start break
// @Description Pause the employee, removing them from the dispatch pool
// @Tags Shifts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /shifts/break/start [post]
func (h *ShiftHandler) StartBreak(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.shiftService.StartBreak(c.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmployeeNotFound):
			return response.NotFound(c, "Employee not found")
		case errors.Is(err, services.ErrNotCheckedIn):
			return response.BadRequest(c, "Not checked in")
		case errors.Is(err, services.ErrAlreadyOnBreak):
			return response.BadRequest(c, "Already on break")
		default:
			return response.InternalServerError(c, "Failed to start break")
		}
	}

	return response.Success(c, "Break started", fiber.Map{
		"user": user.ToResponse(),
	})
}

// EndBreak handles break end
// @Summary End break
// @Description Return the employee to the dispatch pool
// @Tags Shifts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /shifts/break/end [post]
func (h *ShiftHandler) EndBreak(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.shiftService.EndBreak(c.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmployeeNotFound):
			return response.NotFound(c, "Employee not found")
		case errors.Is(err, services.ErrNotOnBreak):
			return response.BadRequest(c, "Not on break")
		default:
			return response.InternalServerError(c, "Failed to end break")
		}
	}

	return response.Success(c, "Break ended", fiber.Map{
		"user": user.ToResponse(),
	})
}

// DeskShiftLog handles listing recent shift events for a desk
// @Summary Desk shift log
// @Description Recent shift events for employees of a desk
// @Tags Shifts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param desk_id path int true "Desk ID"
// @Param limit query int false "Max entries" default(50)
// @Success 200 {object} response.Response
// @Router /desks/{desk_id}/shift-log [get]
func (h *ShiftHandler) DeskShiftLog(c *fiber.Ctx) error {
	deskID, err := strconv.ParseUint(c.Params("desk_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid desk ID")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	entries, err := h.shiftService.DeskShiftLog(c.Context(), uint(deskID), limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to get shift log")
	}

	return response.Success(c, "Shift log retrieved successfully", fiber.Map{
		"entries": entries,
	})
}
