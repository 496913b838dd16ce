package handlers

import (
	"errors"
	"strconv"

	"queuehub-backend/internal/adapters/persistence/models"
	"queuehub-backend/internal/core/services"
	"queuehub-backend/internal/pkg/pagination"
	"queuehub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// TokenHandler handles queue token lifecycle endpoints
type TokenHandler struct {
	tokenService *services.TokenService
	authService  *services.AuthService
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(tokenService *services.TokenService, authService *services.AuthService) *TokenHandler {
	return &TokenHandler{
		tokenService: tokenService,
		authService:  authService,
	}
}

// GenerateTokenRequest represents token generation request body
type GenerateTokenRequest struct {
	BranchID     uint `json:"branch_id"`
	SubServiceID uint `json:"sub_service_id"`
}

// Generate handles token generation (public kiosk endpoint)
// @Summary Generate queue token
// @Description Issue a new queue token for a sub-service at a branch
// @Tags Tokens
// @Accept json
// @Produce json
// @Param body body GenerateTokenRequest true "Token request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tokens [post]
func (h *TokenHandler) Generate(c *fiber.Ctx) error {
	var req GenerateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.BranchID == 0 {
		return response.BadRequest(c, "Branch ID is required")
	}
	if req.SubServiceID == 0 {
		return response.BadRequest(c, "Sub-service ID is required")
	}

	token, err := h.tokenService.Generate(c.Context(), &services.GenerateInput{
		BranchID:     req.BranchID,
		SubServiceID: req.SubServiceID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBranchNotFound):
			return response.NotFound(c, "Branch not found")
		case errors.Is(err, services.ErrSubServiceNotFound):
			return response.NotFound(c, "Sub-service not found")
		case errors.Is(err, services.ErrBranchClosed):
			return response.BadRequest(c, "Branch is not active")
		case errors.Is(err, services.ErrSubServiceInactive):
			return response.BadRequest(c, "Sub-service is not active")
		case errors.Is(err, services.ErrServiceNotConfigured):
			return response.BadRequest(c, "Service is not offered at this branch")
		case errors.Is(err, services.ErrNoAvailableStaff):
			return response.BadRequest(c, "No staff available for this service right now")
		case errors.Is(err, services.ErrNoActiveSeries):
			return response.BadRequest(c, "No active number series for this service")
		case errors.Is(err, services.ErrSeriesExhausted):
			return response.BadRequest(c, "Number series exhausted for today")
		default:
			return response.InternalServerError(c, "Failed to generate token")
		}
	}

	return response.Created(c, "Token generated successfully", fiber.Map{
		"token": token,
	})
}

// GetToken handles fetching a token by ID
// @Summary Get token
// @Description Get a queue token by ID
// @Tags Tokens
// @Accept json
// @Produce json
// @Param id path int true "Token ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tokens/{id} [get]
func (h *TokenHandler) GetToken(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid token ID")
	}

	token, err := h.tokenService.GetToken(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrTokenNotFound) {
			return response.NotFound(c, "Token not found")
		}
		return response.InternalServerError(c, "Failed to get token")
	}

	return response.Success(c, "Token retrieved successfully", fiber.Map{
		"token": token,
	})
}

// ServeNext handles an employee pulling the next token
// @Summary Serve next token
// @Description Claim the oldest pending token on the employee's desk
// @Tags Tokens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tokens/serve-next [post]
func (h *TokenHandler) ServeNext(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	token, err := h.tokenService.ServeNext(c.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmployeeNotFound):
			return response.NotFound(c, "Employee not found")
		case errors.Is(err, services.ErrNotAssignedToDesk):
			return response.BadRequest(c, "You are not assigned to a desk")
		case errors.Is(err, services.ErrAlreadyServing):
			return response.BadRequest(c, "Finish your current token before pulling the next")
		case errors.Is(err, services.ErrQueueEmpty):
			return response.NotFound(c, "No pending tokens for your desk")
		default:
			return response.InternalServerError(c, "Failed to serve next token")
		}
	}

	return response.Success(c, "Token now serving", fiber.Map{
		"token": token,
	})
}

// Complete handles completing a serving token
// @Summary Complete token
// @Description Mark a serving token as completed
// @Tags Tokens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Token ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /tokens/{id}/complete [post]
func (h *TokenHandler) Complete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid token ID")
	}

	token, err := h.tokenService.Complete(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenNotFound):
			return response.NotFound(c, "Token not found")
		case errors.Is(err, services.ErrInvalidTransition):
			return response.BadRequest(c, "Token is not being served")
		default:
			return response.InternalServerError(c, "Failed to complete token")
		}
	}

	return response.Success(c, "Token completed successfully", fiber.Map{
		"token": token,
	})
}

// ResetQueue handles an administrative branch queue reset
// @Summary Reset branch queue
// @Description Cancel all pending tokens and rewind active series for a branch
// @Tags Tokens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param branch_id path int true "Branch ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /branches/{branch_id}/queue/reset [post]
func (h *TokenHandler) ResetQueue(c *fiber.Ctx) error {
	branchID, err := strconv.ParseUint(c.Params("branch_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}

	if err := h.authorizeReset(c, uint(branchID)); err != nil {
		return err
	}

	cancelled, err := h.tokenService.ResetBranchQueue(c.Context(), uint(branchID))
	if err != nil {
		if errors.Is(err, services.ErrBranchNotFound) {
			return response.NotFound(c, "Branch not found")
		}
		return response.InternalServerError(c, "Failed to reset queue")
	}

	return response.Success(c, "Queue reset successfully", fiber.Map{
		"cancelled": cancelled,
	})
}

// authorizeReset allows ADMIN globally and MANAGER for their own branch only
func (h *TokenHandler) authorizeReset(c *fiber.Ctx, branchID uint) error {
	role, _ := c.Locals("role").(string)
	if role == models.RoleAdmin {
		return nil
	}
	if role != models.RoleManager {
		return response.Forbidden(c, "Only admins or the branch manager can reset the queue")
	}

	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	user, err := h.authService.GetUserByID(c.Context(), userID)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	if user.BranchID == nil || *user.BranchID != branchID {
		return response.Forbidden(c, "Managers can only reset their own branch")
	}
	return nil
}

// Dashboard handles the branch queue dashboard
// @Summary Branch queue dashboard
// @Description Status counts plus current serving and pending tokens
// @Tags Tokens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param branch_id path int true "Branch ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /branches/{branch_id}/queue/dashboard [get]
func (h *TokenHandler) Dashboard(c *fiber.Ctx) error {
	branchID, err := strconv.ParseUint(c.Params("branch_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}

	data, err := h.tokenService.Dashboard(c.Context(), uint(branchID))
	if err != nil {
		if errors.Is(err, services.ErrBranchNotFound) {
			return response.NotFound(c, "Branch not found")
		}
		return response.InternalServerError(c, "Failed to get dashboard")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}

// History handles paginated terminal-token history for a branch
// @Summary Branch token history
// @Description Paginated list of completed and cancelled tokens
// @Tags Tokens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param branch_id path int true "Branch ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /branches/{branch_id}/queue/history [get]
func (h *TokenHandler) History(c *fiber.Ctx) error {
	branchID, err := strconv.ParseUint(c.Params("branch_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}

	params := pagination.GetParams(c)

	tokens, total, err := h.tokenService.History(c.Context(), uint(branchID), params.Offset, params.Limit)
	if err != nil {
		if errors.Is(err, services.ErrBranchNotFound) {
			return response.NotFound(c, "Branch not found")
		}
		return response.InternalServerError(c, "Failed to get history")
	}

	return response.Success(c, "History retrieved successfully", pagination.NewResponse(tokens, params, total))
}
