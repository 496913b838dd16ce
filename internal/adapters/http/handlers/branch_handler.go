package handlers

import (
	"errors"
	"strconv"

	"queuehub-backend/internal/core/services"
	"queuehub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BranchHandler handles branch and desk management endpoints
type BranchHandler struct {
	branchService *services.BranchService
}

// NewBranchHandler creates a new branch handler
func NewBranchHandler(branchService *services.BranchService) *BranchHandler {
	return &BranchHandler{branchService: branchService}
}

// ListBranches handles listing branches
// @Summary List branches
// @Description List branches, optionally active only
// @Tags Branches
// @Accept json
// @Produce json
// @Param active query bool false "Only active branches"
// @Success 200 {object} response.Response
// @Router /branches [get]
func (h *BranchHandler) ListBranches(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active", false)

	branches, err := h.branchService.ListBranches(c.Context(), activeOnly)
	if err != nil {
		return response.InternalServerError(c, "Failed to list branches")
	}

	return response.Success(c, "Branches retrieved successfully", fiber.Map{
		"branches": branches,
	})
}

// GetBranch handles getting a branch by ID
// @Summary Get branch
// @Description Get a branch with its offered services
// @Tags Branches
// @Accept json
// @Produce json
// @Param id path int true "Branch ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /branches/{id} [get]
func (h *BranchHandler) GetBranch(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}

	branch, err := h.branchService.GetBranch(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrBranchNotFound) {
			return response.NotFound(c, "Branch not found")
		}
		return response.InternalServerError(c, "Failed to get branch")
	}

	return response.Success(c, "Branch retrieved successfully", fiber.Map{
		"branch": branch,
	})
}

// CreateBranch handles branch creation (Admin only)
// @Summary Create branch
// @Description Create a new branch
// @Tags Branches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateBranchInput true "Branch data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /branches [post]
func (h *BranchHandler) CreateBranch(c *fiber.Ctx) error {
	var input services.CreateBranchInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.Name == "" || input.Code == "" {
		return response.BadRequest(c, "Name and code are required")
	}

	branch, err := h.branchService.CreateBranch(c.Context(), &input)
	if err != nil {
		if errors.Is(err, services.ErrBranchCodeTaken) {
			return response.Conflict(c, "Branch code already in use")
		}
		return response.InternalServerError(c, "Failed to create branch")
	}

	return response.Created(c, "Branch created successfully", fiber.Map{
		"branch": branch,
	})
}

// UpdateBranch handles branch update (Admin only)
// @Summary Update branch
// @Description Update branch details and offered services
// @Tags Branches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Branch ID"
// @Param body body services.UpdateBranchInput true "Update data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /branches/{id} [put]
func (h *BranchHandler) UpdateBranch(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}

	var input services.UpdateBranchInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	branch, err := h.branchService.UpdateBranch(c.Context(), uint(id), &input)
	if err != nil {
		if errors.Is(err, services.ErrBranchNotFound) {
			return response.NotFound(c, "Branch not found")
		}
		return response.InternalServerError(c, "Failed to update branch")
	}

	return response.Success(c, "Branch updated successfully", fiber.Map{
		"branch": branch,
	})
}

// DeleteBranch handles branch deletion (Admin only)
// @Summary Delete branch
// @Description Soft-delete a branch
// @Tags Branches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Branch ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /branches/{id} [delete]
func (h *BranchHandler) DeleteBranch(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}

	if err := h.branchService.DeleteBranch(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrBranchNotFound) {
			return response.NotFound(c, "Branch not found")
		}
		return response.InternalServerError(c, "Failed to delete branch")
	}

	return response.Success(c, "Branch deleted successfully", nil)
}

// ListDesks handles listing desks of a branch
// @Summary List desks
// @Description List desks of a branch
// @Tags Desks
// @Accept json
// @Produce json
// @Param branch_id path int true "Branch ID"
// @Success 200 {object} response.Response
// @Router /branches/{branch_id}/desks [get]
func (h *BranchHandler) ListDesks(c *fiber.Ctx) error {
	branchID, err := strconv.ParseUint(c.Params("branch_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}

	desks, err := h.branchService.ListDesks(c.Context(), uint(branchID))
	if err != nil {
		return response.InternalServerError(c, "Failed to list desks")
	}

	return response.Success(c, "Desks retrieved successfully", fiber.Map{
		"desks": desks,
	})
}

// GetDesk handles getting a desk by ID
// @Summary Get desk
// @Description Get a desk with its capability set
// @Tags Desks
// @Accept json
// @Produce json
// @Param id path int true "Desk ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /desks/{id} [get]
func (h *BranchHandler) GetDesk(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid desk ID")
	}

	desk, err := h.branchService.GetDesk(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrDeskNotFound) {
			return response.NotFound(c, "Desk not found")
		}
		return response.InternalServerError(c, "Failed to get desk")
	}

	return response.Success(c, "Desk retrieved successfully", fiber.Map{
		"desk": desk,
	})
}

// CreateDesk handles desk creation (Admin/Manager)
// @Summary Create desk
// @Description Create a desk in a branch with its capability set
// @Tags Desks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateDeskInput true "Desk data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /desks [post]
func (h *BranchHandler) CreateDesk(c *fiber.Ctx) error {
	var input services.CreateDeskInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if input.BranchID == 0 || input.Name == "" || input.DeskNumber < 1 {
		return response.BadRequest(c, "Branch ID, name and desk number are required")
	}

	desk, err := h.branchService.CreateDesk(c.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBranchNotFound):
			return response.NotFound(c, "Branch not found")
		case errors.Is(err, services.ErrDeskNumberTaken):
			return response.Conflict(c, "Desk number already in use for this branch")
		default:
			return response.InternalServerError(c, "Failed to create desk")
		}
	}

	return response.Created(c, "Desk created successfully", fiber.Map{
		"desk": desk,
	})
}

// UpdateDesk handles desk update (Admin/Manager)
// @Summary Update desk
// @Description Update desk details, status and capability set
// @Tags Desks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Desk ID"
// @Param body body services.UpdateDeskInput true "Update data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /desks/{id} [put]
func (h *BranchHandler) UpdateDesk(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid desk ID")
	}

	var input services.UpdateDeskInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	desk, err := h.branchService.UpdateDesk(c.Context(), uint(id), &input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDeskNotFound):
			return response.NotFound(c, "Desk not found")
		case errors.Is(err, services.ErrDeskNumberTaken):
			return response.Conflict(c, "Desk number already in use for this branch")
		default:
			return response.InternalServerError(c, "Failed to update desk")
		}
	}

	return response.Success(c, "Desk updated successfully", fiber.Map{
		"desk": desk,
	})
}

// DeleteDesk handles desk deletion (Admin/Manager)
// @Summary Delete desk
// @Description Soft-delete a desk
// @Tags Desks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Desk ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /desks/{id} [delete]
func (h *BranchHandler) DeleteDesk(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid desk ID")
	}

	if err := h.branchService.DeleteDesk(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrDeskNotFound) {
			return response.NotFound(c, "Desk not found")
		}
		return response.InternalServerError(c, "Failed to delete desk")
	}

	return response.Success(c, "Desk deleted successfully", nil)
}

// AssignEmployeeRequest represents desk assignment request body
type AssignEmployeeRequest struct {
	DeskID *uint `json:"desk_id"`
}

// AssignEmployee handles binding an employee to a desk (Admin/Manager)
// @Summary Assign employee to desk
// @Description Bind an employee to a desk, or detach with null desk_id
// @Tags Desks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user_id path int true "User ID"
// @Param body body AssignEmployeeRequest true "Assignment"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{user_id}/desk [put]
func (h *BranchHandler) AssignEmployee(c *fiber.Ctx) error {
	userID, err := strconv.ParseUint(c.Params("user_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req AssignEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.branchService.AssignEmployee(c.Context(), uint(userID), req.DeskID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFoundSvc):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrDeskNotFound):
			return response.NotFound(c, "Desk not found")
		case errors.Is(err, services.ErrNotAnEmployee):
			return response.BadRequest(c, "Only employees can be assigned to desks")
		case errors.Is(err, services.ErrDeskWrongBranch):
			return response.BadRequest(c, "Desk belongs to a different branch")
		default:
			return response.InternalServerError(c, "Failed to assign employee")
		}
	}

	return response.Success(c, "Employee assignment updated", fiber.Map{
		"user": user.ToResponse(),
	})
}

// SetManagerRequest represents branch manager assignment request body
type SetManagerRequest struct {
	UserID uint `json:"user_id"`
}

// SetManager handles promoting a branch manager (Admin only)
// @Summary Set branch manager
// @Description Promote a user to branch manager, demoting any current one
// @Tags Branches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param branch_id path int true "Branch ID"
// @Param body body SetManagerRequest true "Manager assignment"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /branches/{branch_id}/manager [put]
func (h *BranchHandler) SetManager(c *fiber.Ctx) error {
	branchID, err := strconv.ParseUint(c.Params("branch_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}

	var req SetManagerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.UserID == 0 {
		return response.BadRequest(c, "User ID is required")
	}

	user, err := h.branchService.SetManager(c.Context(), uint(branchID), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBranchNotFound):
			return response.NotFound(c, "Branch not found")
		case errors.Is(err, services.ErrUserNotFoundSvc):
			return response.NotFound(c, "User not found")
		case errors.Is(err, services.ErrManagerWrongBranch):
			return response.BadRequest(c, "User belongs to a different branch")
		default:
			return response.InternalServerError(c, "Failed to set manager")
		}
	}

	return response.Success(c, "Branch manager updated", fiber.Map{
		"manager": user.ToResponse(),
	})
}

// GetManager handles getting the active branch manager
// @Summary Get branch manager
// @Description Get the branch's active manager, if any
// @Tags Branches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param branch_id path int true "Branch ID"
// @Success 200 {object} response.Response
// @Router /branches/{branch_id}/manager [get]
func (h *BranchHandler) GetManager(c *fiber.Ctx) error {
	branchID, err := strconv.ParseUint(c.Params("branch_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}

	manager, err := h.branchService.GetManager(c.Context(), uint(branchID))
	if err != nil {
		return response.InternalServerError(c, "Failed to get manager")
	}

	if manager == nil {
		return response.Success(c, "Branch has no active manager", fiber.Map{
			"manager": nil,
		})
	}
	return response.Success(c, "Manager retrieved successfully", fiber.Map{
		"manager": manager.ToResponse(),
	})
}

// ListDeskStaff handles listing employees assigned to a desk
// @Summary List desk staff
// @Description List employees assigned to a desk
// @Tags Desks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param desk_id path int true "Desk ID"
// @Success 200 {object} response.Response
// @Router /desks/{desk_id}/staff [get]
func (h *BranchHandler) ListDeskStaff(c *fiber.Ctx) error {
	deskID, err := strconv.ParseUint(c.Params("desk_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid desk ID")
	}

	staff, err := h.branchService.ListDeskStaff(c.Context(), uint(deskID))
	if err != nil {
		return response.InternalServerError(c, "Failed to list desk staff")
	}

	views := make([]interface{}, 0, len(staff))
	for i := range staff {
		views = append(views, staff[i].ToResponse())
	}

	return response.Success(c, "Desk staff retrieved successfully", fiber.Map{
		"staff": views,
	})
}
