package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"queuehub-backend/internal/adapters/persistence/models"
	"queuehub-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Branch service errors
var (
	ErrBranchCodeTaken     = errors.New("branch code already in use")
	ErrDeskNotFound        = errors.New("desk not found")
	ErrDeskNumberTaken     = errors.New("desk number already in use for branch")
	ErrDeskWrongBranch     = errors.New("desk does not belong to the employee's branch")
	ErrNotAnEmployee       = errors.New("user is not an employee")
	ErrManagerWrongBranch  = errors.New("user does not belong to the branch")
)

// BranchService handles branch and desk management
type BranchService struct {
	directoryRepo repositories.DirectoryRepository
	catalogRepo   repositories.CatalogRepository
	userRepo      repositories.UserRepository
}

// NewBranchService creates a new branch service
func NewBranchService(
	directoryRepo repositories.DirectoryRepository,
	catalogRepo repositories.CatalogRepository,
	userRepo repositories.UserRepository,
) *BranchService {
	return &BranchService{
		directoryRepo: directoryRepo,
		catalogRepo:   catalogRepo,
		userRepo:      userRepo,
	}
}

// CreateBranchInput represents branch creation input
type CreateBranchInput struct {
	Name       string `json:"name" validate:"required"`
	Code       string `json:"code" validate:"required"`
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	ServiceIDs []uint `json:"service_ids"`
}

// UpdateBranchInput represents branch update input
type UpdateBranchInput struct {
	Name       *string `json:"name"`
	Address    *string `json:"address"`
	Phone      *string `json:"phone"`
	IsActive   *bool   `json:"is_active"`
	ServiceIDs []uint  `json:"service_ids"`
}

// CreateDeskInput represents desk creation input
type CreateDeskInput struct {
	BranchID      uint   `json:"branch_id" validate:"required"`
	Name          string `json:"name" validate:"required"`
	DeskNumber    int    `json:"desk_number" validate:"required,min=1"`
	ServiceIDs    []uint `json:"service_ids"`
	SubServiceIDs []uint `json:"sub_service_ids"`
}

// UpdateDeskInput represents desk update input
type UpdateDeskInput struct {
	Name          *string `json:"name"`
	DeskNumber    *int    `json:"desk_number"`
	Status        *string `json:"status"`
	ServiceIDs    []uint  `json:"service_ids"`
	SubServiceIDs []uint  `json:"sub_service_ids"`
}

// CreateBranch creates a new branch
func (s *BranchService) CreateBranch(ctx context.Context, input *CreateBranchInput) (*models.Branch, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))

	branches, err := s.directoryRepo.ListBranches(ctx, false)
	if err != nil {
		return nil, err
	}
	for _, b := range branches {
		if b.Code == code {
			return nil, ErrBranchCodeTaken
		}
	}

	branch := &models.Branch{
		Name:     strings.TrimSpace(input.Name),
		Code:     code,
		Address:  &input.Address,
		Phone:    &input.Phone,
		IsActive: true,
	}

	if err := s.directoryRepo.CreateBranch(ctx, branch); err != nil {
		return nil, err
	}

	if len(input.ServiceIDs) > 0 {
		if err := s.catalogRepo.ReplaceBranchServices(ctx, branch.ID, input.ServiceIDs); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ Branch created: %s (%s)", branch.Name, branch.Code)
	return s.directoryRepo.GetBranchByID(ctx, branch.ID)
}

// GetBranch gets a branch by ID
func (s *BranchService) GetBranch(ctx context.Context, id uint) (*models.Branch, error) {
	branch, err := s.directoryRepo.GetBranchByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}
	return branch, nil
}

// ListBranches lists branches
func (s *BranchService) ListBranches(ctx context.Context, activeOnly bool) ([]models.Branch, error) {
	return s.directoryRepo.ListBranches(ctx, activeOnly)
}

// UpdateBranch updates a branch
func (s *BranchService) UpdateBranch(ctx context.Context, id uint, input *UpdateBranchInput) (*models.Branch, error) {
	branch, err := s.directoryRepo.GetBranchByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		branch.Name = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		branch.Address = input.Address
	}
	if input.Phone != nil {
		branch.Phone = input.Phone
	}
	if input.IsActive != nil {
		branch.IsActive = *input.IsActive
	}

	if err := s.directoryRepo.UpdateBranch(ctx, branch); err != nil {
		return nil, err
	}

	if input.ServiceIDs != nil {
		if err := s.catalogRepo.ReplaceBranchServices(ctx, branch.ID, input.ServiceIDs); err != nil {
			return nil, err
		}
	}

	return s.directoryRepo.GetBranchByID(ctx, branch.ID)
}

// DeleteBranch soft-deletes a branch
func (s *BranchService) DeleteBranch(ctx context.Context, id uint) error {
	if _, err := s.directoryRepo.GetBranchByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBranchNotFound
		}
		return err
	}
	return s.directoryRepo.DeleteBranch(ctx, id)
}

// CreateDesk creates a new desk in a branch
func (s *BranchService) CreateDesk(ctx context.Context, input *CreateDeskInput) (*models.Desk, error) {
	if _, err := s.directoryRepo.GetBranchByID(ctx, input.BranchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}

	desks, err := s.directoryRepo.ListDesksByBranch(ctx, input.BranchID)
	if err != nil {
		return nil, err
	}
	for _, d := range desks {
		if d.DeskNumber == input.DeskNumber {
			return nil, ErrDeskNumberTaken
		}
	}

	desk := &models.Desk{
		BranchID:   input.BranchID,
		Name:       strings.TrimSpace(input.Name),
		DeskNumber: input.DeskNumber,
		Status:     models.DeskStatusActive,
	}

	if err := s.directoryRepo.CreateDesk(ctx, desk); err != nil {
		return nil, err
	}

	if len(input.ServiceIDs) > 0 || len(input.SubServiceIDs) > 0 {
		if err := s.directoryRepo.ReplaceDeskServices(ctx, desk.ID, input.ServiceIDs, input.SubServiceIDs); err != nil {
			return nil, err
		}
	}

	log.Printf("✅ Desk created: %s (branch %d)", desk.Name, desk.BranchID)
	return s.directoryRepo.GetDeskByID(ctx, desk.ID)
}

// GetDesk gets a desk by ID
func (s *BranchService) GetDesk(ctx context.Context, id uint) (*models.Desk, error) {
	desk, err := s.directoryRepo.GetDeskByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeskNotFound
		}
		return nil, err
	}
	return desk, nil
}

// ListDesks lists desks in a branch
func (s *BranchService) ListDesks(ctx context.Context, branchID uint) ([]models.Desk, error) {
	return s.directoryRepo.ListDesksByBranch(ctx, branchID)
}

// UpdateDesk updates a desk
func (s *BranchService) UpdateDesk(ctx context.Context, id uint, input *UpdateDeskInput) (*models.Desk, error) {
	desk, err := s.directoryRepo.GetDeskByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeskNotFound
		}
		return nil, err
	}

	if input.DeskNumber != nil && *input.DeskNumber != desk.DeskNumber {
		desks, err := s.directoryRepo.ListDesksByBranch(ctx, desk.BranchID)
		if err != nil {
			return nil, err
		}
		for _, d := range desks {
			if d.ID != desk.ID && d.DeskNumber == *input.DeskNumber {
				return nil, ErrDeskNumberTaken
			}
		}
		desk.DeskNumber = *input.DeskNumber
	}

	if input.Name != nil {
		desk.Name = strings.TrimSpace(*input.Name)
	}
	if input.Status != nil {
		switch *input.Status {
		case models.DeskStatusActive, models.DeskStatusInactive:
			desk.Status = *input.Status
		default:
			return nil, errors.New("invalid desk status")
		}
	}

	if err := s.directoryRepo.UpdateDesk(ctx, desk); err != nil {
		return nil, err
	}

	if input.ServiceIDs != nil || input.SubServiceIDs != nil {
		if err := s.directoryRepo.ReplaceDeskServices(ctx, desk.ID, input.ServiceIDs, input.SubServiceIDs); err != nil {
			return nil, err
		}
	}

	return s.directoryRepo.GetDeskByID(ctx, desk.ID)
}

// DeleteDesk soft-deletes a desk
func (s *BranchService) DeleteDesk(ctx context.Context, id uint) error {
	if _, err := s.directoryRepo.GetDeskByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDeskNotFound
		}
		return err
	}
	return s.directoryRepo.DeleteDesk(ctx, id)
}

// AssignEmployee binds an employee to a desk in their branch, or detaches
// them when deskID is nil.
func (s *BranchService) AssignEmployee(ctx context.Context, userID uint, deskID *uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFoundSvc
		}
		return nil, err
	}
	if user.Role != models.RoleEmployee && user.Role != models.RoleManager {
		return nil, ErrNotAnEmployee
	}

	if deskID != nil {
		desk, err := s.directoryRepo.GetDeskByID(ctx, *deskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDeskNotFound
			}
			return nil, err
		}
		if user.BranchID == nil || *user.BranchID != desk.BranchID {
			return nil, ErrDeskWrongBranch
		}
	}

	if err := s.directoryRepo.AssignEmployeeToDesk(ctx, userID, deskID); err != nil {
		return nil, err
	}

	return s.userRepo.GetByID(ctx, userID)
}

// SetManager promotes a user to branch manager. Any other active manager
// of the branch is demoted to employee in the same transaction.
func (s *BranchService) SetManager(ctx context.Context, branchID, userID uint) (*models.User, error) {
	if _, err := s.directoryRepo.GetBranchByID(ctx, branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFoundSvc
		}
		return nil, err
	}
	if user.BranchID != nil && *user.BranchID != branchID {
		return nil, ErrManagerWrongBranch
	}

	if err := s.directoryRepo.SetBranchManager(ctx, branchID, userID); err != nil {
		return nil, err
	}

	log.Printf("✅ Manager set for branch %d: %s", branchID, user.Username)
	return s.userRepo.GetByID(ctx, userID)
}

// GetManager returns the branch's active manager, or nil when unset.
func (s *BranchService) GetManager(ctx context.Context, branchID uint) (*models.User, error) {
	manager, err := s.directoryRepo.GetActiveManager(ctx, branchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return manager, nil
}

// ListDeskStaff lists employees assigned to a desk
func (s *BranchService) ListDeskStaff(ctx context.Context, deskID uint) ([]models.User, error) {
	return s.directoryRepo.ListEmployeesByDesk(ctx, deskID)
}
