package services

import (
	"context"
	"errors"
	"log"

	"queuehub-backend/internal/adapters/persistence/models"
	"queuehub-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Token lifecycle errors
var (
	ErrBranchNotFound     = errors.New("branch not found")
	ErrBranchClosed       = errors.New("branch is not active")
	ErrSubServiceNotFound = errors.New("sub-service not found")
	ErrSubServiceInactive = errors.New("sub-service is not active")
	ErrTokenNotFound      = errors.New("token not found")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrNotAssignedToDesk  = errors.New("employee is not assigned to a desk")
	ErrAlreadyServing     = errors.New("employee is already serving another token")
	ErrQueueEmpty         = errors.New("no pending tokens for this desk")
	ErrInvalidTransition  = errors.New("token is not in a state that allows this action")
)

// TokenService is the token lifecycle engine: PENDING → SERVING → COMPLETED,
// with PENDING → CANCELLED on administrative reset. Generate runs three
// sequential gates (catalog, availability, mint); the first failing gate
// aborts with no partial state.
type TokenService struct {
	tokenRepo     repositories.TokenRepository
	userRepo      repositories.UserRepository
	directoryRepo repositories.DirectoryRepository
	catalogRepo   repositories.CatalogRepository

	sequence     *SequenceService
	availability *AvailabilityService
	notify       *NotifyService
}

// NewTokenService creates a new token service
func NewTokenService(
	tokenRepo repositories.TokenRepository,
	userRepo repositories.UserRepository,
	directoryRepo repositories.DirectoryRepository,
	catalogRepo repositories.CatalogRepository,
	sequence *SequenceService,
	availability *AvailabilityService,
	notify *NotifyService,
) *TokenService {
	return &TokenService{
		tokenRepo:     tokenRepo,
		userRepo:      userRepo,
		directoryRepo: directoryRepo,
		catalogRepo:   catalogRepo,
		sequence:      sequence,
		availability:  availability,
		notify:        notify,
	}
}

// GenerateInput represents a token request
type GenerateInput struct {
	BranchID     uint `json:"branch_id"`
	SubServiceID uint `json:"sub_service_id"`
}

// Generate mints a new PENDING token for a sub-service request. The token is
// routed at creation: desk and employee are bound eagerly, not pulled from a
// shared pool at pickup.
func (s *TokenService) Generate(ctx context.Context, input *GenerateInput) (*models.Token, error) {
	branch, err := s.directoryRepo.GetBranchByID(ctx, input.BranchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}
	if !branch.IsActive {
		return nil, ErrBranchClosed
	}

	// Gate 1: catalog
	sub, err := s.catalogRepo.GetSubServiceByID(ctx, input.SubServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubServiceNotFound
		}
		return nil, err
	}
	if !sub.IsActive {
		return nil, ErrSubServiceInactive
	}

	// Gate 2: availability
	pair, err := s.availability.FindAvailable(ctx, input.BranchID, sub.ServiceID, sub.ID)
	if err != nil {
		return nil, err
	}

	// Gate 3: mint
	minted, err := s.sequence.Mint(ctx, input.BranchID, sub.ServiceID)
	if err != nil {
		return nil, err
	}

	token := &models.Token{
		DisplayNumber:  minted.DisplayNumber,
		SequenceNumber: minted.SequenceNumber,
		Status:         models.TokenStatusPending,
		BranchID:       input.BranchID,
		ServiceID:      sub.ServiceID,
		SubServiceID:   sub.ID,
		DeskID:         &pair.Desk.ID,
		AssignedToID:   &pair.Employee.ID,
	}
	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	created, err := s.tokenRepo.GetByID(ctx, token.ID)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Token %s created (branch=%d, desk=%d, employee=%d)",
		created.DisplayNumber, input.BranchID, pair.Desk.ID, pair.Employee.ID)

	s.notify.PublishBranch(ctx, input.BranchID)
	s.notify.PublishDesk(ctx, input.BranchID, pair.Desk.ID)
	return created, nil
}

// ServeNext claims the oldest PENDING token on the employee's desk. The
// generate-time employee binding is a routing hint; the claim re-binds
// assigned_to_id to whoever actually takes the token.
func (s *TokenService) ServeNext(ctx context.Context, employeeID uint) (*models.Token, error) {
	employee, err := s.userRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	if employee.AssignedDeskID == nil {
		return nil, ErrNotAssignedToDesk
	}

	serving, err := s.tokenRepo.GetServingByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if serving != nil {
		return nil, ErrAlreadyServing
	}

	token, err := s.tokenRepo.ClaimOldestPending(ctx, *employee.AssignedDeskID, employeeID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNoPendingToken):
			return nil, ErrQueueEmpty
		case errors.Is(err, repositories.ErrEmployeeBusy):
			// The pre-check above is a fast path; the claim transaction is
			// the authoritative guard when two serve-next calls race.
			return nil, ErrAlreadyServing
		default:
			return nil, err
		}
	}

	log.Printf("✅ Token %s now serving (employee=%d)", token.DisplayNumber, employeeID)

	s.notify.PublishBranch(ctx, token.BranchID)
	s.notify.PublishDesk(ctx, token.BranchID, *employee.AssignedDeskID)
	return token, nil
}

// Complete transitions a SERVING token to COMPLETED. A token that is not
// currently SERVING fails with ErrInvalidTransition — completing twice is an
// error, never a silent no-op.
func (s *TokenService) Complete(ctx context.Context, tokenID uint) (*models.Token, error) {
	token, err := s.tokenRepo.Complete(ctx, tokenID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrTokenNotFound
		case errors.Is(err, repositories.ErrTokenNotServing):
			return nil, ErrInvalidTransition
		default:
			return nil, err
		}
	}

	log.Printf("✅ Token %s completed", token.DisplayNumber)

	s.notify.PublishBranch(ctx, token.BranchID)
	if token.DeskID != nil {
		s.notify.PublishDesk(ctx, token.BranchID, *token.DeskID)
	}
	return token, nil
}

// ResetBranchQueue cancels every PENDING token in the branch and rewinds
// every active series to its start. Atomic and irreversible.
func (s *TokenService) ResetBranchQueue(ctx context.Context, branchID uint) (int64, error) {
	if _, err := s.directoryRepo.GetBranchByID(ctx, branchID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrBranchNotFound
		}
		return 0, err
	}

	cancelled, err := s.tokenRepo.ResetBranch(ctx, branchID)
	if err != nil {
		return 0, err
	}

	log.Printf("✅ Branch %d queue reset: %d tokens cancelled", branchID, cancelled)

	s.notify.PublishBranch(ctx, branchID)
	return cancelled, nil
}

// GetToken returns a token by ID with relations
func (s *TokenService) GetToken(ctx context.Context, tokenID uint) (*models.Token, error) {
	token, err := s.tokenRepo.GetByID(ctx, tokenID)
	if err != nil {
		return nil, ErrTokenNotFound
	}
	return token, nil
}

// DashboardResponse is the branch queue dashboard
type DashboardResponse struct {
	Counts  map[string]int64 `json:"counts"`
	Serving []models.Token   `json:"serving"`
	Pending []models.Token   `json:"pending"`
}

// Dashboard returns queue state for a branch
func (s *TokenService) Dashboard(ctx context.Context, branchID uint) (*DashboardResponse, error) {
	if _, err := s.directoryRepo.GetBranchByID(ctx, branchID); err != nil {
		return nil, ErrBranchNotFound
	}

	counts, err := s.tokenRepo.CountsByStatus(ctx, branchID)
	if err != nil {
		return nil, err
	}
	serving, err := s.tokenRepo.ListServing(ctx, branchID, snapshotLimit)
	if err != nil {
		return nil, err
	}
	pending, err := s.tokenRepo.ListPending(ctx, branchID, snapshotLimit)
	if err != nil {
		return nil, err
	}

	return &DashboardResponse{
		Counts:  counts,
		Serving: serving,
		Pending: pending,
	}, nil
}

// History returns terminal tokens for a branch, paginated
func (s *TokenService) History(ctx context.Context, branchID uint, offset, limit int) ([]models.Token, int64, error) {
	return s.tokenRepo.ListHistory(ctx, branchID, offset, limit)
}
