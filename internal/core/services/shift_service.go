package services

import (
	"context"
	"errors"
	"log"

	"queuehub-backend/internal/adapters/persistence/models"
	"queuehub-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Shift service errors
var (
	ErrAlreadyCheckedIn = errors.New("employee is already checked in")
	ErrNotCheckedIn     = errors.New("employee is not checked in")
	ErrAlreadyOnBreak   = errors.New("employee is already on break")
	ErrNotOnBreak       = errors.New("employee is not on break")
	ErrStillServing     = errors.New("employee has a token in service")
)

// ShiftService tracks employee working/break state. The availability flags
// it flips are what the dispatch core reads when binding tokens to staff.
type ShiftService struct {
	userRepo      repositories.UserRepository
	directoryRepo repositories.DirectoryRepository
	shiftRepo     repositories.ShiftLogRepository
	tokenRepo     repositories.TokenRepository
	notify        *NotifyService
}

// NewShiftService creates a new shift service
func NewShiftService(
	userRepo repositories.UserRepository,
	directoryRepo repositories.DirectoryRepository,
	shiftRepo repositories.ShiftLogRepository,
	tokenRepo repositories.TokenRepository,
	notify *NotifyService,
) *ShiftService {
	return &ShiftService{
		userRepo:      userRepo,
		directoryRepo: directoryRepo,
		shiftRepo:     shiftRepo,
		tokenRepo:     tokenRepo,
		notify:        notify,
	}
}

// CheckIn marks the employee as working and available
func (s *ShiftService) CheckIn(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.getEmployee(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsWorking {
		return nil, ErrAlreadyCheckedIn
	}

	flags := map[string]interface{}{
		"is_working":   true,
		"is_available": true,
		"is_on_break":  false,
	}
	if err := s.directoryRepo.UpdateEmployeeFlags(ctx, userID, flags); err != nil {
		return nil, err
	}
	if err := s.record(ctx, user, models.ShiftEventCheckIn); err != nil {
		return nil, err
	}

	log.Printf("✅ Employee checked in: %s", user.Username)
	s.publishDesk(ctx, user)
	return s.userRepo.GetByID(ctx, userID)
}

// CheckOut marks the employee as off shift. Refused while the employee has
// a SERVING token.
func (s *ShiftService) CheckOut(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.getEmployee(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsWorking {
		return nil, ErrNotCheckedIn
	}

	serving, err := s.tokenRepo.GetServingByEmployee(ctx, userID)
	if err != nil {
		return nil, err
	}
	if serving != nil {
		return nil, ErrStillServing
	}

	flags := map[string]interface{}{
		"is_working":   false,
		"is_available": false,
		"is_on_break":  false,
	}
	if err := s.directoryRepo.UpdateEmployeeFlags(ctx, userID, flags); err != nil {
		return nil, err
	}
	if err := s.record(ctx, user, models.ShiftEventCheckOut); err != nil {
		return nil, err
	}

	log.Printf("✅ Employee checked out: %s", user.Username)
	s.publishDesk(ctx, user)
	return s.userRepo.GetByID(ctx, userID)
}

// StartBreak pauses the employee: still working, not available for dispatch
func (s *ShiftService) StartBreak(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.getEmployee(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsWorking {
		return nil, ErrNotCheckedIn
	}
	if user.IsOnBreak {
		return nil, ErrAlreadyOnBreak
	}

	flags := map[string]interface{}{
		"is_available": false,
		"is_on_break":  true,
	}
	if err := s.directoryRepo.UpdateEmployeeFlags(ctx, userID, flags); err != nil {
		return nil, err
	}
	if err := s.record(ctx, user, models.ShiftEventBreakStart); err != nil {
		return nil, err
	}

	s.publishDesk(ctx, user)
	return s.userRepo.GetByID(ctx, userID)
}

// EndBreak returns the employee to the available pool
func (s *ShiftService) EndBreak(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.getEmployee(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsOnBreak {
		return nil, ErrNotOnBreak
	}

	flags := map[string]interface{}{
		"is_available": true,
		"is_on_break":  false,
	}
	if err := s.directoryRepo.UpdateEmployeeFlags(ctx, userID, flags); err != nil {
		return nil, err
	}
	if err := s.record(ctx, user, models.ShiftEventBreakEnd); err != nil {
		return nil, err
	}

	s.publishDesk(ctx, user)
	return s.userRepo.GetByID(ctx, userID)
}

// DeskShiftLog lists recent shift events for a desk
func (s *ShiftService) DeskShiftLog(ctx context.Context, deskID uint, limit int) ([]models.ShiftLog, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return s.shiftRepo.ListByDesk(ctx, deskID, limit)
}

func (s *ShiftService) getEmployee(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *ShiftService) record(ctx context.Context, user *models.User, event string) error {
	entry := &models.ShiftLog{
		UserID: user.ID,
		Event:  event,
		DeskID: user.AssignedDeskID,
	}
	return s.shiftRepo.Create(ctx, entry)
}

func (s *ShiftService) publishDesk(ctx context.Context, user *models.User) {
	if s.notify == nil || user.AssignedDeskID == nil || user.BranchID == nil {
		return
	}
	s.notify.PublishDesk(ctx, *user.BranchID, *user.AssignedDeskID)
}
