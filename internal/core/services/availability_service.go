package services

import (
	"context"
	"errors"

	"queuehub-backend/internal/adapters/persistence/models"
	"queuehub-backend/internal/adapters/persistence/repositories"
)

// Availability errors. The two no-match causes are distinct on purpose:
// the first is an administrative gap, the second is transient.
var (
	ErrServiceNotConfigured = errors.New("sub-service is not assigned to any desk in this branch")
	ErrNoAvailableStaff     = errors.New("no available staff for this service right now, please try again later")
)

// AvailabilityService finds an eligible (desk, employee) pair for a
// sub-service request. Selection is deterministic, not load-balanced:
// first capable desk by desk_number, first available employee by id.
type AvailabilityService struct {
	directoryRepo repositories.DirectoryRepository
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(directoryRepo repositories.DirectoryRepository) *AvailabilityService {
	return &AvailabilityService{directoryRepo: directoryRepo}
}

// Availability is a resolved (desk, employee) pair
type Availability struct {
	Desk     *models.Desk `json:"desk"`
	Employee *models.User `json:"employee"`
}

// FindAvailable resolves a desk and employee able to take the next token
// for the sub-service, or fails with ErrServiceNotConfigured (no capable
// desk branch-wide) or ErrNoAvailableStaff (capable desks, nobody free).
func (s *AvailabilityService) FindAvailable(ctx context.Context, branchID, serviceID, subServiceID uint) (*Availability, error) {
	desks, err := s.directoryRepo.ListCapableDesks(ctx, branchID, serviceID, subServiceID)
	if err != nil {
		return nil, err
	}
	if len(desks) == 0 {
		return nil, ErrServiceNotConfigured
	}

	for i := range desks {
		employees, err := s.directoryRepo.ListAvailableEmployeesByDesk(ctx, desks[i].ID)
		if err != nil {
			return nil, err
		}
		if len(employees) > 0 {
			return &Availability{Desk: &desks[i], Employee: &employees[0]}, nil
		}
	}

	return nil, ErrNoAvailableStaff
}
