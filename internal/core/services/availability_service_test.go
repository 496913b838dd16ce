package services

import (
	"context"
	"errors"
	"testing"

	"queuehub-backend/internal/adapters/persistence/models"
)

func TestFindAvailableNoCapableDesk(t *testing.T) {
	repo := &fakeDirectoryRepo{
		capableDesksFn: func(ctx context.Context, branchID, serviceID, subServiceID uint) ([]models.Desk, error) {
			return nil, nil
		},
	}
	svc := NewAvailabilityService(repo)

	_, err := svc.FindAvailable(context.Background(), 1, 2, 3)
	if !errors.Is(err, ErrServiceNotConfigured) {
		t.Fatalf("error = %v, want ErrServiceNotConfigured", err)
	}
}

func TestFindAvailableNobodyFree(t *testing.T) {
	repo := &fakeDirectoryRepo{
		capableDesksFn: func(ctx context.Context, branchID, serviceID, subServiceID uint) ([]models.Desk, error) {
			return []models.Desk{{ID: 10}, {ID: 11}}, nil
		},
		availableStaffFn: func(ctx context.Context, deskID uint) ([]models.User, error) {
			return nil, nil
		},
	}
	svc := NewAvailabilityService(repo)

	_, err := svc.FindAvailable(context.Background(), 1, 2, 3)
	if !errors.Is(err, ErrNoAvailableStaff) {
		t.Fatalf("error = %v, want ErrNoAvailableStaff", err)
	}
}

func TestFindAvailablePicksFirstStaffedDesk(t *testing.T) {
	repo := &fakeDirectoryRepo{
		capableDesksFn: func(ctx context.Context, branchID, serviceID, subServiceID uint) ([]models.Desk, error) {
			return []models.Desk{{ID: 10}, {ID: 11}}, nil
		},
		availableStaffFn: func(ctx context.Context, deskID uint) ([]models.User, error) {
			if deskID == 11 {
				return []models.User{{ID: 7}, {ID: 8}}, nil
			}
			return nil, nil
		},
	}
	svc := NewAvailabilityService(repo)

	got, err := svc.FindAvailable(context.Background(), 1, 2, 3)
	if err != nil {
		t.Fatalf("FindAvailable() error = %v", err)
	}
	if got.Desk.ID != 11 {
		t.Errorf("desk = %d, want first staffed desk 11", got.Desk.ID)
	}
	if got.Employee.ID != 7 {
		t.Errorf("employee = %d, want first listed employee 7", got.Employee.ID)
	}
}

func TestFindAvailablePrefersEarlierDesk(t *testing.T) {
	repo := &fakeDirectoryRepo{
		capableDesksFn: func(ctx context.Context, branchID, serviceID, subServiceID uint) ([]models.Desk, error) {
			return []models.Desk{{ID: 10}, {ID: 11}}, nil
		},
		availableStaffFn: func(ctx context.Context, deskID uint) ([]models.User, error) {
			return []models.User{{ID: deskID * 100}}, nil
		},
	}
	svc := NewAvailabilityService(repo)

	got, err := svc.FindAvailable(context.Background(), 1, 2, 3)
	if err != nil {
		t.Fatalf("FindAvailable() error = %v", err)
	}
	if got.Desk.ID != 10 {
		t.Fatalf("desk = %d, want 10: selection must follow desk order", got.Desk.ID)
	}
}
