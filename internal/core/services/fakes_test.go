package services

import (
	"context"
	"time"

	"queuehub-backend/internal/adapters/persistence/models"
	"queuehub-backend/internal/adapters/persistence/repositories"
)

// Fakes embed the repository interface so only the methods a test exercises
// need to be provided; an unexpected call panics with a nil dereference,
// which is exactly the signal we want.

type fakeSeriesRepo struct {
	repositories.SeriesRepository
	mintFn        func(ctx context.Context, branchID, serviceID uint) (*models.SequenceSeries, error)
	createFn      func(ctx context.Context, series *models.SequenceSeries) error
	getFn         func(ctx context.Context, id uint) (*models.SequenceSeries, error)
	lockedFn      func(ctx context.Context, id uint, mutate func(*models.SequenceSeries) error) (*models.SequenceSeries, error)
	prefixTakenFn func(ctx context.Context, branchID uint, prefix string, excludeID uint) (bool, error)
	clashFn       func(ctx context.Context, branchID, serviceID, excludeID uint) (bool, error)
}

func (f *fakeSeriesRepo) MintNumber(ctx context.Context, branchID, serviceID uint) (*models.SequenceSeries, error) {
	return f.mintFn(ctx, branchID, serviceID)
}

func (f *fakeSeriesRepo) Create(ctx context.Context, series *models.SequenceSeries) error {
	return f.createFn(ctx, series)
}

func (f *fakeSeriesRepo) GetByID(ctx context.Context, id uint) (*models.SequenceSeries, error) {
	return f.getFn(ctx, id)
}

func (f *fakeSeriesRepo) UpdateLocked(ctx context.Context, id uint, mutate func(*models.SequenceSeries) error) (*models.SequenceSeries, error) {
	return f.lockedFn(ctx, id, mutate)
}

func (f *fakeSeriesRepo) PrefixTaken(ctx context.Context, branchID uint, prefix string, excludeID uint) (bool, error) {
	return f.prefixTakenFn(ctx, branchID, prefix, excludeID)
}

func (f *fakeSeriesRepo) HasActiveClash(ctx context.Context, branchID, serviceID, excludeID uint) (bool, error) {
	return f.clashFn(ctx, branchID, serviceID, excludeID)
}

type fakeDirectoryRepo struct {
	repositories.DirectoryRepository
	getBranchFn      func(ctx context.Context, id uint) (*models.Branch, error)
	capableDesksFn   func(ctx context.Context, branchID, serviceID, subServiceID uint) ([]models.Desk, error)
	availableStaffFn func(ctx context.Context, deskID uint) ([]models.User, error)
	deskStaffFn      func(ctx context.Context, deskID uint) ([]models.User, error)
	updateFlagsFn    func(ctx context.Context, userID uint, flags map[string]interface{}) error
}

func (f *fakeDirectoryRepo) GetBranchByID(ctx context.Context, id uint) (*models.Branch, error) {
	return f.getBranchFn(ctx, id)
}

func (f *fakeDirectoryRepo) ListCapableDesks(ctx context.Context, branchID, serviceID, subServiceID uint) ([]models.Desk, error) {
	return f.capableDesksFn(ctx, branchID, serviceID, subServiceID)
}

func (f *fakeDirectoryRepo) ListAvailableEmployeesByDesk(ctx context.Context, deskID uint) ([]models.User, error) {
	return f.availableStaffFn(ctx, deskID)
}

func (f *fakeDirectoryRepo) ListEmployeesByDesk(ctx context.Context, deskID uint) ([]models.User, error) {
	if f.deskStaffFn == nil {
		return nil, nil
	}
	return f.deskStaffFn(ctx, deskID)
}

func (f *fakeDirectoryRepo) UpdateEmployeeFlags(ctx context.Context, userID uint, flags map[string]interface{}) error {
	return f.updateFlagsFn(ctx, userID, flags)
}

type fakeCatalogRepo struct {
	repositories.CatalogRepository
	getSubFn func(ctx context.Context, id uint) (*models.SubService, error)
}

func (f *fakeCatalogRepo) GetSubServiceByID(ctx context.Context, id uint) (*models.SubService, error) {
	return f.getSubFn(ctx, id)
}

type fakeTokenRepo struct {
	repositories.TokenRepository
	createFn    func(ctx context.Context, token *models.Token) error
	getByIDFn   func(ctx context.Context, id uint) (*models.Token, error)
	servingFn   func(ctx context.Context, employeeID uint) (*models.Token, error)
	claimFn     func(ctx context.Context, deskID, employeeID uint) (*models.Token, error)
	completeFn  func(ctx context.Context, tokenID uint) (*models.Token, error)
	resetFn     func(ctx context.Context, branchID uint) (int64, error)
	listServing func(ctx context.Context, branchID uint, limit int) ([]models.Token, error)
	listPending func(ctx context.Context, branchID uint, limit int) ([]models.Token, error)
	listByDesk  func(ctx context.Context, deskID uint, limit int) ([]models.Token, error)
	cancelStale func(ctx context.Context, before time.Time) (int64, error)
}

func (f *fakeTokenRepo) Create(ctx context.Context, token *models.Token) error {
	return f.createFn(ctx, token)
}

func (f *fakeTokenRepo) GetByID(ctx context.Context, id uint) (*models.Token, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeTokenRepo) GetServingByEmployee(ctx context.Context, employeeID uint) (*models.Token, error) {
	return f.servingFn(ctx, employeeID)
}

func (f *fakeTokenRepo) ClaimOldestPending(ctx context.Context, deskID, employeeID uint) (*models.Token, error) {
	return f.claimFn(ctx, deskID, employeeID)
}

func (f *fakeTokenRepo) Complete(ctx context.Context, tokenID uint) (*models.Token, error) {
	return f.completeFn(ctx, tokenID)
}

func (f *fakeTokenRepo) ResetBranch(ctx context.Context, branchID uint) (int64, error) {
	return f.resetFn(ctx, branchID)
}

func (f *fakeTokenRepo) ListServing(ctx context.Context, branchID uint, limit int) ([]models.Token, error) {
	if f.listServing == nil {
		return nil, nil
	}
	return f.listServing(ctx, branchID, limit)
}

func (f *fakeTokenRepo) ListPending(ctx context.Context, branchID uint, limit int) ([]models.Token, error) {
	if f.listPending == nil {
		return nil, nil
	}
	return f.listPending(ctx, branchID, limit)
}

func (f *fakeTokenRepo) ListPendingByDesk(ctx context.Context, deskID uint, limit int) ([]models.Token, error) {
	if f.listByDesk == nil {
		return nil, nil
	}
	return f.listByDesk(ctx, deskID, limit)
}

func (f *fakeTokenRepo) CancelStalePending(ctx context.Context, before time.Time) (int64, error) {
	return f.cancelStale(ctx, before)
}

type fakeUserRepo struct {
	repositories.UserRepository
	getByIDFn func(ctx context.Context, id uint) (*models.User, error)
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return f.getByIDFn(ctx, id)
}

type fakeShiftRepo struct {
	repositories.ShiftLogRepository
	latestFn func(ctx context.Context, userID uint) (*models.ShiftLog, error)
	createFn func(ctx context.Context, entry *models.ShiftLog) error
}

func (f *fakeShiftRepo) Create(ctx context.Context, entry *models.ShiftLog) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, entry)
}

func (f *fakeShiftRepo) LatestByUser(ctx context.Context, userID uint) (*models.ShiftLog, error) {
	if f.latestFn == nil {
		return nil, nil
	}
	return f.latestFn(ctx, userID)
}
