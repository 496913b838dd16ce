package repositories

import (
	"context"
	"time"

	"queuehub-backend/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	GetByUserID(ctx context.Context, userID uint) ([]*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// DirectoryRepository supplies branches, desks and the staff assigned to
// them. The dispatch core reads desk capability and employee availability
// through this interface; the write side backs the admin CRUD surfaces.
type DirectoryRepository interface {
	// Branches
	CreateBranch(ctx context.Context, branch *models.Branch) error
	GetBranchByID(ctx context.Context, id uint) (*models.Branch, error)
	ListBranches(ctx context.Context, activeOnly bool) ([]models.Branch, error)
	UpdateBranch(ctx context.Context, branch *models.Branch) error
	DeleteBranch(ctx context.Context, id uint) error

	// Desks
	CreateDesk(ctx context.Context, desk *models.Desk) error
	GetDeskByID(ctx context.Context, id uint) (*models.Desk, error)
	ListDesksByBranch(ctx context.Context, branchID uint) ([]models.Desk, error)
	UpdateDesk(ctx context.Context, desk *models.Desk) error
	DeleteDesk(ctx context.Context, id uint) error
	ReplaceDeskServices(ctx context.Context, deskID uint, serviceIDs, subServiceIDs []uint) error

	// ListCapableDesks returns ACTIVE desks in the branch whose capability
	// set covers the sub-service, either via a direct sub-service assignment
	// or via the parent service, ordered by desk_number.
	ListCapableDesks(ctx context.Context, branchID, serviceID, subServiceID uint) ([]models.Desk, error)

	// Employees
	ListEmployeesByDesk(ctx context.Context, deskID uint) ([]models.User, error)
	ListAvailableEmployeesByDesk(ctx context.Context, deskID uint) ([]models.User, error)
	AssignEmployeeToDesk(ctx context.Context, userID uint, deskID *uint) error
	UpdateEmployeeFlags(ctx context.Context, userID uint, flags map[string]interface{}) error
	GetActiveManager(ctx context.Context, branchID uint) (*models.User, error)
	SetBranchManager(ctx context.Context, branchID, userID uint) error
}

// CatalogRepository supplies the service / sub-service catalog.
type CatalogRepository interface {
	CreateService(ctx context.Context, service *models.Service) error
	GetServiceByID(ctx context.Context, id uint) (*models.Service, error)
	ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error)
	UpdateService(ctx context.Context, service *models.Service) error
	DeleteService(ctx context.Context, id uint) error

	CreateSubService(ctx context.Context, sub *models.SubService) error
	GetSubServiceByID(ctx context.Context, id uint) (*models.SubService, error)
	ListSubServices(ctx context.Context, serviceID uint) ([]models.SubService, error)
	UpdateSubService(ctx context.Context, sub *models.SubService) error
	DeleteSubService(ctx context.Context, id uint) error

	ReplaceBranchServices(ctx context.Context, branchID uint, serviceIDs []uint) error
}

// SeriesRepository owns sequence_series rows. MintNumber is the one
// concurrency-critical read-modify-write and must serialize per series.
type SeriesRepository interface {
	Create(ctx context.Context, series *models.SequenceSeries) error
	GetByID(ctx context.Context, id uint) (*models.SequenceSeries, error)
	ListByBranch(ctx context.Context, branchID uint) ([]models.SequenceSeries, error)
	Delete(ctx context.Context, id uint) error

	// UpdateLocked runs mutate on the row under the same lock MintNumber
	// takes, then saves it. Edits and mints serialize per series.
	UpdateLocked(ctx context.Context, id uint, mutate func(series *models.SequenceSeries) error) (*models.SequenceSeries, error)

	// MintNumber locks the active series row for (branch, service),
	// increments current_number and returns the updated row. Returns
	// ErrNoActiveSeries or ErrSeriesExhausted.
	MintNumber(ctx context.Context, branchID, serviceID uint) (*models.SequenceSeries, error)

	// ResetSeries sets current_number back to start_from.
	ResetSeries(ctx context.Context, seriesID uint) error

	HasActiveClash(ctx context.Context, branchID, serviceID, excludeID uint) (bool, error)
	PrefixTaken(ctx context.Context, branchID uint, prefix string, excludeID uint) (bool, error)
}

// TokenRepository owns token rows and the transactional lifecycle writes.
type TokenRepository interface {
	Create(ctx context.Context, token *models.Token) error
	GetByID(ctx context.Context, id uint) (*models.Token, error)

	// GetServingByEmployee returns the employee's current SERVING token,
	// or (nil, nil) when there is none.
	GetServingByEmployee(ctx context.Context, employeeID uint) (*models.Token, error)

	// ClaimOldestPending locks and claims the oldest PENDING token bound to
	// the desk (created_at ASC, id ASC), transitions it to SERVING and binds
	// the claiming employee. Returns ErrNoPendingToken when the queue is empty.
	ClaimOldestPending(ctx context.Context, deskID, employeeID uint) (*models.Token, error)

	// Complete transitions SERVING -> COMPLETED under a row lock. Returns
	// ErrTokenNotServing if the token is in any other state.
	Complete(ctx context.Context, tokenID uint) (*models.Token, error)

	// ResetBranch cancels every PENDING token in the branch and resets every
	// active series to start_from in a single transaction. Returns the
	// number of cancelled tokens.
	ResetBranch(ctx context.Context, branchID uint) (int64, error)

	ListServing(ctx context.Context, branchID uint, limit int) ([]models.Token, error)
	ListPending(ctx context.Context, branchID uint, limit int) ([]models.Token, error)
	ListPendingByDesk(ctx context.Context, deskID uint, limit int) ([]models.Token, error)
	CountsByStatus(ctx context.Context, branchID uint) (map[string]int64, error)
	ListHistory(ctx context.Context, branchID uint, offset, limit int) ([]models.Token, int64, error)
	CancelStalePending(ctx context.Context, before time.Time) (int64, error)
}

// ShiftLogRepository records employee shift events.
type ShiftLogRepository interface {
	Create(ctx context.Context, entry *models.ShiftLog) error
	LatestByUser(ctx context.Context, userID uint) (*models.ShiftLog, error)
	ListByDesk(ctx context.Context, deskID uint, limit int) ([]models.ShiftLog, error)
}
