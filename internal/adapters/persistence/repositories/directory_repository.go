package repositories

import (
	"context"
	"errors"

	"queuehub-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// directoryRepository implements DirectoryRepository
type directoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository creates a new directory repository
func NewDirectoryRepository(db *gorm.DB) DirectoryRepository {
	return &directoryRepository{db: db}
}

// ============================================================
// Branch Queries
// ============================================================

func (r *directoryRepository) CreateBranch(ctx context.Context, branch *models.Branch) error {
	return r.db.WithContext(ctx).Create(branch).Error
}

func (r *directoryRepository) GetBranchByID(ctx context.Context, id uint) (*models.Branch, error) {
	var branch models.Branch
	err := r.db.WithContext(ctx).Preload("Services").First(&branch, id).Error
	if err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *directoryRepository) ListBranches(ctx context.Context, activeOnly bool) ([]models.Branch, error) {
	var branches []models.Branch
	query := r.db.WithContext(ctx).Order("id ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&branches).Error
	return branches, err
}

func (r *directoryRepository) UpdateBranch(ctx context.Context, branch *models.Branch) error {
	return r.db.WithContext(ctx).Save(branch).Error
}

func (r *directoryRepository) DeleteBranch(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Branch{}, id).Error
}

// ============================================================
// Desk Queries
// ============================================================

func (r *directoryRepository) CreateDesk(ctx context.Context, desk *models.Desk) error {
	return r.db.WithContext(ctx).Create(desk).Error
}

func (r *directoryRepository) GetDeskByID(ctx context.Context, id uint) (*models.Desk, error) {
	var desk models.Desk
	err := r.db.WithContext(ctx).
		Preload("Branch").
		Preload("Services").
		Preload("SubServices").
		First(&desk, id).Error
	if err != nil {
		return nil, err
	}
	return &desk, nil
}

func (r *directoryRepository) ListDesksByBranch(ctx context.Context, branchID uint) ([]models.Desk, error) {
	var desks []models.Desk
	err := r.db.WithContext(ctx).
		Preload("Services").
		Preload("SubServices").
		Where("branch_id = ?", branchID).
		Order("desk_number ASC").
		Find(&desks).Error
	return desks, err
}

func (r *directoryRepository) UpdateDesk(ctx context.Context, desk *models.Desk) error {
	return r.db.WithContext(ctx).Save(desk).Error
}

func (r *directoryRepository) DeleteDesk(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Desk{}, id).Error
}

// ReplaceDeskServices replaces the desk's capability assignments
func (r *directoryRepository) ReplaceDeskServices(ctx context.Context, deskID uint, serviceIDs, subServiceIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var desk models.Desk
		if err := tx.First(&desk, deskID).Error; err != nil {
			return err
		}

		var services []models.Service
		if len(serviceIDs) > 0 {
			if err := tx.Find(&services, serviceIDs).Error; err != nil {
				return err
			}
		}
		var subServices []models.SubService
		if len(subServiceIDs) > 0 {
			if err := tx.Find(&subServices, subServiceIDs).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&desk).Association("Services").Replace(services); err != nil {
			return err
		}
		return tx.Model(&desk).Association("SubServices").Replace(subServices)
	})
}

// ListCapableDesks returns ACTIVE desks whose capability set covers the
// sub-service, in desk_number order (deterministic tie-break)
func (r *directoryRepository) ListCapableDesks(ctx context.Context, branchID, serviceID, subServiceID uint) ([]models.Desk, error) {
	var desks []models.Desk
	err := r.db.WithContext(ctx).
		Distinct("desks.*").
		Joins("LEFT JOIN desk_sub_services dss ON dss.desk_id = desks.id AND dss.sub_service_id = ?", subServiceID).
		Joins("LEFT JOIN desk_services ds ON ds.desk_id = desks.id AND ds.service_id = ?", serviceID).
		Where("desks.branch_id = ? AND desks.status = ?", branchID, models.DeskStatusActive).
		Where("dss.sub_service_id IS NOT NULL OR ds.service_id IS NOT NULL").
		Order("desks.desk_number ASC").
		Find(&desks).Error
	return desks, err
}

// ============================================================
// Employee Queries
// ============================================================

func (r *directoryRepository) ListEmployeesByDesk(ctx context.Context, deskID uint) ([]models.User, error) {
	var employees []models.User
	err := r.db.WithContext(ctx).
		Where("assigned_desk_id = ? AND role = ?", deskID, models.RoleEmployee).
		Order("id ASC").
		Find(&employees).Error
	return employees, err
}

func (r *directoryRepository) ListAvailableEmployeesByDesk(ctx context.Context, deskID uint) ([]models.User, error) {
	var employees []models.User
	err := r.db.WithContext(ctx).
		Where("assigned_desk_id = ? AND role = ? AND is_active = ? AND is_available = ?",
			deskID, models.RoleEmployee, true, true).
		Order("id ASC").
		Find(&employees).Error
	return employees, err
}

func (r *directoryRepository) AssignEmployeeToDesk(ctx context.Context, userID uint, deskID *uint) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("assigned_desk_id", deskID).Error
}

func (r *directoryRepository) UpdateEmployeeFlags(ctx context.Context, userID uint, flags map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(flags).Error
}

// GetActiveManager returns the branch's active manager, or nil
func (r *directoryRepository) GetActiveManager(ctx context.Context, branchID uint) (*models.User, error) {
	var manager models.User
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND role = ? AND is_active = ?", branchID, models.RoleManager, true).
		First(&manager).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &manager, nil
}

// SetBranchManager promotes a user to branch manager, demoting any current
// active manager so the branch never has two
func (r *directoryRepository) SetBranchManager(ctx context.Context, branchID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.User{}).
			Where("branch_id = ? AND role = ? AND id <> ?", branchID, models.RoleManager, userID).
			Update("role", models.RoleEmployee).Error
		if err != nil {
			return err
		}
		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"role":      models.RoleManager,
				"branch_id": branchID,
			}).Error
	})
}
