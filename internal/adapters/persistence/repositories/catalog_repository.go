package repositories

import (
	"context"

	"queuehub-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// catalogRepository implements CatalogRepository
type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// ============================================================
// Service Queries
// ============================================================

func (r *catalogRepository) CreateService(ctx context.Context, service *models.Service) error {
	return r.db.WithContext(ctx).Create(service).Error
}

func (r *catalogRepository) GetServiceByID(ctx context.Context, id uint) (*models.Service, error) {
	var service models.Service
	err := r.db.WithContext(ctx).Preload("SubServices").First(&service, id).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *catalogRepository) ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	var services []models.Service
	query := r.db.WithContext(ctx).Preload("SubServices").Order("display_order ASC, id ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&services).Error
	return services, err
}

func (r *catalogRepository) UpdateService(ctx context.Context, service *models.Service) error {
	return r.db.WithContext(ctx).Save(service).Error
}

func (r *catalogRepository) DeleteService(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Service{}, id).Error
}

// ============================================================
// SubService Queries
// ============================================================

func (r *catalogRepository) CreateSubService(ctx context.Context, sub *models.SubService) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *catalogRepository) GetSubServiceByID(ctx context.Context, id uint) (*models.SubService, error) {
	var sub models.SubService
	err := r.db.WithContext(ctx).Preload("Service").First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *catalogRepository) ListSubServices(ctx context.Context, serviceID uint) ([]models.SubService, error) {
	var subs []models.SubService
	err := r.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Order("display_order ASC, id ASC").
		Find(&subs).Error
	return subs, err
}

func (r *catalogRepository) UpdateSubService(ctx context.Context, sub *models.SubService) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

func (r *catalogRepository) DeleteSubService(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.SubService{}, id).Error
}

// ReplaceBranchServices replaces the services assigned to a branch
func (r *catalogRepository) ReplaceBranchServices(ctx context.Context, branchID uint, serviceIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var branch models.Branch
		if err := tx.First(&branch, branchID).Error; err != nil {
			return err
		}
		var services []models.Service
		if len(serviceIDs) > 0 {
			if err := tx.Find(&services, serviceIDs).Error; err != nil {
				return err
			}
		}
		return tx.Model(&branch).Association("Services").Replace(services)
	})
}
