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

// Catalog service errors
var (
	ErrServiceNotFound = errors.New("service not found")
	ErrSubNotFound     = errors.New("sub-service not found")
)

// CatalogService manages the service / sub-service catalog
type CatalogService struct {
	catalogRepo repositories.CatalogRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(catalogRepo repositories.CatalogRepository) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo}
}

// CreateServiceInput represents service creation input
type CreateServiceInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// UpdateServiceInput represents service update input
type UpdateServiceInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// CreateSubServiceInput represents sub-service creation input
type CreateSubServiceInput struct {
	ServiceID   uint   `json:"service_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// UpdateSubServiceInput represents sub-service update input
type UpdateSubServiceInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// CreateService creates a new service
func (s *CatalogService) CreateService(ctx context.Context, input *CreateServiceInput) (*models.Service, error) {
	service := &models.Service{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		IsActive:    true,
	}
	if err := s.catalogRepo.CreateService(ctx, service); err != nil {
		return nil, err
	}
	log.Printf("✅ Service created: %s", service.Name)
	return service, nil
}

// GetService gets a service by ID
func (s *CatalogService) GetService(ctx context.Context, id uint) (*models.Service, error) {
	service, err := s.catalogRepo.GetServiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return service, nil
}

// ListServices lists services
func (s *CatalogService) ListServices(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	return s.catalogRepo.ListServices(ctx, activeOnly)
}

// UpdateService updates a service
func (s *CatalogService) UpdateService(ctx context.Context, id uint, input *UpdateServiceInput) (*models.Service, error) {
	service, err := s.catalogRepo.GetServiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		service.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := s.catalogRepo.UpdateService(ctx, service); err != nil {
		return nil, err
	}
	return service, nil
}

// DeleteService soft-deletes a service
func (s *CatalogService) DeleteService(ctx context.Context, id uint) error {
	if _, err := s.catalogRepo.GetServiceByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrServiceNotFound
		}
		return err
	}
	return s.catalogRepo.DeleteService(ctx, id)
}

// CreateSubService creates a sub-service under a service
func (s *CatalogService) CreateSubService(ctx context.Context, input *CreateSubServiceInput) (*models.SubService, error) {
	if _, err := s.catalogRepo.GetServiceByID(ctx, input.ServiceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	sub := &models.SubService{
		ServiceID:   input.ServiceID,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		IsActive:    true,
	}
	if err := s.catalogRepo.CreateSubService(ctx, sub); err != nil {
		return nil, err
	}
	log.Printf("✅ Sub-service created: %s (service %d)", sub.Name, sub.ServiceID)
	return sub, nil
}

// GetSubService gets a sub-service by ID
func (s *CatalogService) GetSubService(ctx context.Context, id uint) (*models.SubService, error) {
	sub, err := s.catalogRepo.GetSubServiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubNotFound
		}
		return nil, err
	}
	return sub, nil
}

// ListSubServices lists sub-services of a service
func (s *CatalogService) ListSubServices(ctx context.Context, serviceID uint) ([]models.SubService, error) {
	return s.catalogRepo.ListSubServices(ctx, serviceID)
}

// UpdateSubService updates a sub-service
func (s *CatalogService) UpdateSubService(ctx context.Context, id uint, input *UpdateSubServiceInput) (*models.SubService, error) {
	sub, err := s.catalogRepo.GetSubServiceByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		sub.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		sub.Description = *input.Description
	}
	if input.IsActive != nil {
		sub.IsActive = *input.IsActive
	}

	if err := s.catalogRepo.UpdateSubService(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// DeleteSubService soft-deletes a sub-service
func (s *CatalogService) DeleteSubService(ctx context.Context, id uint) error {
	if _, err := s.catalogRepo.GetSubServiceByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubNotFound
		}
		return err
	}
	return s.catalogRepo.DeleteSubService(ctx, id)
}
