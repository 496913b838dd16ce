package repositories

import (
	"context"
	"errors"

	"queuehub-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// shiftLogRepository implements ShiftLogRepository
type shiftLogRepository struct {
	db *gorm.DB
}

// NewShiftLogRepository creates a new shift log repository
func NewShiftLogRepository(db *gorm.DB) ShiftLogRepository {
	return &shiftLogRepository{db: db}
}

func (r *shiftLogRepository) Create(ctx context.Context, entry *models.ShiftLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// LatestByUser returns the most recent shift event for a user, or nil
func (r *shiftLogRepository) LatestByUser(ctx context.Context, userID uint) (*models.ShiftLog, error) {
	var entry models.ShiftLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *shiftLogRepository) ListByDesk(ctx context.Context, deskID uint, limit int) ([]models.ShiftLog, error) {
	var entries []models.ShiftLog
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("desk_id = ?", deskID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
