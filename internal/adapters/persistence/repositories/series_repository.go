package repositories

import (
	"context"
	"errors"

	"queuehub-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// seriesRepository implements SeriesRepository
type seriesRepository struct {
	db *gorm.DB
}

// NewSeriesRepository creates a new sequence series repository
func NewSeriesRepository(db *gorm.DB) SeriesRepository {
	return &seriesRepository{db: db}
}

// Create creates a new series
func (r *seriesRepository) Create(ctx context.Context, series *models.SequenceSeries) error {
	return r.db.WithContext(ctx).Create(series).Error
}

// GetByID gets a series by ID with relations
func (r *seriesRepository) GetByID(ctx context.Context, id uint) (*models.SequenceSeries, error) {
	var series models.SequenceSeries
	err := r.db.WithContext(ctx).
		Preload("Branch").
		Preload("Service").
		First(&series, id).Error
	if err != nil {
		return nil, err
	}
	return &series, nil
}

// ListByBranch returns all series for a branch
func (r *seriesRepository) ListByBranch(ctx context.Context, branchID uint) ([]models.SequenceSeries, error) {
	var series []models.SequenceSeries
	err := r.db.WithContext(ctx).
		Preload("Service").
		Where("branch_id = ?", branchID).
		Order("service_id ASC, id ASC").
		Find(&series).Error
	return series, err
}

// UpdateLocked edits a series under the same row lock MintNumber takes, so
// an admin edit can never overwrite a concurrently minted current_number.
// mutate receives the locked row and may return a sentinel to abort.
func (r *seriesRepository) UpdateLocked(ctx context.Context, id uint, mutate func(series *models.SequenceSeries) error) (*models.SequenceSeries, error) {
	var series models.SequenceSeries
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&series, id).Error
		if err != nil {
			return err
		}
		if err := mutate(&series); err != nil {
			return err
		}
		return tx.Save(&series).Error
	})
	if err != nil {
		return nil, err
	}
	return &series, nil
}

// Delete deletes a series
func (r *seriesRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.SequenceSeries{}, id).Error
}

// MintNumber increments the active series for (branch, service) and returns
// the updated row. The row is locked for the duration of the transaction so
// two concurrent mints can never read the same current_number.
func (r *seriesRepository) MintNumber(ctx context.Context, branchID, serviceID uint) (*models.SequenceSeries, error) {
	var series models.SequenceSeries
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("branch_id = ? AND service_id = ? AND active = ?", branchID, serviceID, true).
			First(&series).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoActiveSeries
			}
			return err
		}
		if series.CurrentNumber+1 > series.EndAt {
			return ErrSeriesExhausted
		}
		series.CurrentNumber++
		return tx.Model(&models.SequenceSeries{}).
			Where("id = ?", series.ID).
			Update("current_number", series.CurrentNumber).Error
	})
	if err != nil {
		return nil, err
	}
	return &series, nil
}

// ResetSeries sets current_number back to start_from
func (r *seriesRepository) ResetSeries(ctx context.Context, seriesID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var series models.SequenceSeries
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&series, seriesID).Error
		if err != nil {
			return err
		}
		return tx.Model(&models.SequenceSeries{}).
			Where("id = ?", series.ID).
			Update("current_number", series.StartFrom).Error
	})
}

// HasActiveClash reports whether another active series exists for the same
// (branch, service) pair
func (r *seriesRepository) HasActiveClash(ctx context.Context, branchID, serviceID, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SequenceSeries{}).
		Where("branch_id = ? AND service_id = ? AND active = ? AND id <> ?",
			branchID, serviceID, true, excludeID).
		Count(&count).Error
	return count > 0, err
}

// PrefixTaken reports whether another series in the branch uses the prefix
func (r *seriesRepository) PrefixTaken(ctx context.Context, branchID uint, prefix string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SequenceSeries{}).
		Where("branch_id = ? AND prefix = ? AND id <> ?", branchID, prefix, excludeID).
		Count(&count).Error
	return count > 0, err
}
