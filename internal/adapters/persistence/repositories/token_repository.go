package repositories

import (
	"context"
	"errors"
	"time"

	"queuehub-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tokenRepository implements TokenRepository
type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

// Create creates a new token
func (r *tokenRepository) Create(ctx context.Context, token *models.Token) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// GetByID gets a token by ID with all relations
func (r *tokenRepository) GetByID(ctx context.Context, id uint) (*models.Token, error) {
	var token models.Token
	err := r.db.WithContext(ctx).
		Preload("Branch").
		Preload("Service").
		Preload("SubService").
		Preload("Desk").
		Preload("AssignedTo").
		First(&token, id).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// GetServingByEmployee returns the employee's current SERVING token, or nil
func (r *tokenRepository) GetServingByEmployee(ctx context.Context, employeeID uint) (*models.Token, error) {
	var token models.Token
	err := r.db.WithContext(ctx).
		Where("assigned_to_id = ? AND status = ?", employeeID, models.TokenStatusServing).
		First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// ClaimOldestPending claims the oldest PENDING token of a desk. FIFO is by
// created_at with the auto-increment id as tiebreaker; SKIP LOCKED lets two
// desk operators race without ever claiming the same row. The one-serving-
// token-per-employee guard runs inside the same transaction: a locking read
// on the employee's SERVING row means two concurrent claims by the same
// employee serialize, and the loser sees the winner's row.
func (r *tokenRepository) ClaimOldestPending(ctx context.Context, deskID, employeeID uint) (*models.Token, error) {
	var claimed models.Token
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var serving models.Token
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("assigned_to_id = ? AND status = ?", employeeID, models.TokenStatusServing).
			First(&serving).Error
		if err == nil {
			return ErrEmployeeBusy
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("desk_id = ? AND status = ?", deskID, models.TokenStatusPending).
			Order("created_at ASC, id ASC").
			First(&claimed).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoPendingToken
			}
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":         models.TokenStatusServing,
			"assigned_to_id": employeeID,
			"started_at":     now,
		}
		if err := tx.Model(&models.Token{}).Where("id = ?", claimed.ID).Updates(updates).Error; err != nil {
			return err
		}
		claimed.Status = models.TokenStatusServing
		claimed.AssignedToID = &employeeID
		claimed.StartedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, claimed.ID)
}

// Complete transitions SERVING -> COMPLETED. The status guard runs under the
// row lock so a second complete sees the terminal state and fails.
func (r *tokenRepository) Complete(ctx context.Context, tokenID uint) (*models.Token, error) {
	var token models.Token
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&token, tokenID).Error
		if err != nil {
			return err
		}
		if !models.CanTransition(token.Status, models.TokenStatusCompleted) {
			return ErrTokenNotServing
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":       models.TokenStatusCompleted,
			"completed_at": now,
		}
		return tx.Model(&models.Token{}).Where("id = ?", token.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, token.ID)
}

// ResetBranch cancels all PENDING tokens in the branch and resets every
// active series to start_from, all-or-nothing.
func (r *tokenRepository) ResetBranch(ctx context.Context, branchID uint) (int64, error) {
	var cancelled int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.Token{}).
			Where("branch_id = ? AND status = ?", branchID, models.TokenStatusPending).
			Updates(map[string]interface{}{
				"status":       models.TokenStatusCancelled,
				"completed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		cancelled = res.RowsAffected

		return tx.Model(&models.SequenceSeries{}).
			Where("branch_id = ? AND active = ?", branchID, true).
			Update("current_number", gorm.Expr("start_from")).Error
	})
	if err != nil {
		return 0, err
	}
	return cancelled, nil
}

// ListServing returns the most recent SERVING tokens for a branch
func (r *tokenRepository) ListServing(ctx context.Context, branchID uint, limit int) ([]models.Token, error) {
	var tokens []models.Token
	err := r.db.WithContext(ctx).
		Preload("SubService").
		Preload("Desk").
		Preload("AssignedTo").
		Where("branch_id = ? AND status = ?", branchID, models.TokenStatusServing).
		Order("started_at DESC, id DESC").
		Limit(limit).
		Find(&tokens).Error
	return tokens, err
}

// ListPending returns the oldest PENDING tokens for a branch (FIFO)
func (r *tokenRepository) ListPending(ctx context.Context, branchID uint, limit int) ([]models.Token, error) {
	var tokens []models.Token
	err := r.db.WithContext(ctx).
		Preload("SubService").
		Preload("Desk").
		Preload("AssignedTo").
		Where("branch_id = ? AND status = ?", branchID, models.TokenStatusPending).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&tokens).Error
	return tokens, err
}

// ListPendingByDesk returns the oldest PENDING tokens for one desk
func (r *tokenRepository) ListPendingByDesk(ctx context.Context, deskID uint, limit int) ([]models.Token, error) {
	var tokens []models.Token
	err := r.db.WithContext(ctx).
		Preload("SubService").
		Where("desk_id = ? AND status = ?", deskID, models.TokenStatusPending).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&tokens).Error
	return tokens, err
}

// CountsByStatus returns token counts by status for a branch
func (r *tokenRepository) CountsByStatus(ctx context.Context, branchID uint) (map[string]int64, error) {
	type result struct {
		Status string
		Count  int64
	}
	var results []result

	err := r.db.WithContext(ctx).Model(&models.Token{}).
		Select("status, COUNT(*) as count").
		Where("branch_id = ?", branchID).
		Group("status").
		Find(&results).Error

	counts := map[string]int64{
		models.TokenStatusPending:   0,
		models.TokenStatusServing:   0,
		models.TokenStatusCompleted: 0,
		models.TokenStatusCancelled: 0,
	}
	for _, res := range results {
		counts[res.Status] = res.Count
	}
	return counts, err
}

// ListHistory returns terminal tokens for a branch, newest first, paginated
func (r *tokenRepository) ListHistory(ctx context.Context, branchID uint, offset, limit int) ([]models.Token, int64, error) {
	var tokens []models.Token
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Token{}).
		Where("branch_id = ? AND status IN ?", branchID,
			[]string{models.TokenStatusCompleted, models.TokenStatusCancelled})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("SubService").
		Preload("Desk").
		Preload("AssignedTo").
		Order("completed_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&tokens).Error
	return tokens, total, err
}

// CancelStalePending cancels PENDING tokens created before the cutoff
func (r *tokenRepository) CancelStalePending(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Token{}).
		Where("status = ? AND created_at < ?", models.TokenStatusPending, before).
		Updates(map[string]interface{}{
			"status":       models.TokenStatusCancelled,
			"completed_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}
