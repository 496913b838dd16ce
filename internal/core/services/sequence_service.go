package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"queuehub-backend/internal/adapters/persistence/models"
	"queuehub-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Sequence errors
var (
	ErrNoActiveSeries    = errors.New("no active number series for this service")
	ErrSeriesExhausted   = errors.New("number series is exhausted")
	ErrSeriesNotFound    = errors.New("series not found")
	ErrSeriesActiveClash = errors.New("another series is already active for this service")
	ErrPrefixTaken       = errors.New("prefix is already used by another series in this branch")
	ErrInvalidRange      = errors.New("invalid series range")
)

// SequenceService owns per (branch, service) numbering state. Minting is
// serialized per series by the repository's row lock; two concurrent mints
// never receive the same number.
type SequenceService struct {
	seriesRepo repositories.SeriesRepository
}

// NewSequenceService creates a new sequence service
func NewSequenceService(seriesRepo repositories.SeriesRepository) *SequenceService {
	return &SequenceService{seriesRepo: seriesRepo}
}

// MintResult is the outcome of a successful mint
type MintResult struct {
	SeriesID       uint   `json:"series_id"`
	DisplayNumber  string `json:"display_number"`
	SequenceNumber int    `json:"sequence_number"`
}

// Mint allocates the next number for (branch, service)
func (s *SequenceService) Mint(ctx context.Context, branchID, serviceID uint) (*MintResult, error) {
	series, err := s.seriesRepo.MintNumber(ctx, branchID, serviceID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNoActiveSeries):
			return nil, ErrNoActiveSeries
		case errors.Is(err, repositories.ErrSeriesExhausted):
			return nil, ErrSeriesExhausted
		default:
			return nil, err
		}
	}

	return &MintResult{
		SeriesID:       series.ID,
		DisplayNumber:  FormatDisplayNumber(series.Prefix, series.CurrentNumber),
		SequenceNumber: series.CurrentNumber,
	}, nil
}

// FormatDisplayNumber builds the board-facing number: prefix + 3-digit pad
func FormatDisplayNumber(prefix string, n int) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}

// CreateSeriesInput represents series creation input
type CreateSeriesInput struct {
	BranchID  uint   `json:"branch_id"`
	ServiceID uint   `json:"service_id"`
	Prefix    string `json:"prefix"`
	StartFrom int    `json:"start_from"`
	EndAt     int    `json:"end_at"`
	Active    bool   `json:"active"`
}

// CreateSeries creates a new series. current_number starts at start_from-1
// so the first mint yields exactly start_from.
func (s *SequenceService) CreateSeries(ctx context.Context, input *CreateSeriesInput) (*models.SequenceSeries, error) {
	prefix := strings.ToUpper(strings.TrimSpace(input.Prefix))
	if prefix == "" || input.StartFrom < 1 || input.StartFrom > input.EndAt {
		return nil, ErrInvalidRange
	}

	taken, err := s.seriesRepo.PrefixTaken(ctx, input.BranchID, prefix, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrPrefixTaken
	}

	if input.Active {
		clash, err := s.seriesRepo.HasActiveClash(ctx, input.BranchID, input.ServiceID, 0)
		if err != nil {
			return nil, err
		}
		if clash {
			return nil, ErrSeriesActiveClash
		}
	}

	series := &models.SequenceSeries{
		BranchID:      input.BranchID,
		ServiceID:     input.ServiceID,
		Prefix:        prefix,
		StartFrom:     input.StartFrom,
		EndAt:         input.EndAt,
		CurrentNumber: input.StartFrom - 1,
		Active:        input.Active,
	}
	if err := s.seriesRepo.Create(ctx, series); err != nil {
		return nil, err
	}

	log.Printf("✅ Series created: %s [%d-%d] branch=%d service=%d active=%v",
		prefix, input.StartFrom, input.EndAt, input.BranchID, input.ServiceID, input.Active)
	return series, nil
}

// UpdateSeriesInput represents series edit input
type UpdateSeriesInput struct {
	Prefix    *string `json:"prefix"`
	StartFrom *int    `json:"start_from"`
	EndAt     *int    `json:"end_at"`
	Active    *bool   `json:"active"`
}

// UpdateSeries edits a series. Editing start_from rewinds current_number to
// start_from-1 so the next mint starts exactly at the new range. The whole
// edit runs under the series row lock so it serializes with minting.
func (s *SequenceService) UpdateSeries(ctx context.Context, seriesID uint, input *UpdateSeriesInput) (*models.SequenceSeries, error) {
	series, err := s.seriesRepo.UpdateLocked(ctx, seriesID, func(series *models.SequenceSeries) error {
		if input.Prefix != nil {
			prefix := strings.ToUpper(strings.TrimSpace(*input.Prefix))
			if prefix == "" {
				return ErrInvalidRange
			}
			taken, err := s.seriesRepo.PrefixTaken(ctx, series.BranchID, prefix, series.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrPrefixTaken
			}
			series.Prefix = prefix
		}

		if input.EndAt != nil {
			series.EndAt = *input.EndAt
		}
		if input.StartFrom != nil {
			series.StartFrom = *input.StartFrom
			series.CurrentNumber = *input.StartFrom - 1
		}
		if series.StartFrom < 1 || series.StartFrom > series.EndAt {
			return ErrInvalidRange
		}
		if series.CurrentNumber >= series.EndAt {
			return ErrInvalidRange
		}

		if input.Active != nil {
			if *input.Active && !series.Active {
				clash, err := s.seriesRepo.HasActiveClash(ctx, series.BranchID, series.ServiceID, series.ID)
				if err != nil {
					return err
				}
				if clash {
					return ErrSeriesActiveClash
				}
			}
			series.Active = *input.Active
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSeriesNotFound
		}
		return nil, err
	}
	return series, nil
}

// Reset rewinds a series' current_number to start_from. Compensating
// operation used by the branch-wide queue reset; not reversible.
func (s *SequenceService) Reset(ctx context.Context, seriesID uint) error {
	if _, err := s.seriesRepo.GetByID(ctx, seriesID); err != nil {
		return ErrSeriesNotFound
	}
	return s.seriesRepo.ResetSeries(ctx, seriesID)
}

// GetSeries returns a series by ID
func (s *SequenceService) GetSeries(ctx context.Context, seriesID uint) (*models.SequenceSeries, error) {
	series, err := s.seriesRepo.GetByID(ctx, seriesID)
	if err != nil {
		return nil, ErrSeriesNotFound
	}
	return series, nil
}

// ListByBranch returns all series for a branch
func (s *SequenceService) ListByBranch(ctx context.Context, branchID uint) ([]models.SequenceSeries, error) {
	return s.seriesRepo.ListByBranch(ctx, branchID)
}

// DeleteSeries deletes a series
func (s *SequenceService) DeleteSeries(ctx context.Context, seriesID uint) error {
	if _, err := s.seriesRepo.GetByID(ctx, seriesID); err != nil {
		return ErrSeriesNotFound
	}
	return s.seriesRepo.Delete(ctx, seriesID)
}
