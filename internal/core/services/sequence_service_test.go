package services

import (
	"context"
	"errors"
	"testing"

	"queuehub-backend/internal/adapters/persistence/models"
	"queuehub-backend/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

func TestFormatDisplayNumber(t *testing.T) {
	cases := []struct {
		prefix string
		n      int
		want   string
	}{
		{"A", 1, "A001"},
		{"A", 42, "A042"},
		{"B", 999, "B999"},
		{"B", 1000, "B1000"},
		{"VIP", 7, "VIP007"},
	}

	for _, tt := range cases {
		if got := FormatDisplayNumber(tt.prefix, tt.n); got != tt.want {
			t.Errorf("FormatDisplayNumber(%q, %d) = %q, want %q", tt.prefix, tt.n, got, tt.want)
		}
	}
}

func TestMintMapsRepositoryErrors(t *testing.T) {
	cases := []struct {
		name    string
		repoErr error
		wantErr error
	}{
		{"no active series", repositories.ErrNoActiveSeries, ErrNoActiveSeries},
		{"exhausted", repositories.ErrSeriesExhausted, ErrSeriesExhausted},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeSeriesRepo{
				mintFn: func(ctx context.Context, branchID, serviceID uint) (*models.SequenceSeries, error) {
					return nil, tt.repoErr
				},
			}
			svc := NewSequenceService(repo)

			_, err := svc.Mint(context.Background(), 1, 2)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Mint() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMintFormatsResult(t *testing.T) {
	repo := &fakeSeriesRepo{
		mintFn: func(ctx context.Context, branchID, serviceID uint) (*models.SequenceSeries, error) {
			return &models.SequenceSeries{ID: 4, Prefix: "A", CurrentNumber: 6}, nil
		},
	}
	svc := NewSequenceService(repo)

	res, err := svc.Mint(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if res.SeriesID != 4 || res.SequenceNumber != 6 || res.DisplayNumber != "A006" {
		t.Fatalf("Mint() = %+v, want series 4 number 6 display A006", res)
	}
}

func TestCreateSeries(t *testing.T) {
	t.Run("first mint yields start_from", func(t *testing.T) {
		var created *models.SequenceSeries
		repo := &fakeSeriesRepo{
			prefixTakenFn: func(ctx context.Context, branchID uint, prefix string, excludeID uint) (bool, error) {
				return false, nil
			},
			createFn: func(ctx context.Context, series *models.SequenceSeries) error {
				created = series
				return nil
			},
		}
		svc := NewSequenceService(repo)

		got, err := svc.CreateSeries(context.Background(), &CreateSeriesInput{
			BranchID: 1, ServiceID: 2, Prefix: " a ", StartFrom: 50, EndAt: 999,
		})
		if err != nil {
			t.Fatalf("CreateSeries() error = %v", err)
		}
		if created == nil {
			t.Fatal("series was not persisted")
		}
		if got.Prefix != "A" {
			t.Errorf("prefix = %q, want normalized %q", got.Prefix, "A")
		}
		if got.CurrentNumber != 49 {
			t.Errorf("current_number = %d, want start_from-1 = 49", got.CurrentNumber)
		}
	})

	t.Run("range validation", func(t *testing.T) {
		cases := []struct {
			name  string
			input CreateSeriesInput
		}{
			{"empty prefix", CreateSeriesInput{Prefix: "  ", StartFrom: 1, EndAt: 99}},
			{"start below one", CreateSeriesInput{Prefix: "A", StartFrom: 0, EndAt: 99}},
			{"start past end", CreateSeriesInput{Prefix: "A", StartFrom: 100, EndAt: 99}},
		}
		svc := NewSequenceService(&fakeSeriesRepo{})

		for _, tt := range cases {
			if _, err := svc.CreateSeries(context.Background(), &tt.input); !errors.Is(err, ErrInvalidRange) {
				t.Errorf("%s: error = %v, want ErrInvalidRange", tt.name, err)
			}
		}
	})

	t.Run("prefix taken", func(t *testing.T) {
		repo := &fakeSeriesRepo{
			prefixTakenFn: func(ctx context.Context, branchID uint, prefix string, excludeID uint) (bool, error) {
				return true, nil
			},
		}
		svc := NewSequenceService(repo)

		_, err := svc.CreateSeries(context.Background(), &CreateSeriesInput{
			BranchID: 1, ServiceID: 2, Prefix: "A", StartFrom: 1, EndAt: 99,
		})
		if !errors.Is(err, ErrPrefixTaken) {
			t.Fatalf("error = %v, want ErrPrefixTaken", err)
		}
	})

	t.Run("active clash refused", func(t *testing.T) {
		repo := &fakeSeriesRepo{
			prefixTakenFn: func(ctx context.Context, branchID uint, prefix string, excludeID uint) (bool, error) {
				return false, nil
			},
			clashFn: func(ctx context.Context, branchID, serviceID, excludeID uint) (bool, error) {
				return true, nil
			},
		}
		svc := NewSequenceService(repo)

		_, err := svc.CreateSeries(context.Background(), &CreateSeriesInput{
			BranchID: 1, ServiceID: 2, Prefix: "A", StartFrom: 1, EndAt: 99, Active: true,
		})
		if !errors.Is(err, ErrSeriesActiveClash) {
			t.Fatalf("error = %v, want ErrSeriesActiveClash", err)
		}
	})

	t.Run("inactive series skips clash check", func(t *testing.T) {
		repo := &fakeSeriesRepo{
			prefixTakenFn: func(ctx context.Context, branchID uint, prefix string, excludeID uint) (bool, error) {
				return false, nil
			},
			clashFn: func(ctx context.Context, branchID, serviceID, excludeID uint) (bool, error) {
				t.Fatal("clash check must not run for an inactive series")
				return false, nil
			},
			createFn: func(ctx context.Context, series *models.SequenceSeries) error { return nil },
		}
		svc := NewSequenceService(repo)

		if _, err := svc.CreateSeries(context.Background(), &CreateSeriesInput{
			BranchID: 1, ServiceID: 2, Prefix: "A", StartFrom: 1, EndAt: 99,
		}); err != nil {
			t.Fatalf("CreateSeries() error = %v", err)
		}
	})
}

func TestUpdateSeries(t *testing.T) {
	// lockedFn mirrors the real repository: hand the stored row to mutate,
	// persist only when it returns nil.
	newRepo := func(stored models.SequenceSeries) *fakeSeriesRepo {
		return &fakeSeriesRepo{
			lockedFn: func(ctx context.Context, id uint, mutate func(*models.SequenceSeries) error) (*models.SequenceSeries, error) {
				s := stored
				if err := mutate(&s); err != nil {
					return nil, err
				}
				return &s, nil
			},
			prefixTakenFn: func(ctx context.Context, branchID uint, prefix string, excludeID uint) (bool, error) {
				return false, nil
			},
			clashFn: func(ctx context.Context, branchID, serviceID, excludeID uint) (bool, error) {
				return false, nil
			},
		}
	}
	base := models.SequenceSeries{ID: 3, BranchID: 1, ServiceID: 2, Prefix: "A", StartFrom: 1, EndAt: 999, CurrentNumber: 57, Active: true}

	t.Run("editing start_from rewinds current_number", func(t *testing.T) {
		svc := NewSequenceService(newRepo(base))

		start := 50
		got, err := svc.UpdateSeries(context.Background(), 3, &UpdateSeriesInput{StartFrom: &start})
		if err != nil {
			t.Fatalf("UpdateSeries() error = %v", err)
		}
		if got.StartFrom != 50 || got.CurrentNumber != 49 {
			t.Fatalf("start=%d current=%d, want start=50 current=49", got.StartFrom, got.CurrentNumber)
		}
	})

	t.Run("start past end rejected", func(t *testing.T) {
		svc := NewSequenceService(newRepo(base))

		start := 1000
		if _, err := svc.UpdateSeries(context.Background(), 3, &UpdateSeriesInput{StartFrom: &start}); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("error = %v, want ErrInvalidRange", err)
		}
	})

	t.Run("shrinking end below current position rejected", func(t *testing.T) {
		svc := NewSequenceService(newRepo(base))

		end := 40
		if _, err := svc.UpdateSeries(context.Background(), 3, &UpdateSeriesInput{EndAt: &end}); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("error = %v, want ErrInvalidRange", err)
		}
	})

	t.Run("activation with clash rejected", func(t *testing.T) {
		inactive := base
		inactive.Active = false
		repo := newRepo(inactive)
		repo.clashFn = func(ctx context.Context, branchID, serviceID, excludeID uint) (bool, error) {
			return true, nil
		}
		svc := NewSequenceService(repo)

		active := true
		if _, err := svc.UpdateSeries(context.Background(), 3, &UpdateSeriesInput{Active: &active}); !errors.Is(err, ErrSeriesActiveClash) {
			t.Fatalf("error = %v, want ErrSeriesActiveClash", err)
		}
	})

	t.Run("unknown series", func(t *testing.T) {
		repo := &fakeSeriesRepo{
			lockedFn: func(ctx context.Context, id uint, mutate func(*models.SequenceSeries) error) (*models.SequenceSeries, error) {
				return nil, gorm.ErrRecordNotFound
			},
		}
		svc := NewSequenceService(repo)

		if _, err := svc.UpdateSeries(context.Background(), 99, &UpdateSeriesInput{}); !errors.Is(err, ErrSeriesNotFound) {
			t.Fatalf("error = %v, want ErrSeriesNotFound", err)
		}
	})
}
