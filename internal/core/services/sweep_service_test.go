package services

import (
	"context"
	"testing"
	"time"
)

func TestSweepCutoffIsLocalMidnight(t *testing.T) {
	var cutoff time.Time
	repo := &fakeTokenRepo{
		cancelStale: func(ctx context.Context, before time.Time) (int64, error) {
			cutoff = before
			return 2, nil
		},
	}

	NewSweepService(repo).RunNow()

	if cutoff.IsZero() {
		t.Fatal("CancelStalePending was not called")
	}
	if cutoff.Location() != time.Local {
		t.Errorf("cutoff location = %v, want local", cutoff.Location())
	}
	if cutoff.Hour() != 0 || cutoff.Minute() != 0 || cutoff.Second() != 0 {
		t.Errorf("cutoff = %v, want midnight", cutoff)
	}

	now := time.Now()
	if cutoff.After(now) || now.Sub(cutoff) >= 24*time.Hour {
		t.Errorf("cutoff = %v, want today's midnight relative to %v", cutoff, now)
	}
}
