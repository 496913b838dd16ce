package services

import (
	"context"
	"log"
	"time"

	"queuehub-backend/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// SweepService runs the nightly maintenance job: tokens still PENDING from
// a previous day are cancelled so stale entries never surface on the next
// day's displays.
type SweepService struct {
	tokenRepo repositories.TokenRepository
	cron      *cron.Cron
}

// NewSweepService creates a new sweep service
func NewSweepService(tokenRepo repositories.TokenRepository) *SweepService {
	return &SweepService{
		tokenRepo: tokenRepo,
		cron:      cron.New(),
	}
}

// Start schedules the nightly sweep shortly after midnight
func (s *SweepService) Start() error {
	if _, err := s.cron.AddFunc("5 0 * * *", s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	log.Println("🚀 SweepService started (nightly at 00:05)")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *SweepService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 SweepService stopped")
}

// RunNow triggers the sweep immediately, used at startup so a restart
// mid-day still clears yesterday's leftovers.
func (s *SweepService) RunNow() {
	s.sweep()
}

func (s *SweepService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Local midnight, not UTC: the cron fires in server local time and the
	// cutoff has to match it.
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	cancelled, err := s.tokenRepo.CancelStalePending(ctx, midnight)
	if err != nil {
		log.Printf("❌ Nightly sweep failed: %v", err)
		return
	}
	if cancelled > 0 {
		log.Printf("✅ Nightly sweep cancelled %d stale tokens", cancelled)
	}
}
