package repositories

// Integration tests for the locking paths of the series and token
// repositories. They need a real MySQL because the queries use
// FOR UPDATE / SKIP LOCKED; set TEST_DB_DSN to run them, e.g.
//
//	TEST_DB_DSN="root:root@tcp(127.0.0.1:3306)/queuehub_test?charset=utf8mb4&parseTime=True&loc=Local" go test ./...

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"queuehub-backend/internal/adapters/persistence/models"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is required for integration tests")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Branch{},
		&models.Service{},
		&models.SubService{},
		&models.Desk{},
		&models.User{},
		&models.SequenceSeries{},
		&models.Token{},
	)
	if err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// queueFixture is one isolated branch with a service, a desk, an employee
// and a sequence series. Codes carry a random suffix so tests never collide
// on unique indexes.
type queueFixture struct {
	branch   models.Branch
	service  models.Service
	sub      models.SubService
	desk     models.Desk
	employee models.User
	series   models.SequenceSeries
}

func seedQueue(t *testing.T, db *gorm.DB, startFrom, endAt, current int) *queueFixture {
	t.Helper()

	suffix := uuid.NewString()[:8]
	fx := &queueFixture{}

	fx.branch = models.Branch{Code: "BR-" + suffix, Name: "Branch " + suffix, IsActive: true}
	if err := db.Create(&fx.branch).Error; err != nil {
		t.Fatalf("seed branch: %v", err)
	}

	fx.service = models.Service{Code: "SV-" + suffix, Name: "Service " + suffix, IsActive: true}
	if err := db.Create(&fx.service).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}

	fx.sub = models.SubService{ServiceID: fx.service.ID, Code: "SUB-" + suffix, Name: "Sub " + suffix, IsActive: true}
	if err := db.Create(&fx.sub).Error; err != nil {
		t.Fatalf("seed sub-service: %v", err)
	}

	fx.desk = models.Desk{BranchID: fx.branch.ID, DeskNumber: 1, Name: "Desk " + suffix, Status: models.DeskStatusActive}
	if err := db.Create(&fx.desk).Error; err != nil {
		t.Fatalf("seed desk: %v", err)
	}

	fx.employee = models.User{
		Username:       "emp-" + suffix,
		Email:          suffix + "@example.test",
		Password:       "irrelevant",
		FullName:       "Employee " + suffix,
		Role:           models.RoleEmployee,
		BranchID:       &fx.branch.ID,
		AssignedDeskID: &fx.desk.ID,
		IsActive:       true,
	}
	if err := db.Create(&fx.employee).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}

	fx.series = models.SequenceSeries{
		BranchID:      fx.branch.ID,
		ServiceID:     fx.service.ID,
		Prefix:        "A",
		StartFrom:     startFrom,
		EndAt:         endAt,
		CurrentNumber: current,
		Active:        true,
	}
	if err := db.Create(&fx.series).Error; err != nil {
		t.Fatalf("seed series: %v", err)
	}

	return fx
}

func (fx *queueFixture) newPendingToken(t *testing.T, db *gorm.DB, seq int, createdAt time.Time) *models.Token {
	t.Helper()

	token := &models.Token{
		DisplayNumber:  fmt.Sprintf("A%03d", seq),
		SequenceNumber: seq,
		Status:         models.TokenStatusPending,
		BranchID:       fx.branch.ID,
		ServiceID:      fx.service.ID,
		SubServiceID:   fx.sub.ID,
		DeskID:         &fx.desk.ID,
		CreatedAt:      createdAt,
	}
	if err := db.Create(token).Error; err != nil {
		t.Fatalf("seed token: %v", err)
	}
	return token
}

func TestMintNumberIncrements(t *testing.T) {
	db := setupTestDB(t)
	fx := seedQueue(t, db, 1, 999, 5)
	repo := NewSeriesRepository(db)

	series, err := repo.MintNumber(context.Background(), fx.branch.ID, fx.service.ID)
	if err != nil {
		t.Fatalf("MintNumber() error = %v", err)
	}
	if series.CurrentNumber != 6 {
		t.Errorf("CurrentNumber = %d, want 6", series.CurrentNumber)
	}

	stored, err := repo.GetByID(context.Background(), fx.series.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.CurrentNumber != 6 {
		t.Errorf("persisted CurrentNumber = %d, want 6", stored.CurrentNumber)
	}
}

func TestMintNumberErrors(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSeriesRepository(db)

	t.Run("exhausted series", func(t *testing.T) {
		fx := seedQueue(t, db, 1, 10, 10)

		_, err := repo.MintNumber(context.Background(), fx.branch.ID, fx.service.ID)
		if !errors.Is(err, ErrSeriesExhausted) {
			t.Fatalf("error = %v, want ErrSeriesExhausted", err)
		}

		stored, err := repo.GetByID(context.Background(), fx.series.ID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if stored.CurrentNumber != 10 {
			t.Errorf("CurrentNumber after refusal = %d, want 10", stored.CurrentNumber)
		}
	})

	t.Run("no active series", func(t *testing.T) {
		fx := seedQueue(t, db, 1, 999, 0)
		if err := db.Model(&models.SequenceSeries{}).Where("id = ?", fx.series.ID).Update("active", false).Error; err != nil {
			t.Fatalf("deactivate series: %v", err)
		}

		_, err := repo.MintNumber(context.Background(), fx.branch.ID, fx.service.ID)
		if !errors.Is(err, ErrNoActiveSeries) {
			t.Fatalf("error = %v, want ErrNoActiveSeries", err)
		}
	})
}

func TestMintNumberConcurrent(t *testing.T) {
	db := setupTestDB(t)
	fx := seedQueue(t, db, 1, 999, 0)
	repo := NewSeriesRepository(db)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan int, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			series, err := repo.MintNumber(context.Background(), fx.branch.ID, fx.service.ID)
			if err != nil {
				errs <- err
				return
			}
			results <- series.CurrentNumber
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent MintNumber() error = %v", err)
	}

	seen := make(map[int]bool)
	for n := range results {
		if seen[n] {
			t.Errorf("number %d minted twice", n)
		}
		seen[n] = true
	}
	if len(seen) != workers {
		t.Errorf("distinct numbers = %d, want %d", len(seen), workers)
	}

	stored, err := repo.GetByID(context.Background(), fx.series.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.CurrentNumber != workers {
		t.Errorf("final CurrentNumber = %d, want %d", stored.CurrentNumber, workers)
	}
}

func TestClaimOldestPendingFIFO(t *testing.T) {
	db := setupTestDB(t)
	fx := seedQueue(t, db, 1, 999, 0)
	repo := NewTokenRepository(db)

	// Three tokens: t1 is oldest; t2 and t3 share a created_at so the id
	// decides their order.
	base := time.Now().Add(-10 * time.Minute).Truncate(time.Second)
	t1 := fx.newPendingToken(t, db, 1, base)
	t2 := fx.newPendingToken(t, db, 2, base.Add(time.Minute))
	t3 := fx.newPendingToken(t, db, 3, base.Add(time.Minute))

	claimed, err := repo.ClaimOldestPending(context.Background(), fx.desk.ID, fx.employee.ID)
	if err != nil {
		t.Fatalf("ClaimOldestPending() error = %v", err)
	}
	if claimed.ID != t1.ID {
		t.Errorf("first claim = token %d, want oldest %d", claimed.ID, t1.ID)
	}
	if claimed.Status != models.TokenStatusServing {
		t.Errorf("claimed status = %q, want SERVING", claimed.Status)
	}
	if claimed.AssignedToID == nil || *claimed.AssignedToID != fx.employee.ID {
		t.Errorf("AssignedToID = %v, want %d", claimed.AssignedToID, fx.employee.ID)
	}
	if claimed.StartedAt == nil {
		t.Error("StartedAt not set on claim")
	}

	if _, err := repo.Complete(context.Background(), claimed.ID); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	claimed, err = repo.ClaimOldestPending(context.Background(), fx.desk.ID, fx.employee.ID)
	if err != nil {
		t.Fatalf("second ClaimOldestPending() error = %v", err)
	}
	if claimed.ID != t2.ID {
		t.Errorf("second claim = token %d, want lower id %d over %d", claimed.ID, t2.ID, t3.ID)
	}
}

func TestClaimOldestPendingGuards(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepository(db)

	t.Run("empty desk", func(t *testing.T) {
		fx := seedQueue(t, db, 1, 999, 0)

		_, err := repo.ClaimOldestPending(context.Background(), fx.desk.ID, fx.employee.ID)
		if !errors.Is(err, ErrNoPendingToken) {
			t.Fatalf("error = %v, want ErrNoPendingToken", err)
		}
	})

	t.Run("employee already serving", func(t *testing.T) {
		fx := seedQueue(t, db, 1, 999, 0)
		fx.newPendingToken(t, db, 1, time.Now().Add(-time.Minute))
		fx.newPendingToken(t, db, 2, time.Now())

		if _, err := repo.ClaimOldestPending(context.Background(), fx.desk.ID, fx.employee.ID); err != nil {
			t.Fatalf("first claim error = %v", err)
		}

		_, err := repo.ClaimOldestPending(context.Background(), fx.desk.ID, fx.employee.ID)
		if !errors.Is(err, ErrEmployeeBusy) {
			t.Fatalf("second claim error = %v, want ErrEmployeeBusy", err)
		}
	})
}

func TestClaimOldestPendingConcurrent(t *testing.T) {
	db := setupTestDB(t)
	fx := seedQueue(t, db, 1, 999, 0)
	repo := NewTokenRepository(db)

	// Second employee on the same desk
	suffix := uuid.NewString()[:8]
	other := models.User{
		Username:       "emp2-" + suffix,
		Email:          suffix + "2@example.test",
		Password:       "irrelevant",
		Role:           models.RoleEmployee,
		BranchID:       &fx.branch.ID,
		AssignedDeskID: &fx.desk.ID,
		IsActive:       true,
	}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("seed second employee: %v", err)
	}

	fx.newPendingToken(t, db, 1, time.Now().Add(-2*time.Minute))
	fx.newPendingToken(t, db, 2, time.Now().Add(-time.Minute))

	var wg sync.WaitGroup
	results := make(chan uint, 2)
	errs := make(chan error, 2)

	for _, employeeID := range []uint{fx.employee.ID, other.ID} {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			token, err := repo.ClaimOldestPending(context.Background(), fx.desk.ID, id)
			if err != nil {
				errs <- err
				return
			}
			results <- token.ID
		}(employeeID)
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent claim error = %v", err)
	}

	seen := make(map[uint]bool)
	for id := range results {
		if seen[id] {
			t.Errorf("token %d claimed by both employees", id)
		}
		seen[id] = true
	}
	if len(seen) != 2 {
		t.Errorf("distinct claimed tokens = %d, want 2", len(seen))
	}
}

func TestCompleteGuardsStatus(t *testing.T) {
	db := setupTestDB(t)
	fx := seedQueue(t, db, 1, 999, 0)
	repo := NewTokenRepository(db)

	fx.newPendingToken(t, db, 1, time.Now())
	claimed, err := repo.ClaimOldestPending(context.Background(), fx.desk.ID, fx.employee.ID)
	if err != nil {
		t.Fatalf("claim error = %v", err)
	}

	done, err := repo.Complete(context.Background(), claimed.ID)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if done.Status != models.TokenStatusCompleted {
		t.Errorf("status = %q, want COMPLETED", done.Status)
	}
	if done.CompletedAt == nil {
		t.Error("CompletedAt not set")
	}

	if _, err := repo.Complete(context.Background(), claimed.ID); !errors.Is(err, ErrTokenNotServing) {
		t.Fatalf("second Complete() error = %v, want ErrTokenNotServing", err)
	}

	pending := fx.newPendingToken(t, db, 2, time.Now())
	if _, err := repo.Complete(context.Background(), pending.ID); !errors.Is(err, ErrTokenNotServing) {
		t.Fatalf("Complete() on PENDING error = %v, want ErrTokenNotServing", err)
	}
}

func TestResetBranchCancelsAndRewinds(t *testing.T) {
	db := setupTestDB(t)
	fx := seedQueue(t, db, 5, 999, 42)
	repo := NewTokenRepository(db)

	fx.newPendingToken(t, db, 40, time.Now().Add(-3*time.Minute))
	fx.newPendingToken(t, db, 41, time.Now().Add(-2*time.Minute))
	fx.newPendingToken(t, db, 42, time.Now().Add(-time.Minute))
	serving, err := repo.ClaimOldestPending(context.Background(), fx.desk.ID, fx.employee.ID)
	if err != nil {
		t.Fatalf("claim error = %v", err)
	}

	cancelled, err := repo.ResetBranch(context.Background(), fx.branch.ID)
	if err != nil {
		t.Fatalf("ResetBranch() error = %v", err)
	}
	if cancelled != 2 {
		t.Errorf("cancelled = %d, want 2", cancelled)
	}

	var pendingLeft int64
	if err := db.Model(&models.Token{}).
		Where("branch_id = ? AND status = ?", fx.branch.ID, models.TokenStatusPending).
		Count(&pendingLeft).Error; err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if pendingLeft != 0 {
		t.Errorf("pending tokens after reset = %d, want 0", pendingLeft)
	}

	kept, err := repo.GetByID(context.Background(), serving.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if kept.Status != models.TokenStatusServing {
		t.Errorf("serving token status after reset = %q, want SERVING", kept.Status)
	}

	var series models.SequenceSeries
	if err := db.First(&series, fx.series.ID).Error; err != nil {
		t.Fatalf("reload series: %v", err)
	}
	if series.CurrentNumber != series.StartFrom {
		t.Errorf("CurrentNumber after reset = %d, want start_from %d", series.CurrentNumber, series.StartFrom)
	}
}

func TestUpdateLockedPersistsOrAborts(t *testing.T) {
	db := setupTestDB(t)
	fx := seedQueue(t, db, 1, 999, 7)
	repo := NewSeriesRepository(db)

	updated, err := repo.UpdateLocked(context.Background(), fx.series.ID, func(series *models.SequenceSeries) error {
		series.EndAt = 500
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateLocked() error = %v", err)
	}
	if updated.EndAt != 500 {
		t.Errorf("EndAt = %d, want 500", updated.EndAt)
	}

	abort := errors.New("abort")
	if _, err := repo.UpdateLocked(context.Background(), fx.series.ID, func(series *models.SequenceSeries) error {
		series.EndAt = 100
		return abort
	}); !errors.Is(err, abort) {
		t.Fatalf("UpdateLocked() error = %v, want abort sentinel", err)
	}

	stored, err := repo.GetByID(context.Background(), fx.series.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.EndAt != 500 {
		t.Errorf("EndAt after aborted edit = %d, want 500", stored.EndAt)
	}
}

func TestCancelStalePendingCutoff(t *testing.T) {
	db := setupTestDB(t)
	fx := seedQueue(t, db, 1, 999, 0)
	repo := NewTokenRepository(db)

	stale := fx.newPendingToken(t, db, 1, time.Now().Add(-48*time.Hour))
	fresh := fx.newPendingToken(t, db, 2, time.Now())

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	cancelled, err := repo.CancelStalePending(context.Background(), midnight)
	if err != nil {
		t.Fatalf("CancelStalePending() error = %v", err)
	}
	if cancelled < 1 {
		t.Errorf("cancelled = %d, want at least 1", cancelled)
	}

	reloaded, err := repo.GetByID(context.Background(), stale.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if reloaded.Status != models.TokenStatusCancelled {
		t.Errorf("stale token status = %q, want CANCELLED", reloaded.Status)
	}

	reloaded, err = repo.GetByID(context.Background(), fresh.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if reloaded.Status != models.TokenStatusPending {
		t.Errorf("fresh token status = %q, want PENDING", reloaded.Status)
	}
}
