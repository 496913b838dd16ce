package config

import (
	"log"

	"queuehub-backend/internal/adapters/persistence/models"
	"queuehub-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders. Each seeder is find-or-create so reruns are safe.
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedCatalog(); err != nil {
		log.Printf("⚠️ Catalog seeder skipped: %v", err)
	}
	if err := s.seedDemoBranch(); err != nil {
		log.Printf("⚠️ Branch seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds the default admin account.
// Development/testing only; in production create the admin through a
// secure process.
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.User{
		Username: "admin",
		Email:    "admin@queuehub.local",
		Password: hashedPassword,
		FullName: "System Administrator",
		Role:     models.RoleAdmin,
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedCatalog seeds a starter service catalog
func (s *Seeder) seedCatalog() error {
	catalog := map[string][]string{
		"Accounts":  {"Open Account", "Close Account", "Update Details"},
		"Payments":  {"Deposit", "Withdrawal", "Transfer"},
		"Inquiries": {"Statement Request", "General Inquiry"},
	}

	for serviceName, subs := range catalog {
		var service models.Service
		err := s.db.Where(models.Service{Name: serviceName}).
			Attrs(models.Service{IsActive: true}).
			FirstOrCreate(&service).Error
		if err != nil {
			return err
		}

		for _, subName := range subs {
			var sub models.SubService
			err := s.db.Where(models.SubService{ServiceID: service.ID, Name: subName}).
				Attrs(models.SubService{IsActive: true}).
				FirstOrCreate(&sub).Error
			if err != nil {
				return err
			}
		}
	}

	log.Println("✅ Service catalog seeded")
	return nil
}

// seedDemoBranch seeds one branch with desks and number series so a fresh
// install can issue tokens immediately
func (s *Seeder) seedDemoBranch() error {
	var branch models.Branch
	address := "1 Main Street"
	err := s.db.Where(models.Branch{Code: "HQ"}).
		Attrs(models.Branch{Name: "Head Office", Address: &address, IsActive: true}).
		FirstOrCreate(&branch).Error
	if err != nil {
		return err
	}

	var services []models.Service
	if err := s.db.Where("is_active = ?", true).Find(&services).Error; err != nil {
		return err
	}
	if len(services) == 0 {
		return nil
	}

	if err := s.db.Model(&branch).Association("Services").Replace(services); err != nil {
		return err
	}

	for i := 1; i <= 3; i++ {
		var desk models.Desk
		err := s.db.Where(models.Desk{BranchID: branch.ID, DeskNumber: i}).
			Attrs(models.Desk{Name: "Counter", Status: models.DeskStatusActive}).
			FirstOrCreate(&desk).Error
		if err != nil {
			return err
		}
		// Every seeded desk covers every seeded service
		if err := s.db.Model(&desk).Association("Services").Replace(services); err != nil {
			return err
		}
	}

	prefixes := []string{"A", "B", "C"}
	for i, service := range services {
		if i >= len(prefixes) {
			break
		}
		var series models.SequenceSeries
		err := s.db.Where(models.SequenceSeries{BranchID: branch.ID, ServiceID: service.ID, Prefix: prefixes[i]}).
			Attrs(models.SequenceSeries{
				StartFrom:     1,
				EndAt:         999,
				CurrentNumber: 0,
				Active:        true,
			}).
			FirstOrCreate(&series).Error
		if err != nil {
			return err
		}
	}

	log.Printf("✅ Demo branch seeded: %s (%s)", branch.Name, branch.Code)
	return nil
}
