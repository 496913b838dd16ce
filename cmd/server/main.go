package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"queuehub-backend/internal/adapters/http/middleware"
	"queuehub-backend/internal/adapters/http/routes"
	"queuehub-backend/internal/adapters/persistence/models"
	"queuehub-backend/internal/config"

	"github.com/gofiber/fiber/v2"

	_ "queuehub-backend/docs" // Swagger docs
)

// @title QueueHub API
// @version 1.0
// @description Branch queue management and token dispatch API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@queuehub.local

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:3000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed catalog, demo branch and admin account
	if err := config.NewSeeder(db).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}

	// Redis is optional: without it SSE events stay instance-local
	rdb := config.ConnectRedis(cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "QueueHub API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db, redis and cfg for dependency injection)
	wiring := routes.Setup(app, db, rdb, cfg)

	// Cross-instance event bridge
	wiring.Notify.Start()
	defer wiring.Notify.Shutdown()

	// Nightly stale-token sweep; run once at boot to clear leftovers
	if err := wiring.Sweep.Start(); err != nil {
		log.Fatalf("❌ Failed to start sweep scheduler: %v", err)
	}
	defer wiring.Sweep.Stop()
	wiring.Sweep.RunNow()

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
