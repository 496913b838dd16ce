package routes

import (
	"queuehub-backend/internal/adapters/http/handlers"
	"queuehub-backend/internal/adapters/http/middleware"
	"queuehub-backend/internal/adapters/persistence/repositories"
	"queuehub-backend/internal/config"
	"queuehub-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Wiring holds the long-lived services the server lifecycle manages
type Wiring struct {
	Notify *services.NotifyService
	Sweep  *services.SweepService
}

// Setup configures all routes for the application and returns the wiring
// for services main must start and stop.
func Setup(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Wiring {
	// Repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	directoryRepo := repositories.NewDirectoryRepository(db)
	catalogRepo := repositories.NewCatalogRepository(db)
	seriesRepo := repositories.NewSeriesRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)
	shiftRepo := repositories.NewShiftLogRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(userRepo, directoryRepo)
	branchService := services.NewBranchService(directoryRepo, catalogRepo, userRepo)
	catalogService := services.NewCatalogService(catalogRepo)
	sequenceService := services.NewSequenceService(seriesRepo)
	availabilityService := services.NewAvailabilityService(directoryRepo)
	notifyService := services.NewNotifyService(tokenRepo, directoryRepo, shiftRepo, rdb)
	tokenService := services.NewTokenService(
		tokenRepo,
		userRepo,
		directoryRepo,
		catalogRepo,
		sequenceService,
		availabilityService,
		notifyService,
	)
	shiftService := services.NewShiftService(userRepo, directoryRepo, shiftRepo, tokenRepo, notifyService)
	sweepService := services.NewSweepService(tokenRepo)

	// Handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	branchHandler := handlers.NewBranchHandler(branchService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	seriesHandler := handlers.NewSeriesHandler(sequenceService)
	tokenHandler := handlers.NewTokenHandler(tokenService, authService)
	shiftHandler := handlers.NewShiftHandler(shiftService)
	displayHandler := handlers.NewDisplayHandler(branchService, notifyService)

	// ============================================================
	// Public routes
	// ============================================================
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")
	api.Get("/", healthHandler.APIInfo)

	// Auth (stricter rate limit on credential endpoints)
	auth := api.Group("/auth")
	auth.Post("/register", middleware.StrictRateLimiter(), authHandler.Register)
	auth.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)
	auth.Post("/logout-all", middleware.AuthMiddleware(cfg), authHandler.LogoutAll)
	auth.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	// Kiosk: token generation and lookup need no login
	api.Post("/tokens", tokenHandler.Generate)
	api.Get("/tokens/:id", middleware.NoCacheHeaders(), tokenHandler.GetToken)

	// Public directory and catalog reads for kiosks
	api.Get("/branches", branchHandler.ListBranches)
	api.Get("/branches/:id", branchHandler.GetBranch)
	api.Get("/services", middleware.CatalogCache(), catalogHandler.ListServices)
	api.Get("/services/:id", middleware.CatalogCache(), catalogHandler.GetService)
	api.Get("/services/:service_id/sub-services", middleware.CatalogCache(), catalogHandler.ListSubServices)

	// Display boards: snapshots and SSE streams
	display := api.Group("/display")
	display.Get("/events", displayHandler.AllBranchEvents)
	display.Get("/branches/:branch_id", middleware.NoCacheHeaders(), displayHandler.BranchBoard)
	display.Get("/branches/:branch_id/events", displayHandler.BranchEvents)

	// ============================================================
	// Authenticated routes
	// ============================================================
	authed := api.Group("", middleware.AuthMiddleware(cfg))

	// Profile
	authed.Get("/profile", userHandler.GetProfile)
	authed.Put("/profile", userHandler.UpdateProfile)
	authed.Put("/profile/password", userHandler.ChangePassword)

	// Employee shift and serving flow, staff roles only
	staff := authed.Group("", middleware.StaffOnly())
	staff.Post("/shifts/check-in", shiftHandler.CheckIn)
	staff.Post("/shifts/check-out", shiftHandler.CheckOut)
	staff.Post("/shifts/break/start", shiftHandler.StartBreak)
	staff.Post("/shifts/break/end", shiftHandler.EndBreak)
	staff.Post("/tokens/serve-next", tokenHandler.ServeNext)
	staff.Post("/tokens/:id/complete", tokenHandler.Complete)

	// Desk operator views
	staff.Get("/display/desks/:desk_id", middleware.NoCacheHeaders(), displayHandler.DeskBoard)
	staff.Get("/display/desks/:desk_id/events", displayHandler.DeskEvents)
	staff.Get("/desks/:desk_id/staff", branchHandler.ListDeskStaff)
	staff.Get("/desks/:desk_id/shift-log", shiftHandler.DeskShiftLog)
	staff.Get("/desks/:id", branchHandler.GetDesk)
	staff.Get("/branches/:branch_id/desks", branchHandler.ListDesks)

	// Branch operations: manager of the branch or admin.
	// Reset does its own branch-level authorization in the handler.
	authed.Get("/branches/:branch_id/queue/dashboard", middleware.NoCacheHeaders(), tokenHandler.Dashboard)
	authed.Get("/branches/:branch_id/queue/history", tokenHandler.History)
	authed.Post("/branches/:branch_id/queue/reset", tokenHandler.ResetQueue)

	// ============================================================
	// Manager or admin routes
	// ============================================================
	managed := authed.Group("", middleware.ManagerOrAdmin())

	managed.Post("/desks", branchHandler.CreateDesk)
	managed.Put("/desks/:id", branchHandler.UpdateDesk)
	managed.Delete("/desks/:id", branchHandler.DeleteDesk)
	managed.Put("/users/:user_id/desk", branchHandler.AssignEmployee)

	managed.Get("/branches/:branch_id/series", seriesHandler.ListSeries)
	managed.Get("/series/:id", seriesHandler.GetSeries)
	managed.Post("/series", seriesHandler.CreateSeries)
	managed.Put("/series/:id", seriesHandler.UpdateSeries)
	managed.Post("/series/:id/reset", seriesHandler.ResetSeries)
	managed.Delete("/series/:id", seriesHandler.DeleteSeries)

	managed.Get("/branches/:branch_id/manager", branchHandler.GetManager)

	// ============================================================
	// Admin-only routes
	// ============================================================
	admin := authed.Group("", middleware.AdminOnly())

	admin.Post("/branches", branchHandler.CreateBranch)
	admin.Put("/branches/:id", branchHandler.UpdateBranch)
	admin.Delete("/branches/:id", branchHandler.DeleteBranch)
	admin.Put("/branches/:branch_id/manager", branchHandler.SetManager)

	admin.Post("/services", catalogHandler.CreateService)
	admin.Put("/services/:id", catalogHandler.UpdateService)
	admin.Delete("/services/:id", catalogHandler.DeleteService)
	admin.Post("/sub-services", catalogHandler.CreateSubService)
	admin.Put("/sub-services/:id", catalogHandler.UpdateSubService)
	admin.Delete("/sub-services/:id", catalogHandler.DeleteSubService)

	admin.Get("/users", userHandler.ListUsers)
	admin.Get("/users/:id", userHandler.GetUser)
	admin.Put("/users/:id", userHandler.UpdateUser)
	admin.Delete("/users/:id", userHandler.DeleteUser)

	return &Wiring{
		Notify: notifyService,
		Sweep:  sweepService,
	}
}
