package routes

import (
	"roomhub/internal/adapters/http/handlers"
	"roomhub/internal/adapters/http/middleware"
	"roomhub/internal/adapters/persistence/repositories"
	"roomhub/internal/config"
	"roomhub/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg)
	userService := services.NewUserService(db)
	branchService := services.NewBranchService(db)
	roomService := services.NewRoomService(db)
	contractService := services.NewContractService(db)
	invoiceService := services.NewInvoiceService(db, cfg.Billing)
	notifyService := services.NewNotificationService(cfg.External.NotifyWebhookURL)
	accessService := services.NewAccessService(db, cfg.External.IdentityServiceURL)
	storageService := services.NewStorageService(cfg.External.StorageServiceURL)
	dashboardService := services.NewDashboardService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	branchHandler := handlers.NewBranchHandler(branchService)
	roomHandler := handlers.NewRoomHandler(roomService)
	contractHandler := handlers.NewContractHandler(contractService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService, notifyService)
	accessHandler := handlers.NewAccessHandler(accessService)
	uploadHandler := handlers.NewUploadHandler(storageService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public + protected)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// Branch routes
	branchRoutes := apiV1.Group("/branches")
	branchRoutes.Use(middleware.AuthMiddleware(cfg))
	setupBranchRoutes(branchRoutes, branchHandler)

	// Room routes
	roomRoutes := apiV1.Group("/rooms")
	roomRoutes.Use(middleware.AuthMiddleware(cfg))
	setupRoomRoutes(roomRoutes, roomHandler, invoiceHandler)

	// Contract routes
	contractRoutes := apiV1.Group("/contracts")
	contractRoutes.Use(middleware.AuthMiddleware(cfg))
	setupContractRoutes(contractRoutes, contractHandler)

	// Invoice routes
	invoiceRoutes := apiV1.Group("/invoices")
	invoiceRoutes.Use(middleware.AuthMiddleware(cfg))
	setupInvoiceRoutes(invoiceRoutes, invoiceHandler)

	// User management routes
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler)

	// Access log routes (admin only)
	accessRoutes := apiV1.Group("/access")
	accessRoutes.Use(middleware.AuthMiddleware(cfg))
	accessRoutes.Use(middleware.AdminOnly())
	setupAccessRoutes(accessRoutes, accessHandler)

	// Upload routes
	uploadRoutes := apiV1.Group("/uploads")
	uploadRoutes.Use(middleware.AuthMiddleware(cfg))
	uploadRoutes.Post("/", uploadHandler.Upload)

	// Dashboard routes
	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Use(middleware.NoCacheHeaders())
	dashboardRoutes.Get("/admin", middleware.AdminOnly(), dashboardHandler.Admin)
	dashboardRoutes.Get("/me", dashboardHandler.Tenant)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes with a stricter rate limit
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupBranchRoutes configures branch routes. Reads are open to any
// authenticated caller; the service layer narrows what each scope
// can see.
func setupBranchRoutes(router fiber.Router, handler *handlers.BranchHandler) {
	router.Get("/", middleware.BranchListCache(), handler.List)
	router.Post("/", middleware.AdminOnly(), handler.Create)
	router.Get("/trash", middleware.AdminOnly(), handler.ListDeleted)
	router.Get("/:id", handler.Get)
	router.Put("/:id", middleware.AdminOnly(), handler.Update)
	router.Delete("/:id", middleware.AdminOnly(), handler.Delete)
	router.Post("/:id/restore", middleware.AdminOnly(), handler.Restore)
	router.Delete("/:id/purge", middleware.AdminOnly(), middleware.StrictRateLimiter(), handler.Purge)
}

// setupRoomRoutes configures room routes
func setupRoomRoutes(router fiber.Router, handler *handlers.RoomHandler, invoiceHandler *handlers.InvoiceHandler) {
	router.Get("/", handler.List)
	router.Post("/", middleware.AdminOnly(), handler.Create)
	router.Get("/trash", middleware.AdminOnly(), handler.ListDeleted)
	router.Get("/:id", handler.Get)
	router.Put("/:id", middleware.AdminOnly(), handler.Update)
	router.Delete("/:id", middleware.AdminOnly(), handler.Delete)
	router.Post("/:id/restore", middleware.AdminOnly(), handler.Restore)
	router.Delete("/:id/purge", middleware.AdminOnly(), middleware.StrictRateLimiter(), handler.Purge)
	router.Get("/:id/invoices/latest", middleware.AdminOnly(), invoiceHandler.LatestForRoom)
}

// setupContractRoutes configures contract routes
func setupContractRoutes(router fiber.Router, handler *handlers.ContractHandler) {
	router.Get("/", handler.List)
	router.Post("/", middleware.AdminOnly(), handler.Create)
	router.Get("/trash", middleware.AdminOnly(), handler.ListDeleted)
	router.Get("/:id", handler.Get)
	router.Put("/:id", middleware.AdminOnly(), handler.Update)
	router.Delete("/:id", middleware.AdminOnly(), handler.Delete)
	router.Post("/:id/activate", middleware.AdminOnly(), handler.Activate)
	router.Post("/:id/terminate", middleware.AdminOnly(), handler.Terminate)
	router.Post("/:id/restore", middleware.AdminOnly(), handler.Restore)
	router.Delete("/:id/purge", middleware.AdminOnly(), middleware.StrictRateLimiter(), handler.Purge)
}

// setupInvoiceRoutes configures invoice routes
func setupInvoiceRoutes(router fiber.Router, handler *handlers.InvoiceHandler) {
	router.Get("/", handler.List)
	router.Post("/", middleware.AdminOnly(), handler.Create)
	router.Get("/trash", middleware.AdminOnly(), handler.ListDeleted)
	router.Get("/:id", handler.Get)
	router.Put("/:id", middleware.AdminOnly(), handler.Update)
	router.Delete("/:id", middleware.AdminOnly(), handler.Delete)
	router.Post("/:id/pay", middleware.AdminOnly(), handler.ConfirmPayment)
	router.Post("/:id/restore", middleware.AdminOnly(), handler.Restore)
	router.Delete("/:id/purge", middleware.AdminOnly(), middleware.StrictRateLimiter(), handler.Purge)
}

// setupUserRoutes configures user management routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", middleware.AdminOnly(), handler.List)
	router.Post("/", middleware.AdminOnly(), handler.Create)
	router.Get("/trash", middleware.AdminOnly(), handler.ListDeleted)
	router.Put("/me/password", handler.ChangePassword)
	router.Get("/:id", handler.Get)
	router.Put("/:id", middleware.AdminOnly(), handler.Update)
	router.Delete("/:id", middleware.AdminOnly(), handler.Delete)
	router.Post("/:id/restore", middleware.AdminOnly(), handler.Restore)
	router.Delete("/:id/purge", middleware.AdminOnly(), middleware.StrictRateLimiter(), handler.Purge)
}

// setupAccessRoutes configures face-identity access log routes
func setupAccessRoutes(router fiber.Router, handler *handlers.AccessHandler) {
	router.Post("/verify", handler.Verify)
	router.Post("/register-face", middleware.StrictRateLimiter(), handler.RegisterFace)
	router.Get("/events", handler.ListEvents)
}
