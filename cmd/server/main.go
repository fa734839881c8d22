package main

import (
	"log"
	"time"

	"expert_panel_go/config"
	"expert_panel_go/db"
	"expert_panel_go/handlers"
	"expert_panel_go/middleware"
	"expert_panel_go/models"
	"expert_panel_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Session{},
		&models.Specialty{},
		&models.Case{},
		&models.Invitation{},
		&models.Conversation{},
		&models.Message{},
		&models.CalendarEvent{},
		&models.Document{},
		&models.InviteLog{},
		&models.Lead{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Wire external collaborators
	services.InitializeMailer(cfg)
	services.InitializeStorage(cfg)
	services.InitializeAuthProvider(cfg)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Public routes (no authentication required)
	e.POST("/auth/token", handlers.ExchangeToken, middleware.TokenExchangeRateLimiter.Middleware())
	e.POST("/public/contact", handlers.SubmitContactForm, middleware.PublicFormRateLimiter.Middleware())
	e.POST("/public/join-panel", handlers.SubmitJoinPanelForm, middleware.PublicFormRateLimiter.Middleware())
	e.GET("/public/specialties", handlers.GetSpecialties)

	// Protected routes
	protected := e.Group("")
	protected.Use(middleware.RequireAuth())
	{
		protected.POST("/logout", handlers.Logout)
		protected.GET("/api/me", handlers.GetCurrentProfile)
		protected.PUT("/api/profiles/:id", handlers.UpdateProfile)
		protected.GET("/api/profiles/:id", handlers.GetProfile)

		// Messaging (both sides of the marketplace)
		protected.GET("/api/conversations", handlers.GetConversations)
		protected.POST("/api/conversations", handlers.StartConversation)
		protected.GET("/api/conversations/:id/messages", handlers.GetMessages)
		protected.POST("/api/conversations/:id/messages", handlers.SendMessage)
		protected.PUT("/api/conversations/:id/read", handlers.MarkConversationRead)
		protected.GET("/api/messages/unread-count", handlers.GetUnreadCount)
		protected.GET("/ws/unread", handlers.UnreadFeedSocket)

		// Calendar (handler-level owner/internal checks)
		protected.POST("/api/calendar-events", handlers.CreateCalendarEvent)
		protected.GET("/api/calendar-events", handlers.GetCalendarEvents)
		protected.PUT("/api/calendar-events/:id", handlers.UpdateCalendarEvent)
		protected.DELETE("/api/calendar-events/:id", handlers.DeleteCalendarEvent)
		protected.GET("/api/calendar-events/:id/ics", handlers.DownloadCalendarEventICS)

		// Documents (handler-level owner/internal checks)
		protected.POST("/api/documents", handlers.UploadDocument)
		protected.GET("/api/documents", handlers.GetDocuments)
		protected.GET("/api/documents/download", handlers.DownloadDocument)
		protected.DELETE("/api/documents/:id", handlers.DeleteDocument)

		// Expert-only routes
		expertRoutes := protected.Group("")
		expertRoutes.Use(middleware.RequireRole(models.RoleExpert))
		{
			expertRoutes.GET("/api/my-invitations", handlers.GetMyInvitations)
			expertRoutes.PUT("/api/invitations/:id/respond", handlers.RespondToInvitation)
		}

		// Case detail is readable by invited/assigned experts too;
		// the handler scopes what experts can see.
		protected.GET("/api/cases/:id", handlers.GetCase)

		// Internal team routes (staff and admin)
		internal := protected.Group("")
		internal.Use(middleware.RequireRole(models.RoleStaff, models.RoleAdmin))
		{
			internal.GET("/api/experts", handlers.GetExperts)

			internal.POST("/api/cases", handlers.CreateCase)
			internal.GET("/api/cases", handlers.GetCases)
			internal.PUT("/api/cases/:id/status", handlers.UpdateCaseStatus)
			internal.PUT("/api/cases/:id/expert", handlers.AssignExpert)
			internal.DELETE("/api/cases/:id/expert", handlers.RemoveAssignedExpert)
			internal.GET("/api/cases/:id/invited-experts", handlers.GetInvitedExperts)
			internal.POST("/api/cases/:id/invitations", handlers.InviteExpertToCase)

			internal.POST("/api/notify/assigned-expert", handlers.NotifyAssignedExpert)
			internal.POST("/api/notify/case-response", handlers.NotifyCaseResponse)
			internal.POST("/api/notify/calendar-event", handlers.NotifyCalendarEvent)
		}

		// Admin-only routes
		adminRoutes := protected.Group("")
		adminRoutes.Use(middleware.RequireRole(models.RoleAdmin))
		{
			adminRoutes.POST("/api/admin/invite", handlers.InviteMember)
			adminRoutes.DELETE("/api/admin/experts/:id", handlers.DeleteExpert)
			adminRoutes.DELETE("/api/cases/:id", handlers.DeleteCase)
			adminRoutes.PUT("/api/cases/:id/manager", handlers.AssignManager)
			adminRoutes.GET("/api/cases/export", handlers.ExportCases)
			adminRoutes.POST("/api/notify/case-manager", handlers.NotifyCaseManager)

			adminRoutes.POST("/api/specialties", handlers.CreateSpecialty)
			adminRoutes.PUT("/api/specialties/:id", handlers.UpdateSpecialty)
			adminRoutes.DELETE("/api/specialties/:id", handlers.DeleteSpecialty)
		}
	}

	// Start background cleanup jobs (runs every hour)
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := services.CleanupExpiredSessions(db.DB); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
