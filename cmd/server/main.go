package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker-api/internal/config"
	"github.com/yukikurage/issue-tracker-api/internal/database"
	"github.com/yukikurage/issue-tracker-api/internal/handlers"
	"github.com/yukikurage/issue-tracker-api/internal/mail"
	"github.com/yukikurage/issue-tracker-api/internal/middleware"
	"github.com/yukikurage/issue-tracker-api/internal/repository"
	"github.com/yukikurage/issue-tracker-api/internal/services"
	"github.com/yukikurage/issue-tracker-api/internal/storage"
	"github.com/yukikurage/issue-tracker-api/internal/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Infrastructure
	tokenMgr := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiryHours)
	store, err := storage.NewLocalStorage(cfg.StorageDir, cfg.StorageBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	mailer := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, tokenMgr, mailer, cfg.FrontendURL)
	projectService := services.NewProjectService(projectRepo, userRepo, issueRepo, attachmentRepo, store, mailer, cfg.FrontendURL)
	issueService := services.NewIssueService(issueRepo, projectRepo, attachmentRepo, store)
	commentService := services.NewCommentService(commentRepo, issueRepo, projectRepo, attachmentRepo, store)
	attachmentService := services.NewAttachmentService(attachmentRepo, userRepo, store)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService)
	issueHandler := handlers.NewIssueHandler(issueService)
	commentHandler := handlers.NewCommentHandler(commentService)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentService)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Issue Tracker API is running",
		})
	})

	// Locally stored uploads are served straight from disk
	r.Static("/uploads", cfg.StorageDir)

	requireAuth := middleware.RequireAuth(tokenMgr)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/profile", requireAuth, authHandler.GetProfile)
			auth.PUT("/profile", requireAuth, authHandler.UpdateProfile)
			auth.POST("/forgotpassword", authHandler.ForgotPassword)
			auth.PUT("/resetpassword/:token", authHandler.ResetPassword)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.POST("/accept-invite/:token", projectHandler.AcceptInvitation)
			projects.GET("/:id", middleware.RequireProjectAccess(), projectHandler.GetProject)
			projects.PUT("/:id", middleware.RequireProjectAccess(), middleware.RequireProjectOwner(), projectHandler.UpdateProject)
			projects.DELETE("/:id", middleware.RequireProjectAccess(), middleware.RequireProjectOwner(), projectHandler.DeleteProject)
			projects.POST("/:id/invite", middleware.RequireProjectAccess(), middleware.RequireProjectOwner(), projectHandler.InviteMember)
			projects.DELETE("/:id/members/:memberId", middleware.RequireProjectAccess(), middleware.RequireProjectOwner(), projectHandler.RemoveMember)
			projects.GET("/:id/stats", middleware.RequireProjectAccess(), projectHandler.GetProjectStats)
			projects.POST("/:id/issues", middleware.RequireProjectAccess(), issueHandler.CreateIssue)
			projects.GET("/:id/issues", middleware.RequireProjectAccess(), issueHandler.ListProjectIssues)
		}

		// Issue routes (protected)
		issues := api.Group("/issues")
		issues.Use(requireAuth)
		{
			issues.GET("/assigned-to-me", issueHandler.AssignedToMe)
			issues.GET("/reported-by-me", issueHandler.ReportedByMe)
			issues.GET("/:id", middleware.RequireIssueAccess(), issueHandler.GetIssue)
			issues.PUT("/:id", middleware.RequireIssueAccess(), issueHandler.UpdateIssue)
			issues.DELETE("/:id", middleware.RequireIssueAccess(), issueHandler.DeleteIssue)
			issues.PUT("/:id/assign", middleware.RequireIssueAccess(), issueHandler.AssignIssue)
			issues.PUT("/:id/status", middleware.RequireIssueAccess(), issueHandler.UpdateStatus)
			issues.POST("/:id/comments", middleware.RequireIssueAccess(), commentHandler.CreateComment)
			issues.GET("/:id/comments", middleware.RequireIssueAccess(), commentHandler.ListIssueComments)
		}

		// Comment routes (protected)
		comments := api.Group("/comments")
		comments.Use(requireAuth)
		{
			comments.GET("/my-comments", commentHandler.MyComments)
			comments.GET("/:id", middleware.RequireCommentAccess(), commentHandler.GetComment)
			comments.PUT("/:id", middleware.RequireCommentAccess(), commentHandler.UpdateComment)
			comments.DELETE("/:id", middleware.RequireCommentAccess(), commentHandler.DeleteComment)
		}

		// Attachment routes (protected)
		attachments := api.Group("/attachments")
		attachments.Use(requireAuth)
		{
			attachments.POST("", attachmentHandler.Upload)
			attachments.GET("/my-attachments", attachmentHandler.MyAttachments)
			attachments.DELETE("/:id", attachmentHandler.Delete)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
