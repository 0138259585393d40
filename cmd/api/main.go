package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Dexter0900/TaskEngineX/internal/api/handlers"
	"github.com/Dexter0900/TaskEngineX/internal/api/middleware"
	"github.com/Dexter0900/TaskEngineX/internal/config"
	"github.com/Dexter0900/TaskEngineX/internal/cron"
	"github.com/Dexter0900/TaskEngineX/internal/db"
	"github.com/Dexter0900/TaskEngineX/internal/email"
	"github.com/Dexter0900/TaskEngineX/internal/notification"
	"github.com/Dexter0900/TaskEngineX/internal/queue"
	"github.com/Dexter0900/TaskEngineX/internal/repository"
	"github.com/Dexter0900/TaskEngineX/internal/seed"
	"github.com/Dexter0900/TaskEngineX/internal/service"
	"github.com/Dexter0900/TaskEngineX/internal/socket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := db.RunMigrations(cfg.DatabaseURL, "./internal/db/migrations"); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	postgres, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to PostgreSQL: %v", err)
	}
	defer postgres.Close()

	repos := repository.NewRepositories(postgres.Pool)

	redisDB, err := db.NewRedisDB(cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisDB.Close()

	// Outbound mail goes through the Redis-backed queue so SMTP latency
	// never blocks a request.
	sender := email.NewSender(cfg)
	mailQueue := queue.NewEmailQueue(redisDB.Client, sender)
	mailQueue.Start(2)
	defer mailQueue.Stop()

	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)
	log.Println("🔌 WebSocket hub initialized")

	notifier := notification.NewService(repos.Notification, broadcaster)

	services := service.NewServices(service.ServiceDeps{
		Repos:        repos,
		Config:       cfg,
		Notification: notifier,
		Mailer:       mailQueue,
	})

	if cfg.Environment != "production" {
		if err := seed.Run(context.Background(), repos); err != nil {
			log.Printf("⚠️ Seeding failed: %v", err)
		}
	}

	h := handlers.NewHandlers(services)
	wsHandler := socket.NewHandler(hub, services.Auth, services.Permission)

	scheduler := cron.NewScheduler(notifier, repos)
	scheduler.Start()
	defer scheduler.Stop()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"ws_clients": hub.ConnectedClients(),
		})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
			auth.POST("/magic-link", h.Auth.RequestMagicLink)
			auth.POST("/magic-link/verify", h.Auth.VerifyMagicLink)
		}

		api.GET("/ws", wsHandler.HandleWebSocket)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(services.Auth))
		{
			users := protected.Group("/users")
			{
				users.GET("/me", h.User.Me)
				users.PUT("/me", h.User.UpdateProfile)
				users.PUT("/me/password", h.User.ChangePassword)
				users.GET("/search", h.User.Search)
			}

			tasks := protected.Group("/tasks")
			{
				tasks.GET("", h.Task.List)
				tasks.POST("", h.Task.Create)
				tasks.GET("/stats", h.Task.Stats)
				tasks.GET("/:id", h.Task.Get)
				tasks.PUT("/:id", h.Task.Update)
				tasks.DELETE("/:id", h.Task.Delete)
				tasks.PATCH("/:id/toggle", h.Task.Toggle)
				tasks.POST("/:id/mark-complete", h.Task.MarkComplete)
				tasks.POST("/:id/approval", h.Task.Approval)

				tasks.GET("/:id/subtasks", h.Subtask.List)
				tasks.POST("/:id/subtasks", h.Subtask.Create)
				tasks.PUT("/:id/subtasks/:subtaskId", h.Subtask.Update)
				tasks.PATCH("/:id/subtasks/:subtaskId/toggle", h.Subtask.Toggle)
				tasks.DELETE("/:id/subtasks/:subtaskId", h.Subtask.Delete)
			}

			workspaces := protected.Group("/workspaces")
			{
				workspaces.GET("", h.Workspace.List)
				workspaces.POST("", h.Workspace.Create)
			}

			// Everything below runs behind the membership guard chain.
			workspace := protected.Group("/workspaces/:workspaceId")
			workspace.Use(middleware.WorkspaceMember(services.Permission))
			{
				workspace.GET("", h.Workspace.Get)
				workspace.GET("/members", h.Workspace.ListMembers)
				workspace.GET("/tasks", h.Task.ListInWorkspace)
				workspace.GET("/tasks/stats", h.Task.WorkspaceStats)
				workspace.GET("/projects", h.Project.List)

				admin := workspace.Group("")
				admin.Use(middleware.WorkspaceAdmin(services.Permission))
				{
					admin.PUT("", h.Workspace.Update)
					admin.DELETE("", h.Workspace.Delete)
					admin.POST("/members", h.Workspace.AddMember)
					admin.PUT("/members/:userId", h.Workspace.UpdateMemberRole)
					admin.DELETE("/members/:userId", h.Workspace.RemoveMember)
					admin.DELETE("/projects/:projectId", h.Project.Delete)
					admin.POST("/projects/:projectId/assigners", h.Project.AddAssigner)
					admin.DELETE("/projects/:projectId/members/:userId", h.Project.RemoveMember)
				}

				// Project member management follows the workspace role, not
				// project membership: an assigner staffs projects they do not
				// belong to yet.
				assigner := workspace.Group("")
				assigner.Use(middleware.WorkspaceAssigner(services.Permission))
				{
					assigner.POST("/tasks", h.Task.CreateInWorkspace)
					assigner.POST("/projects", h.Project.Create)
					assigner.POST("/projects/:projectId/workers", h.Project.AddWorker)
				}

				project := workspace.Group("/projects/:projectId")
				project.Use(middleware.ProjectMember(services.Permission))
				{
					project.GET("", h.Project.Get)
					project.GET("/members", h.Project.ListMembers)

					projectAssigner := project.Group("")
					projectAssigner.Use(middleware.ProjectAssigner(services.Permission))
					{
						projectAssigner.PUT("", h.Project.Update)
						projectAssigner.POST("/tasks", h.Task.CreateInWorkspace)
					}
				}
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/count", h.Notification.UnreadCount)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.DELETE("/:id", h.Notification.Delete)
			}
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
