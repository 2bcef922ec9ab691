package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newinfo363-byte/groupchat/internal/config"
	"github.com/newinfo363-byte/groupchat/internal/database"
	"github.com/newinfo363-byte/groupchat/internal/handler"
	"github.com/newinfo363-byte/groupchat/internal/middleware"
	"github.com/newinfo363-byte/groupchat/internal/repository"
	"github.com/newinfo363-byte/groupchat/internal/service"
	"github.com/newinfo363-byte/groupchat/internal/storage/s3"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()

	// Database
	db, err := database.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations applied successfully")

	// Object store
	store, err := s3.New(s3.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		UseSSL:    cfg.MinioUseSSL,
		Bucket:    cfg.MinioBucket,
		PublicURL: cfg.MinioPublicURL,
	})
	if err != nil {
		log.Fatalf("Failed to init object store: %v", err)
	}
	if err := store.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("Failed to ensure bucket: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Services
	authSvc := service.NewAuthService(userRepo, sessionRepo, cfg.JWTSecret)
	resolver := service.NewResolver(roleRepo, requestRepo, profileRepo)
	decisionSvc := service.NewDecisionService(requestRepo, roleRepo)
	wsHub := service.NewWSHub()
	feed := service.NewFeed(messageRepo, profileRepo, wsHub)
	if err := feed.Load(context.Background()); err != nil {
		log.Fatalf("Failed to load message feed: %v", err)
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BodyLimit:    10 * 1024 * 1024, // audio uploads
	})

	app.Use(recover.New())
	app.Use(middleware.Logger())

	// Health
	healthH := handler.NewHealthHandler(db)
	app.Get("/health", healthH.Health)
	app.Get("/ready", healthH.Ready)

	// API v1
	v1 := app.Group("/api/v1")

	// Auth (public)
	authH := handler.NewAuthHandler(authSvc)
	auth := v1.Group("/auth")
	auth.Post("/register", middleware.RateLimit(5, time.Minute), authH.Register)
	auth.Post("/login", middleware.RateLimit(10, time.Minute), authH.Login)
	auth.Post("/refresh", middleware.RateLimit(20, time.Minute), authH.Refresh)
	auth.Post("/logout", authH.Logout)

	// JWT-protected routes
	protected := v1.Group("", middleware.Auth(cfg.JWTSecret))

	// View resolution
	viewH := handler.NewViewHandler(resolver)
	protected.Get("/view", viewH.Resolve)

	// Access requests
	requestH := handler.NewRequestHandler(requestRepo)
	protected.Post("/requests", requestH.Submit)
	protected.Get("/requests/me", requestH.Me)

	// Profiles
	profileH := handler.NewProfileHandler(profileRepo)
	protected.Get("/profile", profileH.Me)
	protected.Post("/profile", profileH.Create)
	protected.Put("/profile", profileH.Update)
	protected.Get("/profiles/:id", profileH.Get)

	// Messages
	messageH := handler.NewMessageHandler(feed, resolver)
	protected.Get("/messages", messageH.List)
	protected.Post("/messages", messageH.Send)

	// Uploads
	uploadH := handler.NewUploadHandler(store)
	protected.Post("/uploads/:kind", uploadH.Upload)

	// Admin
	adminH := handler.NewAdminHandler(requestRepo, roleRepo, userRepo, decisionSvc, wsHub, cfg.SetupToken)
	protected.Post("/admin/bootstrap", adminH.Bootstrap)
	admin := protected.Group("/admin", middleware.RequireAdmin(roleRepo))
	admin.Get("/requests", adminH.PendingRequests)
	admin.Get("/users", adminH.Roster)
	admin.Post("/requests/:id/decision", adminH.Decide)
	admin.Get("/stats", adminH.Stats)
	admin.Post("/announce", adminH.Announce)

	// WebSocket
	wsH := handler.NewWSHandler(wsHub, feed, authSvc, resolver)
	app.Get("/ws", wsH.Upgrade)

	// Start hub
	go wsHub.Run()

	// Hourly maintenance: drop dead sessions and, if configured, old messages.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := sessionRepo.CleanupExpired(ctx); err != nil {
				log.Printf("Session cleanup failed: %v", err)
			}
			if cfg.MessageRetentionDays > 0 {
				if n, err := messageRepo.DeleteOlderThan(ctx, cfg.MessageRetentionDays); err != nil {
					log.Printf("Message retention sweep failed: %v", err)
				} else if n > 0 {
					log.Printf("Message retention: pruned %d messages", n)
				}
			}
			cancel()
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Printf("groupchat backend running on :%s (%s)", cfg.Port, cfg.Env)

	<-quit
	log.Println("Shutting down...")
	_ = app.ShutdownWithTimeout(5 * time.Second)
	wsHub.Shutdown()
	log.Println("Server stopped")
}
