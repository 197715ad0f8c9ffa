// Package main is the entry point for the InkPress server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkpress/internal/config"
	"inkpress/internal/database"
	"inkpress/internal/handlers"
	"inkpress/internal/middleware"
	"inkpress/internal/router"
	"inkpress/internal/service"
	"inkpress/internal/session"
	"inkpress/internal/storage"
	"inkpress/internal/store"
	"inkpress/internal/token"
)

func main() {
	// Structured logger for the whole process.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey for session storage.
	valkeyClient, err := session.Connect(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark session cookies as Secure.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Bearer tokens share the session's identity model.
	issuer := token.NewIssuer(cfg.JWTSecret)

	// Data stores.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	postStore := store.NewPostStore(db)
	commentStore := store.NewCommentStore(db)
	newsletterStore := store.NewNewsletterStore(db)

	// Connect to S3-compatible object storage (optional, uploads are
	// disabled without it).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, media uploads disabled")
	}

	// Services.
	postService := service.NewPostService(postStore, categoryStore)
	commentService := service.NewCommentService(commentStore, postStore)
	categoryService := service.NewCategoryService(categoryStore)
	newsletterService := service.NewNewsletterService(newsletterStore)
	statsService := service.NewStatsService(postStore, userStore)

	// Abuse protection for the credential and subscription endpoints.
	limiter := middleware.NewRateLimiter(20, time.Minute)
	defer limiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(router.Deps{
		Sessions:   sessionStore,
		Issuer:     issuer,
		Limiter:    limiter,
		Auth:       handlers.NewAuth(sessionStore, userStore, issuer, cfg.IdentitySecret),
		Posts:      handlers.NewPosts(postService),
		Comments:   handlers.NewComments(commentService),
		Categories: handlers.NewCategories(categoryService),
		Newsletter: handlers.NewNewsletter(newsletterService),
		Stats:      handlers.NewStats(statsService),
		Upload:     handlers.NewUpload(storageClient),
	})

	// Create the HTTP server with sensible timeouts. WriteTimeout covers
	// multipart uploads to object storage.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
