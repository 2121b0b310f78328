// File: cmd/server/main.go
package main

import (
	"context"
	"log" // Standard log for critical startup/shutdown messages before/after zap is active
	"os"
	"os/signal"
	"syscall"

	"flipradar_backend/internal/app"
	"flipradar_backend/internal/config"
	"flipradar_backend/internal/digest"
	"flipradar_backend/internal/ingest"
	"flipradar_backend/internal/jobs"
	"flipradar_backend/internal/listing"
	"flipradar_backend/internal/notify"
	"flipradar_backend/internal/platform/database"
	"flipradar_backend/internal/platform/logger"
	"flipradar_backend/internal/source"
	"flipradar_backend/internal/user"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync() //nolint:errcheck

	db, err := database.NewGORM(cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.CloseGORMDB(db)

	if err := db.AutoMigrate(
		&listing.Listing{},
		&user.User{},
		&user.Watch{},
		&digest.SeenMark{},
	); err != nil {
		appLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	listingRepo := listing.NewGORMRepository(db)
	userRepo := user.NewGORMRepository(db)
	seenRepo := digest.NewGORMSeenRepository(db)

	// Outbound collaborators
	dispatcher, err := notify.NewTelegramDispatcher(cfg.TelegramBotToken, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram dispatcher", zap.Error(err))
	}
	sources := []source.Source{
		source.NewTroostwijkClient(cfg.SourceTimeout, cfg.SourceMaxItems),
		source.NewVavatoClient(cfg.SourceTimeout, cfg.SourceMaxItems),
	}

	// Services
	ingestService := ingest.NewService(sources, listingRepo, cfg, appLogger)
	digestService := digest.NewService(listingRepo, userRepo, seenRepo, dispatcher, cfg, appLogger)

	// Jobs and HTTP surface
	scheduler := jobs.NewScheduler(ingestService, digestService, appLogger, cfg)
	listingHandler := listing.NewHandler(listingRepo, appLogger)

	server, err := app.NewServer(cfg, appLogger, listingHandler, scheduler)
	if err != nil {
		appLogger.Fatal("Failed to initialize server", zap.Error(err))
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("FATAL: Server failed to start or crashed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ServerTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	} else {
		appLogger.Info("Server shutdown complete.")
	}
	appLogger.Info("Application exiting.")
}
