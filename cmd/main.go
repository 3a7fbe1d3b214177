package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/courtline/bracket-engine/config"
	"github.com/courtline/bracket-engine/db"
	"github.com/courtline/bracket-engine/handlers"
	"github.com/courtline/bracket-engine/live"
	"github.com/courtline/bracket-engine/repositories"
	api "github.com/courtline/bracket-engine/routes"
	"github.com/courtline/bracket-engine/services"
	"github.com/courtline/bracket-engine/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	// The ranking archive is optional: without a bucket the service runs,
	// finished tournaments just aren't exported.
	var uploader storage.FileUploader
	if cfg.ArchiveEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.ArchiveAccountID,
			AccessKeyID:     cfg.ArchiveAccessKeyID,
			SecretAccessKey: cfg.ArchiveSecretAccessKey,
			BucketName:      cfg.ArchiveBucketName,
			PublicBaseURL:   cfg.ArchivePublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize archive uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("archive uploader initialized", slog.String("bucket", cfg.ArchiveBucketName))
	} else {
		logger.Info("archive storage not configured, final rankings will not be exported")
	}

	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("websocket hub started")

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	entrantRepo := repositories.NewPostgresEntrantRepository(dbConn)
	nodeRepo := repositories.NewPostgresNodeRepository(dbConn)
	standingRepo := repositories.NewPostgresStandingRepository(dbConn)

	tournamentService := services.NewTournamentService(tournamentRepo)
	entrantService := services.NewEntrantService(entrantRepo, tournamentRepo)
	bracketService := services.NewBracketService(dbConn, tournamentRepo, entrantRepo, nodeRepo, wsHub.Emitter(), logger)
	standingsService := services.NewStandingsService(bracketService, standingRepo)
	resultService := services.NewResultService(tournamentRepo, entrantRepo, bracketService, standingsService, uploader, logger)

	tournamentHandler := handlers.NewTournamentHandler(tournamentService, bracketService)
	entrantHandler := handlers.NewEntrantHandler(entrantService)
	bracketHandler := handlers.NewBracketHandler(bracketService, standingsService)
	resultHandler := handlers.NewResultHandler(resultService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		tournamentHandler,
		entrantHandler,
		bracketHandler,
		resultHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
