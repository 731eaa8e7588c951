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

	"github.com/Dosada05/tabletennis-tournament/brackets"
	"github.com/Dosada05/tabletennis-tournament/config"
	"github.com/Dosada05/tabletennis-tournament/db"
	"github.com/Dosada05/tabletennis-tournament/handlers"
	"github.com/Dosada05/tabletennis-tournament/repositories"
	api "github.com/Dosada05/tabletennis-tournament/routes"
	"github.com/Dosada05/tabletennis-tournament/scoring"
	"github.com/Dosada05/tabletennis-tournament/services"
	"github.com/Dosada05/tabletennis-tournament/storage"
	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 15 * time.Second

// @title Table Tennis Tournament API
// @version 1.0
// @description Knockout brackets, league schedules, score entry and standings.
// @BasePath /
func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.Bool("archive", cfg.ArchiveEnabled()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBConnectTimeout, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()

	if err := db.Migrate(ctx, dbConn); err != nil {
		logger.Error("failed to apply schema", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database schema is up to date")

	// Архив итогов в Cloudflare R2 (опционально)
	var archiver services.ResultArchiver
	if cfg.ArchiveEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		}, logger)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = services.NewResultArchiver(uploader)
		logger.Info("Cloudflare R2 result archive enabled", slog.String("bucket", cfg.R2BucketName))
	}

	// WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)

	deps := services.Deps{
		DB:             dbConn,
		TournamentRepo: repositories.NewPostgresTournamentRepository(dbConn),
		RosterRepo:     repositories.NewPostgresRosterRepository(dbConn),
		MatchRepo:      repositories.NewPostgresMatchRepository(dbConn),
		PlayerRepo:     repositories.NewPostgresPlayerRepository(dbConn),
		StandingRepo:   repositories.NewPostgresStandingRepository(dbConn),
		Archiver:       archiver,
		Hub:            wsHub,
		Policy:         scoring.PointsPolicy{Win: cfg.PointsPerWin, Loss: cfg.PointsPerLoss},
		Logger:         logger,
	}
	tournamentService := services.NewTournamentService(deps)
	bracketService := services.NewBracketService(deps)
	matchService := services.NewMatchService(deps)
	rosterService := services.NewRosterService(deps)

	// Планировщик: проставляет дату окончания завершённым турнирам
	go runFinalizer(ctx, tournamentService, cfg.FinalizeInterval, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Tournament: handlers.NewTournamentHandler(tournamentService, bracketService, matchService),
		Match:      handlers.NewMatchHandler(matchService),
		Roster:     handlers.NewRosterHandler(rosterService),
		Player:     handlers.NewPlayerHandler(tournamentService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, tournamentService, logger),
	}, cfg.CORSOrigins)

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

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped")
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}

func runFinalizer(ctx context.Context, ts services.TournamentService, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("finalizer started", slog.Duration("interval", interval))

	sweep := func() {
		stamped, err := ts.FinalizeFinished(ctx)
		if err != nil {
			logger.Error("finalizer run failed", slog.Any("error", err))
		}
		if stamped > 0 {
			logger.Info("finalizer stamped tournaments", slog.Int("count", stamped))
		}
	}

	sweep()
	for {
		select {
		case <-ctx.Done():
			logger.Info("finalizer stopped")
			return
		case <-ticker.C:
			sweep()
		}
	}
}
