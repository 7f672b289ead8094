// Command yaadstory-server runs the bilingual brand-story questionnaire API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/kingstonroots/yaadstory/internal/api"
	"github.com/kingstonroots/yaadstory/internal/config"
	"github.com/kingstonroots/yaadstory/internal/db"
	"github.com/kingstonroots/yaadstory/internal/media"
	"github.com/kingstonroots/yaadstory/internal/middleware"
	"github.com/kingstonroots/yaadstory/internal/services"
	"github.com/kingstonroots/yaadstory/internal/stt"
)

var (
	commit    = "dev"
	buildTime = "unknown"
)

func main() {
	cfg := config.Parse()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("commit", commit),
		zap.String("buildTime", buildTime),
		zap.String("addr", cfg.Addr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sqlDB, err := sql.Open("sqlite3", cfg.DatabasePath+"?_busy_timeout=5000")
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer func() { _ = sqlDB.Close() }()

	if err := db.Migrate(ctx, sqlDB); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	store, err := db.NewSQLiteStore(sqlDB, logger)
	if err != nil {
		logger.Fatal("init store", zap.Error(err))
	}
	if err := db.SeedAdmin(store, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminName, logger); err != nil {
		logger.Fatal("seed admin", zap.Error(err))
	}

	mediaStore, err := media.NewDiskStore(cfg.MediaDir, "/media")
	if err != nil {
		logger.Fatal("init media store", zap.Error(err))
	}

	tokens := middleware.NewTokenAuth(cfg.JWTSecret)
	authSvc := services.NewAuthService(store, tokens.SignToken)
	questionSvc := services.NewQuestionService(store)
	responseSvc := services.NewResponseService(store)
	transcriptionSvc := services.NewTranscriptionService(
		mediaStore,
		stt.NewClient(cfg.STTBaseURL, cfg.STTAPIKey, cfg.STTModel),
	)

	router := api.NewRouter(authSvc, questionSvc, responseSvc, transcriptionSvc, tokens, logger,
		api.BuildInfo{Commit: commit, BuildTime: buildTime})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.Handler(cfg.StaticDir, mediaStore.Dir()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}

	logger.Info("shutdown complete")
}
