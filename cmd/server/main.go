package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrimarket-be/internal/config"
	"agrimarket-be/internal/cropimage"
	"agrimarket-be/internal/croppost"
	"agrimarket-be/internal/db"
	"agrimarket-be/internal/events"
	"agrimarket-be/internal/httpapi"
	"agrimarket-be/internal/logger"
	"agrimarket-be/internal/middleware"
	"agrimarket-be/internal/review"
	"agrimarket-be/internal/user"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	limiterCleanupInterval = time.Minute
	shutdownTimeout        = 10 * time.Second
)

var (
	initDBFunc      = db.InitDB
	startServerFunc = listenAndServe
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	publisher := events.NewPublisher(cfg.KafkaBroker, cfg.KafkaListingsTopic)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.L().Warn("failed to close event publisher", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewRateLimiter(cfg.InternalKey)
	go limiter.Run(ctx, limiterCleanupInterval)

	handler := newServer(cfg, database, publisher, limiter)

	logger.L().Info("server starting",
		zap.String("port", cfg.AppPort),
		zap.String("env", cfg.AppEnv),
	)
	return startServerFunc(":"+cfg.AppPort, handler)
}

func newServer(cfg *config.Config, database *sql.DB, publisher events.Publisher, limiter *middleware.RateLimiter) http.Handler {
	dbx := sqlx.NewDb(database, "postgres")

	imageRepo := cropimage.NewRepository(database)
	postRepo := croppost.NewRepository(database)
	assembler := croppost.NewAssembler(imageRepo, cfg.PublicBaseURL, cfg.ImageFetchConcurrency).
		WithUploadsURL(cfg.UploadsURL)
	postSvc := croppost.NewService(postRepo, imageRepo, assembler, publisher)

	reviewSvc := review.NewService(review.NewRepository(dbx))
	userSvc := user.NewService(user.NewRepository(dbx), cfg.JWTSecret)

	h := httpapi.NewHandler(postSvc, reviewSvc, userSvc, database, cfg.IsDevelopment()).
		WithUploads(cfg.UploadsDir)
	router := httpapi.NewRouter(h)

	var handler http.Handler = router
	handler = limiter.Middleware(handler)
	handler = middleware.AuthMiddleware(cfg.JWTSecret)(handler)
	handler = middleware.CORS(cfg.CORSOrigin)(handler)
	handler = logger.LoggingMiddleware(handler)
	handler = logger.RequestIDMiddleware(handler)
	return handler
}

// listenAndServe serves until SIGINT/SIGTERM, then drains in-flight requests.
func listenAndServe(addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
