package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/theLastOfCats/gameshelf/internal/api"
	"github.com/theLastOfCats/gameshelf/internal/auth"
	"github.com/theLastOfCats/gameshelf/internal/config"
	"github.com/theLastOfCats/gameshelf/internal/db"
	"github.com/theLastOfCats/gameshelf/internal/logging"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		config.Exitf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)

	// Initialize Auth
	auth.Init(cfg.JWTSecret, cfg.TokenTTL)

	// Initialize Database
	database, err := db.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to initialize database", logging.Err(err))
		os.Exit(1)
	}
	defer database.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(database, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", logging.Err(err))
		}
	}()

	logger.Info("server starting", slog.String("port", cfg.Port), slog.String("dialect", database.Dialect()))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", logging.Err(err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
