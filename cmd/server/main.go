package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dgnsrekt/deltagraph/internal/config"
	"github.com/dgnsrekt/deltagraph/internal/logging"
	"github.com/dgnsrekt/deltagraph/internal/market"
	"github.com/dgnsrekt/deltagraph/internal/series"
	"github.com/dgnsrekt/deltagraph/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is fine; real environment variables still apply
	_ = godotenv.Load()

	// Load config
	cfg, err := config.Load(os.Getenv("DELTAGRAPH_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}

	// Setup logger
	logger, err := logging.New("server", os.Getenv("DELTAGRAPH_VERBOSE") != "", &cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("port", cfg.Server.Port),
		zap.String("provider", string(cfg.Provider.Kind)),
		zap.Int("historyDays", cfg.Series.HistoryDays),
		zap.Int("readTimeoutSec", cfg.Server.ReadTimeoutSec),
		zap.Int("writeTimeoutSec", cfg.Server.WriteTimeoutSec),
	)

	provider, err := market.New(cfg.Provider, logger)
	if err != nil {
		logger.Error("failed to create market data provider", zap.Error(err))
		return 1
	}

	svc := series.NewService(provider, cfg.Series.HistoryDays, logger)
	srv := server.NewServer(svc, cfg, logger)

	router, err := server.NewRouter(srv, logger)
	if err != nil {
		logger.Error("failed to create router", zap.Error(err))
		return 1
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	// Wait for interrupt or listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serveErr:
		logger.Error("server error", zap.Error(err))
		return 1
	}

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return 1
	}

	logger.Info("server stopped")
	return 0
}
