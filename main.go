package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/yemot-router/internal/config"
	"github.com/xiaot623/gogo/yemot-router/internal/domain"
	"github.com/xiaot623/gogo/yemot-router/internal/flows"
	"github.com/xiaot623/gogo/yemot-router/internal/hub"
	"github.com/xiaot623/gogo/yemot-router/internal/logging"
	"github.com/xiaot623/gogo/yemot-router/internal/metrics"
	"github.com/xiaot623/gogo/yemot-router/internal/policy"
	store "github.com/xiaot623/gogo/yemot-router/internal/repository"
	"github.com/xiaot623/gogo/yemot-router/internal/service"
	handler "github.com/xiaot623/gogo/yemot-router/internal/transport/http"
	"github.com/xiaot623/gogo/yemot-router/internal/ws"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := logging.New(cfg.PrintLog, cfg.LogTimestamps)
	defer logger.Sync()

	if cfg.DefaultsFile != "" {
		defaults, err := config.LoadDefaultsFile(cfg.DefaultsFile, cfg.Defaults)
		if err != nil {
			logger.Fatal("failed to load router defaults", zap.Error(err))
		}
		cfg.Defaults = defaults
	}

	logger.Info("starting yemot router",
		zap.Int("port", cfg.HTTPPort),
		zap.String("route", cfg.RoutePath),
		zap.String("database", cfg.DatabaseURL),
		zap.Duration("callTimeout", cfg.Defaults.Timeout))

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer db.Close()

	// Initialize policy engine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		logger.Fatal("failed to initialize policy engine", zap.Error(err))
	}

	m := metrics.New()

	// Initialize service
	svc := service.New(cfg.Defaults, db, policyEngine, m, logger)
	svc.OnError(func(ctx context.Context, call *service.Call, err error) {
		_ = call.IDListMessage([]domain.Message{domain.Text("אירעה שגיאה")}, domain.IDListMessageOptions{})
	})
	flows.Register(svc, cfg.RoutePath)

	// Event stream
	eventHub := hub.NewHub(logger)
	go eventHub.Run(ctx)
	svc.Subscribe(eventHub.Publish)
	wsServer := ws.NewServer(cfg, eventHub, logger)

	server := handler.NewServer(svc, wsServer, m)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	logger.Info("router started", zap.Int("port", cfg.HTTPPort))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down router")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server gracefully", zap.Error(err))
	}

	logger.Info("router stopped")
}
