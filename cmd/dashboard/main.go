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

	"portfolio_dashboard/internal/app/container"
	"portfolio_dashboard/internal/infrastructure/configloader"
	"portfolio_dashboard/internal/infrastructure/restapi"
	"portfolio_dashboard/internal/pkg/logger"
	"portfolio_dashboard/internal/pkg/metrics"
	"portfolio_dashboard/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	slogzap "github.com/samber/slog-zap/v2"
	"go.uber.org/zap"
)

const defaultConfigPath = "config/config.yml"

func main() {
	cfgPath := utils.GetEnv("CONFIG_PATH", defaultConfigPath)
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(logger.ZapLevel(cfg.Logging.Level))
	zapLogger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync() //nolint:errcheck

	slogLevel, _ := logger.ParseLevel(cfg.Logging.Level)
	slogHandler := slogzap.Option{Level: slogLevel, Logger: zapLogger}.NewZapHandler()
	logger.SetLogger(slog.New(slogHandler))

	logger.Info("Portfolio dashboard starting", "config", cfgPath, "rpc_endpoint", cfg.Portfolio.RPCEndpoint,
		"follow_cluster", cfg.Portfolio.FollowCluster, "metadata_store", cfg.MetadataStore.Backend)

	metrics.MustRegisterMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := container.Build(ctx, cfg, zapLogger)
	if err != nil {
		logger.Fatal("Failed to initialize services", "error", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("Failed to close metadata store", "error", err)
		}
	}()

	dashboard := app.NewDashboard(cfg)
	defer dashboard.Close()

	// warm the metadata cache so the first wallet connect does not pay for the download
	go func() {
		if err := app.Metadata.Load(ctx); err != nil {
			logger.Warn("Initial token metadata load failed", "error", err)
		}
	}()

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := restapi.NewDashboardHandler(dashboard, app.Portfolio, app.Metadata, app.Clusters,
		logger.NewSlogAdapter(), container.FetchTimeout(cfg))
	router := restapi.SetupRouter(handler, cfg.Swagger, zapLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start HTTP server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	cancel()

	logger.Info("Portfolio dashboard stopped")
}
