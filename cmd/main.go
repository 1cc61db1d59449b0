package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/nuhmanudheent/hosp-connect-report-service/internal/config"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/di"
	"github.com/nuhmanudheent/hosp-connect-report-service/internal/utils"
	"github.com/nuhmanudheent/hosp-connect-report-service/logs"
)

func main() {
	di.LoadEnv()
	cfg, err := config.Load()
	logger := logs.NewLogger(cfg.LogLevel)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config")
	}
	app, err := di.NewApp(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build report service")
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if app.Digest != nil {
		if err := di.EnsureTopicExists(cfg.KafkaBroker, cfg.ReportTopic); err != nil {
			logger.WithError(err).Warn("Failed to ensure report topic")
		}
		scheduler, err := utils.StartDigestScheduler(cfg.DigestCron, app.Digest.Run, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to start digest scheduler")
		}
		defer scheduler.Stop()
	}

	listener, grpcServer, healthServer, err := config.GRPCSetup(cfg.GRPCAddr)
	if err != nil {
		logger.WithError(err).Fatal("Failed to set up gRPC server")
	}
	go config.WatchHealth(ctx, healthServer, app.Reports, cfg.HealthInterval, logger)
	go func() {
		logger.WithField("Addr", cfg.GRPCAddr).Info("gRPC health server is running")
		if err := grpcServer.Serve(listener); err != nil {
			logger.WithError(err).Error("gRPC server stopped")
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.WithFields(logrus.Fields{
				"Method":  v.Method,
				"URI":     v.URI,
				"Status":  v.Status,
				"Latency": v.Latency.String(),
			}).Info("Request served")
			return nil
		},
	}))
	app.Handler.Register(e)
	go func() {
		logger.WithField("Addr", cfg.HTTPAddr).Info("Report HTTP server is running")
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("HTTP server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down report service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("HTTP shutdown failed")
	}
	grpcServer.GracefulStop()
}
