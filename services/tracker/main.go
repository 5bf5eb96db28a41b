// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianTrack/pkg/logging"
	"github.com/AleutianAI/AleutianTrack/services/tracker/config"
	"github.com/AleutianAI/AleutianTrack/services/tracker/middleware"
	"github.com/AleutianAI/AleutianTrack/services/tracker/observability"
	"github.com/AleutianAI/AleutianTrack/services/tracker/routes"
	"github.com/AleutianAI/AleutianTrack/services/tracker/services"
	"github.com/AleutianAI/AleutianTrack/services/tracker/store"
)

func logLevel(cfg *config.TrackerConfig) logging.Level {
	switch cfg.Logging.Level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func main() {
	cfgPath, err := config.Path()
	if err != nil {
		log.Fatalf("failed to resolve the config path: %v", err)
	}

	bootLogger := logging.Default()
	watcher, err := config.Watch(cfgPath, bootLogger.Slog())
	if err != nil {
		log.Fatalf("failed to load the config: %v", err)
	}
	defer watcher.Close()
	cfg := watcher.Current()

	appLog := logging.New(logging.Config{
		Level:   logLevel(cfg),
		Service: "tracker",
		JSON:    true,
	})
	defer appLog.Close()
	logger := appLog.Slog()

	st, err := store.Open(store.Config{
		Dir:      cfg.StorageDir(),
		InMemory: cfg.Storage.InMemory,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("failed to open the document store: %v", err)
	}
	defer st.Close()

	metrics := observability.InitMetrics()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger, metrics))

	routes.SetupRoutes(router, routes.Services{
		Projects:    services.NewProjectService(st, logger),
		Experiments: services.NewExperimentService(st, logger),
		Iterations:  services.NewIterationService(st, logger),
		Datasets:    services.NewDatasetService(st, logger),
		Models:      services.NewMonitoredModelService(st, logger),
	})

	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("tracker API listening", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		logger.Info("metrics listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		_ = metricsServer.Shutdown(shutdownCtx)
		return apiServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
