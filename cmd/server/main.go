package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/chi-demo/middleware"
	"github.com/tendant/simple-dri/pkg/dri/api"
	"github.com/tendant/simple-dri/pkg/dri/config"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(".env"); err != nil {
		slog.Info("No .env file found or error loading it, using environment", "err", err)
	}

	serverConfig, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger := slog.Default().With("service", "dri")

	ctx := context.Background()
	svc, closeFn, err := serverConfig.BuildService(ctx, logger)
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeFn(context.Background()); err != nil {
			slog.Error("Failed to close connections", "err", err)
		}
	}()

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)
	server.R.Handle("/metrics", promhttp.Handler())

	routes := api.Routes(svc, logger)
	if serverConfig.APIKeySHA256 != "" {
		apiKeyMiddleware, err := middleware.ApiKeyMiddleware(middleware.ApiKeyConfig{
			APIKeys: map[string]string{
				"key1": serverConfig.APIKeySHA256,
			},
		})
		if err != nil {
			slog.Error("Failed initialize API Key middleware", "err", err)
			return
		}
		server.R.With(apiKeyMiddleware).Mount("/api/v1", routes)
	} else {
		slog.Warn("API_KEY_SHA256 not set, API is unauthenticated")
		server.R.Mount("/api/v1", routes)
	}

	slog.Info("DRI server starting",
		"database", serverConfig.DatabaseType,
		"storage", serverConfig.StorageType,
		"archive", serverConfig.Fedora.URL != "",
		"env", serverConfig.Environment)

	server.Run()
}
