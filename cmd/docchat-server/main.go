package main

import (
	"context"
	"flag"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"docchat/internal/app"
	"docchat/internal/config"
	"docchat/internal/httpapi"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docchat/config.yaml if not provided)")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var cfg *config.AppConfig
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	application, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to assemble application", zap.Error(err))
	}

	if err := application.Chat.EnsureModelsReady(context.Background()); err != nil {
		logger.Warn("some models are not available yet", zap.Error(err))
	}

	server := httpapi.NewServer(application.Chat, application.Ingest, logger)
	logger.Info("listening", zap.String("addr", cfg.Server.Addr))
	if err := http.ListenAndServe(cfg.Server.Addr, server.Router()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
