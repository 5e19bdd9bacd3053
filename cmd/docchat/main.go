package main

import (
	"context"
	"flag"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"docchat/internal/app"
	"docchat/internal/config"
	"docchat/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/docchat/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// The terminal is owned by the TUI, so logs are discarded here.
	application, err := app.Build(context.Background(), cfg, zap.NewNop())
	if err != nil {
		log.Fatalf("failed to assemble application: %v", err)
	}

	if err := application.Chat.EnsureModelsReady(context.Background()); err != nil {
		log.Fatalf("models not available: %v", err)
	}

	if _, err := tea.NewProgram(tui.New(application.Chat)).Run(); err != nil {
		log.Fatal(err)
	}
}
