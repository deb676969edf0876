package main

import (
	"context"
	"log"
	"os"

	"github.com/vadim/supportbot/internal/app"
	"github.com/vadim/supportbot/internal/config"
)

func main() {
	cfg := loadConfig()

	ctx := context.Background()

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	// Run application (blocks until shutdown)
	if err := application.Run(ctx); err != nil {
		log.Printf("application error: %v", err)
		os.Exit(1)
	}
}

// loadConfig reads CONFIG_PATH when set, otherwise the environment only
func loadConfig() *config.Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		return config.MustLoad()
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
