package main

import (
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/config"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/database"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down]")
	}
	direction := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Build logger: %v", err)
	}
	defer zlog.Sync()

	if err := database.Migrate(cfg.Database.URL, direction, zlog); err != nil {
		zlog.Fatal("migration failed", zap.String("direction", direction), zap.Error(err))
	}
}
