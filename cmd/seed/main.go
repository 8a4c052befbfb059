package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/auth"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/config"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/database"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/logger"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Build logger: %v", err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.NewConnection(ctx, &cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()

	hash, err := auth.NewPasswordHasher().Hash(cfg.App.AdminPassword)
	if err != nil {
		zlog.Fatal("hash admin password", zap.Error(err))
	}

	created, err := store.NewUsers(db).EnsureAdmin(ctx, cfg.App.AdminUsername, hash)
	if err != nil {
		zlog.Fatal("create admin", zap.Error(err))
	}

	n, err := store.NewCatalog(db).SeedIfEmpty(ctx, store.SampleItems())
	if err != nil {
		zlog.Fatal("seed catalog", zap.Error(err))
	}

	zlog.Info("seed complete",
		zap.Bool("admin_created", created),
		zap.Int("items_created", n))
}
