package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	_ "time/tzdata"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/api"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/auth"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/config"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/database"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/logger"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/metrics"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/reports"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/sales"
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

	if cfg.App.MigrateOnStart {
		if err := database.Migrate(cfg.Database.URL, database.MigrateUp, zlog); err != nil {
			zlog.Fatal("run migrations", zap.Error(err))
		}
	}

	db, err := database.NewConnection(context.Background(), &cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("connect to database", zap.Error(err))
	}

	catalog := store.NewCatalog(db)
	users := store.NewUsers(db)
	hasher := auth.NewPasswordHasher()

	if err := bootstrap(context.Background(), cfg, users, catalog, hasher, zlog); err != nil {
		zlog.Fatal("bootstrap", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "butchershop"),
	)

	engine := sales.NewEngine(db, catalog, zlog, metrics.NewSales(registry))
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)

	server := api.NewServer(api.Deps{
		Items:             catalog,
		Sales:             engine,
		Reports:           reports.NewService(db, catalog, cfg.App.Location),
		Auth:              auth.NewService(users, hasher, tokens),
		Users:             users,
		DB:                db,
		Log:               zlog,
		HTTPMetrics:       metrics.NewHTTP(registry),
		Metrics:           metrics.Handler(registry),
		ShopName:          cfg.App.ShopName,
		LowStockThreshold: cfg.App.LowStockThreshold,
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			// In-flight sales must finish before the pool closes.
			"http-server": func(ctx context.Context) error {
				zlog.Info("shutting down http server")
				shutdownErr := httpServer.Shutdown(ctx)
				return errors.Join(shutdownErr, db.Close())
			},
		},
	)

	exitCode := <-wait
	zlog.Info("server stopped", zap.Int("exit_code", exitCode))
	zlog.Sync()
	os.Exit(exitCode)
}

// bootstrap creates the first admin account on an empty database and, when enabled,
// the starter catalog.
func bootstrap(ctx context.Context, cfg *config.Config, users *store.Users, catalog *store.Catalog, hasher *auth.PasswordHasher, zlog *zap.Logger) error {
	hash, err := hasher.Hash(cfg.App.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	created, err := users.EnsureAdmin(ctx, cfg.App.AdminUsername, hash)
	if err != nil {
		return err
	}
	if created {
		zlog.Warn("created default admin account, change its password",
			zap.String("username", cfg.App.AdminUsername))
	}

	if !cfg.App.SeedSampleData {
		return nil
	}

	n, err := catalog.SeedIfEmpty(ctx, store.SampleItems())
	if err != nil {
		return err
	}
	if n > 0 {
		zlog.Info("seeded sample catalog", zap.Int("items", n))
	}
	return nil
}
