package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pasumerce/inventario/internal/config"
	"github.com/pasumerce/inventario/internal/db"
	"github.com/pasumerce/inventario/internal/scheduler"
	"github.com/pasumerce/inventario/internal/services"
	"github.com/pasumerce/inventario/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
	migrationsDir   = flag.String("migrations-dir", "migrations", "Directory holding the SQL migrations")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	dbConn, err := db.Open(cfg.Database, logger.Named(log, "db"))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if *migrateOnlyFlag {
		if err := migrate(cfg, dbConn); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		log.Info("migrations completed successfully")
		return
	}

	if *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			log.Fatal("seeding failed", zap.Error(err))
		}
		log.Info("seeding completed successfully")
		return
	}

	if cfg.App.Migrations || cfg.App.Dev {
		if err := migrate(cfg, dbConn); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		log.Info("migrations completed")
	}
	if cfg.App.Seed {
		if err := db.Seed(dbConn); err != nil {
			log.Fatal("seeding failed", zap.Error(err))
		}
	}

	app := NewApp(dbConn, cfg, log)

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		inventory := services.NewInventoryService(dbConn, logger.Named(log, "svc.inventory"))
		sched = scheduler.NewScheduler(cfg.Scheduler, inventory, logger.Named(log, "scheduler"))
		if err := sched.Start(); err != nil {
			log.Fatal("scheduler failed to start", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	if sched != nil {
		sched.Stop()
	}
	// in-flight production runs get time to commit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	if sqlDB, err := dbConn.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped gracefully")
}

// migrate applies the versioned SQL files when MIGRATIONS is set on postgres,
// and falls back to AutoMigrate otherwise.
func migrate(cfg *config.Config, conn *gorm.DB) error {
	if cfg.App.Migrations && cfg.Database.Driver == config.DriverPostgres {
		return db.RunSQLMigrations(*migrationsDir, cfg.Database)
	}
	return db.Migrate(conn)
}
