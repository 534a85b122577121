package db

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pasumerce/inventario/internal/config"
	"github.com/pasumerce/inventario/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

var passwordRe = regexp.MustCompile(`(password=)([^\s]+)`)

// MaskDSN hides the password of a key=value DSN for logging.
func MaskDSN(dsn string) string {
	return passwordRe.ReplaceAllString(dsn, `${1}***`)
}

// Open connects to the configured database, retrying while it comes up.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// unique-index violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	}

	var db *gorm.DB
	var err error
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(dialector, gcfg)
		if err == nil {
			break
		}
		log.Warn("retrying database connection", zap.Int("attempt", i+1), zap.Error(err))
		time.Sleep(connectBackoff)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}

	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	if cfg.Driver == config.DriverSQLite {
		// sqlite allows one writer; a single connection keeps transactions queued
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	log.Info("database connected", zap.String("driver", cfg.Driver), zap.String("dsn", MaskDSN(cfg.DSN())))
	return db, nil
}

// Migrate creates or updates the schema from the models.
func Migrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	for _, table := range []string{"suppliers", "ingredients", "products", "bom_lines", "production_records"} {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// RunSQLMigrations applies the versioned SQL files in dir (postgres only).
func RunSQLMigrations(dir string, cfg config.DatabaseConfig) error {
	if cfg.Driver != config.DriverPostgres {
		return fmt.Errorf("sql migrations need postgres, driver is %q", cfg.Driver)
	}
	m, err := migrate.New("file://"+dir, cfg.URL())
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
