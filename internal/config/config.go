// Package config provides application configuration loaded from environment
// variables and an optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	App       AppConfig       `mapstructure:"app"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // seconds
}

// DatabaseConfig holds connection settings. Driver is "postgres" or "sqlite";
// Path is only used by sqlite.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
	Debug    bool   `mapstructure:"debug"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool `mapstructure:"dev"`
	Migrations bool `mapstructure:"migrations"`
	Seed       bool `mapstructure:"seed"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SchedulerConfig drives the stock watch job.
type SchedulerConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	StockWatchCron   string `mapstructure:"stock_watch_cron"`
	ExpiryWindowDays int    `mapstructure:"expiry_window_days"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DSN returns the connection string for the configured driver. Postgres uses
// the key=value format.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format, as expected by
// golang-migrate.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("server port is empty"))
	}
	switch c.Database.Driver {
	case DriverPostgres:
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("sqlite driver requires DB_PATH"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	if c.Scheduler.ExpiryWindowDays <= 0 {
		errs = append(errs, errors.New("expiry window must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from config.yaml (if present) and the environment.
// It uses sensible defaults for local development.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CORS.AllowedOrigins = splitOrigins(cfg.CORS.AllowedOrigins)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 15)
	v.SetDefault("server.idle_timeout", 60)

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "pasumerce")
	v.SetDefault("database.password", "pasumerce")
	v.SetDefault("database.dbname", "inventario")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "inventario.db")
	v.SetDefault("database.debug", false)

	v.SetDefault("app.dev", true)
	v.SetDefault("app.migrations", false)
	v.SetDefault("app.seed", false)

	v.SetDefault("cors.allowed_origins", []string{
		"http://localhost:5173",
		"http://localhost:3000",
		"http://127.0.0.1:5173",
	})

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.stock_watch_cron", "0 6 * * *")
	v.SetDefault("scheduler.expiry_window_days", 7)

	v.SetDefault("log.level", "info")
}

func bindEnvVariables(v *viper.Viper) {
	// Server
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	_ = v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	_ = v.BindEnv("server.idle_timeout", "SERVER_IDLE_TIMEOUT")

	// Database
	_ = v.BindEnv("database.driver", "DB_DRIVER")
	_ = v.BindEnv("database.host", "DB_HOST")
	_ = v.BindEnv("database.port", "DB_PORT")
	_ = v.BindEnv("database.user", "DB_USER")
	_ = v.BindEnv("database.password", "DB_PASSWORD")
	_ = v.BindEnv("database.dbname", "DB_NAME")
	_ = v.BindEnv("database.sslmode", "DB_SSLMODE")
	_ = v.BindEnv("database.path", "DB_PATH")
	_ = v.BindEnv("database.debug", "DB_DEBUG")

	// App
	_ = v.BindEnv("app.dev", "DEV")
	_ = v.BindEnv("app.migrations", "MIGRATIONS")
	_ = v.BindEnv("app.seed", "SEED")

	_ = v.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")

	// Scheduler
	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("scheduler.stock_watch_cron", "STOCK_WATCH_CRON")
	_ = v.BindEnv("scheduler.expiry_window_days", "EXPIRY_WINDOW_DAYS")

	_ = v.BindEnv("log.level", "LOG_LEVEL")
}

// splitOrigins accepts both a YAML list and a comma separated env value.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
