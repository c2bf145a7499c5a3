package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/lib/pq"
	"github.com/matchyard/matchyard/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds the driver-specific connection string for cfg. An explicit
// cfg.DSN is returned unchanged.
func DSN(cfg config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	switch cfg.Driver {
	case "mysql":
		user := cfg.User
		if user == "" {
			user = "root"
		}
		if cfg.Password != "" {
			user += ":" + cfg.Password
		}
		return fmt.Sprintf("%s@tcp(%s:%d)/%s?parseTime=true", user, cfg.Host, cfg.Port, cfg.Name)
	case "sqlite":
		if cfg.Name == "" {
			return ":memory:"
		}
		return cfg.Name
	default:
		parts := []string{
			fmt.Sprintf("host=%s", cfg.Host),
			fmt.Sprintf("port=%d", cfg.Port),
		}
		if cfg.User != "" {
			parts = append(parts, fmt.Sprintf("user=%s", cfg.User))
		}
		if cfg.Password != "" {
			parts = append(parts, fmt.Sprintf("password=%s", quotePQ(cfg.Password)))
		}
		parts = append(parts, fmt.Sprintf("dbname=%s", cfg.Name))
		if cfg.SSLMode != "" {
			parts = append(parts, fmt.Sprintf("sslmode=%s", cfg.SSLMode))
		}
		return strings.Join(parts, " ")
	}
}

// quotePQ quotes a libpq keyword value when it contains spaces or quotes.
func quotePQ(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// Open builds the GORM connection for cfg without checking reachability.
// Postgres goes through lib/pq so the hosted database is reached with the
// same driver the rest of the tooling uses.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := DSN(cfg)
	gcfg := &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres", "":
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("db: open postgres: %w", err)
		}
		dialector = postgres.New(postgres.Config{Conn: sqlDB})
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", cfg.Driver)
	}

	gormDB, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", cfg.Driver, err)
	}
	return gormDB, nil
}

// Connect opens a GORM connection and pings it, retrying with backoff up to
// cfg.ConnectAttempts times. Only connection establishment is retried.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	attempts := cfg.ConnectAttempts
	if attempts == 0 {
		attempts = 1
	}

	var gormDB *gorm.DB
	err := retry.Do(func() error {
		g, err := Open(cfg)
		if err != nil {
			return err
		}
		sqlDB, err := g.DB()
		if err != nil {
			return fmt.Errorf("db: handle: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			sqlDB.Close()
			return fmt.Errorf("db: ping: %w", err)
		}
		gormDB = g
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("db: connect to %s (%s): %w", describe(cfg), cfg.Driver, err)
	}
	return gormDB, nil
}

// describe names the target database without leaking credentials.
func describe(cfg config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return "configured dsn"
	}
	if cfg.Driver == "sqlite" {
		return DSN(cfg)
	}
	return fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Name)
}
