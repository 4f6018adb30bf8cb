package database

import (
	"context"
	"fmt"
	"time"

	"academy-quiz/internal/config"
	"academy-quiz/internal/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/jmoiron/sqlx"
	_ "github.com/sijms/go-ora/v2" // registers "oracle"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers "sqlite"
)

func init() {
	// Queries are written with ? placeholders and rebound per driver.
	sqlx.BindDriver("oracle", sqlx.NAMED)
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DriverName maps a db.driver setting to the database/sql driver name.
func DriverName(driver string) (string, error) {
	switch driver {
	case config.DriverOracle:
		return "oracle", nil
	case config.DriverPostgres:
		return "pgx", nil
	case config.DriverSQLite:
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Connect opens a pooled connection for the configured driver and pings it.
func Connect(ctx context.Context, cfg config.DBConfig, dsn string) (*sqlx.DB, error) {
	driverName, err := DriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}
	tunePool(db, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.Driver, err)
	}

	logger.Get().Info("Connected to database", zap.String("driver", cfg.Driver))
	return db, nil
}

func tunePool(db *sqlx.DB, cfg config.DBConfig) {
	if cfg.Driver == config.DriverSQLite {
		// single writer
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		return
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}
