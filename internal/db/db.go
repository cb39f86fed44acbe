// Package db opens the GORM connection, applies migrations and seeds
// development data.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/medicaments-api/internal/config"
	"github.com/diewo77/medicaments-api/internal/logging"
)

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// Open connects to the configured database, retrying while the server comes up.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	gcfg := &gorm.Config{
		Logger:         logging.GormLogger(log, cfg.Debug),
		TranslateError: true,
	}
	log.Info("connecting to database",
		zap.String("driver", cfg.Driver),
		zap.String("dsn", config.MaskDSN(cfg.DSN())))

	var conn *gorm.DB
	for i := 1; i <= connectAttempts; i++ {
		conn, err = gorm.Open(dialector, gcfg)
		if err == nil {
			err = ping(ctx, conn)
		}
		if err == nil || i == connectAttempts {
			break
		}
		log.Warn("database not ready", zap.Int("attempt", i), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after %d attempts: %w", connectAttempts, err)
	}
	if cfg.Driver == "sqlite" {
		// foreign keys are off by default in sqlite
		if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}
	return conn, nil
}

// Close releases the underlying connection pool.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres", "":
		return postgres.Open(cfg.DSN()), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, errors.New("unsupported DB_DRIVER: " + cfg.Driver)
	}
}

func ping(ctx context.Context, conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
