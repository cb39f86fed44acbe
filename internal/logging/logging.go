// Package logging builds the process-wide zap logger.
package logging

import (
	"fmt"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm/logger"

	"github.com/diewo77/medicaments-api/internal/config"
)

// New returns a JSON (production) or console (development) logger at the
// configured level.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
	}
	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// GormLogger routes GORM's SQL logging through zap. Queries are only logged
// when debug is set; slow queries and errors are always reported.
func GormLogger(l *zap.Logger, debug bool) logger.Interface {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	std := zap.NewStdLog(l.Named("gorm"))
	return logger.New(std, logger.Config{
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// Std exposes l as a standard library logger, e.g. for http.Server.ErrorLog.
func Std(l *zap.Logger) *log.Logger {
	return zap.NewStdLog(l)
}
