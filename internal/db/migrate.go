package db

import (
	"embed"
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	// registers the postgres database driver for golang-migrate
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/diewo77/medicaments-api/internal/config"
	"github.com/diewo77/medicaments-api/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate brings the schema up to date. Postgres with MIGRATIONS=1 runs the
// versioned SQL files; every other setup uses GORM AutoMigrate.
func Migrate(conn *gorm.DB, cfg *config.Config) error {
	if cfg.App.Migrations && cfg.Database.Driver == "postgres" {
		return RunSQLMigrations(cfg.Database.URL())
	}
	return AutoMigrate(conn)
}

// AutoMigrate creates or alters tables from the models.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range models.All() {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return backfillSearchKeys(conn)
}

// backfillSearchKeys fills the search key of products stored before the
// column existed. Saving runs Product.BeforeSave.
func backfillSearchKeys(conn *gorm.DB) error {
	var stale []models.Product
	err := conn.Where("search_key = ?", "").FindInBatches(&stale, 100, func(tx *gorm.DB, _ int) error {
		for i := range stale {
			if err := tx.Save(&stale[i]).Error; err != nil {
				return err
			}
		}
		return nil
	}).Error
	if err != nil {
		return fmt.Errorf("backfill product search keys: %w", err)
	}
	return nil
}

// RunSQLMigrations applies the embedded migrations/*.sql files with golang-migrate.
func RunSQLMigrations(databaseURL string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
