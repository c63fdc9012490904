package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/noah-isme/scholarship-api/internal/config"
	"github.com/noah-isme/scholarship-api/internal/models"
)

// Connect opens the database selected by the configured driver.
func Connect(cfg config.Config) (*gorm.DB, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		return ConnectSQLite(cfg.DatabaseURL)
	case config.DriverPostgres, "":
		return ConnectPostgres(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
}

// Migrate creates or updates the tables backing the scholarship domain.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Scholar{},
		&models.ActivityCategory{},
		&models.Activity{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
