package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/rpupo63/taskmanager/models"
)

// Migrate creates or updates every table, index and foreign key of the models.
func Migrate(ctx context.Context, db *gorm.DB) error {
	migrateDB := db.WithContext(ctx).Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})

	log.Info().Msg("Migrating models...")
	if err := migrateDB.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrating models: %w", err)
	}
	log.Info().Msg("Database migration completed successfully")
	return nil
}
