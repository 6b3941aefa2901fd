package database

import (
	"errors"
	"os"

	"github.com/thereayou/backstagepass/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func (d *Database) Connect() error {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return err
	}

	if err := Migrate(db); err != nil {
		return err
	}

	d.db = db

	return nil
}

// Migrate накатывает схему. Вынесена отдельно, чтобы тесты могли
// мигрировать sqlite in-memory без Connect.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.WatchRoom{}, &models.WatchRoomMember{})
}
