package database

import (
	"fmt"
	"os"

	"github.com/chachabrian/parceltrack-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Parcel{},
		&models.TrackingEvent{},
		&models.RiderApplication{},
		&models.Payment{},
		&models.Withdrawal{},
		&models.Review{},
	)
	if err != nil {
		return err
	}

	// Keep the role constraint in sync with the closed role set
	if db.Migrator().HasTable(&models.User{}) && db.Dialector.Name() == "postgres" {
		db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_role_check`)
		if err := db.Exec(`ALTER TABLE users ADD CONSTRAINT users_role_check CHECK (role IN ('user', 'rider', 'admin'))`).Error; err != nil {
			return err
		}
	}

	return nil
}
