package database

import (
	"github.com/agromarket/backend/config"
	"github.com/agromarket/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres connection and migrates the schema.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.PaymentMethod{},
		&models.UserBalance{},
		&models.SecurityEvent{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
