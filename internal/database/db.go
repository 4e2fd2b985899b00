package database

import (
	"log"

	"facturation/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a GORM connection pool and keeps the schema in
// step with the models. cmd/migrate owns the authoritative SQL schema;
// AutoMigrate covers development databases.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&model.Client{},
		&model.Category{},
		&model.Invoice{},
		&model.CreationLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
