package database

import (
	"log"

	"github.com/declanharris/portfolio-tracker/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Initialize(dbPath string) error {
	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	// SQLite allows a single writer; one pooled connection avoids
	// SQLITE_BUSY and keeps in-memory databases on one connection.
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)

	log.Println("Database connected successfully")

	if err := cleanupDuplicateSnapshots(DB); err != nil {
		return err
	}

	// Auto-migrate the schema
	err = DB.AutoMigrate(&models.Holding{}, &models.PortfolioValueSnapshot{})
	if err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}

func GetDB() *gorm.DB {
	return DB
}
