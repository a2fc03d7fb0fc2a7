package database

import (
	"log"

	"gorm.io/gorm"
)

// cleanupDuplicateSnapshots removes duplicate portfolio_value_snapshots rows
// before the owner+date unique index is added. This runs BEFORE AutoMigrate
// to prevent constraint violations on databases created without the index.
// The most recently written snapshot for each owner and day wins.
func cleanupDuplicateSnapshots(db *gorm.DB) error {
	if !db.Migrator().HasTable("portfolio_value_snapshots") {
		return nil // No table, no duplicates to clean
	}

	result := db.Exec(`
		DELETE FROM portfolio_value_snapshots
		WHERE id NOT IN (
			SELECT MAX(id)
			FROM portfolio_value_snapshots
			GROUP BY owner_id, snapshot_date
		)`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Removed %d duplicate portfolio snapshot(s) before adding unique index", result.RowsAffected)
	}
	return nil
}
