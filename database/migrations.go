package database

import (
	"github.com/l3montree-dev/threatguard/database/models"
	"gorm.io/gorm"
)

// RunMigrationsWithDB brings the schema up to date on an existing connection.
func RunMigrationsWithDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ThreatModel{},
		&models.ComponentRow{},
		&models.DataFlowRow{},
		&models.TrustBoundaryRow{},
		&models.ThreatRow{},
	)
}
