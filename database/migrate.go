package database

import (
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/utils"
	"gorm.io/gorm"
)

// TableCount is the number of bookable tables seeded at startup.
const TableCount = 10

// Migrate -> create or update the schema for all models
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Table{}, &models.Reservation{}); err != nil {
		return err
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

// SeedTables inserts tables 1..TableCount when the stoliki table is empty.
// It is a no-op on every later start.
func SeedTables(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Table{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tables := make([]models.Table, 0, TableCount)
	for i := 1; i <= TableCount; i++ {
		tables = append(tables, models.Table{ID: i})
	}
	if err := db.Create(&tables).Error; err != nil {
		return err
	}
	utils.InfoLogger.Printf("Seeded %d tables", TableCount)
	return nil
}

// Setup runs Migrate followed by SeedTables.
func Setup(db *gorm.DB) error {
	if err := Migrate(db); err != nil {
		return err
	}
	return SeedTables(db)
}
