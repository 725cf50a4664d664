package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yeremiapane/table-reservation/database"
	"github.com/yeremiapane/table-reservation/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewTestDB opens a private in-memory sqlite database, migrated and seeded
// with tables 1..10. It is closed when the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Setup(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// InsertReservation writes a reservation directly, bypassing the booking rules.
func InsertReservation(t *testing.T, db *gorm.DB, tableID int, date, hour string) models.Reservation {
	t.Helper()
	res := models.Reservation{
		Name:      "Seed Guest",
		Email:     "seed@example.com",
		Phone:     "500100200",
		PartySize: 2,
		TableID:   tableID,
		Date:      date,
		Time:      hour,
	}
	if err := db.Create(&res).Error; err != nil {
		t.Fatalf("insert reservation: %v", err)
	}
	return res
}

// CountReservations returns the number of stored reservations.
func CountReservations(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Reservation{}).Count(&n).Error; err != nil {
		t.Fatalf("count reservations: %v", err)
	}
	return n
}
