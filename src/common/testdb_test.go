package common

import (
	"testing"
	"time"

	"ygb/src/models"
	"ygb/src/types"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One connection: each new pool connection would see a fresh :memory: db.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("inner db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.User{},
		&models.GuideAvailability{},
		&models.Booking{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createUser(t *testing.T, db *gorm.DB, role types.UserRole, username, country string) *models.User {
	t.Helper()
	user := models.User{
		Name:     "Test",
		Surname:  "User",
		Username: username,
		Email:    username + "@example.com",
		Role:     string(role),
		Country:  country,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return &user
}

func setAvailability(t *testing.T, db *gorm.DB, guideID uint, day time.Time, status types.AvailabilityStatus) {
	t.Helper()
	row := models.GuideAvailability{GuideID: guideID, Date: day, Status: string(status)}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed availability %d/%s: %v", guideID, day, err)
	}
}

func availabilityStatus(t *testing.T, db *gorm.DB, guideID uint, day time.Time) string {
	t.Helper()
	var row models.GuideAvailability
	if err := db.Where("guide_id = ? AND date = ?", guideID, day).First(&row).Error; err != nil {
		t.Fatalf("load availability %d/%s: %v", guideID, day, err)
	}
	return row.Status
}

func bookingStatus(t *testing.T, db *gorm.DB, bookingID uint) string {
	t.Helper()
	var booking models.Booking
	if err := db.First(&booking, bookingID).Error; err != nil {
		t.Fatalf("load booking %d: %v", bookingID, err)
	}
	return booking.Status
}
