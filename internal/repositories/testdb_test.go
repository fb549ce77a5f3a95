package repositories

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/ItsBlendi/Hackathon-projekt/internal/database"
	"github.com/ItsBlendi/Hackathon-projekt/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database instance: %v", err)
	}
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	if err := database.SeedHouses(db); err != nil {
		t.Fatalf("failed to seed houses: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string, houseID *uint) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		HouseID:  houseID,
	}
	if err := NewUserRepository(db).CreateUser(user); err != nil {
		t.Fatalf("failed to create user %q: %v", username, err)
	}
	return user
}

func seedEvent(t *testing.T, db *gorm.DB, event *models.ScoreEvent) {
	t.Helper()

	if event.IdempotencyKey == "" {
		event.IdempotencyKey = fmt.Sprintf("seed-%d", atomic.AddInt64(&testDBSeq, 1))
	}
	if err := NewLedgerRepository(db).Append(db, event); err != nil {
		t.Fatalf("failed to append event: %v", err)
	}
}

func firstHouseID(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()

	var house models.House
	if err := db.Where("name = ?", name).First(&house).Error; err != nil {
		t.Fatalf("house %q not seeded: %v", name, err)
	}
	return house.ID
}
