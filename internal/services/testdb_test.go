package services

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/ItsBlendi/Hackathon-projekt/internal/catalog"
	"github.com/ItsBlendi/Hackathon-projekt/internal/database"
	"github.com/ItsBlendi/Hackathon-projekt/internal/models"
	"github.com/ItsBlendi/Hackathon-projekt/internal/repositories"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int64

// newTestDB opens a private in-memory SQLite database with the full
// schema and seeded houses. A single pooled connection keeps concurrent
// test transactions serialized the way Postgres row locks do in
// production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:scoring_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))

	// A shared-cache in-memory database is dropped the moment its last
	// connection closes, and database/sql discards a connection whose
	// context expired mid-transaction. A keeper connection outside the
	// pool under test keeps the database alive across such recycling.
	keeper, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open keeper connection: %v", err)
	}
	if err := keeper.Ping(); err != nil {
		t.Fatalf("failed to ping keeper connection: %v", err)
	}
	t.Cleanup(func() { _ = keeper.Close() })

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

type fixture struct {
	db          *gorm.DB
	users       *repositories.UserRepository
	ledger      *repositories.LedgerRepository
	aggregates  *repositories.AggregateRepository
	scoring     *ScoringService
	leaderboard *LeaderboardService
	houses      *HouseService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	users := repositories.NewUserRepository(db)
	ledger := repositories.NewLedgerRepository(db)
	aggregates := repositories.NewAggregateRepository(db)

	return &fixture{
		db:          db,
		users:       users,
		ledger:      ledger,
		aggregates:  aggregates,
		scoring:     NewScoringService(db, catalog.Default(), users, ledger, aggregates),
		leaderboard: NewLeaderboardService(users, ledger, aggregates),
		houses:      NewHouseService(users, aggregates),
	}
}

// houseID resolves a seeded house by name.
func (f *fixture) houseID(t *testing.T, name string) uint {
	t.Helper()

	var house models.House
	if err := f.db.Where("name = ?", name).First(&house).Error; err != nil {
		t.Fatalf("house %q not seeded: %v", name, err)
	}
	return house.ID
}

// createUser inserts a user, optionally assigned to a house by name.
func (f *fixture) createUser(t *testing.T, username, houseName string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
	}
	if houseName != "" {
		id := f.houseID(t, houseName)
		user.HouseID = &id
	}
	if err := f.users.CreateUser(user); err != nil {
		t.Fatalf("failed to create user %q: %v", username, err)
	}
	return user
}

// ledgerCount returns the total number of score events in the ledger.
func (f *fixture) ledgerCount(t *testing.T) int64 {
	t.Helper()

	var count int64
	if err := f.db.Model(&models.ScoreEvent{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count ledger: %v", err)
	}
	return count
}

// userXP reads the stored aggregate, not the ledger.
func (f *fixture) userXP(t *testing.T, userID uint) int64 {
	t.Helper()

	xp, err := f.aggregates.GetUserXP(userID)
	if err != nil {
		t.Fatalf("failed to read user xp: %v", err)
	}
	return xp
}

func (f *fixture) houseXP(t *testing.T, houseID uint) int64 {
	t.Helper()

	xp, err := f.aggregates.GetHouseXP(houseID)
	if err != nil {
		t.Fatalf("failed to read house xp: %v", err)
	}
	return xp
}
