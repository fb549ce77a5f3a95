package database

import (
	"fmt"
	"time"

	"github.com/ItsBlendi/Hackathon-projekt/internal/config"
	"github.com/ItsBlendi/Hackathon-projekt/internal/models"
	"github.com/ItsBlendi/Hackathon-projekt/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.GetDSN()

	var logLevel gormlogger.LogLevel
	if cfg.AppEnv == "development" {
		logLevel = gormlogger.Info
	} else {
		logLevel = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		SkipDefaultTransaction: true, // Scoring opens its own transaction; don't wrap every read
		PrepareStmt:            true, // Cache prepared statements
		TranslateError:         true, // Surface unique violations as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Score submissions arrive in bursts when a popular game's round ends,
	// so keep a generous pool while cycling connections to avoid stale leaks.
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetMaxOpenConns(200)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	logger.Info("Database connected successfully")
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.House{},
		&models.User{},
		&models.ScoreEvent{},
	)

	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// SeedHouses provisions the four default houses once. Existing houses are
// left untouched so their XP totals survive restarts.
func SeedHouses(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.House{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count houses: %w", err)
	}
	if count > 0 {
		return nil
	}

	logger.Info("Seeding default houses...")
	houses := []models.House{
		{Name: models.HouseGryffindor, Description: "House of the brave at heart", Color: "#AE0001"},
		{Name: models.HouseHufflepuff, Description: "House of the loyal and just", Color: "#FFDB00"},
		{Name: models.HouseRavenclaw, Description: "House of the wise and witty", Color: "#222F5B"},
		{Name: models.HouseSlytherin, Description: "House of the ambitious and cunning", Color: "#2A623D"},
	}

	return db.Create(&houses).Error
}
