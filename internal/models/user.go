package models

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// XPPerLevel is the flat XP cost of each level. Level is derived from
// TotalXP, never stored, so the ledger stays the single source of truth.
const XPPerLevel = 100

type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	HouseID      *uint     `gorm:"index"`
	House        *House    `gorm:"foreignKey:HouseID"`
	TotalXP      int64     `gorm:"default:0;not null"`
	IsActive     bool      `gorm:"default:true;not null"`
	LastActivity time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Level is derived: floor(totalXp/100) + 1.
func (u *User) Level() int {
	return int(u.TotalXP/XPPerLevel) + 1
}

// ProgressXP is the XP earned toward the next level.
func (u *User) ProgressXP() int64 {
	return u.TotalXP % XPPerLevel
}

// XPBar returns a visual progress bar for the current level.
func (u *User) XPBar() string {
	percentage := int(u.ProgressXP() * 100 / XPPerLevel)

	filledCount := percentage / 10
	emptyCount := 10 - filledCount

	bar := "["
	for i := 0; i < filledCount; i++ {
		bar += "■"
	}
	for i := 0; i < emptyCount; i++ {
		bar += "□"
	}
	bar += fmt.Sprintf("] %d%%", percentage)

	return bar
}

// BeforeCreate hook for validation
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(u.Username) == "" {
		return gorm.ErrInvalidData
	}
	if len(u.Username) > 50 {
		return gorm.ErrInvalidData
	}
	return nil
}

// BeforeSave guards the aggregate. Runs on column updates too, where the
// model may be zero-valued, so it only checks what is always meaningful.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.TotalXP < 0 {
		return gorm.ErrInvalidData
	}
	return nil
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}
