package models

import (
	"time"
)

type House struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `gorm:"type:text"`
	Color       string    `gorm:"type:varchar(7)"`
	TotalXP     int64     `gorm:"default:0;not null"`
	MemberCount int       `gorm:"default:0;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// The four default houses, provisioned once at startup.
const (
	HouseGryffindor = "Gryffindor"
	HouseHufflepuff = "Hufflepuff"
	HouseRavenclaw  = "Ravenclaw"
	HouseSlytherin  = "Slytherin"
)

func (House) TableName() string {
	return "houses"
}
