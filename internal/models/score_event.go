package models

import (
	"time"
)

// ScoreEvent is one completed play of one game. Rows are append-only:
// nothing in the scoring pipeline updates or deletes them, so aggregates
// can always be rebuilt by replaying the ledger.
type ScoreEvent struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint `gorm:"not null;index;index:idx_score_event_user_game;index:idx_score_event_idem,unique"`
	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	// HouseID is the user's house at the time of play. It is denormalized
	// on purpose: house totals must not shift retroactively if the user is
	// later reassigned. Null for houseless users.
	HouseID *uint `gorm:"index"`

	GameSlug string `gorm:"type:varchar(50);not null;index:idx_score_event_user_game"`
	RawScore int64  `gorm:"not null"`
	XPEarned int64  `gorm:"not null"`

	// IdempotencyKey dedupes client retries per user. Server-assigned when
	// the client does not send one, so the unique index always applies.
	IdempotencyKey string `gorm:"type:varchar(64);not null;index:idx_score_event_idem,unique"`

	PlayedAt time.Time `gorm:"autoCreateTime;index"`
}

func (ScoreEvent) TableName() string {
	return "score_events"
}
