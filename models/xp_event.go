package models

import "time"

// XPEvent is one row per XP award (append-only audit trail).
type XPEvent struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string    `gorm:"index;not null" json:"user_id"`
	Amount     int64     `gorm:"not null" json:"amount"`
	Reason     string    `gorm:"type:varchar(128)" json:"reason"` // e.g. "lesson:<id>", "challenge:<id>", "admin"
	XPAfter    int64     `json:"xp_after"`
	LevelAfter int       `json:"level_after"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
