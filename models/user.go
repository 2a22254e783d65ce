package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the learner account. XP and Level are only ever written by the
// progression service; Level is stored so leaderboard reads stay a plain ORDER BY.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	AvatarURL    string `gorm:"type:text" json:"avatar_url,omitempty"`

	// Core progression
	XP    int64 `json:"xp" gorm:"not null;default:0;index"`
	Level int   `json:"level" gorm:"not null;default:1"`

	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
