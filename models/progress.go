package models

import "time"

// Progress is one row per (user, lesson). CompletedAt is written exactly once,
// on the first transition to completed, and doubles as the XP-granted marker.
type Progress struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string     `gorm:"not null;uniqueIndex:idx_user_lesson" json:"user_id"`
	LessonID    string     `gorm:"not null;uniqueIndex:idx_user_lesson" json:"lesson_id"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	Code        string     `gorm:"type:text" json:"code"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the pluralized default.
func (Progress) TableName() string { return "progress" }
