// models/course.go
package models

import (
	"time"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

type Course struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Difficulty  string `json:"difficulty" gorm:"type:varchar(16);default:'beginner'"`
	Category    string `json:"category" gorm:"index"`

	// 🖼️ Media
	CoverURL string `json:"cover_url,omitempty" gorm:"type:text"`

	Published bool `json:"published" gorm:"default:false;index"`

	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:CourseID"`

	// Calculated fields (not stored in DB)
	LessonCount int64 `json:"lesson_count,omitempty" gorm:"-"`

	Timestamps
}

// Lesson is ordered inside its course. XPReward is granted once, on the
// first completion recorded in Progress.
type Lesson struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid"`
	CourseID    string `json:"course_id" gorm:"not null;index"`
	Slug        string `json:"slug" gorm:"not null;index"`
	Title       string `json:"title" gorm:"not null"`
	Content     string `json:"content" gorm:"type:text"`
	StarterCode string `json:"starter_code" gorm:"type:text"`
	Language    string `json:"language" gorm:"type:varchar(32);default:'javascript'"`
	Order       int    `json:"order" gorm:"column:sort_order;default:0"`
	XPReward    int64  `json:"xp_reward" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Enrollment is unique per (user, course).
type Enrollment struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID     string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_course"`
	CourseID   string    `json:"course_id" gorm:"not null;uniqueIndex:idx_user_course"`
	EnrolledAt time.Time `json:"enrolled_at" gorm:"autoCreateTime"`

	Course *Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}
