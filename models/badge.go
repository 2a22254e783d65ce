package models

import (
	"time"

	"gorm.io/datatypes"
)

// BadgeType: static config, seeded from BadgeTriggers at startup
type BadgeType struct {
	ID          string                               `gorm:"primaryKey;type:uuid" json:"id"`
	Code        string                               `gorm:"uniqueIndex;not null" json:"code"` // e.g., "FIRST_LESSON", "LEVEL_10"
	Name        string                               `gorm:"not null" json:"name"`
	Description string                               `json:"description"`
	IconURL     string                               `gorm:"type:text" json:"icon_url,omitempty"`
	Rarity      string                               `gorm:"type:varchar(16);default:'common'" json:"rarity"` // common, rare, epic, legendary
	Threshold   datatypes.JSONType[map[string]int64] `json:"threshold"`                                       // e.g., {"lessons_completed": 10}
	CreatedAt   time.Time                            `gorm:"autoCreateTime" json:"created_at"`
}

// UserBadge: awarded instance, unique per (user, badge)
type UserBadge struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string     `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	BadgeTypeID string     `gorm:"not null;uniqueIndex:idx_user_badge" json:"badge_type_id"`
	AwardedAt   time.Time  `gorm:"autoCreateTime" json:"awarded_at"`
	BadgeType   *BadgeType `gorm:"foreignKey:BadgeTypeID" json:"badge,omitempty"`
}

func threshold(m map[string]int64) datatypes.JSONType[map[string]int64] {
	return datatypes.NewJSONType(m)
}

// Predefined badge triggers. Threshold keys are the counters in services.BadgeStats.
var BadgeTriggers = []BadgeType{
	{
		Code:        "FIRST_LESSON",
		Name:        "Hello, World",
		Description: "Completed your first lesson",
		Rarity:      "common",
		Threshold:   threshold(map[string]int64{"lessons_completed": 1}),
	},
	{
		Code:        "LESSONS_10",
		Name:        "Bookworm",
		Description: "Completed 10 lessons",
		Rarity:      "rare",
		Threshold:   threshold(map[string]int64{"lessons_completed": 10}),
	},
	{
		Code:        "FIRST_PASS",
		Name:        "Green Tests",
		Description: "Passed your first challenge",
		Rarity:      "common",
		Threshold:   threshold(map[string]int64{"challenges_passed": 1}),
	},
	{
		Code:        "CHALLENGES_25",
		Name:        "Problem Solver",
		Description: "Passed 25 different challenges",
		Rarity:      "epic",
		Threshold:   threshold(map[string]int64{"challenges_passed": 25}),
	},
	{
		Code:        "LEVEL_5",
		Name:        "Getting Serious",
		Description: "Reached level 5",
		Rarity:      "rare",
		Threshold:   threshold(map[string]int64{"level": 5}),
	},
	{
		Code:        "LEVEL_10",
		Name:        "Double Digits",
		Description: "Reached level 10",
		Rarity:      "epic",
		Threshold:   threshold(map[string]int64{"level": 10}),
	},
	{
		Code:        "ROADMAP_AUTHOR",
		Name:        "Cartographer",
		Description: "Published your first roadmap",
		Rarity:      "common",
		Threshold:   threshold(map[string]int64{"roadmaps_created": 1}),
	},
}
