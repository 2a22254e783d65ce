package models

import "time"

// Roadmap is a user-authored learning plan. Likes and Views are plain
// counters with no per-user dedup.
type Roadmap struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	OwnerID     string `gorm:"index;not null" json:"owner_id"`
	Title       string `gorm:"not null" json:"title"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	IsPublic    bool   `gorm:"default:true;index" json:"is_public"`
	Likes       int64  `gorm:"not null;default:0" json:"likes"`
	Views       int64  `gorm:"not null;default:0" json:"views"`

	Steps []RoadmapStep `gorm:"foreignKey:RoadmapID" json:"steps,omitempty"`

	Timestamps
}

type RoadmapStep struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	RoadmapID   string    `gorm:"index;not null" json:"roadmap_id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	ResourceURL string    `gorm:"type:text" json:"resource_url,omitempty"`
	Order       int       `gorm:"column:sort_order;default:0" json:"order"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
