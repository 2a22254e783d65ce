package services

import (
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// byIDOrSlug matches on the uuid primary key when key parses as one, otherwise
// on slug. Postgres rejects non-uuid literals compared against uuid columns.
func byIDOrSlug(db *gorm.DB, key string) *gorm.DB {
	if _, err := uuid.Parse(key); err == nil {
		return db.Where("id = ?", key)
	}
	return db.Where("slug = ?", key)
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// slugFor slugs title, falling back to the id prefix when nothing in the
// title transliterates.
func slugFor(title, id string) string {
	if s := slug.Make(title); s != "" {
		return s
	}
	return id[:8]
}
