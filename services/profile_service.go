package services

import (
	"context"
	"errors"
	"fmt"

	"coding-edu-platform/models"

	"gorm.io/gorm"
)

type Profile struct {
	User          *models.User `json:"user"`
	XPIntoLevel   int64        `json:"xp_into_level"`
	XPToNextLevel int64        `json:"xp_to_next_level"`
	Stats         *BadgeStats  `json:"stats"`
	BadgeCount    int64        `json:"badge_count"`
}

type ProfileService struct {
	DB     *gorm.DB
	Badges *BadgeService
}

func NewProfileService(db *gorm.DB, badges *BadgeService) *ProfileService {
	return &ProfileService{DB: db, Badges: badges}
}

// LevelProgress splits xp into the part earned inside the current level and
// the part still missing for the next one.
func LevelProgress(xp int64) (into, toNext int64) {
	if xp < 0 {
		xp = 0
	}
	into = xp % XPPerLevel
	return into, XPPerLevel - into
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	db := s.DB.WithContext(ctx)

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	stats, err := s.Badges.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &Profile{User: &user, Stats: stats}
	p.XPIntoLevel, p.XPToNextLevel = LevelProgress(user.XP)
	if err := db.Model(&models.UserBadge{}).Where("user_id = ?", userID).Count(&p.BadgeCount).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// SetAvatarURL stores the uploaded avatar location.
func (s *ProfileService) SetAvatarURL(ctx context.Context, userID, url string) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("avatar_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return nil
}
