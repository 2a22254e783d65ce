package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"coding-edu-platform/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeService struct {
	DB *gorm.DB
}

func NewBadgeService(db *gorm.DB) *BadgeService {
	return &BadgeService{DB: db}
}

// BadgeStats are the counters badge thresholds are checked against.
type BadgeStats struct {
	Level            int64 `json:"level"`
	XP               int64 `json:"xp"`
	LessonsCompleted int64 `json:"lessons_completed"`
	ChallengesPassed int64 `json:"challenges_passed"`
	RoadmapsCreated  int64 `json:"roadmaps_created"`
}

// SeedBadgeTypes inserts any predefined badge missing from the catalogue.
func (s *BadgeService) SeedBadgeTypes(ctx context.Context) error {
	for _, trigger := range models.BadgeTriggers {
		bt := trigger
		if err := s.DB.WithContext(ctx).
			Where("code = ?", bt.Code).
			Attrs(models.BadgeType{ID: uuid.NewString()}).
			FirstOrCreate(&bt).Error; err != nil {
			return fmt.Errorf("seed badge %s: %w", trigger.Code, err)
		}
	}
	return nil
}

// Stats computes the badge counters for a user.
func (s *BadgeService) Stats(ctx context.Context, userID string) (*BadgeStats, error) {
	db := s.DB.WithContext(ctx)

	var user models.User
	if err := db.Select("id", "xp", "level").Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	stats := &BadgeStats{Level: int64(user.Level), XP: user.XP}
	if err := db.Model(&models.Progress{}).
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Count(&stats.LessonsCompleted).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.ChallengeAttempt{}).
		Where("user_id = ? AND passed = ?", userID, true).
		Distinct("challenge_id").
		Count(&stats.ChallengesPassed).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Roadmap{}).
		Where("owner_id = ?", userID).
		Count(&stats.RoadmapsCreated).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// AutoAwardBadges checks every badge in the catalogue after a progress event
// and returns the ones newly awarded.
func (s *BadgeService) AutoAwardBadges(ctx context.Context, userID string) ([]models.BadgeType, error) {
	stats, err := s.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	var catalogue []models.BadgeType
	if err := s.DB.WithContext(ctx).Find(&catalogue).Error; err != nil {
		return nil, err
	}

	awarded := []models.BadgeType{}
	for _, bt := range catalogue {
		if !meetsThreshold(stats, bt.Threshold.Data()) {
			continue
		}
		res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_type_id"}},
			DoNothing: true,
		}).Create(&models.UserBadge{
			ID:          uuid.NewString(),
			UserID:      userID,
			BadgeTypeID: bt.ID,
		})
		if res.Error != nil {
			return awarded, res.Error
		}
		if res.RowsAffected == 1 {
			awarded = append(awarded, bt)
			log.Printf("🎖️ [BADGES] %s → %s", bt.Name, userID)
		}
	}
	return awarded, nil
}

// meetsThreshold requires every key of req; unknown keys never match.
func meetsThreshold(stats *BadgeStats, req map[string]int64) bool {
	if len(req) == 0 {
		return false
	}
	for key, required := range req {
		var have int64
		switch key {
		case "level":
			have = stats.Level
		case "xp":
			have = stats.XP
		case "lessons_completed":
			have = stats.LessonsCompleted
		case "challenges_passed":
			have = stats.ChallengesPassed
		case "roadmaps_created":
			have = stats.RoadmapsCreated
		default:
			return false
		}
		if have < required {
			return false
		}
	}
	return true
}

func (s *BadgeService) UserBadges(ctx context.Context, userID string) ([]models.UserBadge, error) {
	badges := []models.UserBadge{}
	err := s.DB.WithContext(ctx).
		Preload("BadgeType").
		Where("user_id = ?", userID).
		Order("awarded_at DESC").
		Find(&badges).Error
	return badges, err
}
