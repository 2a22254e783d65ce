package services

import (
	"context"

	"gorm.io/gorm"
)

// MaxLeaderboardSize caps every leaderboard read.
const MaxLeaderboardSize = 100

type LeaderboardEntry struct {
	Rank             int    `json:"rank"`
	UserID           string `json:"user_id"`
	Username         string `json:"username"`
	AvatarURL        string `json:"avatar_url,omitempty"`
	XP               int64  `json:"xp"`
	Level            int    `json:"level"`
	ChallengesPassed int64  `json:"challenges_passed"`
}

type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// TopUsers ranks users by (xp desc, level desc). limit <= 0 or above the cap
// returns MaxLeaderboardSize rows. Read only.
func (s *LeaderboardService) TopUsers(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > MaxLeaderboardSize {
		limit = MaxLeaderboardSize
	}

	entries := []LeaderboardEntry{}
	err := s.DB.WithContext(ctx).
		Table("users").
		Select(`users.id AS user_id, users.username, users.avatar_url, users.xp, users.level,
			COUNT(DISTINCT challenge_attempts.challenge_id) AS challenges_passed`).
		Joins("LEFT JOIN challenge_attempts ON challenge_attempts.user_id = users.id AND challenge_attempts.passed = ?", true).
		Where("users.deleted_at IS NULL").
		Group("users.id, users.username, users.avatar_url, users.xp, users.level").
		Order("users.xp DESC, users.level DESC, users.username ASC").
		Limit(limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
