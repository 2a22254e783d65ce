package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"coding-edu-platform/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChallengeService struct {
	DB          *gorm.DB
	Progression *ProgressionService
	Grader      Grader
}

// NewChallengeService wires the service; a nil grader falls back to LengthGrader.
func NewChallengeService(db *gorm.DB, progression *ProgressionService, grader Grader) *ChallengeService {
	if grader == nil {
		grader = LengthGrader{}
	}
	return &ChallengeService{DB: db, Progression: progression, Grader: grader}
}

type ChallengeFilter struct {
	Difficulty string
	Search     string
}

func (s *ChallengeService) ListChallenges(ctx context.Context, f ChallengeFilter) ([]models.Challenge, error) {
	query := s.DB.WithContext(ctx).Model(&models.Challenge{})
	if f.Difficulty != "" {
		query = query.Where("difficulty = ?", f.Difficulty)
	}
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where("LOWER(title) LIKE ?", like)
	}

	challenges := []models.Challenge{}
	err := query.Order("created_at DESC").Find(&challenges).Error
	return challenges, err
}

// GetChallenge resolves by id or slug.
func (s *ChallengeService) GetChallenge(ctx context.Context, idOrSlug string) (*models.Challenge, error) {
	var ch models.Challenge
	err := byIDOrSlug(s.DB.WithContext(ctx), idOrSlug).First(&ch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("challenge %s: %w", idOrSlug, ErrNotFound)
		}
		return nil, err
	}
	return &ch, nil
}

type CreateChallengeInput struct {
	Title        string            `json:"title" validate:"required,min=3,max=200"`
	Description  string            `json:"description"`
	Difficulty   string            `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	StarterCode  string            `json:"starter_code"`
	TimeLimitSec int               `json:"time_limit_sec" validate:"min=0"`
	XPReward     int64             `json:"xp_reward" validate:"min=0"`
	TestCases    []models.TestCase `json:"test_cases"`
}

func (s *ChallengeService) CreateChallenge(ctx context.Context, in CreateChallengeInput) (*models.Challenge, error) {
	if in.XPReward < 0 || in.TimeLimitSec < 0 {
		return nil, fmt.Errorf("negative reward or time limit: %w", ErrValidation)
	}
	cases := in.TestCases
	if cases == nil {
		cases = []models.TestCase{}
	}
	raw, err := json.Marshal(cases)
	if err != nil {
		return nil, fmt.Errorf("encode test cases: %w", err)
	}
	if in.Difficulty == "" {
		in.Difficulty = models.DifficultyBeginner
	}

	id := uuid.NewString()
	ch := models.Challenge{
		ID:           id,
		Slug:         slugFor(in.Title, id),
		Title:        in.Title,
		Description:  in.Description,
		Difficulty:   in.Difficulty,
		StarterCode:  in.StarterCode,
		TimeLimitSec: in.TimeLimitSec,
		XPReward:     in.XPReward,
		TestCases:    datatypes.JSON(raw),
	}
	if err := s.DB.WithContext(ctx).Create(&ch).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("challenge slug %s: %w", ch.Slug, ErrConflict)
		}
		return nil, err
	}
	return &ch, nil
}

// AttemptResult is the recorded attempt plus any XP it earned.
type AttemptResult struct {
	Attempt  models.ChallengeAttempt `json:"attempt"`
	XPEarned int64                   `json:"xp_earned"`
	Award    *XPAward                `json:"award,omitempty"`
}

// SubmitAttempt grades the code and records a new attempt. Every passing
// attempt earns the challenge's XP reward, including repeats.
func (s *ChallengeService) SubmitAttempt(ctx context.Context, userID, challengeID, code string, timeSpent int) (*AttemptResult, error) {
	if timeSpent < 0 {
		return nil, fmt.Errorf("time_spent %d: %w", timeSpent, ErrValidation)
	}

	ch, err := s.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	cases, err := ch.DecodeTestCases()
	if err != nil {
		return nil, fmt.Errorf("decode test cases for %s: %w", ch.ID, err)
	}

	verdict, err := s.Grader.Grade(ctx, code, cases)
	if err != nil {
		return nil, fmt.Errorf("grade attempt: %w", err)
	}
	verdict.Score = clampScore(verdict.Score)

	result := &AttemptResult{}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt := models.ChallengeAttempt{
			ID:          uuid.NewString(),
			UserID:      userID,
			ChallengeID: ch.ID,
			Code:        code,
			Passed:      verdict.Passed,
			Score:       verdict.Score,
			TimeSpent:   timeSpent,
		}
		if verdict.Passed && ch.XPReward > 0 {
			award, err := s.Progression.awardXPTx(tx, userID, ch.XPReward, "challenge:"+ch.ID)
			if err != nil {
				return err
			}
			attempt.XPEarned = award.Amount
			result.Award = award
			result.XPEarned = award.Amount
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}
		result.Attempt = attempt
		return nil
	})
	if err != nil {
		return nil, err
	}

	if verdict.Passed {
		s.Progression.publish(ctx, ProgressEvent{Kind: EventChallengePassed, UserID: userID}.withAward(result.Award))
	}
	return result, nil
}

// ListAttempts returns the user's attempts on a challenge, newest first.
func (s *ChallengeService) ListAttempts(ctx context.Context, userID, challengeID string) ([]models.ChallengeAttempt, error) {
	ch, err := s.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	attempts := []models.ChallengeAttempt{}
	err = s.DB.WithContext(ctx).
		Where("user_id = ? AND challenge_id = ?", userID, ch.ID).
		Order("created_at DESC").
		Find(&attempts).Error
	return attempts, err
}

func clampScore(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}
