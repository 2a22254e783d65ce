package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// TestCase is one input/expected-output pair consumed by the grader.
type TestCase struct {
	Input  json.RawMessage `json:"input"`
	Output json.RawMessage `json:"output"`
}

type Challenge struct {
	ID           string         `gorm:"primaryKey;type:uuid" json:"id"`
	Slug         string         `gorm:"uniqueIndex;not null" json:"slug"`
	Title        string         `gorm:"not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Difficulty   string         `gorm:"type:varchar(16);default:'beginner'" json:"difficulty"`
	StarterCode  string         `gorm:"type:text" json:"starter_code"`
	TimeLimitSec int            `gorm:"default:0" json:"time_limit_sec"` // 0 = untimed
	XPReward     int64          `gorm:"not null;default:0" json:"xp_reward"`
	TestCases    datatypes.JSON `json:"test_cases"`

	Timestamps
}

// DecodeTestCases unmarshals the JSON column. An empty column is no test cases.
func (c *Challenge) DecodeTestCases() ([]TestCase, error) {
	if len(c.TestCases) == 0 {
		return nil, nil
	}
	var cases []TestCase
	if err := json.Unmarshal(c.TestCases, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// ChallengeAttempt is append-only: every submission is a new row.
type ChallengeAttempt struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string    `gorm:"index:idx_attempt_user_challenge,priority:1;not null" json:"user_id"`
	ChallengeID string    `gorm:"index:idx_attempt_user_challenge,priority:2;not null" json:"challenge_id"`
	Code        string    `gorm:"type:text" json:"code"`
	Passed      bool      `gorm:"not null;default:false;index" json:"passed"`
	Score       int       `gorm:"not null;default:0" json:"score"` // 0..100
	TimeSpent   int       `gorm:"not null;default:0" json:"time_spent"` // seconds
	XPEarned    int64     `gorm:"not null;default:0" json:"xp_earned"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
