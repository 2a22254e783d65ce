package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"coding-edu-platform/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// XPPerLevel is the flat XP band of every level: level 1 covers [0, 1000).
const XPPerLevel = 1000

// LevelForXP returns floor(xp/XPPerLevel)+1. Negative input is treated as 0.
func LevelForXP(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(xp/XPPerLevel) + 1
}

// XPAward is the outcome of one XP mutation.
type XPAward struct {
	UserID        string `json:"user_id"`
	Amount        int64  `json:"amount"`
	NewXP         int64  `json:"new_xp"`
	NewLevel      int    `json:"new_level"`
	PreviousLevel int    `json:"previous_level"`
	LeveledUp     bool   `json:"leveled_up"`
}

// Progress event kinds
const (
	EventLessonCompleted = "lesson_completed"
	EventChallengePassed = "challenge_passed"
	EventXPGranted       = "xp_granted"
	EventRoadmapCreated  = "roadmap_created"
)

// ProgressEvent is emitted after a committed mutation that may unlock badges.
type ProgressEvent struct {
	Kind       string    `json:"kind"`
	UserID     string    `json:"user_id"`
	XP         int64     `json:"xp,omitempty"`
	Level      int       `json:"level,omitempty"`
	LeveledUp  bool      `json:"leveled_up,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher delivers progress events. Implementations live in workers.
type EventPublisher interface {
	Publish(ctx context.Context, ev ProgressEvent) error
}

// ProgressionService is the only writer of users.xp and users.level.
type ProgressionService struct {
	DB        *gorm.DB
	Publisher EventPublisher // optional
}

func NewProgressionService(db *gorm.DB) *ProgressionService {
	return &ProgressionService{DB: db}
}

// AwardXP adds amount to the user's XP and recomputes the level in one statement.
// amount must be >= 0; an amount of 0 only checks that the user exists.
func (s *ProgressionService) AwardXP(ctx context.Context, userID string, amount int64, reason string) (*XPAward, error) {
	var award *XPAward
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		award, err = s.awardXPTx(tx, userID, amount, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	if amount > 0 {
		s.publish(ctx, ProgressEvent{Kind: EventXPGranted, UserID: userID}.withAward(award))
	}
	return award, nil
}

// awardXPTx runs inside the caller's transaction so the XP write commits or
// rolls back together with the mutation that earned it.
func (s *ProgressionService) awardXPTx(tx *gorm.DB, userID string, amount int64, reason string) (*XPAward, error) {
	if amount < 0 {
		return nil, fmt.Errorf("xp amount %d: %w", amount, ErrValidation)
	}

	if amount > 0 {
		res := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"xp":    gorm.Expr("xp + ?", amount),
				"level": gorm.Expr(fmt.Sprintf("(xp + ?) / %d + 1", XPPerLevel), amount),
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
	}

	var row struct {
		XP    int64
		Level int
	}
	if err := tx.Model(&models.User{}).Select("xp", "level").Where("id = ?", userID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}

	award := &XPAward{
		UserID:        userID,
		Amount:        amount,
		NewXP:         row.XP,
		NewLevel:      row.Level,
		PreviousLevel: LevelForXP(row.XP - amount),
	}
	award.LeveledUp = award.NewLevel > award.PreviousLevel
	if amount == 0 {
		return award, nil
	}

	if award.LeveledUp {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("last_level_up_at", time.Now()).Error; err != nil {
			return nil, err
		}
	}

	ev := models.XPEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		Amount:     amount,
		Reason:     reason,
		XPAfter:    award.NewXP,
		LevelAfter: award.NewLevel,
	}
	if err := tx.Create(&ev).Error; err != nil {
		return nil, err
	}

	log.Printf("🎮 [XP] %s +%d → XP=%d, Lvl=%d (reason: %s)", userID, amount, award.NewXP, award.NewLevel, reason)
	if award.LeveledUp {
		log.Printf("⬆️  [XP] %s leveled up %d → %d", userID, award.PreviousLevel, award.NewLevel)
	}
	return award, nil
}

func (ev ProgressEvent) withAward(a *XPAward) ProgressEvent {
	if a != nil {
		ev.XP = a.NewXP
		ev.Level = a.NewLevel
		ev.LeveledUp = a.LeveledUp
	}
	return ev
}

// publish is fire-and-forget: the mutation has already committed.
func (s *ProgressionService) publish(ctx context.Context, ev ProgressEvent) {
	if s.Publisher == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	if err := s.Publisher.Publish(ctx, ev); err != nil {
		log.Printf("⚠️  [EVENTS] failed to publish %s for %s: %v", ev.Kind, ev.UserID, err)
	}
}

// ReconcileLevels rewrites any stored level that drifted from its XP.
// Returns the number of repaired users.
func (s *ProgressionService) ReconcileLevels(ctx context.Context) (int64, error) {
	expr := fmt.Sprintf("xp / %d + 1", XPPerLevel)
	res := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("level <> " + expr).
		Update("level", gorm.Expr(expr))
	return res.RowsAffected, res.Error
}

// repairLevel is ReconcileLevels for a single user.
func (s *ProgressionService) repairLevel(tx *gorm.DB, userID string) error {
	expr := fmt.Sprintf("xp / %d + 1", XPPerLevel)
	return tx.Model(&models.User{}).
		Where("id = ? AND level <> "+expr, userID).
		Update("level", gorm.Expr(expr)).Error
}

// XPHistoryPage is one page of the user's XP ledger, newest first.
type XPHistoryPage struct {
	Events     []models.XPEvent `json:"events"`
	Page       int              `json:"page"`
	Size       int              `json:"size"`
	TotalItems int64            `json:"total_items"`
	TotalPages int              `json:"total_pages"`
}

func (s *ProgressionService) XPHistory(ctx context.Context, userID string, page, size int) (*XPHistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	db := s.DB.WithContext(ctx)
	var total int64
	if err := db.Model(&models.XPEvent{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, err
	}

	events := []models.XPEvent{}
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(size).Offset(offset).
		Find(&events).Error; err != nil {
		return nil, err
	}

	return &XPHistoryPage{
		Events:     events,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}
