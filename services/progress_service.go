package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coding-edu-platform/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressService struct {
	DB          *gorm.DB
	Progression *ProgressionService
}

func NewProgressService(db *gorm.DB, progression *ProgressionService) *ProgressService {
	return &ProgressService{DB: db, Progression: progression}
}

// SaveProgressResult reports the saved row and whether this save granted XP.
type SaveProgressResult struct {
	Progress  models.Progress `json:"progress"`
	XPGranted int64           `json:"xp_granted"`
	LeveledUp bool            `json:"leveled_up"`
	Award     *XPAward        `json:"award,omitempty"`
}

// SaveProgress upserts the user's row for a lesson. The lesson's XP reward is
// granted only the first time the row becomes completed; completed_at is never
// cleared, so un-completing and completing again does not grant twice.
func (s *ProgressService) SaveProgress(ctx context.Context, userID, lessonID, code string, completed bool) (*SaveProgressResult, error) {
	if !isUUID(lessonID) {
		return nil, fmt.Errorf("lesson %s: %w", lessonID, ErrNotFound)
	}
	db := s.DB.WithContext(ctx)

	var lesson models.Lesson
	if err := db.Where("id = ?", lessonID).First(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("lesson %s: %w", lessonID, ErrNotFound)
		}
		return nil, err
	}

	result := &SaveProgressResult{}
	firstCompletion := false
	err := db.Transaction(func(tx *gorm.DB) error {
		row := models.Progress{
			ID:       uuid.NewString(),
			UserID:   userID,
			LessonID: lessonID,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return err
		}

		scope := tx.Model(&models.Progress{}).Where("user_id = ? AND lesson_id = ?", userID, lessonID)
		if err := scope.Session(&gorm.Session{}).Updates(map[string]interface{}{
			"code":      code,
			"completed": completed,
		}).Error; err != nil {
			return err
		}

		if completed {
			res := scope.Session(&gorm.Session{}).
				Where("completed_at IS NULL").
				Update("completed_at", time.Now())
			if res.Error != nil {
				return res.Error
			}
			firstCompletion = res.RowsAffected == 1
		}

		if firstCompletion && lesson.XPReward > 0 {
			award, err := s.Progression.awardXPTx(tx, userID, lesson.XPReward, "lesson:"+lesson.ID)
			if err != nil {
				return err
			}
			result.Award = award
			result.XPGranted = award.Amount
			result.LeveledUp = award.LeveledUp
		}

		return tx.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&result.Progress).Error
	})
	if err != nil {
		return nil, err
	}

	if firstCompletion {
		s.Progression.publish(ctx, ProgressEvent{Kind: EventLessonCompleted, UserID: userID}.withAward(result.Award))
	}
	return result, nil
}

// GetProgress lists every progress row of the user.
func (s *ProgressService) GetProgress(ctx context.Context, userID string) ([]models.Progress, error) {
	rows := []models.Progress{}
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error
	return rows, err
}

type CourseProgress struct {
	CourseID         string   `json:"course_id"`
	TotalLessons     int64    `json:"total_lessons"`
	CompletedLessons int64    `json:"completed_lessons"`
	Percent          int      `json:"percent"`
	CompletedIDs     []string `json:"completed_lesson_ids"`
}

// CourseProgress summarizes how much of a course the user has completed.
func (s *ProgressService) CourseProgress(ctx context.Context, userID, courseID string) (*CourseProgress, error) {
	db := s.DB.WithContext(ctx)

	var course models.Course
	if err := byIDOrSlug(db.Select("id"), courseID).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course %s: %w", courseID, ErrNotFound)
		}
		return nil, err
	}

	courseID = course.ID
	out := &CourseProgress{CourseID: courseID, CompletedIDs: []string{}}
	if err := db.Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&out.TotalLessons).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.Progress{}).
		Joins("JOIN lessons ON lessons.id = progress.lesson_id").
		Where("progress.user_id = ? AND lessons.course_id = ? AND progress.completed = ?", userID, courseID, true).
		Pluck("progress.lesson_id", &out.CompletedIDs).Error; err != nil {
		return nil, err
	}
	out.CompletedLessons = int64(len(out.CompletedIDs))
	if out.TotalLessons > 0 {
		out.Percent = int(out.CompletedLessons * 100 / out.TotalLessons)
	}
	return out, nil
}
